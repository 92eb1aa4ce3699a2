package fspqd

// FeaturePair is the wire form of a feature.Value: an ordered (name, value)
// pair supplied by the caller for Enqueue. CreateQueue takes bare feature
// names instead (CreateQueueRequest.FeatureNames).
type FeaturePair struct {
	Name  string `json:"name"`
	Value uint64 `json:"value"`
}

// CreateQueueRequest constructs a durable queue named Name over the ordered
// FeatureNames (spec.md §6 "CreateQueue(name, feature_names[])").
type CreateQueueRequest struct {
	Name         string   `json:"name"`
	FeatureNames []string `json:"feature_names"`
}

// CreateQueueResponse is empty: creation either succeeds or returns an
// error status.
type CreateQueueResponse struct{}

// EnqueueRequest carries the item payload and its ordered feature values.
type EnqueueRequest struct {
	QueueName string        `json:"queue_name"`
	Item      []byte        `json:"item"`
	Features  []FeaturePair `json:"features"`
}

// EnqueueResponse reports the queue's size after the insert.
type EnqueueResponse struct {
	Size uint64 `json:"size"`
}

// DequeueRequest names the queue to pop from.
type DequeueRequest struct {
	QueueName string `json:"queue_name"`
}

// DequeueResponse reports whether an item was returned, the item itself
// when HasItem is true, and the queue's size after the pop.
type DequeueResponse struct {
	HasItem bool   `json:"has_item"`
	Item    []byte `json:"item,omitempty"`
	Size    uint64 `json:"size"`
}

// PeekRequest names the queue to inspect.
type PeekRequest struct {
	QueueName string `json:"queue_name"`
}

// PeekResponse mirrors DequeueResponse's shape without mutating the queue.
type PeekResponse struct {
	HasItem bool   `json:"has_item"`
	Item    []byte `json:"item,omitempty"`
	Size    uint64 `json:"size"`
}

// GetSizeRequest names the queue to inspect.
type GetSizeRequest struct {
	QueueName string `json:"queue_name"`
}

// GetSizeResponse carries the current item count.
type GetSizeResponse struct {
	Size uint64 `json:"size"`
}

// GetEpochRequest names the queue to inspect.
type GetEpochRequest struct {
	QueueName string `json:"queue_name"`
}

// GetEpochResponse carries the current monotonic epoch_step.
type GetEpochResponse struct {
	Epoch uint64 `json:"epoch"`
}
