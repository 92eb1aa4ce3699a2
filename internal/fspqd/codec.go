package fspqd

import (
	"encoding/json"

	"google.golang.org/grpc/encoding"
)

func init() {
	encoding.RegisterCodec(jsonCodec{})
}

// jsonCodecName is the content-subtype this service negotiates over
// (full wire content-type: "application/grpc+json"). No .proto is
// compiled for this repo (see DESIGN.md), so request/response messages
// are plain structs marshaled as JSON rather than protobuf wire bytes.
const jsonCodecName = "json"

// jsonCodec implements encoding.Codec (google.golang.org/grpc/encoding)
// against the plain structs in messages.go.
type jsonCodec struct{}

func (jsonCodec) Marshal(v interface{}) ([]byte, error) {
	return json.Marshal(v)
}

func (jsonCodec) Unmarshal(data []byte, v interface{}) error {
	return json.Unmarshal(data, v)
}

func (jsonCodec) Name() string {
	return jsonCodecName
}
