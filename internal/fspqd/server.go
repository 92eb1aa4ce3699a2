package fspqd

import (
	"context"
	"errors"

	grpc_middleware "github.com/grpc-ecosystem/go-grpc-middleware"
	grpc_recovery "github.com/grpc-ecosystem/go-grpc-middleware/recovery"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"

	"github.com/dreamware/fspq/internal/feature"
	"github.com/dreamware/fspq/internal/fspq"
	"github.com/dreamware/fspq/internal/registry"
)

// Server implements FSPQServer over a registry.Registry, mapping core
// errors to the gRPC status codes fixed by spec.md §6: NOT_FOUND for an
// unknown queue name, UNAVAILABLE with "Update in progress please retry"
// on lock contention, INTERNAL for everything else propagated from the
// core.
type Server struct {
	reg    *registry.Registry
	logger *zap.Logger
}

// NewServer constructs a Server bound to reg.
func NewServer(reg *registry.Registry, logger *zap.Logger) *Server {
	return &Server{reg: reg, logger: logger}
}

// NewGRPCServer builds a *grpc.Server with the panic-recovery interceptor
// chain (grounded on the `3esmit-turbo-geth` downloader's
// grpc_middleware.ChainUnaryServer(grpc_recovery.UnaryServerInterceptor())
// wiring) and registers both the FSPQ service and the standard gRPC health
// service against it.
func NewGRPCServer(reg *registry.Registry, logger *zap.Logger) *grpc.Server {
	recoveryOpt := grpc_recovery.WithRecoveryHandler(func(p interface{}) error {
		logger.Error("recovered from panic in gRPC handler", zap.Any("panic", p))
		return status.Errorf(codes.Internal, "internal error")
	})

	s := grpc.NewServer(
		grpc.UnaryInterceptor(grpc_middleware.ChainUnaryServer(
			grpc_recovery.UnaryServerInterceptor(recoveryOpt),
			loggingUnaryInterceptor(logger),
		)),
		grpc.StreamInterceptor(grpc_middleware.ChainStreamServer(
			grpc_recovery.StreamServerInterceptor(recoveryOpt),
		)),
	)

	srv := NewServer(reg, logger)
	RegisterFSPQServer(s, srv)
	grpc_health_v1.RegisterHealthServer(s, newHealthServer(logger))
	return s
}

func loggingUnaryInterceptor(logger *zap.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		resp, err := handler(ctx, req)
		if err != nil {
			logger.Warn("rpc failed", zap.String("method", info.FullMethod), zap.Error(err))
		} else {
			logger.Debug("rpc ok", zap.String("method", info.FullMethod))
		}
		return resp, err
	}
}

// coreErrToStatus maps a non-registry error propagated from the core
// (internal/fspq, internal/feature, ...) to codes.Internal, per spec.md
// §6/§7: "INTERNAL for all propagated core errors".
func coreErrToStatus(err error) error {
	if err == nil {
		return nil
	}
	return status.Error(codes.Internal, err.Error())
}

// registryErrToStatus maps registry.ErrNotFound / registry.ErrBusy to the
// codes fixed by spec.md §6 and registry.ErrAlreadyExists to
// codes.AlreadyExists; anything else falls through to coreErrToStatus.
func registryErrToStatus(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, registry.ErrNotFound):
		return status.Error(codes.NotFound, "queue not found")
	case errors.Is(err, registry.ErrBusy):
		return status.Error(codes.Unavailable, "Update in progress please retry")
	case errors.Is(err, registry.ErrAlreadyExists):
		return status.Error(codes.AlreadyExists, "queue already exists")
	default:
		return coreErrToStatus(err)
	}
}

func toFeatureValues(pairs []FeaturePair) []feature.Value {
	values := make([]feature.Value, len(pairs))
	for i, p := range pairs {
		values[i] = feature.Value{Name: p.Name, Value: p.Value}
	}
	return values
}

// CreateQueue implements FSPQServer.
func (s *Server) CreateQueue(ctx context.Context, req *CreateQueueRequest) (*CreateQueueResponse, error) {
	if err := s.reg.Create(req.Name, req.FeatureNames); err != nil {
		return nil, registryErrToStatus(err)
	}
	return &CreateQueueResponse{}, nil
}

// Enqueue implements FSPQServer.
func (s *Server) Enqueue(ctx context.Context, req *EnqueueRequest) (*EnqueueResponse, error) {
	var size uint64
	err := s.reg.WithWrite(req.QueueName, func(q *fspq.Queue) error {
		if _, err := q.Enqueue(toFeatureValues(req.Features), req.Item); err != nil {
			return err
		}
		var err error
		size, err = q.Size()
		return err
	})
	if err != nil {
		return nil, registryErrToStatus(err)
	}
	return &EnqueueResponse{Size: size}, nil
}

// Dequeue implements FSPQServer.
func (s *Server) Dequeue(ctx context.Context, req *DequeueRequest) (*DequeueResponse, error) {
	resp := &DequeueResponse{}
	err := s.reg.WithWrite(req.QueueName, func(q *fspq.Queue) error {
		payload, found, err := q.Dequeue()
		if err != nil {
			return err
		}
		resp.HasItem = found
		resp.Item = payload
		size, err := q.Size()
		if err != nil {
			return err
		}
		resp.Size = size
		return nil
	})
	if err != nil {
		return nil, registryErrToStatus(err)
	}
	return resp, nil
}

// Peek implements FSPQServer.
func (s *Server) Peek(ctx context.Context, req *PeekRequest) (*PeekResponse, error) {
	resp := &PeekResponse{}
	err := s.reg.WithRead(req.QueueName, func(q *fspq.Queue) error {
		payload, found, err := q.Peek()
		if err != nil {
			return err
		}
		resp.HasItem = found
		resp.Item = payload
		size, err := q.Size()
		if err != nil {
			return err
		}
		resp.Size = size
		return nil
	})
	if err != nil {
		return nil, registryErrToStatus(err)
	}
	return resp, nil
}

// GetSize implements FSPQServer.
func (s *Server) GetSize(ctx context.Context, req *GetSizeRequest) (*GetSizeResponse, error) {
	var size uint64
	err := s.reg.WithRead(req.QueueName, func(q *fspq.Queue) error {
		var err error
		size, err = q.Size()
		return err
	})
	if err != nil {
		return nil, registryErrToStatus(err)
	}
	return &GetSizeResponse{Size: size}, nil
}

// GetEpoch implements FSPQServer.
func (s *Server) GetEpoch(ctx context.Context, req *GetEpochRequest) (*GetEpochResponse, error) {
	var epoch uint64
	err := s.reg.WithRead(req.QueueName, func(q *fspq.Queue) error {
		var err error
		epoch, err = q.GetEpoch()
		return err
	})
	if err != nil {
		return nil, registryErrToStatus(err)
	}
	return &GetEpochResponse{Epoch: epoch}, nil
}
