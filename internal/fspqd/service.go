package fspqd

import (
	"context"

	"google.golang.org/grpc"
)

// FSPQServer is the service interface named in spec.md §6. A hand-written
// grpc.ServiceDesc below wires it to *grpc.Server the same way
// protoc-gen-go-grpc's generated _FSPQ_serviceDesc would, without
// compiling a .proto (see DESIGN.md for why no descriptor is fabricated).
type FSPQServer interface {
	CreateQueue(context.Context, *CreateQueueRequest) (*CreateQueueResponse, error)
	Enqueue(context.Context, *EnqueueRequest) (*EnqueueResponse, error)
	Dequeue(context.Context, *DequeueRequest) (*DequeueResponse, error)
	Peek(context.Context, *PeekRequest) (*PeekResponse, error)
	GetSize(context.Context, *GetSizeRequest) (*GetSizeResponse, error)
	GetEpoch(context.Context, *GetEpochRequest) (*GetEpochResponse, error)
}

const serviceName = "fspq.FSPQ"

func _FSPQ_CreateQueue_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(CreateQueueRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(FSPQServer).CreateQueue(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + serviceName + "/CreateQueue"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(FSPQServer).CreateQueue(ctx, req.(*CreateQueueRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _FSPQ_Enqueue_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(EnqueueRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(FSPQServer).Enqueue(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + serviceName + "/Enqueue"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(FSPQServer).Enqueue(ctx, req.(*EnqueueRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _FSPQ_Dequeue_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(DequeueRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(FSPQServer).Dequeue(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + serviceName + "/Dequeue"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(FSPQServer).Dequeue(ctx, req.(*DequeueRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _FSPQ_Peek_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(PeekRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(FSPQServer).Peek(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + serviceName + "/Peek"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(FSPQServer).Peek(ctx, req.(*PeekRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _FSPQ_GetSize_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(GetSizeRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(FSPQServer).GetSize(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + serviceName + "/GetSize"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(FSPQServer).GetSize(ctx, req.(*GetSizeRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _FSPQ_GetEpoch_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(GetEpochRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(FSPQServer).GetEpoch(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + serviceName + "/GetEpoch"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(FSPQServer).GetEpoch(ctx, req.(*GetEpochRequest))
	}
	return interceptor(ctx, in, info, handler)
}

// serviceDesc is the hand-written equivalent of protoc-gen-go-grpc's
// generated _FSPQ_serviceDesc.
var serviceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*FSPQServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "CreateQueue", Handler: _FSPQ_CreateQueue_Handler},
		{MethodName: "Enqueue", Handler: _FSPQ_Enqueue_Handler},
		{MethodName: "Dequeue", Handler: _FSPQ_Dequeue_Handler},
		{MethodName: "Peek", Handler: _FSPQ_Peek_Handler},
		{MethodName: "GetSize", Handler: _FSPQ_GetSize_Handler},
		{MethodName: "GetEpoch", Handler: _FSPQ_GetEpoch_Handler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "fspq.proto",
}

// RegisterFSPQServer registers srv's implementation of FSPQServer against
// s, the same way a generated RegisterFSPQServer function would.
func RegisterFSPQServer(s grpc.ServiceRegistrar, srv FSPQServer) {
	s.RegisterService(&serviceDesc, srv)
}
