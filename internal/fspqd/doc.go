// Package fspqd implements the gRPC surface named in spec.md §6: per-queue
// Enqueue/Dequeue/Peek/GetSize/GetEpoch, queue creation, and the standard
// gRPC health-check service. It is the sole external collaborator the core
// packages (internal/fspq, internal/feature, internal/itemheap) were built
// to be driven by; none of those packages import this one.
//
// Architecture:
//
//	┌───────────────────────────── fspqd ─────────────────────────────┐
//	│  grpc.Server                                                     │
//	│    panic-recovery + zap logging unary interceptor chain          │
//	│    FSPQ service  (hand-registered codec, see codec.go)           │
//	│    grpc.health.v1.Health service (one SERVING tick/sec on Watch) │
//	│  Server                                                          │
//	│    registry *registry.Registry  -- name -> locked queue          │
//	│    logger   *zap.Logger                                          │
//	└────────────────────────────────────────────────────────────────── │
//
// Because no .proto file is compiled for this repo (see DESIGN.md), request
// and response messages are plain Go structs (messages.go) carried over a
// hand-registered "json" content-subtype codec (codec.go) instead of
// wire-format protobuf. proto/fspq.proto documents the same contract for a
// future real codegen pass.
package fspqd
