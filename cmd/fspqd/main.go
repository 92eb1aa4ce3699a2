// Command fspqd runs the FSPQ gRPC service: a multi-queue registry of
// fair sorting priority queues, each backed by durable on-disk storage
// under --data-dir, exposed over the surface named in spec.md §6
// (Enqueue/Dequeue/Peek/GetSize/GetEpoch/CreateQueue plus the standard
// gRPC health-check service).
//
// Configuration:
//   - FSPQD_LISTEN: gRPC bind address (default: ":7700")
//   - FSPQD_DATA_DIR: registry root, one durable queue subdirectory per
//     queue name (default: "./fspqd-data")
//   - FSPQD_LOG_LEVEL: zap level name (default: "info")
//
// Each of these is also settable as a --listen/--data-dir/--log-level
// flag; the flag wins if both are set, mirroring the teacher's
// NODE_LISTEN/NODE_ADDR/COORDINATOR_ADDR env-var convention
// (cmd/node/main.go) generalized onto a cobra root command.
package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dreamware/fspq/internal/fspqd"
	"github.com/dreamware/fspq/internal/registry"
)

// logFatal is a variable to allow mocking log.Fatal-equivalent behavior
// in tests, the same indirection the teacher uses in cmd/node/main.go.
var logFatal = func(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

// getenv returns the environment variable at key, or def if unset or
// empty.
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func newRootCmd() *cobra.Command {
	var listen, dataDir, logLevel string

	cmd := &cobra.Command{
		Use:   "fspqd",
		Short: "fspqd serves fair sorting priority queues over gRPC",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(listen, dataDir, logLevel)
		},
	}

	cmd.Flags().StringVar(&listen, "listen", getenv("FSPQD_LISTEN", ":7700"), "gRPC bind address")
	cmd.Flags().StringVar(&dataDir, "data-dir", getenv("FSPQD_DATA_DIR", "./fspqd-data"), "registry root directory")
	cmd.Flags().StringVar(&logLevel, "log-level", getenv("FSPQD_LOG_LEVEL", "info"), "zap log level (debug, info, warn, error)")

	return cmd
}

func buildLogger(level string) (*zap.Logger, error) {
	var lvl zap.AtomicLevel
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("fspqd: invalid log level %q: %w", level, err)
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = lvl
	return cfg.Build()
}

func run(listen, dataDir, logLevel string) error {
	logger, err := buildLogger(logLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return fmt.Errorf("fspqd: create data dir %q: %w", dataDir, err)
	}

	reg := registry.New(dataDir)
	defer reg.CloseAll()

	grpcServer := fspqd.NewGRPCServer(reg, logger)

	lis, err := net.Listen("tcp", listen)
	if err != nil {
		return fmt.Errorf("fspqd: listen on %q: %w", listen, err)
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("fspqd listening", zap.String("addr", listen), zap.String("data_dir", dataDir))
		serveErr <- grpcServer.Serve(lis)
	}()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
		grpcServer.GracefulStop()
		return nil
	case err := <-serveErr:
		return err
	}
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		logFatal("fspqd: %v", err)
	}
}
