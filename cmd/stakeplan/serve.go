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
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/danielpatrickdp/stakeplan/internal/rpc"
)

// #region serve-cmd

func newServeCmd(a *app) *cobra.Command {
	var (
		addr   string
		dbPath string
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the engine over gRPC until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			store, err := a.openLedger(dbPath)
			if err != nil {
				return err
			}
			var rec rpc.Recorder
			if store != nil {
				defer store.Close()
				rec = store
			}

			lis, err := net.Listen("tcp", addr)
			if err != nil {
				return fmt.Errorf("listen %s: %w", addr, err)
			}
			return a.serve(ctx, lis, rec)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", envOr("STAKEPLAN_ADDR", "localhost:50061"), "gRPC listen address")
	cmd.Flags().StringVar(&dbPath, "db", envOr("STAKEPLAN_DB", ""), "record served runs in this ledger database")
	return cmd
}

// serve runs the gRPC server on lis until ctx is done, then drains in-flight calls.
func (a *app) serve(ctx context.Context, lis net.Listener, rec rpc.Recorder) error {
	gs := grpc.NewServer()
	rpc.RegisterEngineServiceServer(gs, rpc.NewServer(a.eng, rec, a.log))

	hs := health.NewServer()
	hs.SetServingStatus(rpc.ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(gs, hs)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.log.Info("grpc serving", zap.String("addr", lis.Addr().String()))
		return gs.Serve(lis)
	})
	g.Go(func() error {
		<-ctx.Done()
		a.log.Info("shutting down")
		hs.Shutdown()
		gs.GracefulStop()
		return nil
	})
	return g.Wait()
}

// #endregion serve-cmd
