package commands

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ozzus/cocoplanner/grpcapp"
	"github.com/ozzus/cocoplanner/internal/infrastructures/metrics"
	grpcapi "github.com/ozzus/cocoplanner/internal/transport/grpc"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"google.golang.org/grpc"
)

func newServeCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the flight search service over gRPC with a metrics endpoint",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			defer rt.close()
			log := rt.log

			registry := metrics.NewRegistry()
			flightService := rt.flightService(registry)

			addr := rt.cfg.GRPC.Address()
			log.Info("flight service starting", zap.String("grpc_addr", addr), zap.String("metrics_addr", rt.cfg.Metrics.Addr))

			app := grpcapp.New(log, addr, func(s *grpc.Server) {
				grpcapi.Register(s, log, flightService)
			}, grpcapi.ServiceName)

			mux := http.NewServeMux()
			mux.HandleFunc("/healthz", healthHandler)
			mux.Handle("/metrics", registry.Handler())
			metricsServer := &http.Server{
				Addr:              rt.cfg.Metrics.Addr,
				Handler:           loggingMiddleware(log, mux),
				ReadHeaderTimeout: 5 * time.Second,
			}

			errCh := make(chan error, 2)
			go func() {
				errCh <- app.Run()
			}()
			go func() {
				if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
			}()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			var runErr error
			select {
			case <-ctx.Done():
				log.Info("shutdown signal received")
			case runErr = <-errCh:
				log.Error("server stopped", zap.Error(runErr))
			}

			app.Stop()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := metricsServer.Shutdown(shutdownCtx); err != nil {
				log.Warn("metrics server shutdown error", zap.Error(err))
			}
			return runErr
		},
	}
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func loggingMiddleware(log *zap.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Debug("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("duration", time.Since(start)),
		)
	})
}
