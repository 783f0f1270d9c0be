package commands

import (
	"context"
	"time"

	"github.com/joho/godotenv"
	"github.com/ozzus/cocoplanner/internal/config"
	"github.com/ozzus/cocoplanner/internal/infrastructures/tracing"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// runtime is what every subcommand gets after the root has loaded config.
type runtime struct {
	configPath string
	cfg        *config.Config
	log        *zap.Logger
	shutdown   []func()
}

func (r *runtime) onShutdown(fn func()) {
	r.shutdown = append(r.shutdown, fn)
}

func (r *runtime) close() {
	for i := len(r.shutdown) - 1; i >= 0; i-- {
		r.shutdown[i]()
	}
	r.shutdown = nil
	if r.log != nil {
		_ = r.log.Sync()
	}
}

func NewRootCmd() *cobra.Command {
	rt := &runtime{}

	root := &cobra.Command{
		Use:   "cocoplanner",
		Short: "Plan trips: search and rank flights, then build an itinerary",
		Long: `cocoplanner asks who is traveling and where, finds the cheapest and the
fastest flight offers for the trip and has a group of AI agents turn them
into a day by day itinerary. Plans are stored and can be looked up again by
their search ID.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			_ = godotenv.Load(".env")

			cfg, err := config.LoadByPath(config.ResolvePath(rt.configPath))
			if err != nil {
				return err
			}
			rt.cfg = cfg
			rt.log = setupLogger(cfg.Log.Level)

			tp, err := tracing.InitTracer("cocoplanner", cfg.Jaeger)
			if err != nil {
				rt.log.Warn("failed to init tracer", zap.Error(err))
				return nil
			}
			rt.onShutdown(func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := tp.Shutdown(ctx); err != nil {
					rt.log.Warn("failed to shutdown tracer provider", zap.Error(err))
				}
			})
			return nil
		},
	}

	root.PersistentFlags().StringVar(&rt.configPath, "config", "", "config file (default is $CONFIG_PATH or config/local.yaml)")

	root.AddCommand(
		newPlanCmd(rt),
		newRetrieveCmd(rt),
		newRankCmd(rt),
		newAirportsCmd(rt),
		newServeCmd(rt),
	)
	return root
}
