package commands

import (
	"os"

	"github.com/ozzus/cocoplanner/internal/application/service"
	"github.com/ozzus/cocoplanner/internal/infrastructures/metrics"
	"github.com/ozzus/cocoplanner/internal/transport/cli"
	"github.com/spf13/cobra"
)

func newPlanCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "plan",
		Short: "Plan a new trip interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			defer rt.close()
			ctx := cmd.Context()

			directory, err := rt.airportDirectory()
			if err != nil {
				return err
			}

			registry := metrics.NewRegistry()
			flights, err := rt.flightSearcher(registry)
			if err != nil {
				return err
			}
			repo, err := rt.planRepository(ctx)
			if err != nil {
				return err
			}

			progress := cli.NewProgress(os.Stdout)
			itinerary, err := rt.itineraryGenerator(progress.Stage)
			if err != nil {
				return err
			}

			planner := service.NewPlannerService(
				rt.log,
				flights,
				repo,
				itinerary,
				rt.planNotifier(ctx),
				service.NewSearchIDGenerator(repo, rt.cfg.Planner.SearchIDAttempts),
				registry,
				rt.cfg.Amadeus.Currency,
				rt.cfg.Amadeus.MaxOffers,
			)

			prompter := cli.NewPrompter(os.Stdin, os.Stdout)
			wizard := cli.NewWizard(prompter, directory)
			return cli.NewPlanSession(prompter, wizard, planner, progress).Run(ctx)
		},
	}
}
