package commands

import (
	"os"

	"github.com/ozzus/cocoplanner/internal/application/service"
	"github.com/ozzus/cocoplanner/internal/transport/cli"
	"github.com/spf13/cobra"
)

func newRetrieveCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "retrieve [search-id]",
		Short: "Show a stored travel plan",
		Long:  "Show a stored travel plan. Without a search ID the command asks for IDs until you quit.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			defer rt.close()
			ctx := cmd.Context()

			repo, err := rt.planRepository(ctx)
			if err != nil {
				return err
			}
			planner := service.NewPlannerService(rt.log, nil, repo, nil, nil, nil, nil, rt.cfg.Amadeus.Currency, rt.cfg.Amadeus.MaxOffers)

			session := cli.NewRetrieveSession(cli.NewPrompter(os.Stdin, os.Stdout), planner)
			if len(args) == 1 {
				return session.Show(ctx, args[0])
			}
			return session.Run(ctx)
		},
	}
}
