package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/ozzus/cocoplanner/internal/application/format"
	"github.com/ozzus/cocoplanner/internal/application/ranking"
	"github.com/ozzus/cocoplanner/internal/application/service"
	"github.com/ozzus/cocoplanner/internal/domain/models"
	"github.com/ozzus/cocoplanner/internal/infrastructures/amadeus/dto"
	"github.com/ozzus/cocoplanner/internal/infrastructures/amadeus/mappers"
	"github.com/spf13/cobra"
)

func newRankCmd(rt *runtime) *cobra.Command {
	var (
		cabin  string
		asJSON bool
		remote bool
	)

	cmd := &cobra.Command{
		Use:   "rank <offers.json>",
		Short: "Rank a saved flight-offers response offline",
		Long: `Rank a saved flight-offers API response (the JSON body with a "data" array)
and print the cheapest and fastest options. Use "-" to read from stdin.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			defer rt.close()
			ctx := cmd.Context()

			cabinClass, ok := models.ParseCabinFilter(cabin)
			if !ok {
				return fmt.Errorf("unknown cabin class %q", cabin)
			}
			if remote && rt.cfg.Planner.FlightServiceAddr == "" {
				return errors.New("--remote needs planner.flight_service_addr (FLIGHT_SERVICE_ADDR)")
			}

			offers, err := readOffers(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}

			var selection models.RankedSelection
			if remote {
				client, err := rt.remoteRanker()
				if err != nil {
					return err
				}
				selection, err = client.RankOffers(ctx, offers, cabinClass)
				if err != nil {
					return err
				}
			} else {
				ranker := ranking.NewRanker(ranking.WithTopN(rt.cfg.Ranking.TopN))
				svc := service.NewFlightService(rt.log, nil, nil, ranker, nil, 0)
				selection, err = svc.RankOffers(ctx, offers, cabinClass)
				if err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(selection)
			}
			_, err = fmt.Fprint(out, format.FlightOptions(selection))
			if err == nil && len(selection.Excluded) > 0 {
				_, err = fmt.Fprintf(out, "\n%d offer(s) excluded:\n", len(selection.Excluded))
				for _, ex := range selection.Excluded {
					_, _ = fmt.Fprintf(out, "- #%d %s: %s\n", ex.Index, ex.OfferID, ex.Reason)
				}
			}
			return err
		},
	}

	cmd.Flags().StringVar(&cabin, "cabin", string(models.CabinEconomy), "requested cabin class (economy, premium_economy, business, first); empty ranks without a cabin filter")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the ranked selection as JSON")
	cmd.Flags().BoolVar(&remote, "remote", false, "rank on the flight service at planner.flight_service_addr")
	return cmd
}

func readOffers(stdin io.Reader, path string) ([]models.FlightOffer, error) {
	var r io.Reader = stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}

	var resp dto.FlightOffersResponse
	if err := json.NewDecoder(r).Decode(&resp); err != nil {
		return nil, fmt.Errorf("decode offers: %w", err)
	}
	return mappers.ToOffers(resp.Data), nil
}
