package commands

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newAirportsCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "airports <query>",
		Short: "Search airports by city, airport name, country or IATA code",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			defer rt.close()

			directory, err := rt.airportDirectory()
			if err != nil {
				return err
			}

			query := strings.Join(args, " ")
			matches := directory.Search(query)
			if len(matches) == 0 {
				_, err := fmt.Fprintf(cmd.OutOrStdout(), "No matching airports found for %q.\n", query)
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
			fmt.Fprintln(w, "CODE\tCITY\tAIRPORT\tCOUNTRY")
			for _, a := range matches {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", a.Code, a.City, a.Name, a.Country)
			}
			return w.Flush()
		},
	}
}
