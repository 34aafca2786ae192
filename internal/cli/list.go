package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Alias1177/RiskForecast/internal/storage/codec"
	"github.com/Alias1177/RiskForecast/models"
)

func newListCmd(app *App) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored forecasts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := app.Store(cmd.Context())
			if err != nil {
				return err
			}
			forecasts, err := store.Load(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to load forecasts: %w", err)
			}

			if asJSON {
				data, err := codec.EncodeAll(forecasts)
				if err != nil {
					return err
				}
				_, err = app.Out.Write(data)
				return err
			}

			if len(forecasts) == 0 {
				app.printf("No forecasts found\n")
				return nil
			}
			tw := tabwriter.NewWriter(app.Out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tTYPE\tCLASS\tLEVEL\tPROBABILITY\tOUTCOME")
			for _, f := range forecasts {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
					f.ID, f.Name, f.Type, f.OutcomeClass, f.ComparisonLevel, probabilityText(f), outcomeText(f))
			}
			return tw.Flush()
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the stored documents as JSON")
	return cmd
}

func probabilityText(f models.Forecast) string {
	if f.Probability == nil {
		return "-"
	}
	return fmt.Sprintf("%.4f", *f.Probability)
}

func outcomeText(f models.Forecast) string {
	if f.Outcome == nil {
		return "pending"
	}
	return fmt.Sprintf("%d", *f.Outcome)
}
