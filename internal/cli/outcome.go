package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Alias1177/RiskForecast/internal/forecast"
	"github.com/Alias1177/RiskForecast/internal/scoring"
	"github.com/Alias1177/RiskForecast/internal/storage"
	"github.com/Alias1177/RiskForecast/models"
)

func newOutcomeCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "outcome <id> <0|1>",
		Short: "Record the observed outcome of a forecast",
		Long: `Record the observed outcome (1 = occurred, 0 = did not occur).

A binary forecast with a probability is promoted to E3 and becomes scorable.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			outcome, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("%w: %q", models.ErrInvalidOutcome, args[1])
			}

			store, err := app.Store(cmd.Context())
			if err != nil {
				return err
			}
			f, err := storage.Find(cmd.Context(), store, args[0])
			if err != nil {
				return err
			}
			if err := forecast.Resolve(&f, outcome); err != nil {
				return err
			}
			if err := storage.Replace(cmd.Context(), store, f); err != nil {
				return fmt.Errorf("failed to save outcome: %w", err)
			}

			app.printf("Outcome %d recorded for %s, level %s\n", outcome, f.ID, f.ComparisonLevel)
			if scoring.IsScorable(f, app.Config.ScoringPolicy) {
				app.printf("Brier score: %.4f\n", scoring.BrierScore(*f.Probability, *f.Outcome))
			}
			return nil
		},
	}
}
