package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Alias1177/RiskForecast/internal/forecast"
	"github.com/Alias1177/RiskForecast/internal/notify"
)

func newDueCmd(app *App) *cobra.Command {
	var includeOpen bool

	cmd := &cobra.Command{
		Use:   "due",
		Short: "List forecasts whose horizon has passed without an outcome",
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

			now := app.Now()
			due := forecast.Due(forecasts, now, includeOpen)
			if len(due) == 0 {
				app.printf("No forecasts are waiting for an outcome\n")
				return nil
			}
			for _, f := range due {
				app.printf("%s\n  id: %s\n", notify.Line(f, now), f.ID)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&includeOpen, "open", false, "include open, event-driven and untimed forecasts")
	return cmd
}
