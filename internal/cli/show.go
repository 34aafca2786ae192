package cli

import (
	"github.com/spf13/cobra"

	"github.com/Alias1177/RiskForecast/internal/notify"
	"github.com/Alias1177/RiskForecast/internal/storage"
)

func newShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show every field of a forecast",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := app.Store(cmd.Context())
			if err != nil {
				return err
			}
			f, err := storage.Find(cmd.Context(), store, args[0])
			if err != nil {
				return err
			}
			app.printf("%s\n", notify.Details(f, app.Config.ScoringPolicy))
			return nil
		},
	}
}
