package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Alias1177/RiskForecast/internal/storage"
	"github.com/Alias1177/RiskForecast/internal/transform"
	"github.com/Alias1177/RiskForecast/models"
)

func newBinarizeCmd(app *App) *cobra.Command {
	var threshold, assumption string

	cmd := &cobra.Command{
		Use:   "binarize <id>",
		Short: "Turn a frequency forecast into a binary one through a count threshold",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.applyTransform(cmd, args[0], func(f models.Forecast) (models.Forecast, error) {
				return transform.Binarize(f, threshold, assumption)
			})
		},
	}

	cmd.Flags().StringVar(&threshold, "threshold", "", "count threshold (defaults to the forecast's own)")
	cmd.Flags().StringVar(&assumption, "assumption", "", "documented assumption behind the threshold")
	cmd.MarkFlagRequired("assumption")
	return cmd
}

func newNormalizeCmd(app *App) *cobra.Command {
	var (
		window     int
		assumption string
	)

	cmd := &cobra.Command{
		Use:   "normalize <id>",
		Short: "Rescale a binary forecast's probability to a common window",
		Long: `Rescale the probability of a binary forecast with a fixed horizon to a
common window under a constant hazard rate:

  p_new = 1 - (1 - p)^(window / horizon_days)

This is a comparability convention, not a risk model.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("window") {
				window = app.Config.NormalizationWindowDays
			}
			return app.applyTransform(cmd, args[0], func(f models.Forecast) (models.Forecast, error) {
				return transform.NormalizeHorizon(f, window, assumption)
			})
		},
	}

	cmd.Flags().IntVar(&window, "window", transform.DefaultWindowDays, "target window in days (defaults to NORMALIZATION_WINDOW_DAYS)")
	cmd.Flags().StringVar(&assumption, "assumption", "", "documented assumption behind the normalization")
	cmd.MarkFlagRequired("assumption")
	return cmd
}

// applyTransform loads one forecast, transforms it and stores the result in its place.
func (a *App) applyTransform(cmd *cobra.Command, id string, fn func(models.Forecast) (models.Forecast, error)) error {
	store, err := a.Store(cmd.Context())
	if err != nil {
		return err
	}
	f, err := storage.Find(cmd.Context(), store, id)
	if err != nil {
		return err
	}
	out, err := fn(f)
	if err != nil {
		return err
	}
	if err := storage.Replace(cmd.Context(), store, out); err != nil {
		return fmt.Errorf("failed to save forecast: %w", err)
	}

	a.printf("Forecast %s is now %s at level %s\n", out.ID, out.Type, out.ComparisonLevel)
	if out.Probability != nil {
		a.printf("Probability: %s\n", probabilityText(out))
	}
	return nil
}
