package cli

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/Alias1177/RiskForecast/internal/probability"
	"github.com/Alias1177/RiskForecast/models"
)

func newDeriveCmd(app *App) *cobra.Command {
	var (
		factors models.Factors
		weights []float64
	)

	cmd := &cobra.Command{
		Use:   "derive",
		Short: "Derive a probability from risk factors without storing anything",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := parseWeights(weights)
			if err != nil {
				return err
			}
			d, err := probability.Derive(factors, w)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(app.Out)
			enc.SetIndent("", "  ")
			return enc.Encode(d)
		},
	}

	cmd.Flags().Float64Var(&factors.BaseRate, "base-rate", 0, "base rate factor in [0,1]")
	cmd.Flags().Float64Var(&factors.Exposure, "exposure", 0, "exposure factor in [0,1]")
	cmd.Flags().Float64Var(&factors.ControlStrength, "control-strength", 0, "control strength factor in [0,1]")
	cmd.Flags().Float64SliceVar(&weights, "weights", nil, "factor weights base_rate,exposure,control_strength")
	return cmd
}
