// Package probability derives an occurrence probability from weighted risk
// factors. The formula is fixed and transparent; nothing is learned.
package probability

import (
	"fmt"
	"math"

	"github.com/Alias1177/RiskForecast/models"
)

const weightTolerance = 1e-6

// Explanation is attached to every derivation audit record.
const Explanation = "The probability was derived as a weighted combination of base rate, " +
	"exposure and inverse control strength. The derivation is heuristic, transparent and reproducible."

// DefaultWeights are used when no weights are supplied.
var DefaultWeights = models.Weights{
	BaseRate:        0.4,
	Exposure:        0.4,
	ControlStrength: 0.2,
}

// Derive combines the factors into a probability rounded to four decimals.
// Stronger controls lower the result: the control factor enters as 1 - control_strength.
// A nil weights pointer selects DefaultWeights.
func Derive(factors models.Factors, weights *models.Weights) (models.Derivation, error) {
	inputs := []struct {
		name  string
		value float64
	}{
		{"base_rate", factors.BaseRate},
		{"exposure", factors.Exposure},
		{"control_strength", factors.ControlStrength},
	}
	for _, in := range inputs {
		if math.IsNaN(in.value) || in.value < 0 || in.value > 1 {
			return models.Derivation{}, fmt.Errorf("%w: %s must lie in [0,1], got %v", models.ErrInvalidFactor, in.name, in.value)
		}
	}

	w := DefaultWeights
	if weights != nil {
		w = *weights
	}
	sum := w.BaseRate + w.Exposure + w.ControlStrength
	if math.IsNaN(sum) || math.Abs(sum-1) > weightTolerance {
		return models.Derivation{}, fmt.Errorf("%w: weights must sum to 1, got %v", models.ErrInvalidWeights, sum)
	}

	controlEffect := 1 - factors.ControlStrength
	raw := w.BaseRate*factors.BaseRate + w.Exposure*factors.Exposure + w.ControlStrength*controlEffect
	result := math.Max(0, math.Min(1, raw))

	return models.Derivation{
		ResultProbability: math.Round(result*10000) / 10000,
		NormalizedInputs:  factors,
		AppliedWeights:    w,
		Explanation:       Explanation,
	}, nil
}
