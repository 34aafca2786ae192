package transform

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/Alias1177/RiskForecast/models"
)

// NormalizationSemantics names the horizon normalization in use. The probability
// is rescaled to the target window under a constant hazard rate; the horizon
// itself is left as stated.
const NormalizationSemantics = "rescale"

// DefaultWindowDays is the usual comparison window.
const DefaultWindowDays = 365

// NormalizeHorizon rescales the probability of a binary forecast with a fixed
// horizon to targetWindowDays:
//
//	p_new = 1 - (1 - p)^(target / horizon_days)
//
// This is a comparability convention, not a risk model. The result must never be
// presented as model-derived risk.
func NormalizeHorizon(f models.Forecast, targetWindowDays int, assumption string) (models.Forecast, error) {
	if f.Probability == nil {
		return models.Forecast{}, fmt.Errorf("%w: horizon normalization needs an explicit probability", models.ErrIneligibleTransform)
	}
	if f.HorizonStart == nil || f.HorizonEnd == nil {
		return models.Forecast{}, fmt.Errorf("%w: horizon normalization needs a fixed start and end", models.ErrMissingHorizon)
	}
	if f.Type != models.TypeBinary {
		return models.Forecast{}, fmt.Errorf("%w: horizon normalization needs a %s forecast, got %s",
			models.ErrIneligibleTransform, models.TypeBinary, f.Type)
	}

	deltaDays := int(f.HorizonEnd.Sub(*f.HorizonStart) / (24 * time.Hour))
	if deltaDays <= 0 {
		return models.Forecast{}, fmt.Errorf("%w: horizon spans %d days", models.ErrInvalidHorizon, deltaDays)
	}
	if targetWindowDays <= 0 {
		return models.Forecast{}, fmt.Errorf("%w: target window must be positive, got %d days", models.ErrInvalidHorizon, targetWindowDays)
	}

	assumption = strings.TrimSpace(assumption)
	if assumption == "" {
		return models.Forecast{}, fmt.Errorf("%w: horizon normalization needs a documented assumption", models.ErrMissingField)
	}

	p := Rescale(*f.Probability, deltaDays, targetWindowDays)

	out := f.Clone()
	out.Probability = &p
	out.NormalizationApplied = true
	out.NormalizationAssumption = assumption
	out.NormalizedWindowDays = &targetWindowDays
	out.Advance(models.LevelTransformed)
	out.PromoteIfScorable()
	return out, nil
}

// Rescale applies the constant-hazard conversion from a horizon of fromDays to toDays.
func Rescale(p float64, fromDays, toDays int) float64 {
	factor := float64(toDays) / float64(fromDays)
	scaled := 1 - math.Pow(1-p, factor)
	return math.Max(0, math.Min(1, scaled))
}
