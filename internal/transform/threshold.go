// Package transform holds the comparability transforms. Each returns a new
// record with the same identity; the caller decides whether to store it.
package transform

import (
	"fmt"
	"strings"

	"github.com/Alias1177/RiskForecast/models"
)

// Binarize turns a frequency statement (PT2) into a binary one (PT1) through an
// explicit count threshold. The stated probability is kept: the statement is
// reclassified, the belief is not. An empty threshold falls back to the one
// already on the record.
func Binarize(f models.Forecast, threshold, assumption string) (models.Forecast, error) {
	if f.Type != models.TypeFrequency {
		return models.Forecast{}, fmt.Errorf("%w: threshold binarization needs a %s forecast, got %s",
			models.ErrIneligibleTransform, models.TypeFrequency, f.Type)
	}

	threshold = strings.TrimSpace(threshold)
	if threshold == "" {
		threshold = f.ThresholdDefinition
	}
	if threshold == "" {
		return models.Forecast{}, fmt.Errorf("%w: threshold binarization needs an explicit threshold", models.ErrMissingThreshold)
	}

	assumption = strings.TrimSpace(assumption)
	if assumption == "" {
		return models.Forecast{}, fmt.Errorf("%w: threshold binarization needs a documented assumption", models.ErrMissingField)
	}

	out := f.Clone()
	out.Type = models.TypeBinary
	out.ThresholdDefinition = threshold
	out.ThresholdAssumption = assumption
	out.Advance(models.LevelTransformed)
	out.PromoteIfScorable()
	return out, nil
}
