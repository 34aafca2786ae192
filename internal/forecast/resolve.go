package forecast

import (
	"time"

	"github.com/Alias1177/RiskForecast/models"
)

// Resolve records the observed outcome. A record whose shape allows a Brier score
// is promoted to E3; any other record keeps its level. An invalid outcome leaves f untouched.
func Resolve(f *models.Forecast, outcome int) error {
	if err := f.SetOutcome(outcome); err != nil {
		return err
	}
	f.PromoteIfScorable()
	return nil
}

// Due returns the forecasts still waiting for an outcome at now: fixed horizons that
// have ended and, with includeOpen, every open, event-driven or untimed forecast.
func Due(forecasts []models.Forecast, now time.Time, includeOpen bool) []models.Forecast {
	var due []models.Forecast
	for _, f := range forecasts {
		if f.HasOutcome() {
			continue
		}
		switch f.EvaluationMode {
		case models.ModeFixed:
			if f.HorizonEnd != nil && f.HorizonEnd.Before(now) {
				due = append(due, f)
			}
		default:
			if includeOpen {
				due = append(due, f)
			}
		}
	}
	return due
}
