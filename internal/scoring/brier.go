package scoring

import (
	"strings"

	"github.com/Alias1177/RiskForecast/models"
)

// BrierScore is the squared error between probability p and outcome o.
// 0 is a perfect forecast, 1 the worst possible one.
func BrierScore(p float64, o int) float64 {
	d := p - float64(o)
	return d * d
}

// Score is the Brier score of one forecast.
type Score struct {
	ForecastID string  `json:"forecast_id"`
	Brier      float64 `json:"brier_score"`
}

// Evaluate scores every eligible forecast, keeping input order.
func Evaluate(forecasts []models.Forecast, policy Policy) []Score {
	var scores []Score
	for _, f := range forecasts {
		if !IsScorable(f, policy) {
			continue
		}
		scores = append(scores, Score{ForecastID: f.ID, Brier: BrierScore(*f.Probability, *f.Outcome)})
	}
	return scores
}

// Mean returns the mean Brier score of all eligible forecasts.
// ok is false when nothing is eligible.
func Mean(forecasts []models.Forecast, policy Policy) (mean float64, ok bool) {
	scores := Evaluate(forecasts, policy)
	if len(scores) == 0 {
		return 0, false
	}
	var sum float64
	for _, s := range scores {
		sum += s.Brier
	}
	return sum / float64(len(scores)), true
}

// GroupBy selects the attribute scores are aggregated by.
type GroupBy string

const (
	GroupByAuthor GroupBy = "author"
	GroupByTeam   GroupBy = "team"
)

var groupKeys = map[GroupBy]func(models.Forecast) string{
	GroupByAuthor: func(f models.Forecast) string { return f.Author },
	GroupByTeam:   func(f models.Forecast) string { return f.Team },
}

// Valid reports whether g is a known grouping attribute.
func (g GroupBy) Valid() bool {
	_, ok := groupKeys[g]
	return ok
}

// Aggregate returns the mean Brier score per group. Forecasts that are not
// eligible or have an empty group value are skipped, and groups without any
// eligible forecast are absent from the result.
func Aggregate(forecasts []models.Forecast, policy Policy, by GroupBy) map[string]float64 {
	key, ok := groupKeys[by]
	if !ok {
		return map[string]float64{}
	}

	sums := make(map[string]float64)
	counts := make(map[string]int)
	for _, f := range forecasts {
		if !IsScorable(f, policy) {
			continue
		}
		group := strings.TrimSpace(key(f))
		if group == "" {
			continue
		}
		sums[group] += BrierScore(*f.Probability, *f.Outcome)
		counts[group]++
	}

	means := make(map[string]float64, len(sums))
	for group, sum := range sums {
		means[group] = sum / float64(counts[group])
	}
	return means
}
