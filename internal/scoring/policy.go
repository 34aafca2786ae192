// Package scoring decides which forecasts may be scored and computes Brier
// scores, overall and per author or team.
package scoring

import (
	"fmt"

	"github.com/Alias1177/RiskForecast/models"
)

// Policy selects the eligibility rule.
type Policy string

const (
	// PolicyLevelGated requires E3 and accepts O1, or O2 with a threshold. Default.
	PolicyLevelGated Policy = "level-gated"
	// PolicyOutcomeClassGated accepts O1 only and ignores the comparison level.
	PolicyOutcomeClassGated Policy = "class-gated"
)

// DefaultPolicy is the eligibility rule used unless configured otherwise.
const DefaultPolicy = PolicyLevelGated

// ParsePolicy parses a policy name. The empty string selects DefaultPolicy.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(s) {
	case "":
		return DefaultPolicy, nil
	case PolicyLevelGated, PolicyOutcomeClassGated:
		return Policy(s), nil
	}
	return "", fmt.Errorf("unknown scoring policy %q", s)
}

// IsScorable reports whether a Brier score may be computed for f under policy.
// A record is never scorable without a probability, without an outcome, or
// unless it is a binary (PT1) statement.
func IsScorable(f models.Forecast, policy Policy) bool {
	if f.Probability == nil || f.Type != models.TypeBinary || !f.HasOutcome() {
		return false
	}
	if f.OutcomeClass == models.OutcomeCounted && f.ThresholdDefinition == "" {
		return false
	}

	switch policy {
	case PolicyOutcomeClassGated:
		return f.OutcomeClass == models.OutcomeUnambiguous
	default:
		return f.ComparisonLevel == models.LevelScorable && f.HasScorableShape()
	}
}
