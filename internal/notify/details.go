package notify

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Alias1177/RiskForecast/internal/scoring"
	"github.com/Alias1177/RiskForecast/models"
)

// Details renders every documented field of f.
func Details(f models.Forecast, policy scoring.Policy) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\nID: %s\n", f.DisplayName(), f.ID)
	fmt.Fprintf(&b, "Type: %s, outcome class: %s, level: %s\n", f.Type, f.OutcomeClass, f.ComparisonLevel)
	fmt.Fprintf(&b, "Event: %s\nCriteria: %s\n", f.EventDescription, f.EventCriteria)

	fmt.Fprintf(&b, "Horizon: %s", f.EvaluationMode)
	if f.HorizonStart != nil {
		fmt.Fprintf(&b, " from %s", f.HorizonStart.Format("2006-01-02"))
	}
	if f.HorizonEnd != nil {
		fmt.Fprintf(&b, " to %s", f.HorizonEnd.Format("2006-01-02"))
	}
	b.WriteString("\n")

	if f.Probability != nil {
		fmt.Fprintf(&b, "Probability: %.4f (%s)\n", *f.Probability, f.ProbabilitySource)
	} else {
		fmt.Fprintf(&b, "Probability: none (%s)\n", f.ProbabilitySource)
	}
	if f.ThresholdDefinition != "" {
		fmt.Fprintf(&b, "Threshold: %s\n", f.ThresholdDefinition)
	}
	if f.ThresholdAssumption != "" {
		fmt.Fprintf(&b, "Threshold assumption: %s\n", f.ThresholdAssumption)
	}
	if f.NormalizationApplied {
		fmt.Fprintf(&b, "Normalized to %s day(s): %s\n", daysText(f.NormalizedWindowDays), f.NormalizationAssumption)
	}
	if f.Author != "" || f.Team != "" {
		fmt.Fprintf(&b, "Author: %s, team: %s\n", orDash(f.Author), orDash(f.Team))
	}

	if f.Outcome != nil {
		fmt.Fprintf(&b, "Outcome: %d", *f.Outcome)
		if scoring.IsScorable(f, policy) {
			fmt.Fprintf(&b, ", Brier score: %.4f", scoring.BrierScore(*f.Probability, *f.Outcome))
		}
	} else {
		b.WriteString("Outcome: pending")
	}
	return b.String()
}

func daysText(days *int) string {
	if days == nil {
		return "?"
	}
	return strconv.Itoa(*days)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
