// Package classify derives a forecast's structural type and outcome class
// from the two qualifying questions asked when a forecast is recorded.
package classify

import (
	"strings"

	"github.com/Alias1177/RiskForecast/models"
)

// StatementType answers "what kind of statement is this?".
type StatementType int

const (
	StatementOccurs      StatementType = iota // event occurs / does not occur
	StatementFrequency                        // event occurs several times
	StatementPossible                         // event possibly occurs / unclear
	StatementQualitative                      // trend or maturity assessment
)

// Observability answers "how will we know whether it happened?".
type Observability int

const (
	ObservableUnambiguous  Observability = iota // yes / no
	ObservableByCount                           // by counting incidents
	ObservableUncertain                         // with room for interpretation
	ObservableUnverifiable                      // not reliably verifiable
)

var statementTypes = []struct {
	key   string
	label string
	typ   models.ForecastType
}{
	{"binary", "Event occurs / does not occur", models.TypeBinary},
	{"frequency", "Event occurs several times (frequency)", models.TypeFrequency},
	{"possible", "Event possibly occurs / unclear", models.TypePossible},
	{"qualitative", "Qualitative assessment (trend, maturity)", models.TypeQualitative},
}

var observabilities = []struct {
	key   string
	label string
	class models.OutcomeClass
}{
	{"unambiguous", "Unambiguously determinable (yes / no)", models.OutcomeUnambiguous},
	{"count", "By counting incidents", models.OutcomeCounted},
	{"uncertain", "With uncertainty / room for interpretation", models.OutcomeUncertain},
	{"unverifiable", "Not reliably verifiable", models.OutcomeUnverifiable},
}

// Classify maps the two answers to a forecast type and outcome class.
// Any combination is legal here; cross-field rules are checked later.
func Classify(statement StatementType, observability Observability) (models.ForecastType, models.OutcomeClass) {
	return statement.ForecastType(), observability.OutcomeClass()
}

// ForecastType returns the PT code. Out-of-range values map to PT4.
func (s StatementType) ForecastType() models.ForecastType {
	if s < 0 || int(s) >= len(statementTypes) {
		return models.TypeQualitative
	}
	return statementTypes[s].typ
}

func (s StatementType) String() string {
	if s < 0 || int(s) >= len(statementTypes) {
		return statementTypes[StatementQualitative].label
	}
	return statementTypes[s].label
}

// OutcomeClass returns the O code. Out-of-range values map to O4.
func (o Observability) OutcomeClass() models.OutcomeClass {
	if o < 0 || int(o) >= len(observabilities) {
		return models.OutcomeUnverifiable
	}
	return observabilities[o].class
}

func (o Observability) String() string {
	if o < 0 || int(o) >= len(observabilities) {
		return observabilities[ObservableUnverifiable].label
	}
	return observabilities[o].label
}

// ParseStatementType accepts a short key or the full label, case-insensitively.
// Anything unrecognised is a qualitative statement.
func ParseStatementType(s string) StatementType {
	s = strings.TrimSpace(s)
	for i, st := range statementTypes {
		if strings.EqualFold(s, st.key) || strings.EqualFold(s, st.label) {
			return StatementType(i)
		}
	}
	return StatementQualitative
}

// ParseObservability accepts a short key or the full label, case-insensitively.
// Anything unrecognised is unverifiable.
func ParseObservability(s string) Observability {
	s = strings.TrimSpace(s)
	for i, o := range observabilities {
		if strings.EqualFold(s, o.key) || strings.EqualFold(s, o.label) {
			return Observability(i)
		}
	}
	return ObservableUnverifiable
}

// StatementKeys lists the accepted short keys in category order.
func StatementKeys() []string {
	keys := make([]string, len(statementTypes))
	for i, st := range statementTypes {
		keys[i] = st.key
	}
	return keys
}

// ObservabilityKeys lists the accepted short keys in category order.
func ObservabilityKeys() []string {
	keys := make([]string, len(observabilities))
	for i, o := range observabilities {
		keys[i] = o.key
	}
	return keys
}
