package models

import (
	"fmt"
	"time"
)

// ForecastType is the structural type of a forecast statement.
type ForecastType string

const (
	TypeBinary      ForecastType = "PT1" // event occurs / does not occur
	TypeFrequency   ForecastType = "PT2" // count of incidents
	TypePossible    ForecastType = "PT3" // ambiguous / possible
	TypeQualitative ForecastType = "PT4" // trend or maturity assessment
)

// OutcomeClass describes how reliably the outcome can be observed.
type OutcomeClass string

const (
	OutcomeUnambiguous  OutcomeClass = "O1"
	OutcomeCounted      OutcomeClass = "O2" // incidents counted against a threshold
	OutcomeUncertain    OutcomeClass = "O3"
	OutcomeUnverifiable OutcomeClass = "O4"
)

// EvaluationMode governs which horizon timestamps a forecast carries.
type EvaluationMode string

const (
	ModeFixed   EvaluationMode = "FIXED"   // start and end
	ModeOpen    EvaluationMode = "OPEN"    // start known, end open
	ModeEvent   EvaluationMode = "EVENT"   // resolved by a trigger
	ModeUnknown EvaluationMode = "UNKNOWN" // no time reference
)

// ProbabilitySource tags where a stated probability came from.
type ProbabilitySource string

const (
	SourceExpert  ProbabilitySource = "expert"
	SourceData    ProbabilitySource = "data"
	SourceMixed   ProbabilitySource = "mixed"
	SourceDerived ProbabilitySource = "derived"
	SourceNone    ProbabilitySource = "none"
)

// ComparisonLevel is the maturity of a forecast. It only ever advances.
type ComparisonLevel string

const (
	LevelDocumented  ComparisonLevel = "E1" // structurally documented
	LevelTransformed ComparisonLevel = "E2" // explicit comparability transform applied
	LevelScorable    ComparisonLevel = "E3" // outcome observed, quantitatively scorable
)

// DefaultForecastName is used when a record carries no name.
const DefaultForecastName = "Unnamed forecast"

var (
	forecastTypes   = []ForecastType{TypeBinary, TypeFrequency, TypePossible, TypeQualitative}
	outcomeClasses  = []OutcomeClass{OutcomeUnambiguous, OutcomeCounted, OutcomeUncertain, OutcomeUnverifiable}
	evaluationModes = []EvaluationMode{ModeFixed, ModeOpen, ModeEvent, ModeUnknown}
	sources         = []ProbabilitySource{SourceExpert, SourceData, SourceMixed, SourceDerived, SourceNone}
)

func (t ForecastType) Valid() bool {
	for _, v := range forecastTypes {
		if v == t {
			return true
		}
	}
	return false
}

func (c OutcomeClass) Valid() bool {
	for _, v := range outcomeClasses {
		if v == c {
			return true
		}
	}
	return false
}

func (m EvaluationMode) Valid() bool {
	for _, v := range evaluationModes {
		if v == m {
			return true
		}
	}
	return false
}

func (s ProbabilitySource) Valid() bool {
	for _, v := range sources {
		if v == s {
			return true
		}
	}
	return false
}

func (l ComparisonLevel) rank() int {
	switch l {
	case LevelTransformed:
		return 2
	case LevelScorable:
		return 3
	default:
		return 1
	}
}

func (l ComparisonLevel) Valid() bool {
	return l == LevelDocumented || l == LevelTransformed || l == LevelScorable
}

// AtLeast reports whether l is the same as or more mature than other.
func (l ComparisonLevel) AtLeast(other ComparisonLevel) bool {
	return l.rank() >= other.rank()
}

// ParseForecastType parses a PT code.
func ParseForecastType(s string) (ForecastType, error) {
	t := ForecastType(s)
	if !t.Valid() {
		return "", fmt.Errorf("unknown forecast type %q", s)
	}
	return t, nil
}

// ParseOutcomeClass parses an O code.
func ParseOutcomeClass(s string) (OutcomeClass, error) {
	c := OutcomeClass(s)
	if !c.Valid() {
		return "", fmt.Errorf("unknown outcome class %q", s)
	}
	return c, nil
}

// ParseEvaluationMode parses an evaluation mode name.
func ParseEvaluationMode(s string) (EvaluationMode, error) {
	m := EvaluationMode(s)
	if !m.Valid() {
		return "", fmt.Errorf("unknown evaluation mode %q", s)
	}
	return m, nil
}

// ParseProbabilitySource parses a probability source tag.
func ParseProbabilitySource(s string) (ProbabilitySource, error) {
	src := ProbabilitySource(s)
	if !src.Valid() {
		return "", fmt.Errorf("unknown probability source %q", s)
	}
	return src, nil
}

// Factors are the risk factors a derived probability is built from.
type Factors struct {
	BaseRate        float64 `json:"base_rate"`
	Exposure        float64 `json:"exposure"`
	ControlStrength float64 `json:"control_strength"`
}

// Weights are the per-factor weights of a derivation. They must sum to 1.
type Weights struct {
	BaseRate        float64 `json:"base_rate"`
	Exposure        float64 `json:"exposure"`
	ControlStrength float64 `json:"control_strength"`
}

// Derivation is the audit record of a derived probability.
type Derivation struct {
	ResultProbability float64 `json:"result_probability"`
	NormalizedInputs  Factors `json:"normalized_inputs"`
	AppliedWeights    Weights `json:"applied_weights"`
	Explanation       string  `json:"explanation"`
}

// Forecast is a single recorded risk forecast. Empty strings and nil pointers mean "absent".
type Forecast struct {
	ID        string    `json:"forecast_id"`
	CreatedAt time.Time `json:"forecast_timestamp"`

	Type         ForecastType `json:"forecast_type"`
	OutcomeClass OutcomeClass `json:"outcome_class"`

	EventDescription string `json:"event_description"`
	EventCriteria    string `json:"event_criteria"`

	EvaluationMode EvaluationMode `json:"evaluation_mode"`
	HorizonStart   *time.Time     `json:"forecast_horizon_start"`
	HorizonEnd     *time.Time     `json:"forecast_horizon_end"`

	ProbabilitySource ProbabilitySource `json:"probability_source"`
	Probability       *float64          `json:"probability"`
	Derivation        *Derivation       `json:"probability_derivation"`

	ThresholdDefinition string `json:"threshold_definition"`
	ThresholdAssumption string `json:"threshold_assumption"`

	ComparisonLevel         ComparisonLevel `json:"comparison_level"`
	NormalizationApplied    bool            `json:"normalization_applied"`
	NormalizationAssumption string          `json:"normalization_assumption"`
	NormalizedWindowDays    *int            `json:"normalized_window_days"`

	// Metadata, never used for scoring.
	Name      string `json:"forecast_name"`
	Author    string `json:"author"`
	Team      string `json:"team"`
	Rationale string `json:"rationale"`

	Outcome     *int       `json:"outcome"`
	EvaluatedAt *time.Time `json:"evaluation_timestamp"`
}

// SetOutcome records the observed outcome and stamps the evaluation time.
// Calling it again overwrites the previous outcome.
func (f *Forecast) SetOutcome(outcome int) error {
	if outcome != 0 && outcome != 1 {
		return fmt.Errorf("%w: outcome must be 0 or 1, got %d", ErrInvalidOutcome, outcome)
	}
	now := time.Now().UTC()
	f.Outcome = &outcome
	f.EvaluatedAt = &now
	return nil
}

// Advance moves the comparison level forward to level. A lower level is ignored.
func (f *Forecast) Advance(level ComparisonLevel) {
	if !f.ComparisonLevel.AtLeast(level) {
		f.ComparisonLevel = level
	}
}

// PromoteIfScorable advances the record to E3 once it carries an outcome and
// has a scorable shape. It reports whether the record is now E3.
func (f *Forecast) PromoteIfScorable() bool {
	if f.HasOutcome() && f.HasScorableShape() {
		f.Advance(LevelScorable)
	}
	return f.ComparisonLevel == LevelScorable
}

// HasScorableShape reports whether the record is structurally fit for a Brier score:
// an explicit probability on a binary statement whose outcome is unambiguous,
// or counted against a stated threshold.
func (f Forecast) HasScorableShape() bool {
	if f.Probability == nil || f.Type != TypeBinary {
		return false
	}
	switch f.OutcomeClass {
	case OutcomeUnambiguous:
		return true
	case OutcomeCounted:
		return f.ThresholdDefinition != ""
	default:
		return false
	}
}

// HasOutcome reports whether a valid outcome has been recorded.
func (f Forecast) HasOutcome() bool {
	return f.Outcome != nil && (*f.Outcome == 0 || *f.Outcome == 1)
}

// Clone returns a deep copy so that transforms never alias the input record.
func (f Forecast) Clone() Forecast {
	c := f
	c.HorizonStart = cloneTime(f.HorizonStart)
	c.HorizonEnd = cloneTime(f.HorizonEnd)
	c.EvaluatedAt = cloneTime(f.EvaluatedAt)
	if f.Probability != nil {
		p := *f.Probability
		c.Probability = &p
	}
	if f.Derivation != nil {
		d := *f.Derivation
		c.Derivation = &d
	}
	if f.NormalizedWindowDays != nil {
		n := *f.NormalizedWindowDays
		c.NormalizedWindowDays = &n
	}
	if f.Outcome != nil {
		o := *f.Outcome
		c.Outcome = &o
	}
	return c
}

// DisplayName returns the name or the id when the name is the placeholder.
func (f Forecast) DisplayName() string {
	if f.Name == "" || f.Name == DefaultForecastName {
		return f.ID
	}
	return f.Name
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
