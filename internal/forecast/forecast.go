// Package forecast builds validated forecast records and moves them through
// their lifecycle: creation at E1/E2, outcome resolution and promotion to E3.
package forecast

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Alias1177/RiskForecast/models"
)

// Params is the full input of New. Zero values mean "not supplied".
type Params struct {
	Type         models.ForecastType
	OutcomeClass models.OutcomeClass

	EventDescription string
	EventCriteria    string

	EvaluationMode models.EvaluationMode // defaults to FIXED
	HorizonStart   *time.Time
	HorizonEnd     *time.Time

	ProbabilitySource models.ProbabilitySource // defaults to expert
	Probability       *float64
	Derivation        *models.Derivation

	ThresholdDefinition string

	NormalizationApplied    bool
	NormalizationAssumption string
	NormalizedWindowDays    *int

	Name      string
	Author    string
	Team      string
	Rationale string
}

// New validates p and returns a fresh record with a new identity and creation time.
// On failure no record is produced.
func New(p Params) (models.Forecast, error) {
	if p.EvaluationMode == "" {
		p.EvaluationMode = models.ModeFixed
	}
	if p.ProbabilitySource == "" {
		p.ProbabilitySource = models.SourceExpert
	}
	if !p.Type.Valid() {
		return models.Forecast{}, fmt.Errorf("unknown forecast type %q", p.Type)
	}
	if !p.OutcomeClass.Valid() {
		return models.Forecast{}, fmt.Errorf("unknown outcome class %q", p.OutcomeClass)
	}
	if !p.EvaluationMode.Valid() {
		return models.Forecast{}, fmt.Errorf("unknown evaluation mode %q", p.EvaluationMode)
	}
	if !p.ProbabilitySource.Valid() {
		return models.Forecast{}, fmt.Errorf("unknown probability source %q", p.ProbabilitySource)
	}

	description := strings.TrimSpace(p.EventDescription)
	if description == "" {
		return models.Forecast{}, fmt.Errorf("%w: event_description must not be empty", models.ErrMissingField)
	}
	criteria := strings.TrimSpace(p.EventCriteria)
	if criteria == "" {
		return models.Forecast{}, fmt.Errorf("%w: event_criteria must not be empty", models.ErrMissingField)
	}

	start, end, err := checkHorizon(p.EvaluationMode, utc(p.HorizonStart), utc(p.HorizonEnd))
	if err != nil {
		return models.Forecast{}, err
	}

	probability, derivation, err := checkProbability(p)
	if err != nil {
		return models.Forecast{}, err
	}

	threshold := strings.TrimSpace(p.ThresholdDefinition)
	if (p.Type == models.TypeFrequency || p.OutcomeClass == models.OutcomeCounted) && threshold == "" {
		return models.Forecast{}, fmt.Errorf("%w: %s/%s forecasts need a threshold_definition",
			models.ErrMissingThreshold, p.Type, p.OutcomeClass)
	}

	level := models.LevelDocumented
	if p.NormalizationApplied {
		level = models.LevelTransformed
	}

	name := strings.TrimSpace(p.Name)
	if name == "" {
		name = models.DefaultForecastName
	}

	return models.Forecast{
		ID:                      uuid.NewString(),
		CreatedAt:               time.Now().UTC(),
		Type:                    p.Type,
		OutcomeClass:            p.OutcomeClass,
		EventDescription:        description,
		EventCriteria:           criteria,
		EvaluationMode:          p.EvaluationMode,
		HorizonStart:            start,
		HorizonEnd:              end,
		ProbabilitySource:       p.ProbabilitySource,
		Probability:             probability,
		Derivation:              derivation,
		ThresholdDefinition:     threshold,
		ComparisonLevel:         level,
		NormalizationApplied:    p.NormalizationApplied,
		NormalizationAssumption: strings.TrimSpace(p.NormalizationAssumption),
		NormalizedWindowDays:    copyInt(p.NormalizedWindowDays),
		Name:                    name,
		Author:                  strings.TrimSpace(p.Author),
		Team:                    strings.TrimSpace(p.Team),
		Rationale:               strings.TrimSpace(p.Rationale),
	}, nil
}

func checkHorizon(mode models.EvaluationMode, start, end *time.Time) (*time.Time, *time.Time, error) {
	switch mode {
	case models.ModeFixed:
		if start == nil || end == nil {
			return nil, nil, fmt.Errorf("%w: FIXED mode needs horizon start and end", models.ErrInvalidHorizon)
		}
		if end.Before(*start) {
			return nil, nil, fmt.Errorf("%w: horizon end %s is before start %s",
				models.ErrInvalidHorizon, end.Format(time.RFC3339), start.Format(time.RFC3339))
		}
	case models.ModeOpen:
		if start == nil {
			return nil, nil, fmt.Errorf("%w: OPEN mode needs a horizon start", models.ErrInvalidHorizon)
		}
		end = nil
	}
	// EVENT and UNKNOWN keep whatever timestamps were given.
	return start, end, nil
}

func checkProbability(p Params) (*float64, *models.Derivation, error) {
	if p.ProbabilitySource == models.SourceNone {
		return nil, nil, nil
	}

	var derivation *models.Derivation
	if p.ProbabilitySource == models.SourceDerived && p.Derivation != nil {
		d := *p.Derivation
		derivation = &d
	}

	var probability *float64
	switch {
	case p.Probability != nil:
		v := *p.Probability
		probability = &v
	case derivation != nil:
		v := derivation.ResultProbability
		probability = &v
	}

	if probability != nil && (math.IsNaN(*probability) || *probability < 0 || *probability > 1) {
		return nil, nil, fmt.Errorf("%w: probability must lie in [0,1], got %v", models.ErrInvalidProbability, *probability)
	}
	return probability, derivation, nil
}

func utc(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := t.UTC()
	return &v
}

func copyInt(n *int) *int {
	if n == nil {
		return nil
	}
	v := *n
	return &v
}
