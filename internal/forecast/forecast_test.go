package forecast

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alias1177/RiskForecast/models"
)

func ptr[T any](v T) *T { return &v }

func fixedParams() Params {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	return Params{
		Type:              models.TypeBinary,
		OutcomeClass:      models.OutcomeUnambiguous,
		EventDescription:  "Ransomware attack on system X",
		EventCriteria:     "Incident ticket opened",
		EvaluationMode:    models.ModeFixed,
		HorizonStart:      ptr(start),
		HorizonEnd:        ptr(start.AddDate(0, 0, 30)),
		ProbabilitySource: models.SourceExpert,
		Probability:       ptr(0.3),
		Author:            "Analyst A",
	}
}

func TestNewFixedForecast(t *testing.T) {
	f, err := New(fixedParams())
	require.NoError(t, err)

	assert.NotEmpty(t, f.ID)
	assert.False(t, f.CreatedAt.IsZero())
	assert.Equal(t, models.TypeBinary, f.Type)
	assert.Equal(t, models.OutcomeUnambiguous, f.OutcomeClass)
	assert.Equal(t, models.ModeFixed, f.EvaluationMode)
	assert.Equal(t, models.LevelDocumented, f.ComparisonLevel)
	require.NotNil(t, f.Probability)
	assert.Equal(t, 0.3, *f.Probability)
	assert.Equal(t, models.DefaultForecastName, f.Name)
	assert.Nil(t, f.Outcome)
}

func TestNewAssignsDistinctIdentities(t *testing.T) {
	a, err := New(fixedParams())
	require.NoError(t, err)
	b, err := New(fixedParams())
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestNewTrimsStrings(t *testing.T) {
	p := fixedParams()
	p.EventDescription = "  outage  "
	p.Name = "   "
	p.Team = "  blue "
	p.Rationale = "   "

	f, err := New(p)
	require.NoError(t, err)
	assert.Equal(t, "outage", f.EventDescription)
	assert.Equal(t, models.DefaultForecastName, f.Name)
	assert.Equal(t, "blue", f.Team)
	assert.Empty(t, f.Rationale)
}

func TestNewValidation(t *testing.T) {
	tests := []struct {
		name   string
		modify func(p *Params)
		want   error
	}{
		{
			name:   "blank description",
			modify: func(p *Params) { p.EventDescription = "   " },
			want:   models.ErrMissingField,
		},
		{
			name:   "blank criteria",
			modify: func(p *Params) { p.EventCriteria = "" },
			want:   models.ErrMissingField,
		},
		{
			name:   "fixed end before start",
			modify: func(p *Params) { p.HorizonEnd = ptr(p.HorizonStart.AddDate(0, 0, -1)) },
			want:   models.ErrInvalidHorizon,
		},
		{
			name:   "fixed without end",
			modify: func(p *Params) { p.HorizonEnd = nil },
			want:   models.ErrInvalidHorizon,
		},
		{
			name: "open without start",
			modify: func(p *Params) {
				p.EvaluationMode = models.ModeOpen
				p.HorizonStart = nil
			},
			want: models.ErrInvalidHorizon,
		},
		{
			name:   "probability above one",
			modify: func(p *Params) { p.Probability = ptr(1.5) },
			want:   models.ErrInvalidProbability,
		},
		{
			name:   "negative probability",
			modify: func(p *Params) { p.Probability = ptr(-0.1) },
			want:   models.ErrInvalidProbability,
		},
		{
			name: "frequency without threshold",
			modify: func(p *Params) {
				p.Type = models.TypeFrequency
				p.OutcomeClass = models.OutcomeCounted
			},
			want: models.ErrMissingThreshold,
		},
		{
			name: "counted outcome with blank threshold",
			modify: func(p *Params) {
				p.OutcomeClass = models.OutcomeCounted
				p.ThresholdDefinition = "   "
			},
			want: models.ErrMissingThreshold,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := fixedParams()
			tt.modify(&p)
			f, err := New(p)
			require.ErrorIs(t, err, tt.want)
			assert.Empty(t, f.ID)
		})
	}
}

func TestNewValidationOrder(t *testing.T) {
	p := fixedParams()
	p.EventDescription = ""
	p.HorizonEnd = nil
	p.Probability = ptr(2.0)

	_, err := New(p)
	assert.ErrorIs(t, err, models.ErrMissingField)
}

func TestNewOpenHorizonDropsEnd(t *testing.T) {
	p := fixedParams()
	p.EvaluationMode = models.ModeOpen

	f, err := New(p)
	require.NoError(t, err)
	assert.Nil(t, f.HorizonEnd)
	assert.NotNil(t, f.HorizonStart)
}

func TestNewUnknownHorizonWithoutProbability(t *testing.T) {
	f, err := New(Params{
		Type:              models.TypeQualitative,
		OutcomeClass:      models.OutcomeUnverifiable,
		EventDescription:  "Qualitative assessment",
		EventCriteria:     "Subjective",
		EvaluationMode:    models.ModeUnknown,
		ProbabilitySource: models.SourceNone,
		Probability:       ptr(0.9),
	})
	require.NoError(t, err)
	assert.Nil(t, f.Probability)
	assert.Nil(t, f.HorizonStart)
	assert.Nil(t, f.HorizonEnd)
}

func TestNewEventHorizonIsUnconstrained(t *testing.T) {
	start := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	f, err := New(Params{
		Type:             models.TypeBinary,
		OutcomeClass:     models.OutcomeUnambiguous,
		EventDescription: "Regulator fine after audit",
		EventCriteria:    "Published decision",
		EvaluationMode:   models.ModeEvent,
		HorizonStart:     ptr(start),
		HorizonEnd:       ptr(start.AddDate(0, -1, 0)),
		Probability:      ptr(0.1),
	})
	require.NoError(t, err)
	require.NotNil(t, f.HorizonEnd)
	assert.True(t, f.HorizonEnd.Before(*f.HorizonStart))
}

func TestNewDefaultsModeAndSource(t *testing.T) {
	p := fixedParams()
	p.EvaluationMode = ""
	p.ProbabilitySource = ""

	f, err := New(p)
	require.NoError(t, err)
	assert.Equal(t, models.ModeFixed, f.EvaluationMode)
	assert.Equal(t, models.SourceExpert, f.ProbabilitySource)
}

func TestNewNormalizedAtCreationIsTransformed(t *testing.T) {
	p := fixedParams()
	p.NormalizationApplied = true
	p.NormalizationAssumption = "constant hazard over a year"
	p.NormalizedWindowDays = ptr(365)

	f, err := New(p)
	require.NoError(t, err)
	assert.Equal(t, models.LevelTransformed, f.ComparisonLevel)
	assert.Equal(t, 365, *f.NormalizedWindowDays)
}

func TestNewDerivedProbability(t *testing.T) {
	derivation := &models.Derivation{ResultProbability: 0.42}

	p := fixedParams()
	p.ProbabilitySource = models.SourceDerived
	p.Probability = nil
	p.Derivation = derivation

	f, err := New(p)
	require.NoError(t, err)
	require.NotNil(t, f.Probability)
	assert.Equal(t, 0.42, *f.Probability)
	require.NotNil(t, f.Derivation)

	p.ProbabilitySource = models.SourceExpert
	p.Probability = ptr(0.5)
	f, err = New(p)
	require.NoError(t, err)
	assert.Nil(t, f.Derivation)
}

func TestResolvePromotesScorableShape(t *testing.T) {
	f, err := New(fixedParams())
	require.NoError(t, err)

	require.NoError(t, Resolve(&f, 1))
	require.NotNil(t, f.Outcome)
	assert.Equal(t, 1, *f.Outcome)
	assert.NotNil(t, f.EvaluatedAt)
	assert.Equal(t, models.LevelScorable, f.ComparisonLevel)

	require.NoError(t, Resolve(&f, 0))
	assert.Equal(t, 0, *f.Outcome)
	assert.Equal(t, models.LevelScorable, f.ComparisonLevel)
}

func TestResolveKeepsLevelForUnscorableShape(t *testing.T) {
	p := fixedParams()
	p.OutcomeClass = models.OutcomeUncertain
	f, err := New(p)
	require.NoError(t, err)

	require.NoError(t, Resolve(&f, 1))
	assert.Equal(t, models.LevelDocumented, f.ComparisonLevel)
}

func TestResolveRejectsInvalidOutcome(t *testing.T) {
	f, err := New(fixedParams())
	require.NoError(t, err)

	err = Resolve(&f, 2)
	require.ErrorIs(t, err, models.ErrInvalidOutcome)
	assert.Nil(t, f.Outcome)
	assert.Nil(t, f.EvaluatedAt)
	assert.Equal(t, models.LevelDocumented, f.ComparisonLevel)
}

func TestDue(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	elapsed, err := New(fixedParams())
	require.NoError(t, err)

	p := fixedParams()
	p.HorizonStart = ptr(now)
	p.HorizonEnd = ptr(now.AddDate(0, 1, 0))
	running, err := New(p)
	require.NoError(t, err)

	resolved, err := New(fixedParams())
	require.NoError(t, err)
	require.NoError(t, Resolve(&resolved, 0))

	p = fixedParams()
	p.EvaluationMode = models.ModeOpen
	open, err := New(p)
	require.NoError(t, err)

	all := []models.Forecast{elapsed, running, resolved, open}

	due := Due(all, now, false)
	require.Len(t, due, 1)
	assert.Equal(t, elapsed.ID, due[0].ID)

	due = Due(all, now, true)
	require.Len(t, due, 2)
	assert.Equal(t, open.ID, due[1].ID)
}
