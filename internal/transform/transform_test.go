package transform

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alias1177/RiskForecast/internal/forecast"
	"github.com/Alias1177/RiskForecast/models"
)

func ptr[T any](v T) *T { return &v }

func newForecast(t *testing.T, typ models.ForecastType, class models.OutcomeClass, threshold string, days int) models.Forecast {
	t.Helper()
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	f, err := forecast.New(forecast.Params{
		Type:                typ,
		OutcomeClass:        class,
		EventDescription:    "Phishing incidents",
		EventCriteria:       "Tickets tagged phishing",
		EvaluationMode:      models.ModeFixed,
		HorizonStart:        ptr(start),
		HorizonEnd:          ptr(start.AddDate(0, 0, days)),
		ProbabilitySource:   models.SourceExpert,
		Probability:         ptr(0.5),
		ThresholdDefinition: threshold,
		Author:              "A",
	})
	require.NoError(t, err)
	return f
}

func TestBinarize(t *testing.T) {
	in := newForecast(t, models.TypeFrequency, models.OutcomeCounted, ">=3", 90)

	out, err := Binarize(in, ">= 3 incidents", "three incidents mark a campaign")
	require.NoError(t, err)

	assert.Equal(t, in.ID, out.ID)
	assert.Equal(t, in.CreatedAt, out.CreatedAt)
	assert.Equal(t, models.TypeBinary, out.Type)
	assert.Equal(t, models.OutcomeCounted, out.OutcomeClass)
	assert.Equal(t, *in.Probability, *out.Probability)
	assert.Equal(t, ">= 3 incidents", out.ThresholdDefinition)
	assert.Equal(t, "three incidents mark a campaign", out.ThresholdAssumption)
	assert.Equal(t, models.LevelTransformed, out.ComparisonLevel)

	// input untouched
	assert.Equal(t, models.TypeFrequency, in.Type)
	assert.Equal(t, models.LevelDocumented, in.ComparisonLevel)
	assert.Equal(t, ">=3", in.ThresholdDefinition)
}

func TestBinarizeFallsBackToRecordThreshold(t *testing.T) {
	in := newForecast(t, models.TypeFrequency, models.OutcomeCounted, ">=3", 90)
	out, err := Binarize(in, "  ", "documented")
	require.NoError(t, err)
	assert.Equal(t, ">=3", out.ThresholdDefinition)
}

func TestBinarizeErrors(t *testing.T) {
	binary := newForecast(t, models.TypeBinary, models.OutcomeUnambiguous, "", 30)
	_, err := Binarize(binary, ">=3", "x")
	assert.ErrorIs(t, err, models.ErrIneligibleTransform)

	freq := newForecast(t, models.TypeFrequency, models.OutcomeCounted, ">=3", 30)
	freq.ThresholdDefinition = ""
	_, err = Binarize(freq, "", "x")
	assert.ErrorIs(t, err, models.ErrMissingThreshold)

	freq.ThresholdDefinition = ">=3"
	_, err = Binarize(freq, "", " ")
	assert.ErrorIs(t, err, models.ErrMissingField)
}

func TestBinarizeNeverRegressesLevel(t *testing.T) {
	in := newForecast(t, models.TypeFrequency, models.OutcomeCounted, ">=3", 90)
	in.ComparisonLevel = models.LevelScorable
	out, err := Binarize(in, "", "documented")
	require.NoError(t, err)
	assert.Equal(t, models.LevelScorable, out.ComparisonLevel)
}

func TestBinarizeAfterResolvePromotesToScorable(t *testing.T) {
	in := newForecast(t, models.TypeFrequency, models.OutcomeCounted, ">=3", 90)
	require.NoError(t, forecast.Resolve(&in, 1))
	require.Equal(t, models.LevelDocumented, in.ComparisonLevel)

	out, err := Binarize(in, "", "three incidents mark a campaign")
	require.NoError(t, err)
	assert.Equal(t, models.TypeBinary, out.Type)
	assert.Equal(t, models.LevelScorable, out.ComparisonLevel)
	assert.Equal(t, models.LevelDocumented, in.ComparisonLevel)
}

func TestBinarizeUnresolvedStaysTransformed(t *testing.T) {
	in := newForecast(t, models.TypeFrequency, models.OutcomeCounted, ">=3", 90)
	out, err := Binarize(in, "", "three incidents mark a campaign")
	require.NoError(t, err)
	assert.Equal(t, models.LevelTransformed, out.ComparisonLevel)
}

func TestNormalizeHorizon(t *testing.T) {
	in := newForecast(t, models.TypeBinary, models.OutcomeUnambiguous, "", 30)

	out, err := NormalizeHorizon(in, 365, "constant hazard rate")
	require.NoError(t, err)

	want := 1 - math.Pow(0.5, 365.0/30.0)
	assert.InDelta(t, want, *out.Probability, 1e-12)
	assert.True(t, out.NormalizationApplied)
	assert.Equal(t, "constant hazard rate", out.NormalizationAssumption)
	assert.Equal(t, 365, *out.NormalizedWindowDays)
	assert.Equal(t, models.LevelTransformed, out.ComparisonLevel)
	assert.Equal(t, in.ID, out.ID)
	assert.Equal(t, *in.HorizonEnd, *out.HorizonEnd)
	assert.Equal(t, models.SourceExpert, out.ProbabilitySource)

	assert.Equal(t, 0.5, *in.Probability)
	assert.False(t, in.NormalizationApplied)
}

func TestNormalizeHorizonShorterWindowLowersProbability(t *testing.T) {
	in := newForecast(t, models.TypeBinary, models.OutcomeUnambiguous, "", 365)
	out, err := NormalizeHorizon(in, 30, "constant hazard rate")
	require.NoError(t, err)
	assert.Less(t, *out.Probability, 0.5)
	assert.GreaterOrEqual(t, *out.Probability, 0.0)
}

func TestNormalizeHorizonErrors(t *testing.T) {
	tests := []struct {
		name   string
		modify func(f *models.Forecast)
		target int
		want   error
	}{
		{"no probability", func(f *models.Forecast) { f.Probability = nil }, 365, models.ErrIneligibleTransform},
		{"no end", func(f *models.Forecast) { f.HorizonEnd = nil }, 365, models.ErrMissingHorizon},
		{"no start", func(f *models.Forecast) { f.HorizonStart = nil }, 365, models.ErrMissingHorizon},
		{"not binary", func(f *models.Forecast) { f.Type = models.TypePossible }, 365, models.ErrIneligibleTransform},
		{"zero length horizon", func(f *models.Forecast) { f.HorizonEnd = ptr(*f.HorizonStart) }, 365, models.ErrInvalidHorizon},
		{"non-positive target", func(f *models.Forecast) {}, 0, models.ErrInvalidHorizon},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newForecast(t, models.TypeBinary, models.OutcomeUnambiguous, "", 30)
			tt.modify(&f)
			_, err := NormalizeHorizon(f, tt.target, "assumption")
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestRescaleBounds(t *testing.T) {
	assert.Equal(t, 0.0, Rescale(0, 30, 365))
	assert.Equal(t, 1.0, Rescale(1, 30, 365))
	assert.InDelta(t, 0.5, Rescale(0.5, 30, 30), 1e-12)
}
