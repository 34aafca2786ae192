package codec

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alias1177/RiskForecast/internal/forecast"
	"github.com/Alias1177/RiskForecast/internal/probability"
	"github.com/Alias1177/RiskForecast/models"
)

func ptr[T any](v T) *T { return &v }

func fullForecast(t *testing.T) models.Forecast {
	t.Helper()
	d, err := probability.Derive(models.Factors{BaseRate: 0.1, Exposure: 0.5, ControlStrength: 0.5}, nil)
	require.NoError(t, err)

	start := time.Date(2025, 3, 1, 8, 30, 0, 0, time.UTC)
	f, err := forecast.New(forecast.Params{
		Type:                    models.TypeFrequency,
		OutcomeClass:            models.OutcomeCounted,
		EventDescription:        "Several phishing incidents",
		EventCriteria:           ">= 3 incidents & confirmed",
		EvaluationMode:          models.ModeFixed,
		HorizonStart:            ptr(start),
		HorizonEnd:              ptr(start.AddDate(0, 3, 0)),
		ProbabilitySource:       models.SourceDerived,
		Derivation:              &d,
		ThresholdDefinition:     ">=3",
		NormalizationApplied:    true,
		NormalizationAssumption: "constant hazard",
		NormalizedWindowDays:    ptr(365),
		Name:                    "Phishing wave",
		Author:                  "Analyst A",
		Team:                    "SOC",
		Rationale:               "Seasonal campaigns",
	})
	require.NoError(t, err)
	require.NoError(t, forecast.Resolve(&f, 1))
	f.ThresholdAssumption = "three incidents mark a campaign"
	return f
}

func TestRoundTrip(t *testing.T) {
	f := fullForecast(t)

	data, err := EncodeAll([]models.Forecast{f})
	require.NoError(t, err)
	assert.Contains(t, string(data), `">=3"`)

	got, err := DecodeAll(data)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, f, got[0])

	again, err := EncodeAll(got)
	require.NoError(t, err)
	assert.JSONEq(t, string(data), string(again))
}

func TestRoundTripSingleDocument(t *testing.T) {
	f := fullForecast(t)
	data, err := Encode(f)
	require.NoError(t, err)
	got, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, f, got)
}

func TestAbsentValuesAreNull(t *testing.T) {
	f, err := forecast.New(forecast.Params{
		Type:              models.TypeQualitative,
		OutcomeClass:      models.OutcomeUnverifiable,
		EventDescription:  "Maturity improves",
		EventCriteria:     "Audit",
		EvaluationMode:    models.ModeUnknown,
		ProbabilitySource: models.SourceNone,
	})
	require.NoError(t, err)

	data, err := Encode(f)
	require.NoError(t, err)
	for _, field := range []string{
		"forecast_horizon_start", "forecast_horizon_end", "probability", "probability_derivation",
		"threshold_definition", "author", "team", "rationale", "outcome", "evaluation_timestamp",
	} {
		assert.Contains(t, string(data), `"`+field+`":null`, field)
	}
}

func TestDecodeLegacyDocument(t *testing.T) {
	legacy := `[
	  {
	    "forecast_id": "abc",
	    "forecast_title": "  Old title ",
	    "author": " Analyst B ",
	    "team": "",
	    "event_description": "Outage",
	    "event_criteria": "Status page",
	    "forecast_timestamp": "2024-05-01T10:00:00.123456",
	    "forecast_horizon_start": "2024-05-01T00:00:00",
	    "forecast_horizon_end": "2024-06-01",
	    "probability": 0.25,
	    "rationale": null,
	    "outcome": "1",
	    "evaluation_timestamp": null
	  },
	  42,
	  {"forecast_id": "def", "event_description": "x", "event_criteria": "y", "outcome": 3, "probability": "0.6",
	   "forecast_horizon_start": "not a date", "evaluation_mode": "SOMETIMES", "comparison_level": "E9"}
	]`

	got, err := DecodeAll([]byte(legacy))
	require.NoError(t, err)
	require.Len(t, got, 2)

	old := got[0]
	assert.Equal(t, "abc", old.ID)
	assert.Equal(t, "Old title", old.Name)
	assert.Equal(t, "Analyst B", old.Author)
	assert.Empty(t, old.Team)
	assert.Equal(t, models.ModeFixed, old.EvaluationMode)
	assert.Equal(t, models.LevelScorable, old.ComparisonLevel, "resolved binary record loads as E3")
	assert.Equal(t, models.TypeBinary, old.Type)
	assert.Equal(t, models.OutcomeUnambiguous, old.OutcomeClass)
	assert.Equal(t, models.SourceExpert, old.ProbabilitySource)
	assert.Equal(t, time.Date(2024, 5, 1, 10, 0, 0, 123456000, time.UTC), old.CreatedAt)
	assert.Equal(t, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), *old.HorizonEnd)
	require.NotNil(t, old.Outcome)
	assert.Equal(t, 1, *old.Outcome)
	assert.Equal(t, 0.25, *old.Probability)

	other := got[1]
	assert.Equal(t, models.DefaultForecastName, other.Name)
	assert.Nil(t, other.Outcome)
	assert.Nil(t, other.HorizonStart)
	assert.Equal(t, 0.6, *other.Probability)
	assert.Equal(t, models.ModeFixed, other.EvaluationMode)
	assert.Equal(t, models.LevelDocumented, other.ComparisonLevel)
}

func TestDecodeOutcomeForms(t *testing.T) {
	tests := []struct {
		raw  string
		want *int
	}{
		{`0`, ptr(0)},
		{`1`, ptr(1)},
		{`"0"`, ptr(0)},
		{`"1"`, ptr(1)},
		{`1.0`, ptr(1)},
		{`true`, ptr(1)},
		{`2`, nil},
		{`"yes"`, nil},
		{`null`, nil},
		{`0.5`, nil},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			f, err := Decode([]byte(`{"forecast_id":"x","outcome":` + tt.raw + `}`))
			require.NoError(t, err)
			assert.Equal(t, tt.want, f.Outcome)
		})
	}
}

func TestDecodeAllNonArray(t *testing.T) {
	got, err := DecodeAll([]byte(`{"forecast_id":"x"}`))
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = DecodeAll([]byte(`[{"forecast_id":`))
	assert.Error(t, err)
}

func TestDecodeRequiresIdentity(t *testing.T) {
	_, err := Decode([]byte(`{"event_description":"x"}`))
	assert.Error(t, err)
}

func TestDecodeProbabilityRange(t *testing.T) {
	tests := []struct {
		raw  string
		want *float64
	}{
		{`0`, ptr(0.0)},
		{`1`, ptr(1.0)},
		{`0.35`, ptr(0.35)},
		{`"0.35"`, ptr(0.35)},
		{`1.5`, nil},
		{`-0.1`, nil},
		{`"NaN"`, nil},
		{`"Inf"`, nil},
		{`"-Inf"`, nil},
		{`"high"`, nil},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			f, err := Decode([]byte(`{"forecast_id":"x","probability":` + tt.raw + `}`))
			require.NoError(t, err)
			assert.Equal(t, tt.want, f.Probability)
		})
	}
}

func TestDecodedInvalidProbabilityStillEncodes(t *testing.T) {
	got, err := DecodeAll([]byte(`[{"forecast_id":"a","probability":"NaN","outcome":1}]`))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Nil(t, got[0].Probability)
	assert.Equal(t, models.LevelDocumented, got[0].ComparisonLevel)

	_, err = EncodeAll(got)
	assert.NoError(t, err)
}

func TestDecodeWindowDays(t *testing.T) {
	tests := []struct {
		raw  string
		want *int
	}{
		{`365`, ptr(365)},
		{`"90"`, ptr(90)},
		{`30.0`, ptr(30)},
		{`30.5`, nil},
		{`0`, nil},
		{`-7`, nil},
		{`1e30`, nil},
		{`null`, nil},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			f, err := Decode([]byte(`{"forecast_id":"x","normalized_window_days":` + tt.raw + `}`))
			require.NoError(t, err)
			assert.Equal(t, tt.want, f.NormalizedWindowDays)
		})
	}
}

func TestDecodeKeepsUnscorableResolvedRecordLevel(t *testing.T) {
	f, err := Decode([]byte(`{"forecast_id":"x","forecast_type":"PT2","outcome_class":"O2",
		"threshold_definition":">=3","probability":0.4,"outcome":1,"comparison_level":"E1"}`))
	require.NoError(t, err)
	assert.Equal(t, models.LevelDocumented, f.ComparisonLevel)
}
