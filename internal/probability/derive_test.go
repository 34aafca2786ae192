package probability

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alias1177/RiskForecast/models"
)

func TestDerive(t *testing.T) {
	tests := []struct {
		name    string
		factors models.Factors
		weights *models.Weights
		want    float64
	}{
		{
			name:    "default weights",
			factors: models.Factors{BaseRate: 0.1, Exposure: 0.5, ControlStrength: 0.5},
			want:    0.34, // 0.04 + 0.2 + 0.1
		},
		{
			name:    "perfect controls",
			factors: models.Factors{BaseRate: 0, Exposure: 0, ControlStrength: 1},
			want:    0,
		},
		{
			name:    "no controls at maximum exposure",
			factors: models.Factors{BaseRate: 1, Exposure: 1, ControlStrength: 0},
			want:    1,
		},
		{
			name:    "custom weights",
			factors: models.Factors{BaseRate: 0.3, Exposure: 0.6, ControlStrength: 0.2},
			weights: &models.Weights{BaseRate: 0.5, Exposure: 0.25, ControlStrength: 0.25},
			want:    0.5, // 0.15 + 0.15 + 0.2
		},
		{
			name:    "rounded to four decimals",
			factors: models.Factors{BaseRate: 0.12345, Exposure: 0.54321, ControlStrength: 0.11111},
			want:    math.Round((0.4*0.12345+0.4*0.54321+0.2*(1-0.11111))*10000) / 10000,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := Derive(tt.factors, tt.weights)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, d.ResultProbability, 1e-9)
			assert.Equal(t, tt.factors, d.NormalizedInputs)
			assert.Equal(t, Explanation, d.Explanation)
			if tt.weights == nil {
				assert.Equal(t, DefaultWeights, d.AppliedWeights)
			} else {
				assert.Equal(t, *tt.weights, d.AppliedWeights)
			}
		})
	}
}

func TestDeriveRejectsInvalidFactors(t *testing.T) {
	for _, f := range []models.Factors{
		{BaseRate: -0.1, Exposure: 0.5, ControlStrength: 0.5},
		{BaseRate: 0.1, Exposure: 1.01, ControlStrength: 0.5},
		{BaseRate: 0.1, Exposure: 0.5, ControlStrength: math.NaN()},
	} {
		_, err := Derive(f, nil)
		assert.ErrorIs(t, err, models.ErrInvalidFactor)
	}
}

func TestDeriveRejectsWeightsNotSummingToOne(t *testing.T) {
	_, err := Derive(models.Factors{BaseRate: 0.1, Exposure: 0.1, ControlStrength: 0.1},
		&models.Weights{BaseRate: 0.5, Exposure: 0.5, ControlStrength: 0.5})
	assert.ErrorIs(t, err, models.ErrInvalidWeights)

	_, err = Derive(models.Factors{BaseRate: 0.1, Exposure: 0.1, ControlStrength: 0.1},
		&models.Weights{BaseRate: 0.5, Exposure: 0.3, ControlStrength: 0.2 + 5e-7})
	assert.NoError(t, err)
}

func TestDeriveIsDeterministic(t *testing.T) {
	f := models.Factors{BaseRate: 0.2, Exposure: 0.7, ControlStrength: 0.4}
	a, err := Derive(f, nil)
	require.NoError(t, err)
	b, err := Derive(f, nil)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}
