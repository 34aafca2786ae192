package database

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alias1177/RiskForecast/internal/forecast"
	"github.com/Alias1177/RiskForecast/models"
)

// Runs against a real PostgreSQL when FORECAST_TEST_DSN is set, e.g.
// FORECAST_TEST_DSN="host=localhost port=5432 user=postgres password=postgres dbname=forecasts_test sslmode=disable"
func TestPostgresRoundTrip(t *testing.T) {
	dsn := os.Getenv("FORECAST_TEST_DSN")
	if dsn == "" {
		t.Skip("FORECAST_TEST_DSN not set")
	}

	ctx := context.Background()
	db, err := New(ctx, ConnectionParams{DSN: dsn, ConnectTimeout: 5 * time.Second})
	require.NoError(t, err)
	defer db.Close()

	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 30)
	p := 0.3

	var forecasts []models.Forecast
	for _, author := range []string{"A", "B", ""} {
		f, err := forecast.New(forecast.Params{
			Type:             models.TypeBinary,
			OutcomeClass:     models.OutcomeUnambiguous,
			EventDescription: "Outage",
			EventCriteria:    "Status page",
			HorizonStart:     &start,
			HorizonEnd:       &end,
			Probability:      &p,
			Author:           author,
		})
		require.NoError(t, err)
		forecasts = append(forecasts, f)
	}
	require.NoError(t, forecast.Resolve(&forecasts[0], 1))

	require.NoError(t, db.SaveAll(ctx, forecasts))
	got, err := db.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, forecasts, got)

	require.NoError(t, db.SaveAll(ctx, forecasts[:1]))
	got, err = db.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}
