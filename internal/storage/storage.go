package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/Alias1177/RiskForecast/internal/config"
	"github.com/Alias1177/RiskForecast/internal/database"
	"github.com/Alias1177/RiskForecast/models"
)

// ErrNotFound is returned when no stored forecast has the requested identity.
var ErrNotFound = errors.New("forecast not found")

// Store is a forecast store that holds resources until closed.
type Store interface {
	models.ForecastStore
	io.Closer
}

// Open returns the backend selected by cfg.Store.
func Open(ctx context.Context, cfg *config.Config) (Store, error) {
	switch cfg.Store {
	case config.StoreFile:
		return NewFileStore(cfg.ForecastFile), nil
	case config.StoreBolt:
		return NewBoltStore(cfg.BoltPath)
	case config.StorePostgres:
		return database.New(ctx, database.ConnectionParams{
			DSN:            cfg.DSN(),
			ConnectTimeout: time.Duration(cfg.DBConnectTimeout) * time.Second,
		})
	}
	return nil, fmt.Errorf("unknown store %q", cfg.Store)
}

// Append loads the collection, adds f at the end and saves everything.
func Append(ctx context.Context, store models.ForecastStore, f models.Forecast) error {
	forecasts, err := store.Load(ctx)
	if err != nil {
		return err
	}
	return store.SaveAll(ctx, append(forecasts, f))
}

// Replace swaps the stored forecast that has f's identity for f.
func Replace(ctx context.Context, store models.ForecastStore, f models.Forecast) error {
	forecasts, err := store.Load(ctx)
	if err != nil {
		return err
	}
	i := Index(forecasts, f.ID)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, f.ID)
	}
	forecasts[i] = f
	return store.SaveAll(ctx, forecasts)
}

// Find returns the forecast with the given identity.
func Find(ctx context.Context, store models.ForecastStore, id string) (models.Forecast, error) {
	forecasts, err := store.Load(ctx)
	if err != nil {
		return models.Forecast{}, err
	}
	i := Index(forecasts, id)
	if i < 0 {
		return models.Forecast{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return forecasts[i], nil
}

// Index returns the position of the forecast with the given identity, or -1.
func Index(forecasts []models.Forecast, id string) int {
	for i, f := range forecasts {
		if f.ID == id {
			return i
		}
	}
	return -1
}
