package models

import "context"

// ForecastStore persists the whole forecast collection. Load returns records in
// creation order; SaveAll overwrites everything previously stored.
type ForecastStore interface {
	Load(ctx context.Context) ([]Forecast, error)
	SaveAll(ctx context.Context, forecasts []Forecast) error
}
