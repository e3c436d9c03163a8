package datasource

import (
	"context"
	"time"

	"owapi/models"
)

// OneCallSource defines the interface for services that return One Call
// API payloads
type OneCallSource interface {
	// Name returns the source's name
	Name() string

	// GetCurrentAndForecast fetches current conditions with hourly and daily forecasts
	GetCurrentAndForecast(ctx context.Context, lat, lon float64) (models.OneCallResponse, error)

	// GetObsDate fetches historical observations for the given date
	GetObsDate(ctx context.Context, lat, lon float64, date time.Time) (models.OneCallResponse, error)
}
