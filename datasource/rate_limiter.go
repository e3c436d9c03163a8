package datasource

import (
	"context"
	"fmt"
	"time"

	"owapi/models"

	"golang.org/x/time/rate"
)

// RateLimitedSource wraps a OneCallSource with rate limiting
type RateLimitedSource struct {
	source  OneCallSource
	limiter *rate.Limiter
	name    string
}

// NewRateLimitedSource creates a new rate limited source
// rps is the maximum requests per second allowed (can be fractional for less than 1 request per second)
// burst is the maximum burst size allowed
func NewRateLimitedSource(source OneCallSource, rps float64, burst int) *RateLimitedSource {
	return &RateLimitedSource{
		source:  source,
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
		name:    fmt.Sprintf("%s [Rate Limited]", source.Name()),
	}
}

// GetCurrentAndForecast waits for the limiter, then forwards to the underlying source
func (r *RateLimitedSource) GetCurrentAndForecast(ctx context.Context, lat, lon float64) (models.OneCallResponse, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return models.OneCallResponse{}, fmt.Errorf("rate limit wait canceled: %w", err)
	}
	return r.source.GetCurrentAndForecast(ctx, lat, lon)
}

// GetObsDate waits for the limiter, then forwards to the underlying source
func (r *RateLimitedSource) GetObsDate(ctx context.Context, lat, lon float64, date time.Time) (models.OneCallResponse, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return models.OneCallResponse{}, fmt.Errorf("rate limit wait canceled: %w", err)
	}
	return r.source.GetObsDate(ctx, lat, lon, date)
}

// Name returns the source name
func (r *RateLimitedSource) Name() string {
	return r.name
}

var _ OneCallSource = (*RateLimitedSource)(nil)
