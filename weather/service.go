package weather

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"owapi/datasource"
	"owapi/flatten"
	"owapi/logging"
	"owapi/models"
)

// ObsDays is the number of days AllObs covers: today plus 5 prior days.
const ObsDays = 6

// Service turns One Call responses into flattened tables
type Service struct {
	source datasource.OneCallSource
	now    func() time.Time
	logger *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithClock sets the clock used to pick "today" in AllObs.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// WithLogger sets the service logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		s.logger = l
	}
}

// NewService creates a service reading from source
func NewService(source datasource.OneCallSource, opts ...Option) *Service {
	s := &Service{
		source: source,
		now:    time.Now,
		logger: logging.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Tables holds the three sections of one forecast response.
type Tables struct {
	Current *models.ForecastTable
	Hourly  *models.ForecastTable
	Daily   *models.ForecastTable
}

// Forecast fetches once and flattens all three sections.
func (s *Service) Forecast(ctx context.Context, lat, lon float64) (Tables, error) {
	resp, err := s.source.GetCurrentAndForecast(ctx, lat, lon)
	if err != nil {
		return Tables{}, err
	}

	var out Tables
	if out.Current, err = flatten.Current(resp); err != nil {
		return Tables{}, err
	}
	if out.Hourly, err = flatten.Hourly(resp); err != nil {
		return Tables{}, err
	}
	if out.Daily, err = flatten.Daily(resp); err != nil {
		return Tables{}, err
	}
	return out, nil
}

// CurrentObs returns the current conditions as a single-row table.
func (s *Service) CurrentObs(ctx context.Context, lat, lon float64) (*models.ForecastTable, error) {
	return s.section(ctx, lat, lon, "current", flatten.Current)
}

// HourlyForecast returns one row per forecast hour.
func (s *Service) HourlyForecast(ctx context.Context, lat, lon float64) (*models.ForecastTable, error) {
	return s.section(ctx, lat, lon, "hourly", flatten.Hourly)
}

// DailyForecast returns one row per forecast day.
func (s *Service) DailyForecast(ctx context.Context, lat, lon float64) (*models.ForecastTable, error) {
	return s.section(ctx, lat, lon, "daily", flatten.Daily)
}

func (s *Service) section(ctx context.Context, lat, lon float64, name string, fn func(models.OneCallResponse) (*models.ForecastTable, error)) (*models.ForecastTable, error) {
	resp, err := s.source.GetCurrentAndForecast(ctx, lat, lon)
	if err != nil {
		return nil, err
	}
	table, err := fn(resp)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("flattened section", "section", name, "rows", table.Len(), "columns", len(table.Columns()))
	return table, nil
}

// ObsDate returns the historical hourly observations for date.
func (s *Service) ObsDate(ctx context.Context, lat, lon float64, date time.Time) (*models.ForecastTable, error) {
	resp, err := s.source.GetObsDate(ctx, lat, lon, date)
	if err != nil {
		return nil, err
	}
	return flatten.Hourly(resp)
}

// AllObs fetches today and the 5 prior days, one request per day, and
// concatenates the hourly tables oldest first. The result has one row group
// per day, so a day with no observations is still present as an empty group.
func (s *Service) AllObs(ctx context.Context, lat, lon float64) (*models.ForecastTable, error) {
	today := s.now()
	tables := make([]*models.ForecastTable, 0, ObsDays)

	for back := ObsDays - 1; back >= 0; back-- {
		date := today.AddDate(0, 0, -back)
		label := date.Format(time.DateOnly)
		table, err := s.ObsDate(ctx, lat, lon, date)
		if err != nil {
			return nil, fmt.Errorf("observations for %s: %w", label, err)
		}
		s.logger.Debug("fetched observations", "date", label, "rows", table.Len())
		tables = append(tables, table)
	}

	return models.Concat(tables...), nil
}
