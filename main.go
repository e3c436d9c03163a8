package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"owapi/config"
	"owapi/datasource"
	"owapi/export"
	"owapi/logging"
	"owapi/models"
	"owapi/weather"
)

func main() {
	// Parse command line arguments
	configFile := flag.String("config", "", "Path to JSON configuration file")
	lat := flag.Float64("lat", 0, "Latitude")
	lon := flag.Float64("lon", 0, "Longitude")
	section := flag.String("section", "current", "One of: current, hourly, daily, obs, all")
	dateStr := flag.String("date", "", "Observation date for -section obs (YYYY-MM-DD, default today)")
	rateLimit := flag.Bool("rate-limit", false, "Enable API rate limiting")
	logFormat := flag.String("log-format", "", "Log format: text or json (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if *rateLimit {
		cfg.RateLimit.Enabled = true
	}
	if *logFormat != "" {
		cfg.LogFormat = *logFormat
	}

	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	logger := logging.New(os.Stderr, level, cfg.LogFormat)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, logger, cfg, *section, *lat, *lon, *dateStr); err != nil {
		logger.Error("request failed", "section", *section, "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *slog.Logger, cfg config.Config, section string, lat, lon float64, dateStr string) error {
	client, err := datasource.NewOpenWeatherMapClient(cfg, datasource.WithLogger(logger))
	if err != nil {
		return err
	}

	var source datasource.OneCallSource = client
	if cfg.RateLimit.Enabled {
		source = datasource.NewRateLimitedSource(client, cfg.RateLimit.RPS, cfg.RateLimit.Burst)
		logger.Info("applied rate limiting", "provider", client.Name(), "rps", cfg.RateLimit.RPS, "burst", cfg.RateLimit.Burst)
	}

	svc := weather.NewService(source, weather.WithLogger(logger))

	var table *models.ForecastTable
	switch section {
	case "current":
		table, err = svc.CurrentObs(ctx, lat, lon)
	case "hourly":
		table, err = svc.HourlyForecast(ctx, lat, lon)
	case "daily":
		table, err = svc.DailyForecast(ctx, lat, lon)
	case "obs":
		date := time.Now()
		if dateStr != "" {
			if date, err = time.Parse(time.DateOnly, dateStr); err != nil {
				return fmt.Errorf("invalid -date %q: %w", dateStr, err)
			}
		}
		table, err = svc.ObsDate(ctx, lat, lon, date)
	case "all":
		table, err = svc.AllObs(ctx, lat, lon)
	default:
		return fmt.Errorf("unknown section %q", section)
	}
	if err != nil {
		return err
	}

	logger.Info("fetched weather", "section", section, "lat", lat, "lon", lon, "rows", table.Len())
	return export.WriteCSV(os.Stdout, table)
}
