package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"owapi/datasource"
	"owapi/logging"
	"owapi/models"
	"owapi/weather"
)

// MockOneCallSource simulates latency and counts calls
type MockOneCallSource struct {
	callCount int
	mutex     sync.Mutex
	latency   time.Duration
	logger    *slog.Logger
}

func NewMockOneCallSource(latency time.Duration, logger *slog.Logger) *MockOneCallSource {
	return &MockOneCallSource{latency: latency, logger: logger}
}

func (m *MockOneCallSource) Name() string {
	return "MockProvider"
}

func (m *MockOneCallSource) GetCurrentAndForecast(ctx context.Context, lat, lon float64) (models.OneCallResponse, error) {
	if err := m.record(ctx, "forecast"); err != nil {
		return models.OneCallResponse{}, err
	}
	return models.OneCallResponse{
		Lat:     lat,
		Lon:     lon,
		Current: hour(time.Now()),
		Hourly:  []map[string]any{hour(time.Now())},
		Daily:   []map[string]any{hour(time.Now())},
	}, nil
}

func (m *MockOneCallSource) GetObsDate(ctx context.Context, lat, lon float64, date time.Time) (models.OneCallResponse, error) {
	if err := m.record(ctx, "obs "+models.DateOf(date).String()); err != nil {
		return models.OneCallResponse{}, err
	}

	day := models.DateOf(date).Time()
	hourly := make([]map[string]any, 0, 24)
	for h := 0; h < 24; h++ {
		hourly = append(hourly, hour(day.Add(time.Duration(h)*time.Hour)))
	}
	return models.OneCallResponse{Lat: lat, Lon: lon, Hourly: hourly}, nil
}

func (m *MockOneCallSource) GetCallCount() int {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return m.callCount
}

func (m *MockOneCallSource) record(ctx context.Context, what string) error {
	m.mutex.Lock()
	m.callCount++
	n := m.callCount
	m.mutex.Unlock()

	m.logger.Info("processing request", "n", n, "what", what)

	// Simulate work/latency
	select {
	case <-time.After(m.latency):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func hour(t time.Time) map[string]any {
	return map[string]any{
		"dt":       float64(t.Unix()),
		"temp":     22.5,
		"humidity": 60.0,
		"weather": []any{
			map[string]any{"id": 800.0, "main": "Clear", "description": "Mocked weather data", "icon": "01d"},
		},
	}
}

func main() {
	// Parse command-line flags
	requestsPerSecond := flag.Float64("rps", 1.0, "Rate limit in requests per second")
	burstSize := flag.Int("burst", 3, "Maximum burst size")
	flag.Parse()

	logger := logging.New(os.Stdout, slog.LevelInfo, "text")

	// Create context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Create a mock source with 200ms response time
	mockSource := NewMockOneCallSource(200*time.Millisecond, logger)

	// Wrap with rate limiter
	limited := datasource.NewRateLimitedSource(mockSource, *requestsPerSecond, *burstSize)
	svc := weather.NewService(limited, weather.WithLogger(logger))

	fmt.Printf("Testing rate limiter with:\n")
	fmt.Printf("- Rate limit: %.2f requests/second\n", *requestsPerSecond)
	fmt.Printf("- Burst size: %d\n", *burstSize)
	fmt.Printf("- Requests: %d (one per observation day)\n", weather.ObsDays)
	fmt.Println("Starting test...")

	startTime := time.Now()

	table, err := svc.AllObs(ctx, 51.5085, -0.1257)
	if err != nil {
		logger.Error("AllObs failed", "err", err)
		os.Exit(1)
	}

	totalTime := time.Since(startTime)
	actualRPS := float64(mockSource.GetCallCount()) / totalTime.Seconds()

	fmt.Println("\nTest completed!")
	fmt.Printf("Total time: %.2f seconds\n", totalTime.Seconds())
	fmt.Printf("Actual requests per second: %.2f\n", actualRPS)
	fmt.Printf("Total requests processed: %d\n", mockSource.GetCallCount())
	fmt.Printf("Rows returned: %d, columns: %d\n", table.Len(), len(table.Columns()))

	expectedMinTime := float64(weather.ObsDays-*burstSize) / *requestsPerSecond
	if expectedMinTime < 0 {
		expectedMinTime = 0
	}
	fmt.Printf("Expected minimum time (theoretical): %.2f seconds\n", expectedMinTime)

	if actualRPS > *requestsPerSecond*1.5 && weather.ObsDays > *burstSize {
		fmt.Println("\nWARNING: Actual RPS significantly higher than configured rate limit!")
	} else {
		fmt.Println("\nRate limiting appears to be working correctly.")
	}
}
