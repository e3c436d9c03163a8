package datasource

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"owapi/config"
	"owapi/logging"
	"owapi/models"
)

const (
	oneCallEndpoint     = "/onecall"
	timeMachineEndpoint = "/onecall/timemachine"
)

// Option configures an OpenWeatherMapClient.
type Option func(*clientOptions)

type clientOptions struct {
	httpClient *http.Client
	logger     *slog.Logger
}

// WithHTTPClient sets the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(o *clientOptions) {
		o.httpClient = hc
	}
}

// WithLogger sets the logger used for request/response logging.
func WithLogger(l *slog.Logger) Option {
	return func(o *clientOptions) {
		o.logger = l
	}
}

// OpenWeatherMapClient implements OneCallSource against the One Call API
type OpenWeatherMapClient struct {
	apiKey string
	client *resty.Client
	logger *slog.Logger
}

var _ OneCallSource = (*OpenWeatherMapClient)(nil)

// NewOpenWeatherMapClient creates a new One Call client. When cfg has no API
// key the process environment is consulted; a missing key is a
// *config.ConfigError and no client is built.
func NewOpenWeatherMapClient(cfg config.Config, opts ...Option) (*OpenWeatherMapClient, error) {
	if cfg.APIKey == "" {
		key, err := config.GetAPIKey()
		if err != nil {
			return nil, err
		}
		cfg.APIKey = strings.TrimSpace(key)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := &clientOptions{logger: logging.Discard()}
	for _, opt := range opts {
		opt(o)
	}

	var rc *resty.Client
	if o.httpClient != nil {
		rc = resty.NewWithClient(o.httpClient)
	} else {
		rc = resty.New()
	}
	rc.SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout()).
		SetHeader("Accept", "application/json")

	logger := o.logger
	rc.OnAfterResponse(func(_ *resty.Client, resp *resty.Response) error {
		path := ""
		if resp.RawResponse != nil && resp.RawResponse.Request != nil {
			path = resp.RawResponse.Request.URL.Path
		}
		logger.Debug("openweathermap response",
			"path", path,
			"status", resp.StatusCode(),
			"duration", resp.Time(),
			"bytes", len(resp.Body()))
		return nil
	})

	return &OpenWeatherMapClient{
		apiKey: cfg.APIKey,
		client: rc,
		logger: logger,
	}, nil
}

// Name returns the provider name
func (c *OpenWeatherMapClient) Name() string {
	return "OpenWeatherMap"
}

// GetCurrentAndForecast fetches the current, hourly and daily sections for a coordinate
func (c *OpenWeatherMapClient) GetCurrentAndForecast(ctx context.Context, lat, lon float64) (models.OneCallResponse, error) {
	return c.fetch(ctx, "onecall", oneCallEndpoint, c.params(lat, lon))
}

// GetObsDate fetches historical observations; date is sent as POSIX seconds
func (c *OpenWeatherMapClient) GetObsDate(ctx context.Context, lat, lon float64, date time.Time) (models.OneCallResponse, error) {
	params := c.params(lat, lon)
	params["dt"] = strconv.FormatInt(date.Unix(), 10)
	return c.fetch(ctx, "timemachine", timeMachineEndpoint, params)
}

func (c *OpenWeatherMapClient) params(lat, lon float64) map[string]string {
	return map[string]string{
		"lat":   strconv.FormatFloat(lat, 'f', -1, 64),
		"lon":   strconv.FormatFloat(lon, 'f', -1, 64),
		"units": config.Units,
		"appid": c.apiKey,
	}
}

func (c *OpenWeatherMapClient) fetch(ctx context.Context, op, endpoint string, params map[string]string) (models.OneCallResponse, error) {
	if c.apiKey == "" {
		return models.OneCallResponse{}, &config.ConfigError{Field: config.EnvAPIKey, Err: config.ErrMissingAPIKey}
	}

	c.logger.Debug("openweathermap request", "op", op, "lat", params["lat"], "lon", params["lon"])

	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParams(params).
		Get(endpoint)
	if err != nil {
		return models.OneCallResponse{}, &NetworkError{Op: op, Err: err}
	}

	if resp.StatusCode() < 200 || resp.StatusCode() > 299 {
		return models.OneCallResponse{}, &NetworkError{
			Op:         op,
			StatusCode: resp.StatusCode(),
			Body:       truncateBody(resp.Body()),
		}
	}

	var out models.OneCallResponse
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return models.OneCallResponse{}, &ParseError{Op: op, Err: err}
	}

	return out, nil
}
