package forecastclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/okian/waitcast/internal/domain/model"
	"github.com/okian/waitcast/internal/domain/types"
)

// Client talks to the waitcast HTTP API.
type Client struct {
	client  *http.Client
	baseURL string
}

// NewClient creates a client for baseURL with a per-request timeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		client:  &http.Client{Timeout: timeout},
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// Forecast requests one day's forecast.
func (c *Client) Forecast(ctx context.Context, req types.ForecastRequest) (model.Report, error) {
	var report model.Report
	err := c.do(ctx, http.MethodPost, "/forecast", req, &report)
	return report, err
}

// ForecastBatch requests several days at once.
func (c *Client) ForecastBatch(ctx context.Context, reqs []types.ForecastRequest) (types.BatchResponse, error) {
	var resp types.BatchResponse
	err := c.do(ctx, http.MethodPost, "/forecast/batch", types.BatchRequest{Requests: reqs}, &resp)
	return resp, err
}

// Weather lists the categories the server accepts.
func (c *Client) Weather(ctx context.Context) ([]types.WeatherOption, error) {
	var opts []types.WeatherOption
	err := c.do(ctx, http.MethodGet, "/weather", nil, &opts)
	return opts, err
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader = http.NoBody
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%w: marshal request: %w", ErrRequest, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRequest, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRequest, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read response: %w", ErrRequest, err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := &APIError{Status: resp.StatusCode}
		if json.Unmarshal(data, &apiErr.Body) != nil || apiErr.Body.Code == "" {
			apiErr.Body = types.ErrorBody{Code: "http_error", Message: strings.TrimSpace(string(data))}
		}
		return apiErr
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: decode response: %w", ErrRequest, err)
	}
	return nil
}
