// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	service "github.com/okian/waitcast/internal/app"
	"github.com/okian/waitcast/internal/domain/forecast"
	"github.com/okian/waitcast/internal/domain/model"
	"github.com/okian/waitcast/internal/domain/types"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

// Dependencies required by HTTP handlers.
type Dependencies interface {
	// Forecast runs one forecast synchronously.
	Forecast(ctx context.Context, req types.ForecastRequest) (model.Report, error)

	// ForecastBatch runs independent forecasts; per-request errors are in the results.
	ForecastBatch(ctx context.Context, reqs []types.ForecastRequest) ([]service.BatchResult, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler   *HealthHandler
	statsHandler    *StatsHandler
	forecastHandler *ForecastHandler
	weatherHandler  *WeatherHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:   NewHealthHandler(),
		statsHandler:    NewStatsHandler(statsProvider),
		forecastHandler: NewForecastHandler(deps),
		weatherHandler:  NewWeatherHandler(),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/weather", MetricsMiddleware(s.weatherHandler.HandleGetWeather, "weather"))
	mux.HandleFunc("/forecast", MetricsMiddleware(s.forecastHandler.HandlePostForecast, "forecast"))
	mux.HandleFunc("/forecast/batch", MetricsMiddleware(s.forecastHandler.HandlePostBatch, "forecast_batch"))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, types.ErrorBody{Code: code, Message: msg})
}

// allowMethod answers 405 unless r uses method.
func allowMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method == method {
		return true
	}
	w.Header().Set("Allow", method)
	writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
	return false
}

// classify maps a forecast error to its HTTP status and payload.
func classify(err error) (int, types.ErrorBody) {
	body := types.ErrorBody{Message: err.Error()}

	var infErr *forecast.InferenceError
	switch {
	case errors.As(err, &infErr):
		slot := infErr.Slot
		body.Code = "model_inference"
		body.Slot = &slot
		body.Time = infErr.Time
		body.Model = string(infErr.Model)
		return http.StatusBadGateway, body
	case errors.Is(err, service.ErrInvalidInput), errors.Is(err, forecast.ErrInvalidInput):
		body.Code = "invalid_input"
		return http.StatusBadRequest, body
	case errors.Is(err, service.ErrBusy):
		body.Code = "backpressure"
		return http.StatusTooManyRequests, body
	case errors.Is(err, service.ErrNotStarted):
		body.Code = "unavailable"
		return http.StatusServiceUnavailable, body
	case errors.Is(err, forecast.ErrCanceled), errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		body.Code = "canceled"
		return http.StatusServiceUnavailable, body
	default:
		body.Code = "internal"
		return http.StatusInternalServerError, body
	}
}
