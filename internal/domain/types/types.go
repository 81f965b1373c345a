// Package types contains the wire shapes shared by the HTTP API, the service,
// and the forecast client.
package types

import "github.com/okian/waitcast/internal/domain/model"

// ForecastRequest asks for one day's forecast.
type ForecastRequest struct {
	Date          string `json:"date"`
	TotalPatients int    `json:"total_patients"`
	Weather       string `json:"weather"`
}

// BatchRequest asks for several independent forecasts.
type BatchRequest struct {
	Requests []ForecastRequest `json:"requests"`
}

// ErrorBody is the error payload. Slot and Model are set for model failures.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Slot    *int   `json:"slot,omitempty"`
	Time    string `json:"time,omitempty"`
	Model   string `json:"model,omitempty"`
}

// BatchItem is the outcome of one request within a batch.
type BatchItem struct {
	Index  int           `json:"index"`
	Report *model.Report `json:"report,omitempty"`
	Error  *ErrorBody    `json:"error,omitempty"`
}

// BatchResponse lists batch outcomes in request order.
type BatchResponse struct {
	Results []BatchItem `json:"results"`
}

// WeatherOption describes one accepted weather category.
type WeatherOption struct {
	Value       string `json:"value"`
	Description string `json:"description"`
}
