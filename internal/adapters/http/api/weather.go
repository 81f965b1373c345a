package api

import (
	"net/http"

	"github.com/okian/waitcast/internal/domain/types"
	"github.com/okian/waitcast/internal/domain/weather"
)

// WeatherHandler lists the accepted weather categories.
type WeatherHandler struct {
	options []types.WeatherOption
}

// NewWeatherHandler creates a new weather handler.
func NewWeatherHandler() *WeatherHandler {
	all := weather.All()
	opts := make([]types.WeatherOption, len(all))
	for i, c := range all {
		opts[i] = types.WeatherOption{Value: string(c), Description: c.Description()}
	}
	return &WeatherHandler{options: opts}
}

// HandleGetWeather handles GET /weather requests.
func (h *WeatherHandler) HandleGetWeather(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}
	writeJSON(w, http.StatusOK, h.options)
}
