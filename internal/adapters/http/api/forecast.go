package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/okian/waitcast/internal/domain/types"
)

// ForecastHandler handles forecast requests.
type ForecastHandler struct {
	deps Dependencies
}

// NewForecastHandler creates a new forecast handler.
func NewForecastHandler(deps Dependencies) *ForecastHandler {
	return &ForecastHandler{deps: deps}
}

// HandlePostForecast handles POST /forecast requests.
func (h *ForecastHandler) HandlePostForecast(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}

	var req types.ForecastRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}

	report, err := h.deps.Forecast(r.Context(), req)
	if err != nil {
		status, body := classify(err)
		writeJSON(w, status, body)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// HandlePostBatch handles POST /forecast/batch requests.
func (h *ForecastHandler) HandlePostBatch(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}

	var req types.BatchRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}

	results, err := h.deps.ForecastBatch(r.Context(), req.Requests)
	if err != nil {
		status, body := classify(err)
		writeJSON(w, status, body)
		return
	}

	resp := types.BatchResponse{Results: make([]types.BatchItem, len(results))}
	for i, res := range results {
		item := types.BatchItem{Index: res.Index, Report: res.Report}
		if res.Err != nil {
			_, body := classify(res.Err)
			item.Error = &body
		}
		resp.Results[i] = item
	}
	writeJSON(w, http.StatusOK, resp)
}

func decode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %w", ErrBadRequest, err)
	}
	return nil
}
