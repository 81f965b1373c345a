package forecastclient

import (
	"errors"
	"fmt"

	"github.com/okian/waitcast/internal/domain/types"
)

// Sentinel kinds for client errors.
var (
	ErrInvalidConfig = errors.New("invalid client config")
	ErrRequest       = errors.New("forecast request failed")
)

// APIError is a non-2xx answer from the server.
type APIError struct {
	Status int
	Body   types.ErrorBody
}

func (e *APIError) Error() string {
	if e.Body.Slot != nil {
		return fmt.Sprintf("server answered %d: %s model failed at %s (slot %d): %s",
			e.Status, e.Body.Model, e.Body.Time, *e.Body.Slot, e.Body.Message)
	}
	return fmt.Sprintf("server answered %d: %s: %s", e.Status, e.Body.Code, e.Body.Message)
}

// Unwrap lets callers match ErrRequest.
func (e *APIError) Unwrap() error { return ErrRequest }
