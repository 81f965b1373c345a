// Package site serves the browser page for requesting and viewing a forecast.
package site

import (
	"context"
	"net/http"
)

// Register attaches the embedded forecast page to mux at /.
// Paths registered more specifically on mux take precedence.
func Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}
	mux.Handle("/", http.FileServer(FS()))
}
