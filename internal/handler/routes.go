package handler

import (
	"net/http"

	"github.com/rs/zerolog"
)

// Routes builds the HTTP surface. events and metrics may be nil.
func Routes(api *APIHandler, events, metrics http.Handler, logger zerolog.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/devices", api.ListDevices)
	mux.HandleFunc("GET /api/devices/{address}", api.GetDevice)
	mux.HandleFunc("GET /api/edges", api.ListEdges)
	mux.HandleFunc("GET /api/observations", api.ListObservations)
	mux.HandleFunc("GET /api/offline", api.ListOffline)

	if events != nil {
		mux.Handle("GET /events", events)
	}
	if metrics != nil {
		mux.Handle("GET /metrics", metrics)
	}

	return Chain(mux,
		Recover(logger),
		CORS,
		Logger(logger),
	)
}
