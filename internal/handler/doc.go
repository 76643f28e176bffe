// Package handler implements the HTTP read API for zhamesh.
//
// Every endpoint is read-only. Topology endpoints answer from the
// monitor's latest published view; history endpoints answer from the
// repository.
//
//	GET /api/devices               registry contents
//	GET /api/devices/{address}     one device with its incoming and outgoing edges
//	GET /api/edges                 edge table
//	GET /api/observations          ?limit=&address= persisted observations
//	GET /api/offline               ?limit= persisted offline flags
//	GET /events                    Server-Sent Events stream
//	GET /metrics                   Prometheus metrics
//
// Errors are returned as JSON with {error, details}.
package handler
