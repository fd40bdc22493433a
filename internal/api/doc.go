// Package api implements the HTTP REST API and WebSocket server for Voxhaus.
//
// This package provides:
//   - POST /api/v1/dispatch — the voice command entry point
//   - Device registry reads, manual refresh, and capability profile inspection
//   - Paginated dispatch history queries
//   - WebSocket hub for real-time dispatch lifecycle broadcasts
//   - Middleware stack (request ID, logging, recovery, CORS, body limit)
//
// # Architecture
//
// The API server sits between the speech/LLM front-end and the dispatch
// pipeline. A dispatch request flows through the dispatcher (resolution,
// intent mapping, backend invocation) and the outcome is returned
// synchronously; the same outcome is broadcast to WebSocket clients
// subscribed to dispatch.completed or dispatch.failed, so dashboards see
// commands as they happen.
//
// The server follows the same lifecycle pattern as other infrastructure
// components:
//
//	server, err := api.New(deps)
//	server.Start(ctx)
//	defer server.Close()
//
// Thread Safety: All methods are safe for concurrent use from multiple goroutines.
package api
