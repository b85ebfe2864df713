// Package api provides the HTTP REST API for UserHub.
//
// It exposes authentication endpoints (login, refresh, current user,
// logout) and user directory management (create, update, deactivate,
// search) to administrative frontends and downstream services.
//
// The server follows the same lifecycle pattern as other infrastructure
// components:
//
//	server, err := api.New(deps)
//	server.Start(ctx)
//	defer server.Close()
//
// All handlers return structured JSON errors with a stable machine
// readable code alongside the HTTP status.
package api
