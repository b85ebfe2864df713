package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/nvoloshin/userhub/internal/user"
)

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.corsMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Health check (no auth required)
		r.Get("/health", s.handleHealth)

		// Session endpoints (no auth required)
		r.Post("/auth/login", s.handleLogin)
		r.Post("/auth/refresh", s.handleRefresh)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware)

			r.Get("/auth/current_user", s.handleCurrentUser)
			r.Get("/auth/logout", s.handleLogout)

			// Directory search requires authentication only.
			r.Post("/users", s.handleSearchUsers)

			// Account management requires the user management permission.
			r.Group(func(r chi.Router) {
				r.Use(s.requirePermission(user.PermissionUserManagement))

				r.Post("/user", s.handleCreateUser)
				r.Patch("/user", s.handleUpdateUser)
				r.Delete("/user", s.handleDeactivateUser)
				r.Get("/user/{user_id}", s.handleGetUser)

				r.Get("/audit", s.handleListAudit)
			})
		})
	})

	return r
}

// healthCheckTimeout bounds the backing-store probe in /health.
const healthCheckTimeout = 2 * time.Second

// handleHealth returns the server health status, probing the database
// when one was wired in.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	checks := map[string]string{}

	if s.database != nil {
		ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
		defer cancel()

		if err := s.database.HealthCheck(ctx); err != nil {
			status = "degraded"
			checks["database"] = err.Error()
		} else {
			checks["database"] = "ok"
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":  status,
		"version": s.version,
		"checks":  checks,
	})
}
