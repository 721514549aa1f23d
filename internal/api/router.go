package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/gray-logic-toolkit/internal/auth"
)

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(s.requestIDMiddleware)
	r.Use(s.tracingMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.corsMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Health check (no auth required)
		r.Get("/health", s.handleHealth)

		// Auth endpoints (no auth required)
		r.Post("/auth/login", s.handleLogin)

		// WebSocket (auth via single-use ticket, validated in handler)
		r.Get("/ws", s.handleWebSocket)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware)

			r.Get("/auth/me", s.handleMe)
			r.Post("/auth/ws-ticket", s.handleWSTicket)

			r.With(s.requirePermission(auth.PermServicesRead)).Get("/metrics", s.handleMetrics)
			r.With(s.requirePermission(auth.PermServicesRead)).Get("/services", s.handleListServices)

			// Settings endpoints
			r.Route("/settings", func(r chi.Router) {
				r.With(s.requirePermission(auth.PermSettingsRead)).Get("/", s.handleListSettings)
				r.With(s.requirePermission(auth.PermSettingsReload)).Post("/reload", s.handleReloadSettings)
				r.With(s.requirePermission(auth.PermSettingsReload)).Post("/reset", s.handleResetSettings)

				r.Route("/{id}", func(r chi.Router) {
					r.With(s.requirePermission(auth.PermSettingsRead)).Get("/", s.handleGetSetting)
					r.With(s.requirePermission(auth.PermSettingsWrite)).Put("/", s.handleSetSetting)
				})
			})

			// Conversion tools
			r.Route("/tools", func(r chi.Router) {
				r.Use(s.requirePermission(auth.PermToolsUse))
				r.Post("/remap", s.handleRemap)
				r.Post("/ansi-html", s.handleANSIHTML)
			})

			// User management
			r.Route("/users", func(r chi.Router) {
				r.With(s.requirePermission(auth.PermUserManage)).Get("/", s.handleListUsers)
				r.With(s.requirePermission(auth.PermUserManage)).Post("/", s.handleCreateUser)

				r.Route("/{id}", func(r chi.Router) {
					r.With(s.requirePermission(auth.PermUserManage)).Get("/", s.handleGetUser)
					r.With(s.requirePermission(auth.PermUserManage)).Put("/active", s.handleSetUserActive)
					r.Put("/password", s.handleChangePassword)
				})
			})
		})
	})

	return r
}
