package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func NewRouter(h *APIHandler) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)       // Basic request logging
	r.Use(middleware.Recoverer)    // Recover from panics
	r.Use(middleware.StripSlashes) // Ensure consistent path handling

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api", func(r chi.Router) {
		// Public routes
		r.Post("/auth/register", h.RegisterHandler)
		r.Post("/auth/login", h.LoginHandler)

		r.Get("/domains", h.ListDomainsHandler)
		r.Get("/domains/{slug}", h.GetDomainHandler)
		r.Get("/roles", h.ListRolesHandler)
		r.Get("/roles/{slug}", h.GetRoleHandler)
		r.Get("/modules", h.ListModulesHandler)
		r.Get("/projects", h.ListProjectsHandler)
		r.Get("/projects/{projectID}", h.GetProjectHandler)

		// User-authenticated routes
		r.Group(func(r chi.Router) {
			r.Use(h.JWTAuthMiddleware)

			r.Get("/auth/me", h.MeHandler)
			r.Put("/auth/profile", h.UpdateProfileHandler)
			r.Put("/auth/password", h.ChangePasswordHandler)

			r.Get("/users/dashboard", h.DashboardHandler)

			r.Put("/modules/{moduleID}/complete", h.CompleteModuleHandler)
			r.Post("/projects/{projectID}/submit", h.SubmitProjectHandler)
			r.Put("/projects/{projectID}/progress", h.ProjectProgressHandler)

			r.Post("/assistant/chat", h.ChatHandler)
			r.Get("/assistant/history", h.AssistantHistoryHandler)
			r.Delete("/assistant/session/{sessionID}", h.ClearSessionHandler)

			// Admin-only routes
			r.Group(func(r chi.Router) {
				r.Use(h.RequireAdmin)

				r.Post("/domains", h.CreateDomainHandler)
				r.Post("/roles", h.CreateRoleHandler)
				r.Put("/roles/{roleID}", h.UpdateRoleHandler)
				r.Delete("/roles/{roleID}", h.DeleteRoleHandler)
				r.Post("/modules", h.CreateModuleHandler)

				r.Route("/admin", func(r chi.Router) {
					r.Get("/analytics", h.AnalyticsHandler)
					r.Get("/users", h.AdminListUsersHandler)
					r.Patch("/users/{userID}/role", h.UpdateUserRoleHandler)
					r.Get("/submissions", h.AdminListSubmissionsHandler)
					r.Put("/submissions/{submissionID}/review", h.ReviewSubmissionHandler)
				})
			})
		})
	})

	return r
}
