package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/upb/voice-admin/app"
	"github.com/upb/voice-admin/auth"
	"github.com/upb/voice-admin/handlers"
	"github.com/upb/voice-admin/middleware"
	"github.com/upb/voice-admin/utils"
)

// SetupRoutes configures all application routes and middleware
func SetupRoutes(deps *app.Dependencies) http.Handler {
	r := chi.NewRouter()

	// Core middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(60 * time.Second))
	r.Use(chimw.GetHead)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.Config.Server.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "HEAD", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	guard := deps.Guard
	api := deps.APIHandler
	pages := deps.PageHandler

	// Health check endpoints
	r.Get("/healthz", deps.HealthHandler.HandleHealth)
	r.Get("/readyz", deps.HealthHandler.HandleReadiness)

	// OAuth2 auth endpoints (Cognito)
	r.Route("/auth", func(r chi.Router) {
		r.Get("/login", handlers.AuthLoginHandler(deps))
		r.Get("/callback", handlers.AuthCallbackHandler(deps))
		r.Get("/logout", handlers.AuthLogoutHandler(deps))
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/me", guard.API(auth.RequireAny, api.HandleMe))

		r.Route("/agents", func(r chi.Router) {
			r.Get("/discover", guard.API(auth.RequireAdmin, api.HandleDiscoverAgents))
			r.Get("/active", guard.API(auth.RequireAdmin, api.HandleActiveAgents))
		})

		r.Route("/logs", func(r chi.Router) {
			r.Post("/", guard.API(auth.RequireAny, api.HandleRecordLog))
			r.Get("/", guard.API(auth.RequireAdmin, api.HandleListLogs))
		})
	})

	// Server-rendered pages
	r.Get("/", pages.HandleRoot)
	r.Get("/dashboard", guard.Page(auth.RequireAny, pages.HandleDashboard))
	r.Get("/admin", guard.Page(auth.RequireAdmin, pages.HandleAdmin))
	r.Get("/admin/agents", guard.Page(auth.RequireAdmin, pages.HandleAdminAgents))
	r.Get(deps.Config.Pages.SignInPath, pages.HandleSignIn)
	r.Get(deps.Config.Pages.UnauthorizedPath, pages.HandleUnauthorized)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		_ = utils.WriteNotFound(w, "endpoint not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		_ = utils.WriteFailure(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	return r
}
