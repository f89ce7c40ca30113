package app

import (
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/atelier-sur-mesure/atelier-admin/internal/catalog/categories"
	"github.com/atelier-sur-mesure/atelier-admin/internal/catalog/produits"
	"github.com/atelier-sur-mesure/atelier-admin/internal/clients"
	"github.com/atelier-sur-mesure/atelier-admin/internal/commandes"
	"github.com/atelier-sur-mesure/atelier-admin/internal/observability"
	"github.com/atelier-sur-mesure/atelier-admin/internal/paiements"
	"github.com/atelier-sur-mesure/atelier-admin/internal/platform/httpx"
	"github.com/atelier-sur-mesure/atelier-admin/internal/reports"
	"github.com/atelier-sur-mesure/atelier-admin/internal/shared"
	"github.com/atelier-sur-mesure/atelier-admin/internal/view"
	"github.com/atelier-sur-mesure/atelier-admin/jobs"
	"github.com/atelier-sur-mesure/atelier-admin/web"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	Respond        *view.Responder
	SessionManager *shared.SessionManager
	CSRFManager    *shared.CSRFManager
	Metrics        *observability.Metrics
	HealthChecks   map[string]httpx.Check
	JobsHandler    *jobs.Handler

	CategoriesHandler *categories.Handler
	ProduitsHandler   *produits.Handler
	ClientsHandler    *clients.Handler
	CommandesHandler  *commandes.Handler
	PaiementsHandler  *paiements.Handler
	ReportsHandler    *reports.Handler
}

// NewRouter constructs the chi.Router with the admin defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	// Operational endpoints skip sessions and CSRF.
	r.Group(func(r chi.Router) {
		r.Method(http.MethodGet, "/healthz", httpx.Health(5*time.Second, params.HealthChecks))
		if params.Metrics != nil {
			r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
		}
		if params.JobsHandler != nil {
			r.Route("/jobs", params.JobsHandler.MountRoutes)
		}
		staticFS, err := fs.Sub(web.Static, "static")
		if err != nil {
			params.Logger.Error("create static sub filesystem", slog.Any("error", err))
			return
		}
		fileServer := http.StripPrefix("/static/", http.FileServer(http.FS(staticFS)))
		r.Handle("/static/*", staticCacheHandler(fileServer))
	})

	r.Group(func(r chi.Router) {
		for _, mw := range MiddlewareStack(MiddlewareConfig{
			Logger:         params.Logger,
			Config:         params.Config,
			SessionManager: params.SessionManager,
			CSRFManager:    params.CSRFManager,
			Metrics:        params.Metrics,
		}) {
			r.Use(mw)
		}
		r.Use(chimw.Logger)

		if params.ReportsHandler != nil {
			r.Get("/", params.ReportsHandler.Dashboard)
			r.Route("/rapports", params.ReportsHandler.MountRoutes)
		}
		if params.CategoriesHandler != nil {
			r.Route("/categories", params.CategoriesHandler.MountRoutes)
		}
		if params.ProduitsHandler != nil {
			r.Route("/produits", params.ProduitsHandler.MountRoutes)
		}
		if params.ClientsHandler != nil {
			r.Route("/clients", params.ClientsHandler.MountRoutes)
		}
		if params.CommandesHandler != nil {
			r.Route("/commandes", params.CommandesHandler.MountRoutes)
		}
		if params.PaiementsHandler != nil {
			r.Route("/paiements", params.PaiementsHandler.MountRoutes)
		}
		r.NotFound(func(w http.ResponseWriter, r *http.Request) {
			params.Respond.Render(w, r, view.Page{Template: "pages/errors/not_found.html", Title: "Page introuvable", Status: http.StatusNotFound})
		})
		r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
			httpx.Problem(w, http.StatusMethodNotAllowed, "Method Not Allowed", r.Method+" "+r.URL.Path)
		})
	})

	return r
}

// staticCacheHandler wraps a file server with Cache-Control headers.
// Static assets are cached for 1 hour in browser.
func staticCacheHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=3600")
		next.ServeHTTP(w, r)
	})
}
