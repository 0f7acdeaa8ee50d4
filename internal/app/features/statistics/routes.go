// internal/app/features/statistics/routes.go
package statistics

import (
	"github.com/dalemusser/regdash/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the statistics pages (normally at "/admin/statistics").
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)
		pr.Get("/", h.ServeOverview)
		pr.Get("/daily", h.ServeDaily)
		pr.Post("/refresh", h.HandleRefresh)
		pr.Get("/refresh/status", h.ServeRefreshStatus)
	})

	return r
}
