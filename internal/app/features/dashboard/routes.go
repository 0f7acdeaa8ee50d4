// internal/app/features/dashboard/routes.go
package dashboard

import (
	"github.com/dalemusser/regdash/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes wires the dashboard under whatever mount point the top-level
// router chooses (normally "/admin/dashboard"). Every route requires a
// signed-in admin.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)
		pr.Get("/", h.ServeList)
		pr.Get("/export.xlsx", h.ServeExport)
	})

	return r
}
