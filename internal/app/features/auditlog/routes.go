// internal/app/features/auditlog/routes.go
package auditlog

import (
	"github.com/dalemusser/regdash/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the audit log viewer (normally at "/admin/audit").
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)
		pr.Get("/", h.ServeList)
	})

	return r
}
