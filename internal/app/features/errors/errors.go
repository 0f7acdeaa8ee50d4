// internal/app/features/errors/errors.go
package errors

import (
	"net/http"

	"github.com/dalemusser/regdash/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/templates"
)

// pageData is the basic view model for error pages.
type pageData struct {
	viewdata.BaseVM
	Status  int
	Message string
	BackURL string
}

// Handler is the errors feature handler.
// No DB needed; it just renders templates.
type Handler struct{}

// NewHandler constructs an errors Handler.
func NewHandler() *Handler {
	return &Handler{}
}

// Forbidden renders a friendly "access denied" page.
// GET /forbidden
func (h *Handler) Forbidden(w http.ResponseWriter, r *http.Request) {
	render(w, r, http.StatusForbidden, "Ruxsat yo'q", "Bu sahifani ko'rishga ruxsatingiz yo'q.", "/")
}

// Unauthorized renders a friendly "sign in required" page.
// GET /unauthorized
func (h *Handler) Unauthorized(w http.ResponseWriter, r *http.Request) {
	render(w, r, http.StatusUnauthorized, "Kirish talab qilinadi", "Davom etish uchun tizimga kiring.", "/")
}

// NotFound renders the 404 page for unknown routes.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	render(w, r, http.StatusNotFound, "Sahifa topilmadi", "So'ralgan sahifa mavjud emas.", "/admin/dashboard")
}

func render(w http.ResponseWriter, r *http.Request, status int, title, msg, backURL string) {
	data := pageData{
		BaseVM:  viewdata.NewBaseVM(r, title),
		Status:  status,
		Message: msg,
		BackURL: backURL,
	}
	w.WriteHeader(status)
	if r.Header.Get("HX-Request") == "true" {
		templates.RenderSnippet(w, "error_inline", data)
		return
	}
	templates.Render(w, r, "error_page", data)
}
