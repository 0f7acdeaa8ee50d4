// internal/app/system/viewdata/viewdata.go
package viewdata

import (
	"net/http"
	"strings"

	"github.com/dalemusser/regdash/internal/app/system/auth"
	"github.com/dalemusser/regdash/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/httpnav"
	"github.com/gorilla/csrf"
)

// NavItem is one link in the admin navigation bar.
type NavItem struct {
	Label  string
	Href   string
	Active bool
}

// BaseVM contains common fields for all view models.
// Embed this struct in your feature-specific view models.
//
// Usage:
//
//	type myPageData struct {
//	    viewdata.BaseVM
//	    // page-specific fields...
//	}
//
//	data := myPageData{
//	    BaseVM: viewdata.NewBaseVM(r, "Page Title"),
//	}
type BaseVM struct {
	SiteName string

	// User context (from auth middleware)
	IsLoggedIn bool
	UserName   string

	// Page context
	Title       string
	CurrentPath string
	Nav         []NavItem

	// CSRF protection
	CSRFToken string
}

var siteName = models.DefaultSiteName

// SetSiteName overrides the name shown in the header. Call once at startup.
func SetSiteName(name string) {
	if strings.TrimSpace(name) != "" {
		siteName = name
	}
}

// NewBaseVM creates a fully populated BaseVM for a page.
func NewBaseVM(r *http.Request, title string) BaseVM {
	vm := BaseVM{
		SiteName:    siteName,
		Title:       title,
		CurrentPath: httpnav.CurrentPath(r),
		CSRFToken:   csrf.Token(r),
	}
	if u, ok := auth.CurrentUser(r); ok {
		vm.IsLoggedIn = true
		vm.UserName = u.Login
		vm.Nav = Nav(vm.CurrentPath)
	}
	return vm
}

// Nav returns the admin links with the one matching path marked active.
// Logout is a plain link and is never active.
func Nav(path string) []NavItem {
	items := []NavItem{
		{Label: "Dashboard", Href: "/admin/dashboard"},
		{Label: "Statistika", Href: "/admin/statistics"},
		{Label: "Jurnal", Href: "/admin/audit"},
		{Label: "Chiqish", Href: "/logout"},
	}
	for i := range items[:len(items)-1] {
		items[i].Active = path == items[i].Href || strings.HasPrefix(path, items[i].Href+"/")
	}
	return items
}
