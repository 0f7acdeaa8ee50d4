// Package normalize contains the small string transforms applied to input
// from the browser and to records received from the registrations backend.
package normalize

import (
	"html"
	"strings"

	"github.com/dalemusser/regdash/internal/domain/models"
	"github.com/microcosm-cc/bluemonday"
)

// strict removes every tag and attribute; only text survives.
var strict = bluemonday.StrictPolicy()

// QueryParam trims surrounding whitespace from a query parameter value.
func QueryParam(s string) string {
	return strings.TrimSpace(s)
}

// Login trims whitespace from an admin login. Case is preserved.
func Login(s string) string {
	return strings.TrimSpace(s)
}

// Text trims s and strips any markup the backend may have let through.
// Entities produced by the sanitizer are decoded again because templates
// escape on output.
func Text(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if strings.ContainsAny(s, "<>") {
		s = html.UnescapeString(strict.Sanitize(s))
	}
	return strings.TrimSpace(s)
}

// Placeholder returns s, or models.Placeholder when s is blank.
func Placeholder(s string) string {
	if strings.TrimSpace(s) == "" {
		return models.Placeholder
	}
	return s
}

// Registrant returns a copy of r with every string field cleaned by Text.
// Blank fields stay blank; Placeholder is applied at render time.
func Registrant(r models.Registrant) models.Registrant {
	r.ID = models.RegistrantID(strings.TrimSpace(string(r.ID)))
	r.FullName = Text(r.FullName)
	r.PhoneNumber = Text(r.PhoneNumber)
	r.TgUser = Text(r.TgUser)
	r.Address = Text(r.Address)
	r.CreatedAt = strings.TrimSpace(r.CreatedAt)
	return r
}

// Registrants applies Registrant to every element in place and returns rs.
func Registrants(rs []models.Registrant) []models.Registrant {
	for i := range rs {
		rs[i] = Registrant(rs[i])
	}
	return rs
}
