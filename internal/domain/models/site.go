// internal/domain/models/site.go
package models

// DefaultSiteName is shown in the nav bar and page titles.
const DefaultSiteName = "Admin Panel"

// Placeholder replaces blank registrant fields on screen and in exports.
const Placeholder = "Kiritilmagan"

// UnknownDate replaces timestamps that cannot be parsed in exports.
const UnknownDate = "Noma'lum"
