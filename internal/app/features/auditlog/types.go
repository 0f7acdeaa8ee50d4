// internal/app/features/auditlog/types.go
package auditlog

import (
	"github.com/dalemusser/regdash/internal/app/store/audit"
	"github.com/dalemusser/regdash/internal/app/system/viewdata"
)

// listItem is one audit event row.
type listItem struct {
	Time      string
	Category  string
	EventType string
	Login     string
	IP        string
	Success   bool
	Reason    string
	Details   string
}

type pageLinkVM struct {
	Label    string
	URL      string
	Current  bool
	Ellipsis bool
}

// listData is the view model for the audit log page.
type listData struct {
	viewdata.BaseVM

	Items []listItem

	// Filters
	Category  string
	EventType string
	Login     string
	StartDate string
	EndDate   string

	Categories []option
	EventTypes []option

	FailedLast24h int

	// Pagination
	Page       int
	TotalPages int
	Total      int64
	Links      []pageLinkVM
	PrevURL    string
	NextURL    string
}

type option struct {
	Value    string
	Label    string
	Selected bool
}

var categoryLabels = map[string]string{
	audit.CategoryAuth:  "Kirish / chiqish",
	audit.CategoryAdmin: "Amallar",
}

var eventLabels = map[string]string{
	audit.EventLoginSuccess:             "Muvaffaqiyatli kirish",
	audit.EventLoginFailedWrongPassword: "Noto'g'ri parol",
	audit.EventLoginFailedRateLimit:     "Urinishlar cheklovi",
	audit.EventLogout:                   "Chiqish",
	audit.EventSessionRejected:          "Sessiya rad etildi",
	audit.EventExportDownloaded:         "Excel yuklab olindi",
	audit.EventExportFailed:             "Excel xatosi",
	audit.EventStatisticsRefresh:        "Statistika yangilandi",
}

func categories(selected string) []option {
	return []option{
		{Value: audit.CategoryAuth, Label: categoryLabels[audit.CategoryAuth], Selected: selected == audit.CategoryAuth},
		{Value: audit.CategoryAdmin, Label: categoryLabels[audit.CategoryAdmin], Selected: selected == audit.CategoryAdmin},
	}
}

// eventTypes lists the event types of category, or all of them when
// category is empty.
func eventTypes(category, selected string) []option {
	authEvents := []string{
		audit.EventLoginSuccess,
		audit.EventLoginFailedWrongPassword,
		audit.EventLoginFailedRateLimit,
		audit.EventLogout,
		audit.EventSessionRejected,
	}
	adminEvents := []string{
		audit.EventExportDownloaded,
		audit.EventExportFailed,
		audit.EventStatisticsRefresh,
	}

	var types []string
	switch category {
	case audit.CategoryAuth:
		types = authEvents
	case audit.CategoryAdmin:
		types = adminEvents
	case "":
		types = append(append(types, authEvents...), adminEvents...)
	}

	out := make([]option, 0, len(types))
	for _, t := range types {
		out = append(out, option{Value: t, Label: eventLabel(t), Selected: t == selected})
	}
	return out
}

func eventLabel(t string) string {
	if l, ok := eventLabels[t]; ok {
		return l
	}
	return t
}

func categoryLabel(c string) string {
	if l, ok := categoryLabels[c]; ok {
		return l
	}
	return c
}
