// internal/app/features/auditlog/list.go
package auditlog

import (
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/dalemusser/regdash/internal/app/store/audit"
	"github.com/dalemusser/regdash/internal/app/system/paging"
	"github.com/dalemusser/regdash/internal/app/system/timeouts"
	"github.com/dalemusser/regdash/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

const (
	basePath = "/admin/audit"
	pageSize = 50
)

// ServeList handles GET /admin/audit: audit events newest first, filtered by
// category, event type, login and date range.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.List(), h.Log, "audit log list")
	defer cancel()

	data := h.parseFilters(r)
	filter := h.queryFilter(data)
	filter.Offset = int64((data.Page - 1) * pageSize)

	events, err := h.Events.Query(ctx, filter)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "failed to query audit events", err, "Jurnalni yuklab bo'lmadi.", "/admin/dashboard")
		return
	}
	total, err := h.Events.CountByFilter(ctx, filter)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "failed to count audit events", err, "Jurnalni yuklab bo'lmadi.", "/admin/dashboard")
		return
	}

	// Informational; a failure only hides the card.
	failed, err := h.Events.GetFailedLogins(ctx, h.now().Add(-24*time.Hour), 1000)
	if err != nil {
		h.Log.Warn("failed to count recent failed logins", zap.Error(err))
	}
	data.FailedLast24h = len(failed)

	data.Items = h.items(events)
	data.Total = total
	h.paginate(&data)

	if r.Header.Get("HX-Request") == "true" {
		templates.RenderSnippet(w, "audit_table", data)
		return
	}
	templates.Render(w, r, "audit_list", data)
}

func (h *Handler) parseFilters(r *http.Request) listData {
	category := strings.TrimSpace(query.Get(r, "category"))
	if _, ok := categoryLabels[category]; !ok {
		category = ""
	}
	eventType := strings.TrimSpace(query.Get(r, "event_type"))
	if _, ok := eventLabels[eventType]; !ok {
		eventType = ""
	}

	return listData{
		BaseVM:     viewdata.NewBaseVM(r, "Audit jurnali"),
		Category:   category,
		EventType:  eventType,
		Login:      strings.TrimSpace(query.Get(r, "login")),
		StartDate:  validDate(query.Get(r, "start_date")),
		EndDate:    validDate(query.Get(r, "end_date")),
		Categories: categories(category),
		EventTypes: eventTypes(category, eventType),
		Page:       paging.ParsePage(r),
	}
}

// queryFilter turns the form values into a store filter. Dates are whole
// days in the display time zone.
func (h *Handler) queryFilter(d listData) audit.QueryFilter {
	f := audit.QueryFilter{
		Login:     d.Login,
		Category:  d.Category,
		EventType: d.EventType,
		Limit:     pageSize,
	}
	if t, err := time.ParseInLocation("2006-01-02", d.StartDate, h.loc); err == nil {
		f.StartTime = &t
	}
	if t, err := time.ParseInLocation("2006-01-02", d.EndDate, h.loc); err == nil {
		end := t.AddDate(0, 0, 1).Add(-time.Nanosecond)
		f.EndTime = &end
	}
	return f
}

func (h *Handler) items(events []audit.Event) []listItem {
	out := make([]listItem, 0, len(events))
	for _, e := range events {
		out = append(out, listItem{
			Time:      e.Timestamp.In(h.loc).Format("02.01.2006 15:04:05"),
			Category:  categoryLabel(e.Category),
			EventType: eventLabel(e.EventType),
			Login:     e.Login,
			IP:        e.IP,
			Success:   e.Success,
			Reason:    e.FailureReason,
			Details:   formatDetails(e.Details),
		})
	}
	return out
}

func (h *Handler) paginate(d *listData) {
	d.TotalPages = paging.TotalPages(int(d.Total), pageSize)
	d.Page = paging.Clamp(d.Page, d.TotalPages)

	nav := paging.NewNav(d.Page, d.TotalPages)
	for _, it := range nav.Items {
		link := pageLinkVM{Label: it.Label(), Current: it.Current, Ellipsis: it.Ellipsis}
		if !it.Ellipsis {
			link.URL = pageURL(*d, it.Page)
		}
		d.Links = append(d.Links, link)
	}
	if nav.HasPrev {
		d.PrevURL = pageURL(*d, nav.PrevPage)
	}
	if nav.HasNext {
		d.NextURL = pageURL(*d, nav.NextPage)
	}
}

func pageURL(d listData, page int) string {
	v := url.Values{}
	for k, val := range map[string]string{
		"category":   d.Category,
		"event_type": d.EventType,
		"login":      d.Login,
		"start_date": d.StartDate,
		"end_date":   d.EndDate,
	} {
		if val != "" {
			v.Set(k, val)
		}
	}
	if page > 1 {
		v.Set("page", strconv.Itoa(page))
	}
	if len(v) == 0 {
		return basePath
	}
	return basePath + "?" + v.Encode()
}

func validDate(s string) string {
	s = strings.TrimSpace(s)
	if _, err := time.Parse("2006-01-02", s); err != nil {
		return ""
	}
	return s
}

// formatDetails renders details as "k=v" pairs in key order.
func formatDetails(m map[string]string) string {
	if len(m) == 0 {
		return ""
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+m[k])
	}
	return strings.Join(parts, ", ")
}
