// internal/app/features/statistics/daily.go
package statistics

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/dalemusser/regdash/internal/app/store/registrants"
	"github.com/dalemusser/regdash/internal/app/system/paging"
	"github.com/dalemusser/regdash/internal/app/system/stats"
	"github.com/dalemusser/regdash/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

const dailyPath = "/admin/statistics/daily"

type dayRowVM struct {
	Number int
	Date   string
	Count  int
}

type pageLinkVM struct {
	Label    string
	URL      string
	Current  bool
	Ellipsis bool
}

type dailyData struct {
	Rows       []dayRowVM
	Page       int
	Limit      int
	TotalPages int
	TotalDays  int
	Range      paging.Range
	PageSizes  []int
	Links      []pageLinkVM
	PrevURL    string
	NextURL    string
}

type dailyPageData struct {
	viewdata.BaseVM
	Daily dailyData
	Error string
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /admin/statistics/daily                                                 |
*─────────────────────────────────────────────────────────────────────────────*/

// ServeDaily renders the per-day table. HTMX requests get the fragment.
func (h *Handler) ServeDaily(w http.ResponseWriter, r *http.Request) {
	data := dailyPageData{BaseVM: viewdata.NewBaseVM(r, "Kunlik statistika")}

	snap, err := h.Snapshots.Get(r.Context())
	if err != nil {
		h.Log.Warn("daily statistics load failed", zap.Error(err))
		data.Error = registrants.UserMessage(err, registrants.MsgStatsFailed)
	} else {
		data.Daily = buildDaily(r, snap.Summary.DailyTable)
	}

	if isHTMX(r) {
		templates.RenderSnippet(w, "statistics_daily_table", data)
		return
	}
	templates.Render(w, r, "statistics_daily", data)
}

// buildDaily paginates the newest-first day buckets locally.
func buildDaily(r *http.Request, days []stats.Bucket) dailyData {
	limit := paging.ParseLimit(r, paging.DefaultPageSize)
	total := paging.TotalPages(len(days), limit)
	page := paging.Clamp(paging.ParsePage(r), total)

	d := dailyData{
		Page:       page,
		Limit:      limit,
		TotalPages: total,
		TotalDays:  len(days),
		Range:      paging.RowRange(page, limit, len(days)),
		PageSizes:  paging.PageSizes,
	}

	first := (page-1)*limit + 1
	for i, b := range paging.Slice(days, page, limit) {
		d.Rows = append(d.Rows, dayRowVM{Number: first + i, Date: b.Key, Count: b.Count})
	}

	nav := paging.NewNav(page, total)
	for _, it := range nav.Items {
		link := pageLinkVM{Label: it.Label(), Current: it.Current, Ellipsis: it.Ellipsis}
		if !it.Ellipsis {
			link.URL = dailyURL(it.Page, limit)
		}
		d.Links = append(d.Links, link)
	}
	if nav.HasPrev {
		d.PrevURL = dailyURL(nav.PrevPage, limit)
	}
	if nav.HasNext {
		d.NextURL = dailyURL(nav.NextPage, limit)
	}
	return d
}

func dailyURL(page, limit int) string {
	v := url.Values{}
	v.Set("page", strconv.Itoa(page))
	v.Set("limit", strconv.Itoa(limit))
	return dailyPath + "?" + v.Encode()
}
