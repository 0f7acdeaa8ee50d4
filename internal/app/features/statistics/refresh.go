// internal/app/features/statistics/refresh.go
package statistics

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/dalemusser/regdash/internal/app/system/auth"
)

const (
	statusPath    = "/admin/statistics/refresh/status"
	statusPollMax = 60 // one poll per second
)

/*─────────────────────────────────────────────────────────────────────────────*
| POST /admin/statistics/refresh                                              |
*─────────────────────────────────────────────────────────────────────────────*/

// HandleRefresh schedules a debounced snapshot refresh. Bursts of clicks
// collapse into a single backend fetch. HTMX callers get a status fragment
// that polls until the new snapshot lands and then reloads the page.
func (h *Handler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	h.Snapshots.ScheduleRefresh()

	login := ""
	if u, ok := auth.CurrentUser(r); ok {
		login = u.Login
	}
	h.Audit.StatisticsRefresh(r.Context(), r, login)

	if isHTMX(r) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusAccepted)
		writePoller(w, h.fetchedStamp(), 1)
		return
	}
	http.Redirect(w, r, "/admin/statistics", http.StatusSeeOther)
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /admin/statistics/refresh/status?since=<unix nanos>&n=<poll>            |
*─────────────────────────────────────────────────────────────────────────────*/

// ServeRefreshStatus answers the poller. Once the snapshot is newer than
// since it sends HX-Refresh so htmx reloads the page with the new charts.
func (h *Handler) ServeRefreshStatus(w http.ResponseWriter, r *http.Request) {
	since, _ := strconv.ParseInt(r.URL.Query().Get("since"), 10, 64)
	n, _ := strconv.Atoi(r.URL.Query().Get("n"))

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if h.fetchedStamp() > since {
		w.Header().Set("HX-Refresh", "true")
		w.WriteHeader(http.StatusOK)
		return
	}
	if n >= statusPollMax {
		_, _ = w.Write([]byte(`<span>Yangilash kechikmoqda. Sahifani qayta yuklang.</span>`))
		return
	}
	writePoller(w, since, n+1)
}

// fetchedStamp is the cached snapshot's fetch time in Unix nanoseconds, or
// zero when nothing is cached.
func (h *Handler) fetchedStamp() int64 {
	snap, ok := h.Snapshots.Peek()
	if !ok || snap == nil {
		return 0
	}
	return snap.FetchedAt.UnixNano()
}

func writePoller(w http.ResponseWriter, since int64, n int) {
	fmt.Fprintf(w, `<span hx-get="%s?since=%d&amp;n=%d" hx-trigger="load delay:1s" hx-swap="outerHTML">Yangilanmoqda…</span>`,
		statusPath, since, n)
}
