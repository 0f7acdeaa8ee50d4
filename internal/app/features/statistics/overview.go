// internal/app/features/statistics/overview.go
package statistics

import (
	"html/template"
	"net/http"
	"time"

	"github.com/dalemusser/regdash/internal/app/store/registrants"
	"github.com/dalemusser/regdash/internal/app/system/charts"
	"github.com/dalemusser/regdash/internal/app/system/stats"
	"github.com/dalemusser/regdash/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

// MsgEmpty is shown when there is nothing to aggregate.
const MsgEmpty = "Hozircha ro'yxatdan o'tishlar statistikasi mavjud emas"

type chartVM struct {
	Title string
	HTML  template.HTML
}

type overviewData struct {
	viewdata.BaseVM

	Total     int
	Today     int
	Days      int
	FetchedAt string

	Charts []chartVM
	Daily  dailyData

	Empty bool
	Error string
}

// chartSpecs lays out the overview charts in page order.
func chartSpecs(s stats.Summary) []charts.Spec {
	return []charts.Spec{
		{Kind: charts.KindBar, Title: "Soatlar bo'yicha", Series: "Ro'yxatdan o'tishlar", Buckets: s.Hourly},
		{Kind: charts.KindLine, Title: "Kunlar bo'yicha", Series: "Ro'yxatdan o'tishlar", Buckets: s.Daily},
		{Kind: charts.KindBar, Title: "Haftalar bo'yicha", Series: "Ro'yxatdan o'tishlar", Buckets: s.Weekly},
		{Kind: charts.KindBar, Title: "Oylar bo'yicha", Series: "Ro'yxatdan o'tishlar", Buckets: s.Monthly},
		{Kind: charts.KindPie, Title: "Platforma", Subtitle: "Telegram foydalanuvchi nomi bo'yicha taxminiy", Series: "Platforma", Buckets: s.Platform},
	}
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /admin/statistics                                                       |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeOverview(w http.ResponseWriter, r *http.Request) {
	templates.Render(w, r, "statistics_overview", h.buildOverview(r))
}

func (h *Handler) buildOverview(r *http.Request) overviewData {
	data := overviewData{BaseVM: viewdata.NewBaseVM(r, "Statistika")}

	snap, err := h.Snapshots.Get(r.Context())
	if err != nil {
		h.Log.Warn("statistics load failed", zap.Error(err))
		data.Error = registrants.UserMessage(err, registrants.MsgStatsFailed)
		return data
	}

	sum := snap.Summary
	data.Total = sum.Total
	data.Today = sum.Today
	data.Days = len(sum.DailyTable)
	data.FetchedAt = snap.FetchedAt.Format(time.DateTime)
	data.Daily = buildDaily(r, sum.DailyTable)

	if sum.Total == 0 {
		data.Empty = true
		return data
	}

	for _, spec := range chartSpecs(sum) {
		if len(spec.Buckets) == 0 {
			continue
		}
		html, err := h.Charts.Render(spec)
		if err != nil {
			h.Log.Error("chart render failed", zap.String("chart", spec.Title), zap.Error(err))
			continue
		}
		data.Charts = append(data.Charts, chartVM{Title: spec.Title, HTML: html})
	}
	return data
}
