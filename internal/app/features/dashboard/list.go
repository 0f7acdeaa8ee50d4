// internal/app/features/dashboard/list.go
package dashboard

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/dalemusser/regdash/internal/app/store/registrants"
	"github.com/dalemusser/regdash/internal/app/system/normalize"
	"github.com/dalemusser/regdash/internal/app/system/paging"
	"github.com/dalemusser/regdash/internal/app/system/timeouts"
	"github.com/dalemusser/regdash/internal/app/system/viewdata"
	"github.com/dalemusser/regdash/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

/*─────────────────────────────────────────────────────────────────────────────*
| Template-data                                                               |
*─────────────────────────────────────────────────────────────────────────────*/

type rowVM struct {
	Number      int
	FullName    string
	PhoneNumber string
	Course      string
	Telegram    string
	TelegramURL string // empty when no handle was given
	CreatedAt   string
}

type pageLinkVM struct {
	Label    string
	URL      string
	Current  bool
	Ellipsis bool
}

type pagerVM struct {
	Links   []pageLinkVM
	PrevURL string // empty at the first page
	NextURL string // empty at the last page
}

type listData struct {
	viewdata.BaseVM

	Query      models.ListQuery
	Rows       []rowVM
	Total      int
	Range      paging.Range
	Pager      pagerVM
	PageSizes  []int
	Courses    []models.CourseOption
	ShowCourse bool

	TodayCount int
	HasToday   bool

	Error    string
	RetryURL string

	SearchDelay string // hx-trigger delay, e.g. "300ms"
	ExportURL   string
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /admin/dashboard                                                        |
*─────────────────────────────────────────────────────────────────────────────*/

// ServeList renders the registrant table. HTMX requests get only the
// table fragment.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	data := h.buildList(r)

	if isHTMX(r) {
		templates.RenderSnippet(w, "dashboard_table", data)
		return
	}
	templates.Render(w, r, "dashboard_list", data)
}

// parseQuery reads page/limit/search/address. A missing page means 1, which
// is what every search, page-size and course change sends.
func (h *Handler) parseQuery(r *http.Request) models.ListQuery {
	return models.ListQuery{
		Page:   paging.ParsePage(r),
		Limit:  paging.ParseLimit(r, h.opt.PageSize),
		Search: normalize.QueryParam(query.Get(r, "search")),
		Course: h.course(r),
	}
}

func (h *Handler) course(r *http.Request) models.Course {
	if h.opt.HideCourse {
		return models.CourseAll
	}
	return models.ParseCourse(query.Get(r, "address"))
}

func (h *Handler) buildList(r *http.Request) listData {
	q := h.parseQuery(r)

	data := listData{
		BaseVM:      viewdata.NewBaseVM(r, "Dashboard"),
		Query:       q,
		PageSizes:   paging.PageSizes,
		ShowCourse:  !h.opt.HideCourse && q.Course.IsAll(),
		SearchDelay: strconv.FormatInt(h.opt.SearchDelay.Milliseconds(), 10) + "ms",
		ExportURL:   exportURL(q.Course),
	}
	if !h.opt.HideCourse {
		data.Courses = h.opt.Courses.Options(q.Course)
	}
	if h.Today != nil {
		data.TodayCount, data.HasToday = h.Today.TodayCount()
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.List(), h.Log, "list registrants")
	defer cancel()

	page, err := h.Users.List(ctx, q)
	if err != nil {
		h.Log.Warn("registrant list failed",
			zap.Error(err),
			zap.Int("page", q.Page),
			zap.Int("limit", q.Limit),
			zap.String("search", q.Search),
			zap.String("course", string(q.Course)))
		data.Error = registrants.UserMessage(err, registrants.MsgListFailed)
		data.RetryURL = listURL(q, q.Page)
		return data
	}

	q.Page = page.CurrentPage
	data.Query = q
	data.Total = page.TotalUsers
	data.Range = paging.RowRange(page.CurrentPage, q.Limit, page.TotalUsers)
	data.Pager = buildPager(q, page.TotalPages)
	data.Rows = h.rows(page.Users, (page.CurrentPage-1)*q.Limit+1, data.ShowCourse)
	return data
}

func (h *Handler) rows(users []models.Registrant, first int, withCourse bool) []rowVM {
	if first < 1 {
		first = 1
	}
	out := make([]rowVM, 0, len(users))
	for i, u := range users {
		row := rowVM{
			Number:      first + i,
			FullName:    normalize.Placeholder(u.FullName),
			PhoneNumber: normalize.Placeholder(u.PhoneNumber),
			Telegram:    normalize.Placeholder(u.TgUser),
			TelegramURL: TelegramURL(u.TgUser),
			CreatedAt:   h.formatDate(u),
		}
		if withCourse {
			row.Course = h.courseLabel(u.Address)
		}
		out = append(out, row)
	}
	return out
}

func (h *Handler) formatDate(u models.Registrant) string {
	t, ok := u.CreatedTime()
	if !ok {
		return models.UnknownDate
	}
	return t.In(h.opt.Location).Format("02.01.2006 15:04")
}

func (h *Handler) courseLabel(address string) string {
	if strings.TrimSpace(address) == "" {
		return models.Placeholder
	}
	c := models.ParseCourse(address)
	if c.IsAll() {
		return address
	}
	return h.opt.Courses.Name(c)
}

// TelegramURL links a handle to https://t.me/{handle}. Blank handles and
// the placeholder get no link.
func TelegramURL(handle string) string {
	handle = strings.TrimPrefix(strings.TrimSpace(handle), "@")
	if handle == "" || handle == models.Placeholder {
		return ""
	}
	return "https://t.me/" + url.PathEscape(handle)
}

/*─────────────────────────────────────────────────────────────────────────────*
| URLs                                                                        |
*─────────────────────────────────────────────────────────────────────────────*/

const listPath = "/admin/dashboard"

// listURL builds a dashboard URL that preserves limit, search and course.
func listURL(q models.ListQuery, page int) string {
	v := url.Values{}
	v.Set("page", strconv.Itoa(page))
	v.Set("limit", strconv.Itoa(q.Limit))
	if q.Search != "" {
		v.Set("search", q.Search)
	}
	if !q.Course.IsAll() {
		v.Set("address", string(q.Course))
	}
	return listPath + "?" + v.Encode()
}

func exportURL(c models.Course) string {
	if c.IsAll() {
		return listPath + "/export.xlsx"
	}
	return listPath + "/export.xlsx?address=" + url.QueryEscape(string(c))
}

func buildPager(q models.ListQuery, totalPages int) pagerVM {
	nav := paging.NewNav(q.Page, totalPages)
	var p pagerVM
	for _, it := range nav.Items {
		link := pageLinkVM{Label: it.Label(), Current: it.Current, Ellipsis: it.Ellipsis}
		if !it.Ellipsis {
			link.URL = listURL(q, it.Page)
		}
		p.Links = append(p.Links, link)
	}
	if nav.HasPrev {
		p.PrevURL = listURL(q, nav.PrevPage)
	}
	if nav.HasNext {
		p.NextURL = listURL(q, nav.NextPage)
	}
	return p
}
