package dashboard

import (
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/regdash/internal/app/store/registrants"
	"github.com/dalemusser/regdash/internal/domain/models"
	"github.com/dalemusser/regdash/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fixedToday int

func (f fixedToday) TodayCount() (int, bool) { return int(f), true }

func newListHandler(t *testing.T, fb *testutil.FakeBackend) *Handler {
	t.Helper()
	client, err := registrants.New(registrants.Config{BaseURL: fb.URL})
	require.NoError(t, err)
	return NewHandler(client, fixedToday(4), nil, nil, Options{Location: time.UTC}, zap.NewNop())
}

func TestBuildList_DefaultsToFirstPage(t *testing.T) {
	fb := testutil.NewFakeBackend(t, testutil.Registrants(42))
	h := newListHandler(t, fb)

	data := h.buildList(testutil.WithAdmin(testutil.NewRequest(http.MethodGet, "/admin/dashboard")))

	require.Empty(t, data.Error)
	assert.Equal(t, 1, data.Query.Page)
	assert.Equal(t, 10, data.Query.Limit)
	assert.Equal(t, 42, data.Total)
	assert.Len(t, data.Rows, 10)
	assert.Equal(t, 1, data.Range.Start)
	assert.Equal(t, 10, data.Range.End)
	assert.Equal(t, 4, data.TodayCount)
	assert.True(t, data.HasToday)
	assert.True(t, data.ShowCourse)
	assert.Empty(t, data.Pager.PrevURL)
	assert.NotEmpty(t, data.Pager.NextURL)
}

func TestBuildList_RowNumbersFollowPage(t *testing.T) {
	fb := testutil.NewFakeBackend(t, testutil.Registrants(42))
	h := newListHandler(t, fb)

	data := h.buildList(testutil.NewRequest(http.MethodGet, "/admin/dashboard?page=3&limit=10"))

	require.Len(t, data.Rows, 10)
	assert.Equal(t, 21, data.Rows[0].Number)
	assert.Equal(t, "User 21", data.Rows[0].FullName)
	assert.Equal(t, "", data.Rows[0].TelegramURL)
	assert.Equal(t, "https://t.me/user22", data.Rows[1].TelegramURL)
}

func TestBuildList_UnpaginatedBackendIsSlicedLocally(t *testing.T) {
	fb := testutil.NewFakeBackend(t, testutil.Registrants(42))
	fb.SetShape(testutil.ShapeUnpaginated)
	h := newListHandler(t, fb)

	data := h.buildList(testutil.NewRequest(http.MethodGet, "/admin/dashboard?page=5&limit=10"))

	require.Empty(t, data.Error)
	assert.Equal(t, 42, data.Total)
	require.Len(t, data.Rows, 2)
	assert.Equal(t, 41, data.Rows[0].Number)
}

func TestBuildList_PagePastEndShowsLastPage(t *testing.T) {
	fb := testutil.NewFakeBackend(t, testutil.Registrants(25))
	h := newListHandler(t, fb)

	data := h.buildList(testutil.NewRequest(http.MethodGet, "/admin/dashboard?page=10&limit=10"))

	require.Empty(t, data.Error)
	assert.Equal(t, 3, data.Query.Page)
	assert.Equal(t, 21, data.Range.Start)
	assert.Equal(t, 25, data.Range.End)
	require.Len(t, data.Rows, 5)
	assert.Equal(t, 21, data.Rows[0].Number)
	assert.NotEmpty(t, data.Pager.Links)
	assert.NotEmpty(t, data.Pager.PrevURL)
	assert.Empty(t, data.Pager.NextURL)
}

func TestBuildList_PagerPreservesFilters(t *testing.T) {
	fb := testutil.NewFakeBackend(t, testutil.Registrants(200))
	h := newListHandler(t, fb)

	data := h.buildList(testutil.NewRequest(http.MethodGet, "/admin/dashboard?page=2&limit=25&search=User&address=a"))

	require.Empty(t, data.Error)
	assert.False(t, data.ShowCourse)
	assert.Contains(t, data.Pager.NextURL, "page=3")
	assert.Contains(t, data.Pager.NextURL, "limit=25")
	assert.Contains(t, data.Pager.NextURL, "search=User")
	assert.Contains(t, data.Pager.NextURL, "address=a")
	assert.Equal(t, "/admin/dashboard/export.xlsx?address=a", data.ExportURL)
}

func TestBuildList_BackendErrorOffersRetry(t *testing.T) {
	fb := testutil.NewFakeBackend(t, testutil.Registrants(5))
	fb.FailWith(http.StatusBadGateway)
	h := newListHandler(t, fb)

	data := h.buildList(testutil.NewRequest(http.MethodGet, "/admin/dashboard?page=2&limit=50&search=ali"))

	assert.Equal(t, registrants.MsgListFailed, data.Error)
	assert.Contains(t, data.RetryURL, "page=2")
	assert.Contains(t, data.RetryURL, "search=ali")
	assert.Empty(t, data.Rows)
}

func TestBuildList_InvalidLimitFallsBack(t *testing.T) {
	fb := testutil.NewFakeBackend(t, testutil.Registrants(5))
	h := newListHandler(t, fb)

	data := h.buildList(testutil.NewRequest(http.MethodGet, "/admin/dashboard?limit=7"))

	assert.Equal(t, 10, data.Query.Limit)
	assert.Equal(t, "10", fb.Requests()[0].Get("limit"))
}

func TestBuildList_SearchChangeStartsAtPageOne(t *testing.T) {
	fb := testutil.NewFakeBackend(t, testutil.Registrants(60))
	h := newListHandler(t, fb)

	// the filter form never sends page, so a new search term lands on page 1
	data := h.buildList(testutil.NewHTMXRequest(http.MethodGet, "/admin/dashboard?search=User+1&limit=10"))

	require.Equal(t, 1, fb.RequestCount())
	assert.Equal(t, "1", fb.Requests()[0].Get("page"))
	assert.Equal(t, "User 1", fb.Requests()[0].Get("search"))
	assert.Equal(t, 1, data.Query.Page)
}

func TestBuildList_HideCourse(t *testing.T) {
	h := newListHandler(t, testutil.NewFakeBackend(t, testutil.Registrants(3)))
	h.opt.HideCourse = true

	r := testutil.WithAdmin(testutil.NewRequest(http.MethodGet, "/admin/dashboard?address=a"))
	data := h.buildList(r)

	assert.Empty(t, data.Courses)
	assert.False(t, data.ShowCourse)
	assert.Equal(t, models.CourseAll, data.Query.Course)
}
