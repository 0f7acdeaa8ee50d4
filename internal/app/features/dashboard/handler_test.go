package dashboard_test

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	uierrors "github.com/dalemusser/regdash/internal/app/features/errors"
	"github.com/dalemusser/regdash/internal/app/features/dashboard"
	"github.com/dalemusser/regdash/internal/app/store/registrants"
	"github.com/dalemusser/regdash/internal/app/system/auth"
	"github.com/dalemusser/regdash/internal/app/system/xlsxexport"
	"github.com/dalemusser/regdash/internal/domain/models"
	"github.com/dalemusser/regdash/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T, fb *testutil.FakeBackend, opt dashboard.Options) *dashboard.Handler {
	t.Helper()
	logger := zap.NewNop()
	client, err := registrants.New(registrants.Config{BaseURL: fb.URL, Logger: logger})
	require.NoError(t, err)
	if opt.Location == nil {
		opt.Location = time.UTC
	}
	return dashboard.NewHandler(client, nil, uierrors.NewErrorLogger(logger), nil, opt, logger)
}

func TestRoutes_UnauthenticatedRedirectsBeforeFetch(t *testing.T) {
	fb := testutil.NewFakeBackend(t, testutil.Registrants(30))
	h := newTestHandler(t, fb, dashboard.Options{})

	sm, err := auth.NewSessionManager("test-session-key-must-be-32-chars-long", "test-session", "", time.Hour, false, nil, zap.NewNop())
	require.NoError(t, err)
	router := dashboard.Routes(h, sm)

	for _, target := range []string{"/", "/?page=2&limit=25", "/export.xlsx"} {
		req := httptest.NewRequest(http.MethodGet, target, nil)
		req.Header.Set("Accept", "text/html")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusSeeOther, rec.Code, target)
		assert.True(t, strings.HasPrefix(rec.Header().Get("Location"), "/?return="), target)
	}
	assert.Zero(t, fb.RequestCount(), "no backend call may happen before the auth check")
}

func TestServeList_HTMXFetchesOnce(t *testing.T) {
	fb := testutil.NewFakeBackend(t, testutil.Registrants(30))
	h := newTestHandler(t, fb, dashboard.Options{})

	req := testutil.WithAdmin(testutil.NewHTMXRequest(http.MethodGet, "/admin/dashboard?limit=25&address=b"))
	testutil.Serve(h.ServeList, req)

	require.Equal(t, 1, fb.RequestCount())
	q := fb.Requests()[0]
	assert.Equal(t, "1", q.Get("page"))
	assert.Equal(t, "25", q.Get("limit"))
	assert.Equal(t, "b", q.Get("address"))
}

func TestServeExport_StreamsWorkbook(t *testing.T) {
	fb := testutil.NewFakeBackend(t, testutil.Registrants(5))
	h := newTestHandler(t, fb, dashboard.Options{})

	req := testutil.WithAdmin(testutil.NewRequest(http.MethodGet, "/admin/dashboard/export.xlsx"))
	rec := httptest.NewRecorder()
	h.ServeExport(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, xlsxexport.ContentType, rec.Header().Get("Content-Type"))
	assert.Equal(t, "5", rec.Header().Get(dashboard.ExportCountHeader))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "foydalanuvchilar_")

	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(xlsxexport.SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 6)
	assert.Equal(t, "Kurs", rows[0][3])
	assert.Equal(t, "User 1", rows[1][1])

	assert.Equal(t, []string{"/user"}, fb.Paths())
	assert.Empty(t, fb.Requests()[0].Get("page"))
}

func TestServeExport_CourseFilter(t *testing.T) {
	fb := testutil.NewFakeBackend(t, testutil.Registrants(5))
	h := newTestHandler(t, fb, dashboard.Options{
		Courses: models.ParseCourseNames("a:Frontend Kursi"),
	})

	req := testutil.WithAdmin(testutil.NewRequest(http.MethodGet, "/admin/dashboard/export.xlsx?address=a"))
	rec := httptest.NewRecorder()
	h.ServeExport(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "3", rec.Header().Get(dashboard.ExportCountHeader))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "frontend_kursi_")

	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(xlsxexport.SheetName)
	require.NoError(t, err)
	assert.NotContains(t, rows[0], "Kurs")
}

func TestServeExport_BackendFailure(t *testing.T) {
	fb := testutil.NewFakeBackend(t, testutil.Registrants(5))
	fb.FailWith(http.StatusInternalServerError)
	h := newTestHandler(t, fb, dashboard.Options{})

	req := testutil.WithAdmin(testutil.NewRequest(http.MethodGet, "/admin/dashboard/export.xlsx"))
	rec := httptest.NewRecorder()
	h.ServeExport(rec, req)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, registrants.MsgExportFailed, rec.Body.String())
	assert.Empty(t, rec.Header().Get(dashboard.ExportCountHeader))
}

func TestServeExport_PregeneratedFile(t *testing.T) {
	fb := testutil.NewFakeBackend(t, testutil.Registrants(5))
	h := newTestHandler(t, fb, dashboard.Options{ExportURL: "https://files.example.com/users.xlsx"})

	req := testutil.WithAdmin(testutil.NewRequest(http.MethodGet, "/admin/dashboard/export.xlsx"))
	rec := httptest.NewRecorder()
	h.ServeExport(rec, req)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "https://files.example.com/users.xlsx", rec.Header().Get("Location"))
	assert.Zero(t, fb.RequestCount())
}

func TestTelegramURL(t *testing.T) {
	cases := map[string]string{
		"@alice":           "https://t.me/alice",
		"bob":              "https://t.me/bob",
		"  @carol ":        "https://t.me/carol",
		"":                 "",
		models.Placeholder: "",
	}
	for in, want := range cases {
		assert.Equal(t, want, dashboard.TelegramURL(in), strconv.Quote(in))
	}
}
