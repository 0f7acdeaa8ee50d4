package registrants_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dalemusser/regdash/internal/app/store/registrants"
	"github.com/dalemusser/regdash/internal/domain/models"
	"github.com/dalemusser/regdash/internal/testutil"
	"go.uber.org/zap"
)

func newClient(t *testing.T, baseURL string) *registrants.Client {
	t.Helper()
	c, err := registrants.New(registrants.Config{BaseURL: baseURL, UsersPath: "/user", Logger: zap.NewNop()})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func TestNew_RequiresBaseURL(t *testing.T) {
	if _, err := registrants.New(registrants.Config{}); err == nil {
		t.Fatal("expected error for empty base url")
	}
	if _, err := registrants.New(registrants.Config{BaseURL: "not a url"}); err == nil {
		t.Fatal("expected error for invalid base url")
	}
}

func TestList_ObjectShape(t *testing.T) {
	fb := testutil.NewFakeBackend(t, testutil.Registrants(35))
	c := newClient(t, fb.URL)

	page, err := c.List(context.Background(), models.ListQuery{Page: 2, Limit: 10})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if page.TotalUsers != 35 || page.TotalPages != 4 || page.CurrentPage != 2 || page.UsersPerPage != 10 {
		t.Errorf("unexpected metadata: %+v", page)
	}
	if len(page.Users) != 10 || page.Users[0].ID != "11" {
		t.Errorf("unexpected users: len=%d first=%v", len(page.Users), page.Users[0].ID)
	}
}

func TestList_ArrayWithTotalHeader(t *testing.T) {
	fb := testutil.NewFakeBackend(t, testutil.Registrants(35))
	fb.SetShape(testutil.ShapeArray)
	c := newClient(t, fb.URL)

	page, err := c.List(context.Background(), models.ListQuery{Page: 4, Limit: 10})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if page.TotalUsers != 35 || page.TotalPages != 4 {
		t.Errorf("totals: %+v", page)
	}
	if len(page.Users) != 5 {
		t.Errorf("len(Users) = %d, want 5", len(page.Users))
	}
}

func TestList_UnpaginatedArrayIsSlicedLocally(t *testing.T) {
	fb := testutil.NewFakeBackend(t, testutil.Registrants(23))
	fb.SetShape(testutil.ShapeUnpaginated)
	c := newClient(t, fb.URL)

	page, err := c.List(context.Background(), models.ListQuery{Page: 3, Limit: 10})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if page.TotalUsers != 23 || page.TotalPages != 3 {
		t.Errorf("totals: %+v", page)
	}
	if len(page.Users) != 3 || page.Users[0].ID != "21" {
		t.Errorf("slice: len=%d", len(page.Users))
	}
}

func TestList_PagePastEndClampsToLastPage(t *testing.T) {
	tests := []struct {
		name     string
		shape    testutil.Shape
		requests int
	}{
		{"object", testutil.ShapeObject, 2},
		{"array with total header", testutil.ShapeArray, 2},
		{"unpaginated array", testutil.ShapeUnpaginated, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fb := testutil.NewFakeBackend(t, testutil.Registrants(25))
			fb.SetShape(tt.shape)
			c := newClient(t, fb.URL)

			page, err := c.List(context.Background(), models.ListQuery{Page: 10, Limit: 10})
			if err != nil {
				t.Fatalf("List: %v", err)
			}
			if page.CurrentPage != 3 || page.TotalPages != 3 || page.TotalUsers != 25 {
				t.Errorf("metadata: %+v", page)
			}
			if len(page.Users) != 5 || page.Users[0].ID != "21" {
				t.Fatalf("rows: len=%d", len(page.Users))
			}
			if got := fb.RequestCount(); got != tt.requests {
				t.Errorf("requests = %d, want %d", got, tt.requests)
			}
			if tt.requests == 2 {
				if got := fb.Requests()[1].Get("page"); got != "3" {
					t.Errorf("refetch page = %q, want 3", got)
				}
			}
		})
	}
}

func TestList_ForwardsQuery(t *testing.T) {
	fb := testutil.NewFakeBackend(t, testutil.Registrants(5))
	c := newClient(t, fb.URL)

	_, err := c.List(context.Background(), models.ListQuery{Page: 1, Limit: 25, Search: "  user 1 ", Course: models.CourseB})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	reqs := fb.Requests()
	if len(reqs) != 1 {
		t.Fatalf("requests = %d, want 1", len(reqs))
	}
	q := reqs[0]
	if q.Get("page") != "1" || q.Get("limit") != "25" || q.Get("search") != "user 1" || q.Get("address") != "b" {
		t.Errorf("query = %v", q)
	}
}

func TestList_OmitsEmptyFilters(t *testing.T) {
	fb := testutil.NewFakeBackend(t, testutil.Registrants(5))
	c := newClient(t, fb.URL)

	if _, err := c.List(context.Background(), models.ListQuery{Page: 1, Limit: 10, Course: models.CourseAll}); err != nil {
		t.Fatalf("List: %v", err)
	}
	q := fb.Requests()[0]
	if q.Has("search") || q.Has("address") {
		t.Errorf("unexpected filters in %v", q)
	}
}

func TestList_EmptyResult(t *testing.T) {
	fb := testutil.NewFakeBackend(t, nil)
	c := newClient(t, fb.URL)

	page, err := c.List(context.Background(), models.ListQuery{Page: 1, Limit: 10})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if page.TotalUsers != 0 || page.TotalPages != 0 || page.CurrentPage != 1 || page.Users == nil {
		t.Errorf("unexpected empty page: %+v", page)
	}
}

func TestList_NormalizesRecords(t *testing.T) {
	fb := testutil.NewFakeBackend(t, []models.Registrant{
		{ID: "1", FullName: "  <b>Ali</b> ", TgUser: "   ", CreatedAt: "2024-01-01T00:00:00Z"},
	})
	c := newClient(t, fb.URL)

	page, err := c.List(context.Background(), models.ListQuery{Page: 1, Limit: 10})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if got := page.Users[0].FullName; got != "Ali" {
		t.Errorf("FullName = %q", got)
	}
	if got := page.Users[0].TgUser; got != "" {
		t.Errorf("TgUser = %q", got)
	}
}

func TestList_NumericAndStringIDs(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"id":7,"full_name":"A","createdAt":"2024-01-01T00:00:00Z"},{"id":"x-8","full_name":null}]`))
	}))
	defer srv.Close()
	c := newClient(t, srv.URL)

	page, err := c.List(context.Background(), models.ListQuery{Page: 1, Limit: 10})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if page.Users[0].ID != "7" || page.Users[1].ID != "x-8" {
		t.Errorf("ids = %q, %q", page.Users[0].ID, page.Users[1].ID)
	}
}

func TestList_InvalidPayload(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", `<html>oops</html>`},
		{"wrong type", `"hello"`},
		{"object without users", `{"data":[]}`},
		{"bad record", `[{"full_name": 12}]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()
			c := newClient(t, srv.URL)

			_, err := c.List(context.Background(), models.ListQuery{Page: 1, Limit: 10})
			if !errors.Is(err, registrants.ErrBackend) {
				t.Errorf("err = %v, want ErrBackend", err)
			}
		})
	}
}

func TestList_StatusError(t *testing.T) {
	fb := testutil.NewFakeBackend(t, testutil.Registrants(3))
	fb.FailWith(http.StatusInternalServerError)
	c := newClient(t, fb.URL)

	_, err := c.List(context.Background(), models.ListQuery{Page: 1, Limit: 10})
	if !errors.Is(err, registrants.ErrBackend) {
		t.Errorf("err = %v, want ErrBackend", err)
	}
}

func slowServer(t *testing.T, d time.Duration) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(d):
		case <-r.Context().Done():
			return
		}
		w.Write([]byte(`[]`))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestList_DeadlineIsTimeout(t *testing.T) {
	srv := slowServer(t, time.Second)
	c := newClient(t, srv.URL)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := c.List(ctx, models.ListQuery{Page: 1, Limit: 10})
	if !errors.Is(err, registrants.ErrTimeout) {
		t.Errorf("err = %v, want ErrTimeout", err)
	}
}

func TestList_TransportTimeoutIsSlowConnection(t *testing.T) {
	srv := slowServer(t, time.Second)
	c, err := registrants.New(registrants.Config{
		BaseURL:    srv.URL,
		HTTPClient: &http.Client{Timeout: 20 * time.Millisecond},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	_, err = c.List(context.Background(), models.ListQuery{Page: 1, Limit: 10})
	if !errors.Is(err, registrants.ErrSlowConnection) {
		t.Errorf("err = %v, want ErrSlowConnection", err)
	}
}

func TestAll_UsesAllPathAndCourse(t *testing.T) {
	fb := testutil.NewFakeBackend(t, testutil.Registrants(9))
	c, err := registrants.New(registrants.Config{BaseURL: fb.URL, UsersPath: "/user", AllUsersPath: "/user/all"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	all, err := c.All(context.Background(), models.CourseA)
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	if len(all) != 5 {
		t.Errorf("len = %d, want 5 course-a records", len(all))
	}
	if p := fb.Paths()[0]; p != "/user/all" {
		t.Errorf("path = %q", p)
	}
	q := fb.Requests()[0]
	if q.Get("address") != "a" || q.Has("page") || q.Has("limit") {
		t.Errorf("query = %v", q)
	}
}

func TestAll_AcceptsObjectShape(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"users":[{"id":1},{"id":2}],"totalUsers":"2"}`))
	}))
	defer srv.Close()
	c := newClient(t, srv.URL)

	all, err := c.All(context.Background(), models.CourseAll)
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("len = %d", len(all))
	}
}

func TestPing(t *testing.T) {
	fb := testutil.NewFakeBackend(t, testutil.Registrants(1))
	c := newClient(t, fb.URL)

	if err := c.Ping(context.Background()); err != nil {
		t.Errorf("Ping: %v", err)
	}
	fb.FailWith(http.StatusBadGateway)
	if err := c.Ping(context.Background()); err == nil {
		t.Error("expected Ping error")
	}
}
