package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/dalemusser/regdash/internal/domain/models"
)

// Shape selects how FakeBackend encodes list responses.
type Shape int

const (
	// ShapeObject answers {users, currentPage, totalPages, totalUsers, usersPerPage}.
	ShapeObject Shape = iota
	// ShapeArray answers a bare array of the requested page plus X-Total-Count.
	ShapeArray
	// ShapeUnpaginated answers the full filtered set as a bare array and
	// ignores page/limit.
	ShapeUnpaginated
)

// FakeBackend is an httptest server that imitates the registration backend.
// It filters by "search" (name, phone or handle substring) and "address".
type FakeBackend struct {
	*httptest.Server

	mu       sync.Mutex
	records  []models.Registrant
	shape    Shape
	status   int
	requests []url.Values
	paths    []string
}

// NewFakeBackend starts a fake backend serving records. It is closed when
// the test ends.
func NewFakeBackend(t *testing.T, records []models.Registrant) *FakeBackend {
	t.Helper()
	fb := &FakeBackend{records: records}
	fb.Server = httptest.NewServer(http.HandlerFunc(fb.serve))
	t.Cleanup(fb.Close)
	return fb
}

// SetShape changes the response shape.
func (fb *FakeBackend) SetShape(s Shape) {
	fb.mu.Lock()
	fb.shape = s
	fb.mu.Unlock()
}

// FailWith makes every following request answer status. Zero restores
// normal behaviour.
func (fb *FakeBackend) FailWith(status int) {
	fb.mu.Lock()
	fb.status = status
	fb.mu.Unlock()
}

// Requests returns the query of every request received so far.
func (fb *FakeBackend) Requests() []url.Values {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	out := make([]url.Values, len(fb.requests))
	copy(out, fb.requests)
	return out
}

// Paths returns the path of every request received so far.
func (fb *FakeBackend) Paths() []string {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	return append([]string(nil), fb.paths...)
}

// RequestCount returns how many requests were received.
func (fb *FakeBackend) RequestCount() int {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	return len(fb.requests)
}

func (fb *FakeBackend) serve(w http.ResponseWriter, r *http.Request) {
	fb.mu.Lock()
	fb.requests = append(fb.requests, r.URL.Query())
	fb.paths = append(fb.paths, r.URL.Path)
	shape, status := fb.shape, fb.status
	records := fb.records
	fb.mu.Unlock()

	if status != 0 {
		http.Error(w, "backend failure", status)
		return
	}

	q := r.URL.Query()
	matched := filter(records, q.Get("search"), q.Get("address"))

	w.Header().Set("Content-Type", "application/json")
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))
	if page < 1 || limit < 1 || shape == ShapeUnpaginated {
		_ = json.NewEncoder(w).Encode(matched)
		return
	}

	start := (page - 1) * limit
	if start > len(matched) {
		start = len(matched)
	}
	end := start + limit
	if end > len(matched) {
		end = len(matched)
	}
	slice := matched[start:end]

	if shape == ShapeArray {
		w.Header().Set("X-Total-Count", strconv.Itoa(len(matched)))
		_ = json.NewEncoder(w).Encode(slice)
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]any{
		"users":        slice,
		"currentPage":  page,
		"totalPages":   (len(matched) + limit - 1) / limit,
		"totalUsers":   len(matched),
		"usersPerPage": limit,
	})
}

func filter(records []models.Registrant, search, address string) []models.Registrant {
	search = strings.ToLower(strings.TrimSpace(search))
	out := make([]models.Registrant, 0, len(records))
	for _, r := range records {
		if address != "" && r.Address != address {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(r.FullName), search) &&
			!strings.Contains(r.PhoneNumber, search) &&
			!strings.Contains(strings.ToLower(r.TgUser), search) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// Registrants returns n registrants with ids 1..n created on consecutive
// days starting 2024-01-01, alternating courses a and b. Every third has no
// Telegram handle.
func Registrants(n int) []models.Registrant {
	out := make([]models.Registrant, n)
	for i := range out {
		id := i + 1
		course := "a"
		if id%2 == 0 {
			course = "b"
		}
		tg := "@user" + strconv.Itoa(id)
		if id%3 == 0 {
			tg = ""
		}
		day := 1 + i%28
		month := 1 + (i/28)%12
		out[i] = models.Registrant{
			ID:          models.RegistrantID(strconv.Itoa(id)),
			FullName:    "User " + strconv.Itoa(id),
			PhoneNumber: "+99890" + strconv.Itoa(1000000+id),
			TgUser:      tg,
			Address:     course,
			CreatedAt:   "2024-" + pad2(month) + "-" + pad2(day) + "T10:00:00Z",
		}
	}
	return out
}

func pad2(n int) string {
	if n < 10 {
		return "0" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}
