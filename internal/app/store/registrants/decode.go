package registrants

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/dalemusser/regdash/internal/app/system/paging"
	"github.com/dalemusser/regdash/internal/domain/models"
)

// envelope is the object response shape. Counts may arrive as numbers or
// numeric strings.
type envelope struct {
	Users        []models.Registrant `json:"users"`
	CurrentPage  flexInt             `json:"currentPage"`
	TotalPages   flexInt             `json:"totalPages"`
	TotalUsers   flexInt             `json:"totalUsers"`
	UsersPerPage flexInt             `json:"usersPerPage"`
}

type flexInt int

func (n *flexInt) UnmarshalJSON(b []byte) error {
	s := strings.Trim(strings.TrimSpace(string(b)), `"`)
	if s == "" || s == "null" {
		*n = 0
		return nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("count %q: %w", s, err)
	}
	*n = flexInt(v)
	return nil
}

// decodePage turns a validated payload into a ListPage.
//
// Object responses are trusted for their metadata; missing values are
// derived. Bare arrays take the total from TotalCountHeader when present,
// and are sliced locally, at the clamped page, when they hold more rows than
// were asked for.
func decodePage(payload any, body []byte, header http.Header, q models.ListQuery) (models.ListPage, error) {
	if _, isArray := payload.([]any); isArray {
		var users []models.Registrant
		if err := json.Unmarshal(body, &users); err != nil {
			return models.ListPage{}, fmt.Errorf("%w: decode registrants: %v", ErrBackend, err)
		}
		total := len(users)
		if n, ok := headerCount(header); ok {
			total = n
		}
		page := finish(models.ListPage{
			Users:        users,
			CurrentPage:  q.Page,
			TotalUsers:   total,
			UsersPerPage: q.Limit,
		})
		if len(users) > q.Limit {
			page.Users = paging.Slice(users, page.CurrentPage, q.Limit)
		}
		return page, nil
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return models.ListPage{}, fmt.Errorf("%w: decode registrants: %v", ErrBackend, err)
	}
	page := models.ListPage{
		Users:        env.Users,
		CurrentPage:  int(env.CurrentPage),
		TotalPages:   int(env.TotalPages),
		TotalUsers:   int(env.TotalUsers),
		UsersPerPage: int(env.UsersPerPage),
	}
	if page.CurrentPage < 1 {
		page.CurrentPage = q.Page
	}
	if page.UsersPerPage < 1 {
		page.UsersPerPage = q.Limit
	}
	if page.TotalUsers < 1 {
		if n, ok := headerCount(header); ok {
			page.TotalUsers = n
		} else if page.TotalPages > 0 {
			page.TotalUsers = (page.TotalPages-1)*page.UsersPerPage + len(page.Users)
		} else {
			page.TotalUsers = len(page.Users)
		}
	}
	return finish(page), nil
}

// finish recomputes TotalPages and clamps CurrentPage.
func finish(p models.ListPage) models.ListPage {
	if p.Users == nil {
		p.Users = []models.Registrant{}
	}
	p.TotalPages = paging.TotalPages(p.TotalUsers, p.UsersPerPage)
	p.CurrentPage = paging.Clamp(p.CurrentPage, p.TotalPages)
	return p
}

func headerCount(h http.Header) (int, bool) {
	if h == nil {
		return 0, false
	}
	v := strings.TrimSpace(h.Get(TotalCountHeader))
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}
