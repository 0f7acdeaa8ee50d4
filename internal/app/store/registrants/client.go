// Package registrants is the HTTP client for the remote registration
// backend. The backend is read-only from our side; every call is a GET.
package registrants

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dalemusser/regdash/internal/app/system/normalize"
	"github.com/dalemusser/regdash/internal/app/system/paging"
	"github.com/dalemusser/regdash/internal/domain/models"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"go.uber.org/zap"
)

// Errors returned by Client. Callers classify with errors.Is.
var (
	// ErrTimeout means our own deadline for the call expired.
	ErrTimeout = errors.New("registrants: request timed out")
	// ErrSlowConnection means the transport gave up (dial/TLS/header timeout).
	ErrSlowConnection = errors.New("registrants: connection too slow")
	// ErrBackend covers non-2xx statuses and payloads we could not use.
	ErrBackend = errors.New("registrants: backend error")
)

// TotalCountHeader carries the unpaginated total for bare-array responses.
const TotalCountHeader = "X-Total-Count"

// maxBody caps how much of a response we read.
const maxBody = 64 << 20

// Config configures the client.
type Config struct {
	BaseURL      string
	UsersPath    string // paginated list, e.g. "/user"
	AllUsersPath string // full set for export and statistics
	HTTPClient   *http.Client
	Logger       *zap.Logger
}

// Client talks to the registration backend.
type Client struct {
	baseURL  string
	users    string
	allUsers string
	client   *http.Client
	schema   *jsonschema.Schema
	log      *zap.Logger
}

// New builds a client.
func New(cfg Config) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, fmt.Errorf("registrants: base url is required")
	}
	if u, err := url.Parse(base); err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("registrants: invalid base url %q", cfg.BaseURL)
	}
	schema, err := compileSchema()
	if err != nil {
		return nil, err
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Transport: &http.Transport{
				Proxy:                 http.ProxyFromEnvironment,
				DialContext:           (&net.Dialer{Timeout: 5 * time.Second}).DialContext,
				TLSHandshakeTimeout:   5 * time.Second,
				ResponseHeaderTimeout: 20 * time.Second,
				IdleConnTimeout:       90 * time.Second,
				MaxIdleConnsPerHost:   4,
			},
		}
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		baseURL:  base,
		users:    pathOr(cfg.UsersPath, "/user"),
		allUsers: pathOr(cfg.AllUsersPath, pathOr(cfg.UsersPath, "/user")),
		client:   httpClient,
		schema:   schema,
		log:      log,
	}, nil
}

func pathOr(p, def string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		p = def
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return p
}

// List fetches one page. q.Page and q.Limit must be positive; the returned
// page always satisfies TotalPages == ceil(TotalUsers/UsersPerPage).
//
// A page past the end is clamped to the last page. When the backend paginates
// and answered the out-of-range page with no rows, the last page is fetched
// once more.
func (c *Client) List(ctx context.Context, q models.ListQuery) (models.ListPage, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = paging.DefaultPageSize
	}
	page, err := c.listPage(ctx, q)
	if err != nil {
		return models.ListPage{}, err
	}
	if page.TotalPages > 0 && q.Page > page.TotalPages && len(page.Users) == 0 {
		q.Page = page.TotalPages
		if page, err = c.listPage(ctx, q); err != nil {
			return models.ListPage{}, err
		}
	}
	normalize.Registrants(page.Users)
	return page, nil
}

func (c *Client) listPage(ctx context.Context, q models.ListQuery) (models.ListPage, error) {
	params := url.Values{}
	params.Set("page", strconv.Itoa(q.Page))
	params.Set("limit", strconv.Itoa(q.Limit))
	if s := strings.TrimSpace(q.Search); s != "" {
		params.Set("search", s)
	}
	if !q.Course.IsAll() {
		params.Set("address", string(q.Course))
	}

	body, header, err := c.get(ctx, c.users, params)
	if err != nil {
		return models.ListPage{}, err
	}
	payload, err := validate(c.schema, body)
	if err != nil {
		return models.ListPage{}, err
	}
	return decodePage(payload, body, header, q)
}

// All fetches every registrant, optionally narrowed to one course.
func (c *Client) All(ctx context.Context, course models.Course) ([]models.Registrant, error) {
	params := url.Values{}
	if !course.IsAll() {
		params.Set("address", string(course))
	}
	body, _, err := c.get(ctx, c.allUsers, params)
	if err != nil {
		return nil, err
	}
	payload, err := validate(c.schema, body)
	if err != nil {
		return nil, err
	}
	var users []models.Registrant
	if _, isArray := payload.([]any); isArray {
		err = json.Unmarshal(body, &users)
	} else {
		var env envelope
		err = json.Unmarshal(body, &env)
		users = env.Users
	}
	if err != nil {
		return nil, fmt.Errorf("%w: decode registrants: %v", ErrBackend, err)
	}
	return normalize.Registrants(users), nil
}

// Ping checks that the backend answers the list endpoint.
func (c *Client) Ping(ctx context.Context) error {
	params := url.Values{}
	params.Set("page", "1")
	params.Set("limit", "1")
	_, _, err := c.get(ctx, c.users, params)
	return err
}

func (c *Client) get(ctx context.Context, path string, params url.Values) ([]byte, http.Header, error) {
	target := c.baseURL + path
	if len(params) > 0 {
		target += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("registrants: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		err = classify(ctx, err)
		c.log.Warn("backend request failed",
			zap.String("path", path),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		return nil, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, nil, classify(ctx, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet := string(body)
		if len(snippet) > 200 {
			snippet = snippet[:200]
		}
		return nil, nil, fmt.Errorf("%w: status %d: %s", ErrBackend, resp.StatusCode, snippet)
	}
	c.log.Debug("backend request",
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)))
	return body, resp.Header, nil
}

// classify maps a transport error onto the package sentinels.
func classify(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return fmt.Errorf("%w: %v", ErrSlowConnection, err)
	}
	return fmt.Errorf("%w: %v", ErrBackend, err)
}
