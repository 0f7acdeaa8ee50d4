// internal/domain/models/registrant.go
package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// Registrant is one webinar/course registrant as returned by the backend.
//
// NOTE:
//   - String fields are stored exactly as received. Blank values are replaced
//     with a placeholder only at render/export time (see system/normalize).
//   - CreatedAt stays a string because the backend is not strict about the
//     format; use CreatedTime to parse it.
type Registrant struct {
	ID          RegistrantID `json:"id"`
	FullName    string       `json:"full_name"`
	PhoneNumber string       `json:"phone_number"`
	TgUser      string       `json:"tg_user"`
	Address     string       `json:"address,omitempty"` // course tag in deployments that have one
	CreatedAt   string       `json:"createdAt"`
}

// createdAtLayouts are tried in order by CreatedTime.
var createdAtLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.000",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// CreatedTime parses CreatedAt. The second return is false when the
// timestamp is empty or unparsable; such records are skipped by aggregations.
func (r Registrant) CreatedTime() (time.Time, bool) {
	return ParseTimestamp(r.CreatedAt)
}

// ParseTimestamp parses a backend timestamp string.
func ParseTimestamp(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range createdAtLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// RegistrantID holds an identifier that the backend may send as either a
// JSON number or a JSON string.
type RegistrantID string

// UnmarshalJSON accepts numbers, strings and null.
func (id *RegistrantID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = RegistrantID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("registrant id: %w", err)
	}
	*id = RegistrantID(n.String())
	return nil
}

// MarshalJSON writes numeric ids as numbers and everything else as strings.
func (id RegistrantID) MarshalJSON() ([]byte, error) {
	if _, err := strconv.ParseInt(string(id), 10, 64); err == nil {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

func (id RegistrantID) String() string { return string(id) }
