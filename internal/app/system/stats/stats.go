// Package stats groups registrants into time-derived buckets for the
// statistics page and the daily table.
//
// Every function skips records whose timestamp cannot be parsed. Timestamps
// are converted to loc before bucketing; a nil loc means time.Local.
package stats

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/dalemusser/regdash/internal/domain/models"
)

// Bucket is one aggregate: a derived key and the number of registrants in it.
type Bucket struct {
	Key   string `json:"key" yaml:"key"`
	Count int    `json:"count" yaml:"count"`
}

// PlatformTelegram and PlatformUnknown are the two platform buckets. The
// split is a proxy: it only says whether a Telegram handle was given.
const (
	PlatformTelegram = "Telegram"
	PlatformUnknown  = models.UnknownDate
)

// MonthNames are the Uzbek month names in calendar order.
var MonthNames = [12]string{
	"Yanvar", "Fevral", "Mart", "Aprel", "May", "Iyun",
	"Iyul", "Avgust", "Sentabr", "Oktabr", "Noyabr", "Dekabr",
}

// Summary is every aggregate computed from one record set.
type Summary struct {
	Total      int      `json:"total" yaml:"total"`
	Today      int      `json:"today" yaml:"today"`
	Hourly     []Bucket `json:"hourly" yaml:"hourly"`
	Daily      []Bucket `json:"daily" yaml:"daily"`
	Weekly     []Bucket `json:"weekly" yaml:"weekly"`
	Monthly    []Bucket `json:"monthly" yaml:"monthly"`
	Platform   []Bucket `json:"platform" yaml:"platform"`
	DailyTable []Bucket `json:"daily_table" yaml:"daily_table"`
}

// Compute builds a Summary. now decides what "today" means.
func Compute(rs []models.Registrant, loc *time.Location, now time.Time) Summary {
	return Summary{
		Total:      len(rs),
		Today:      Today(rs, loc, now),
		Hourly:     Hourly(rs, loc),
		Daily:      Daily(rs, loc),
		Weekly:     Weekly(rs, loc),
		Monthly:    Monthly(rs, loc),
		Platform:   Platform(rs),
		DailyTable: DailyWithYear(rs, loc),
	}
}

// timestamps returns the parsable creation times of rs in loc.
func timestamps(rs []models.Registrant, loc *time.Location) []time.Time {
	if loc == nil {
		loc = time.Local
	}
	out := make([]time.Time, 0, len(rs))
	for _, r := range rs {
		if t, ok := r.CreatedTime(); ok {
			out = append(out, t.In(loc))
		}
	}
	return out
}

// Hourly counts registrations per hour of day, keyed "HH", ascending.
// Hours with no registrations are omitted.
func Hourly(rs []models.Registrant, loc *time.Location) []Bucket {
	var counts [24]int
	for _, t := range timestamps(rs, loc) {
		counts[t.Hour()]++
	}
	var out []Bucket
	for h, n := range counts {
		if n > 0 {
			out = append(out, Bucket{Key: fmt.Sprintf("%02d", h), Count: n})
		}
	}
	return out
}

// Daily counts registrations per "DD.MM", ordered by month then day.
// The year is not part of the key, so the same date in different years
// shares a bucket. DailyWithYear keeps the year.
func Daily(rs []models.Registrant, loc *time.Location) []Bucket {
	type md struct{ month, day int }
	counts := map[md]int{}
	for _, t := range timestamps(rs, loc) {
		counts[md{int(t.Month()), t.Day()}]++
	}
	keys := make([]md, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].month != keys[j].month {
			return keys[i].month < keys[j].month
		}
		return keys[i].day < keys[j].day
	})
	out := make([]Bucket, 0, len(keys))
	for _, k := range keys {
		out = append(out, Bucket{Key: fmt.Sprintf("%02d.%02d", k.day, k.month), Count: counts[k]})
	}
	return out
}

// WeekNumber returns ceil((daysSinceJan1 + jan1Weekday + 1) / 7), where
// jan1Weekday counts Sunday as 0. Week 1 is the week containing 1 January.
func WeekNumber(t time.Time) int {
	jan1 := time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, t.Location())
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	days := int(math.Round(day.Sub(jan1).Hours() / 24))
	return int(math.Ceil(float64(days+int(jan1.Weekday())+1) / 7))
}

// Weekly counts registrations per week of year, keyed "N-hafta", ascending.
// Like Daily, the year is ignored.
func Weekly(rs []models.Registrant, loc *time.Location) []Bucket {
	counts := map[int]int{}
	for _, t := range timestamps(rs, loc) {
		counts[WeekNumber(t)]++
	}
	weeks := make([]int, 0, len(counts))
	for w := range counts {
		weeks = append(weeks, w)
	}
	sort.Ints(weeks)
	out := make([]Bucket, 0, len(weeks))
	for _, w := range weeks {
		out = append(out, Bucket{Key: fmt.Sprintf("%d-hafta", w), Count: counts[w]})
	}
	return out
}

// Monthly counts registrations per calendar month, keyed by Uzbek month
// name, in calendar order. Months with no registrations are omitted.
func Monthly(rs []models.Registrant, loc *time.Location) []Bucket {
	var counts [12]int
	for _, t := range timestamps(rs, loc) {
		counts[t.Month()-1]++
	}
	var out []Bucket
	for m, n := range counts {
		if n > 0 {
			out = append(out, Bucket{Key: MonthNames[m], Count: n})
		}
	}
	return out
}

// Platform splits registrants by whether they left a Telegram handle.
// Records with unparsable timestamps are still counted here. Empty buckets
// are omitted.
func Platform(rs []models.Registrant) []Bucket {
	tg, other := 0, 0
	for _, r := range rs {
		if strings.TrimSpace(r.TgUser) != "" {
			tg++
		} else {
			other++
		}
	}
	var out []Bucket
	if tg > 0 {
		out = append(out, Bucket{Key: PlatformTelegram, Count: tg})
	}
	if other > 0 {
		out = append(out, Bucket{Key: PlatformUnknown, Count: other})
	}
	return out
}

// DailyWithYear counts registrations per "DD.MM.YYYY", newest first.
func DailyWithYear(rs []models.Registrant, loc *time.Location) []Bucket {
	counts := map[time.Time]int{}
	for _, t := range timestamps(rs, loc) {
		counts[time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)]++
	}
	days := make([]time.Time, 0, len(counts))
	for d := range counts {
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].After(days[j]) })
	out := make([]Bucket, 0, len(days))
	for _, d := range days {
		out = append(out, Bucket{Key: d.Format("02.01.2006"), Count: counts[d]})
	}
	return out
}

// Today counts registrations whose timestamp falls on now's calendar day in loc.
func Today(rs []models.Registrant, loc *time.Location, now time.Time) int {
	if loc == nil {
		loc = time.Local
	}
	now = now.In(loc)
	y, m, d := now.Date()
	n := 0
	for _, t := range timestamps(rs, loc) {
		ty, tm, td := t.Date()
		if ty == y && tm == m && td == d {
			n++
		}
	}
	return n
}
