// internal/domain/models/course.go
package models

import "strings"

// Course is the course filter tag sent to the backend as the "address"
// query parameter. It selects a subset of registrants; it is not stored.
type Course string

const (
	CourseAll Course = "all"
	CourseA   Course = "a"
	CourseB   Course = "b"
)

// ParseCourse maps a query value to a Course. Unknown values mean "all".
func ParseCourse(s string) Course {
	switch Course(strings.ToLower(strings.TrimSpace(s))) {
	case CourseA:
		return CourseA
	case CourseB:
		return CourseB
	default:
		return CourseAll
	}
}

// IsAll reports whether the course selects every registrant.
func (c Course) IsAll() bool { return c == "" || c == CourseAll }

// CourseNames maps course tags to display names.
type CourseNames map[Course]string

// DefaultCourseNames are used when course_names is not configured.
var DefaultCourseNames = CourseNames{
	CourseAll: "Barcha kurslar",
	CourseA:   "A kurs",
	CourseB:   "B kurs",
}

// ParseCourseNames parses "a:Name A,b:Name B". Missing tags fall back to
// DefaultCourseNames.
func ParseCourseNames(s string) CourseNames {
	out := CourseNames{}
	for k, v := range DefaultCourseNames {
		out[k] = v
	}
	for _, part := range strings.Split(s, ",") {
		tag, name, ok := strings.Cut(part, ":")
		if !ok {
			continue
		}
		tag = strings.ToLower(strings.TrimSpace(tag))
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		switch Course(tag) {
		case CourseAll, CourseA, CourseB:
			out[Course(tag)] = name
		}
	}
	return out
}

// Name returns the display name of c.
func (n CourseNames) Name(c Course) string {
	if c.IsAll() {
		c = CourseAll
	}
	if name, ok := n[c]; ok {
		return name
	}
	return string(c)
}

// CourseOption is a select-box entry.
type CourseOption struct {
	Value    string
	Label    string
	Selected bool
}

// Options returns the select-box entries with "all" first.
func (n CourseNames) Options(selected Course) []CourseOption {
	opts := []CourseOption{{Value: string(CourseAll), Label: n.Name(CourseAll), Selected: selected.IsAll()}}
	for _, t := range []Course{CourseA, CourseB} {
		opts = append(opts, CourseOption{Value: string(t), Label: n.Name(t), Selected: selected == t})
	}
	return opts
}
