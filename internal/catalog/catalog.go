package catalog

import (
	"errors"
	"fmt"

	"github.com/roach88/braincrumbs/internal/course"
)

// ErrNotFound is returned when a course slug or id does not resolve.
var ErrNotFound = errors.New("catalog: course not found")

// Provider resolves courses by slug.
type Provider interface {
	CourseBySlug(slug string) (*course.Course, bool)
}

// Catalog is an immutable in-memory set of courses in declaration order.
//
// Thread-safety: a Catalog is never mutated after New and is safe for
// concurrent use.
type Catalog struct {
	courses []course.Course
	bySlug  map[string]int
	byID    map[string]int
}

// New builds a Catalog from deep copies of courses, so later changes to the
// caller's values never reach it. Duplicate slugs are an error.
// Duplicate course ids resolve to the first occurrence.
func New(courses []course.Course) (*Catalog, error) {
	c := &Catalog{
		courses: make([]course.Course, len(courses)),
		bySlug:  make(map[string]int, len(courses)),
		byID:    make(map[string]int, len(courses)),
	}
	for i := range courses {
		c.courses[i] = courses[i].Clone()
	}

	for i := range c.courses {
		slug := c.courses[i].Slug
		if _, dup := c.bySlug[slug]; dup {
			return nil, course.ValidationError{
				Field:   fmt.Sprintf("courses[%d].slug", i),
				Message: fmt.Sprintf("slug %q already used", slug),
				Code:    course.ErrDuplicateCourseSlug,
			}
		}
		c.bySlug[slug] = i
		if _, dup := c.byID[c.courses[i].ID]; !dup {
			c.byID[c.courses[i].ID] = i
		}
	}

	return c, nil
}

// CourseBySlug implements Provider.
func (c *Catalog) CourseBySlug(slug string) (*course.Course, bool) {
	i, ok := c.bySlug[slug]
	if !ok {
		return nil, false
	}
	return &c.courses[i], true
}

// CourseByID looks a course up by id.
func (c *Catalog) CourseByID(id string) (*course.Course, bool) {
	i, ok := c.byID[id]
	if !ok {
		return nil, false
	}
	return &c.courses[i], true
}

// Lookup is CourseBySlug returning ErrNotFound for callers that prefer errors.
func (c *Catalog) Lookup(slug string) (*course.Course, error) {
	crs, ok := c.CourseBySlug(slug)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, slug)
	}
	return crs, nil
}

// All returns every course in declaration order.
func (c *Catalog) All() []*course.Course {
	out := make([]*course.Course, len(c.courses))
	for i := range c.courses {
		out[i] = &c.courses[i]
	}
	return out
}

// Len returns the number of courses.
func (c *Catalog) Len() int {
	return len(c.courses)
}

// ByLevel returns the courses with the given level, in declaration order.
func (c *Catalog) ByLevel(level course.Level) []*course.Course {
	var out []*course.Course
	for i := range c.courses {
		if c.courses[i].Level == level {
			out = append(out, &c.courses[i])
		}
	}
	return out
}
