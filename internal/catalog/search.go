package catalog

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"github.com/roach88/braincrumbs/internal/course"
)

// Search returns courses whose title, description or long description
// contains query, ignoring case. Text is NFC-normalized and case-folded
// before matching so "café" matches "CAFÉ".
//
// A blank query matches every course.
func (c *Catalog) Search(query string) []*course.Course {
	q := fold(strings.TrimSpace(query))
	if q == "" {
		return c.All()
	}

	var out []*course.Course
	for i := range c.courses {
		crs := &c.courses[i]
		if strings.Contains(fold(crs.Title), q) ||
			strings.Contains(fold(crs.Description), q) ||
			strings.Contains(fold(crs.LongDescription), q) {
			out = append(out, crs)
		}
	}
	return out
}

// fold normalizes s for case-insensitive comparison.
// A Caser is stateful, so one is created per call.
func fold(s string) string {
	return cases.Fold().String(norm.NFC.String(s))
}
