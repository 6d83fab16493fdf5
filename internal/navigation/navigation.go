// Package navigation maps a course's lesson tree plus an optional active
// lesson id into navigation decisions.
//
// Every function walks the tree linearly (O(n) in lessons per call) in
// flattened order: module-array order, then lesson-array order. Duplicate
// ids resolve to their first occurrence. A nil course, a course without
// modules, and modules without lessons are all valid inputs.
package navigation

import "github.com/roach88/braincrumbs/internal/course"

// ViewKind selects what a course page shows.
type ViewKind int

const (
	// ViewOverview is shown when no lesson is active or the id is stale.
	ViewOverview ViewKind = iota
	// ViewLesson is shown when the active lesson id resolves.
	ViewLesson
)

// String returns the view name.
func (k ViewKind) String() string {
	if k == ViewLesson {
		return "lesson"
	}
	return "overview"
}

// View is the outcome of Decide.
type View struct {
	Kind   ViewKind
	Active course.LessonRef // zero unless Kind == ViewLesson
}

// TotalLessons counts lessons across all modules.
func TotalLessons(c *course.Course) int {
	return c.TotalLessons()
}

// FindActive locates lessonID and its parent module.
// Returns false when lessonID is empty or not in the course; a stale id is
// not an error, it means "show the overview".
func FindActive(c *course.Course, lessonID string) (course.LessonRef, bool) {
	if lessonID == "" {
		return course.LessonRef{}, false
	}

	var ref course.LessonRef
	found := false
	c.Walk(func(m *course.Module, l *course.Lesson) bool {
		if l.ID == lessonID {
			ref = course.LessonRef{Lesson: l, Module: m}
			found = true
			return false
		}
		return true
	})
	return ref, found
}

// NextLesson returns the id that follows currentID in flattened order.
// Returns false when currentID is the last lesson or is not found.
func NextLesson(c *course.Course, currentID string) (string, bool) {
	if currentID == "" {
		return "", false
	}

	var next string
	foundCurrent := false
	c.Walk(func(_ *course.Module, l *course.Lesson) bool {
		if foundCurrent {
			next = l.ID
			return false
		}
		if l.ID == currentID {
			foundCurrent = true
		}
		return true
	})
	if next == "" {
		return "", false
	}
	return next, true
}

// StartTarget returns the first lesson for which isCompleted is false.
// When every lesson is complete it falls back to the first lesson overall.
// Returns false only when the course has no lessons.
//
// A nil isCompleted treats every lesson as incomplete.
func StartTarget(c *course.Course, isCompleted func(lessonID string) bool) (string, bool) {
	var first, firstIncomplete string
	c.Walk(func(_ *course.Module, l *course.Lesson) bool {
		if first == "" {
			first = l.ID
		}
		if isCompleted == nil || !isCompleted(l.ID) {
			firstIncomplete = l.ID
			return false
		}
		return true
	})

	if firstIncomplete != "" {
		return firstIncomplete, true
	}
	if first != "" {
		return first, true
	}
	return "", false
}

// Decide picks between the overview and the lesson player for lessonID.
func Decide(c *course.Course, lessonID string) View {
	ref, ok := FindActive(c, lessonID)
	if !ok {
		return View{Kind: ViewOverview}
	}
	return View{Kind: ViewLesson, Active: ref}
}
