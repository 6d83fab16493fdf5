package testutil

import (
	"fmt"

	"github.com/roach88/braincrumbs/internal/course"
)

// NewCourse builds a text-only course from lesson ids grouped by module.
//
// Modules are named m1, m2, ... in order:
//
//	NewCourse("abc", [][]string{{"A", "B"}, {"C"}})
func NewCourse(slug string, modules [][]string) *course.Course {
	c := &course.Course{
		ID:    "course-" + slug,
		Slug:  slug,
		Title: slug,
		Level: course.LevelBeginner,
	}
	for i, ids := range modules {
		m := course.Module{ID: fmt.Sprintf("m%d", i+1), Title: fmt.Sprintf("Module %d", i+1)}
		for _, id := range ids {
			m.Lessons = append(m.Lessons, course.Lesson{ID: id, Title: id, Type: course.LessonText})
		}
		c.Modules = append(c.Modules, m)
	}
	return c
}

// NewQuestions builds quiz questions with three options each whose correct
// answers are the given indices.
func NewQuestions(correct ...int) []course.QuizQuestion {
	qs := make([]course.QuizQuestion, len(correct))
	for i, idx := range correct {
		qs[i] = course.QuizQuestion{
			ID:                 fmt.Sprintf("q%d", i+1),
			Question:           fmt.Sprintf("Question %d?", i+1),
			Options:            []string{"first", "second", "third"},
			CorrectAnswerIndex: idx,
			Explanation:        fmt.Sprintf("Answer is option %d.", idx),
		}
	}
	return qs
}
