package course

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func twoModuleCourse() *Course {
	return &Course{
		ID:    "c1",
		Slug:  "demo",
		Title: "Demo",
		Level: LevelBeginner,
		Modules: []Module{
			{ID: "m1", Lessons: []Lesson{
				{ID: "A", Type: LessonText},
				{ID: "B", Type: LessonText},
			}},
			{ID: "m2", Lessons: []Lesson{
				{ID: "C", Type: LessonText},
			}},
		},
	}
}

func TestCourse_TotalLessons(t *testing.T) {
	assert.Equal(t, 3, twoModuleCourse().TotalLessons())
	assert.Equal(t, 0, (&Course{}).TotalLessons())
	assert.Equal(t, 0, (&Course{Modules: []Module{{ID: "empty"}}}).TotalLessons())

	var nilCourse *Course
	assert.Equal(t, 0, nilCourse.TotalLessons())
}

func TestCourse_LessonsFlattenedOrder(t *testing.T) {
	lessons := twoModuleCourse().Lessons()
	require.Len(t, lessons, 3)

	ids := make([]string, len(lessons))
	for i, l := range lessons {
		ids[i] = l.ID
	}
	assert.Equal(t, []string{"A", "B", "C"}, ids)
}

func TestCourse_WalkStopsEarly(t *testing.T) {
	var visited []string
	twoModuleCourse().Walk(func(m *Module, l *Lesson) bool {
		visited = append(visited, m.ID+"/"+l.ID)
		return l.ID != "B"
	})
	assert.Equal(t, []string{"m1/A", "m1/B"}, visited)
}

func TestCourse_WalkNil(t *testing.T) {
	var c *Course
	called := false
	c.Walk(func(*Module, *Lesson) bool {
		called = true
		return true
	})
	assert.False(t, called)
}

func TestQuizQuestion_IsCorrect(t *testing.T) {
	q := QuizQuestion{Options: []string{"a", "b", "c"}, CorrectAnswerIndex: 1}
	assert.True(t, q.IsCorrect(1))
	assert.False(t, q.IsCorrect(0))
	assert.False(t, q.IsCorrect(-1))
}

func TestCourse_CloneSharesNothing(t *testing.T) {
	c := twoModuleCourse()
	c.Modules[0].Lessons[1] = Lesson{ID: "B", Type: LessonQuiz, Questions: []QuizQuestion{
		{ID: "q", Options: []string{"x", "y"}, CorrectAnswerIndex: 1},
	}}

	clone := c.Clone()
	c.Modules[0].Title = "changed"
	c.Modules[0].Lessons[0].ID = "Z"
	c.Modules[0].Lessons[1].Questions[0].Options[1] = "changed"

	assert.Equal(t, "", clone.Modules[0].Title)
	assert.Equal(t, "A", clone.Modules[0].Lessons[0].ID)
	assert.Equal(t, []string{"x", "y"}, clone.Modules[0].Lessons[1].Questions[0].Options)
	assert.Equal(t, 3, clone.TotalLessons())
}
