package course

// Level is the difficulty label of a course.
type Level string

const (
	LevelBeginner     Level = "Beginner"
	LevelIntermediate Level = "Intermediate"
	LevelAdvanced     Level = "Advanced"
)

// ValidLevels defines allowed course levels.
var ValidLevels = map[Level]bool{
	LevelBeginner:     true,
	LevelIntermediate: true,
	LevelAdvanced:     true,
}

// LessonType distinguishes lesson payload variants.
type LessonType string

const (
	LessonVideo LessonType = "video"
	LessonText  LessonType = "text"
	LessonQuiz  LessonType = "quiz"
)

// ValidLessonTypes defines allowed lesson types.
var ValidLessonTypes = map[LessonType]bool{
	LessonVideo: true,
	LessonText:  true,
	LessonQuiz:  true,
}

// Course is a structured learning unit.
type Course struct {
	ID              string   `json:"id" yaml:"id"`
	Slug            string   `json:"slug" yaml:"slug"`
	Title           string   `json:"title" yaml:"title"`
	Description     string   `json:"description" yaml:"description"`
	LongDescription string   `json:"long_description,omitempty" yaml:"long_description,omitempty"`
	Thumbnail       string   `json:"thumbnail,omitempty" yaml:"thumbnail,omitempty"`
	Level           Level    `json:"level" yaml:"level"`
	Duration        string   `json:"duration" yaml:"duration"`
	Modules         []Module `json:"modules" yaml:"modules"`
}

// Module groups lessons. Lesson order is significant.
type Module struct {
	ID          string   `json:"id" yaml:"id"`
	Title       string   `json:"title" yaml:"title"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	Lessons     []Lesson `json:"lessons" yaml:"lessons"`
}

// Lesson is the smallest navigable unit of course content.
//
// Only the payload fields matching Type are meaningful: VideoURL for video,
// Content and ImageURL for text, Questions for quiz.
type Lesson struct {
	ID        string         `json:"id" yaml:"id"`
	Title     string         `json:"title" yaml:"title"`
	Type      LessonType     `json:"type" yaml:"type"`
	Duration  string         `json:"duration,omitempty" yaml:"duration,omitempty"`
	VideoURL  string         `json:"video_url,omitempty" yaml:"video_url,omitempty"`
	Content   string         `json:"content,omitempty" yaml:"content,omitempty"`
	ImageURL  string         `json:"image_url,omitempty" yaml:"image_url,omitempty"`
	Questions []QuizQuestion `json:"questions,omitempty" yaml:"questions,omitempty"`
}

// QuizQuestion is a single multiple-choice question.
type QuizQuestion struct {
	ID                 string   `json:"id" yaml:"id"`
	Question           string   `json:"question" yaml:"question"`
	Options            []string `json:"options" yaml:"options"`
	CorrectAnswerIndex int      `json:"correct_answer_index" yaml:"correct_answer_index"`
	Explanation        string   `json:"explanation,omitempty" yaml:"explanation,omitempty"`
}

// LessonRef points at a lesson and the module that contains it.
// Both pointers alias the owning Course.
type LessonRef struct {
	Lesson *Lesson
	Module *Module
}

// Lessons returns the course's lessons in flattened order.
// The returned slice is freshly allocated; its elements are copies.
func (c *Course) Lessons() []Lesson {
	if c == nil {
		return nil
	}
	out := make([]Lesson, 0, c.TotalLessons())
	for _, m := range c.Modules {
		out = append(out, m.Lessons...)
	}
	return out
}

// TotalLessons counts lessons across all modules.
func (c *Course) TotalLessons() int {
	if c == nil {
		return 0
	}
	n := 0
	for _, m := range c.Modules {
		n += len(m.Lessons)
	}
	return n
}

// Walk calls fn for each lesson in flattened order until fn returns false.
// fn receives pointers into the course; callers must not mutate through them.
func (c *Course) Walk(fn func(m *Module, l *Lesson) bool) {
	if c == nil {
		return
	}
	for mi := range c.Modules {
		m := &c.Modules[mi]
		for li := range m.Lessons {
			if !fn(m, &m.Lessons[li]) {
				return
			}
		}
	}
}

// IsCorrect reports whether option is the question's correct answer.
func (q QuizQuestion) IsCorrect(option int) bool {
	return option == q.CorrectAnswerIndex
}

// Clone returns a deep copy of c; no slice is shared with the original.
func (c *Course) Clone() Course {
	out := *c
	out.Modules = make([]Module, len(c.Modules))
	for i, m := range c.Modules {
		m.Lessons = make([]Lesson, len(c.Modules[i].Lessons))
		for j, l := range c.Modules[i].Lessons {
			if l.Questions != nil {
				qs := make([]QuizQuestion, len(l.Questions))
				for k, q := range l.Questions {
					q.Options = append([]string(nil), q.Options...)
					qs[k] = q
				}
				l.Questions = qs
			}
			m.Lessons[j] = l
		}
		out.Modules[i] = m
	}
	return out
}
