package quiz

import (
	"log/slog"

	"github.com/google/uuid"

	"github.com/roach88/braincrumbs/internal/course"
)

// SessionIDGenerator generates quiz session ids for log correlation.
// Implemented by UUIDv7Generator (production) and
// testutil.FixedSessionGenerator (tests).
type SessionIDGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-sortable UUIDv7 session ids.
//
// Thread-safety: UUIDv7Generator is stateless and safe for concurrent use.
type UUIDv7Generator struct{}

// Generate creates a new UUIDv7 as a hyphenated string.
// Panics if UUID generation fails (should never happen in practice).
func (UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// CompletionFunc receives the lesson id when a quiz finishes.
type CompletionFunc func(lessonID string)

// Runner drives one quiz lesson.
type Runner struct {
	lessonID   string
	questions  []course.QuizQuestion
	state      State
	onComplete CompletionFunc
	sessionID  string
	logger     *slog.Logger
	signaled   bool
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) RunnerOption {
	return func(r *Runner) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithSessionIDGenerator overrides the session id source.
func WithSessionIDGenerator(g SessionIDGenerator) RunnerOption {
	return func(r *Runner) {
		if g != nil {
			r.sessionID = g.Generate()
		}
	}
}

// NewRunner starts a quiz session for lesson. onComplete may be nil.
//
// A lesson without questions yields a Runner in PhaseEmpty that ignores
// every action and never calls onComplete.
func NewRunner(lesson *course.Lesson, onComplete CompletionFunc, opts ...RunnerOption) *Runner {
	r := &Runner{
		onComplete: onComplete,
		logger:     slog.Default(),
	}
	if lesson != nil {
		r.lessonID = lesson.ID
		r.questions = lesson.Questions
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.sessionID == "" {
		r.sessionID = UUIDv7Generator{}.Generate()
	}
	r.logger = r.logger.With("quiz_session", r.sessionID, "lesson_id", r.lessonID)
	r.state = Start(r.questions)

	if r.state.Phase == PhaseEmpty {
		r.logger.Debug("quiz has no questions")
	}
	return r
}

// SessionID returns the id used in this runner's log lines.
func (r *Runner) SessionID() string {
	return r.sessionID
}

// LessonID returns the quiz lesson's id.
func (r *Runner) LessonID() string {
	return r.lessonID
}

// State returns the current snapshot.
func (r *Runner) State() State {
	return r.state
}

// Question returns the current question, or false when none is active.
func (r *Runner) Question() (course.QuizQuestion, bool) {
	switch r.state.Phase {
	case PhaseAnswering, PhaseChecked:
		return r.questions[r.state.Index], true
	}
	return course.QuizQuestion{}, false
}

// IsCorrect reports the verdict of the checked question.
func (r *Runner) IsCorrect() bool {
	return r.state.Phase == PhaseChecked && r.state.Correct
}

// SelectOption records idx as the current selection.
func (r *Runner) SelectOption(idx int) {
	r.dispatch(Select{Option: idx})
}

// CheckAnswer locks in the selection and scores it.
func (r *Runner) CheckAnswer() {
	r.dispatch(Check{})
}

// NextQuestion advances, finishing the quiz after the last question.
func (r *Runner) NextQuestion() {
	r.dispatch(Next{})
}

// Accepts reports whether idx is a valid option of the current question.
func (r *Runner) Accepts(idx int) bool {
	if r.state.Phase != PhaseAnswering {
		return false
	}
	return r.state.Selected == idx || Legal(r.state, r.questions, Select{Option: idx})
}

// Answer selects idx, checks it and advances. ok is false, and nothing
// changes, when idx is not a valid option of an active question.
func (r *Runner) Answer(idx int) (correct, ok bool) {
	if !r.Accepts(idx) {
		r.logger.Debug("ignored quiz answer", "option", idx, "phase", r.state.Phase.String())
		return false, false
	}
	r.SelectOption(idx)
	r.CheckAnswer()
	correct = r.IsCorrect()
	r.NextQuestion()
	return correct, true
}

func (r *Runner) dispatch(ev Event) {
	next, cmds := Apply(r.state, r.questions, r.lessonID, ev)
	if next == r.state && len(cmds) == 0 {
		r.logger.Debug("ignored quiz action", "action", eventName(ev), "phase", r.state.Phase.String())
		return
	}
	r.state = next

	for _, cmd := range cmds {
		switch c := cmd.(type) {
		case SignalCompletion:
			if r.signaled {
				continue
			}
			r.signaled = true
			r.logger.Info("quiz finished", "score", c.Score, "total", c.Total, "percent", r.state.Percent())
			if r.onComplete != nil {
				r.onComplete(c.LessonID)
			}
		}
	}
}

func eventName(ev Event) string {
	switch ev.(type) {
	case Select:
		return "select"
	case Check:
		return "check"
	case Next:
		return "next"
	}
	return "unknown"
}
