package quiz

import (
	"math"

	"github.com/roach88/braincrumbs/internal/course"
)

// Phase tags the active state variant.
type Phase int

const (
	// PhaseEmpty is the degenerate state of a quiz with no questions.
	PhaseEmpty Phase = iota
	// PhaseAnswering accepts Select and Check.
	PhaseAnswering
	// PhaseChecked shows the verdict for the current question; accepts Next.
	PhaseChecked
	// PhaseFinished is terminal.
	PhaseFinished
)

var phaseNames = map[Phase]string{
	PhaseEmpty:     "empty",
	PhaseAnswering: "answering",
	PhaseChecked:   "checked",
	PhaseFinished:  "finished",
}

// String returns the phase name.
func (p Phase) String() string {
	if name, ok := phaseNames[p]; ok {
		return name
	}
	return "unknown"
}

// NoSelection marks State.Selected when no option is chosen.
const NoSelection = -1

// State is one quiz session snapshot.
//
// Index is only meaningful in Answering and Checked. Correct is only
// meaningful in Checked.
type State struct {
	Phase    Phase
	Index    int
	Selected int
	Score    int
	Total    int
	Correct  bool
}

// HasSelection reports whether an option is selected.
func (s State) HasSelection() bool {
	return s.Selected != NoSelection
}

// IsLast reports whether the current question is the final one.
func (s State) IsLast() bool {
	return s.Index == s.Total-1
}

// Fraction returns Score/Total, or 0 for an empty quiz.
func (s State) Fraction() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Score) / float64(s.Total)
}

// Percent returns the score as a whole percentage, halves rounded up.
func (s State) Percent() int {
	return int(math.Floor(s.Fraction()*100 + 0.5))
}

// Event is a learner action.
type Event interface {
	isEvent()
}

// Select chooses an option of the current question.
type Select struct {
	Option int
}

// Check locks in the selected option.
type Check struct{}

// Next advances past a checked question.
type Next struct{}

func (Select) isEvent() {}
func (Check) isEvent()  {}
func (Next) isEvent()   {}

// Command is a side effect requested by a transition.
type Command interface {
	isCommand()
}

// SignalCompletion asks the caller to mark LessonID complete.
type SignalCompletion struct {
	LessonID string
	Score    int
	Total    int
}

func (SignalCompletion) isCommand() {}

// Start returns the initial state for questions.
func Start(questions []course.QuizQuestion) State {
	if len(questions) == 0 {
		return State{Phase: PhaseEmpty, Selected: NoSelection}
	}
	return State{
		Phase:    PhaseAnswering,
		Index:    0,
		Selected: NoSelection,
		Total:    len(questions),
	}
}

// Apply computes the transition for ev. Illegal events return s unchanged.
//
// questions must be the same list the state was started with.
func Apply(s State, questions []course.QuizQuestion, lessonID string, ev Event) (State, []Command) {
	if s.Total != len(questions) || s.Phase == PhaseEmpty || s.Phase == PhaseFinished {
		return s, nil
	}

	switch e := ev.(type) {
	case Select:
		if s.Phase != PhaseAnswering {
			return s, nil
		}
		if e.Option < 0 || e.Option >= len(questions[s.Index].Options) {
			return s, nil
		}
		s.Selected = e.Option
		return s, nil

	case Check:
		if s.Phase != PhaseAnswering || !s.HasSelection() {
			return s, nil
		}
		s.Phase = PhaseChecked
		s.Correct = questions[s.Index].IsCorrect(s.Selected)
		if s.Correct {
			s.Score++
		}
		return s, nil

	case Next:
		if s.Phase != PhaseChecked {
			return s, nil
		}
		if !s.IsLast() {
			return State{
				Phase:    PhaseAnswering,
				Index:    s.Index + 1,
				Selected: NoSelection,
				Score:    s.Score,
				Total:    s.Total,
			}, nil
		}
		s.Phase = PhaseFinished
		s.Selected = NoSelection
		s.Correct = false
		return s, []Command{SignalCompletion{LessonID: lessonID, Score: s.Score, Total: s.Total}}
	}

	return s, nil
}

// Legal reports whether ev would change s.
func Legal(s State, questions []course.QuizQuestion, ev Event) bool {
	next, cmds := Apply(s, questions, "", ev)
	return next != s || len(cmds) > 0
}
