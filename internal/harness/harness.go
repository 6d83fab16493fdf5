package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"slices"

	"github.com/roach88/braincrumbs/internal/catalog"
	"github.com/roach88/braincrumbs/internal/course"
	"github.com/roach88/braincrumbs/internal/navigation"
	"github.com/roach88/braincrumbs/internal/progress"
	"github.com/roach88/braincrumbs/internal/quiz"
	"github.com/roach88/braincrumbs/internal/testutil"
)

// percentTolerance absorbs float formatting in scenario files.
const percentTolerance = 1e-9

// Harness is the scenario execution engine.
// It runs one scenario with a logical clock, a recording store and
// synchronous progress writes so traces are reproducible.
type Harness struct {
	course   *course.Course
	store    *testutil.RecordingStore
	engine   *progress.Engine
	clock    *testutil.LogicalClock
	sessions *testutil.FixedSessionGenerator
	logger   *slog.Logger
	result   *Result

	readOnly   bool
	lastView   navigation.View
	lastQuiz   *quiz.State
	seenWrites int
}

// Option configures Run.
type Option func(*Harness)

// WithLogger routes harness, engine and quiz logs to l.
// Default: logs are discarded.
func WithLogger(l *slog.Logger) Option {
	return func(h *Harness) {
		if l != nil {
			h.logger = l
		}
	}
}

// Run executes a scenario and returns the result.
//
// Each scenario runs against a fresh in-memory store. An error is returned
// only when the scenario cannot start (catalog or course missing); failed
// expectations are reported in Result.Errors.
func Run(scenario *Scenario, opts ...Option) (*Result, error) {
	cat, err := loadCatalog(scenario.Catalog)
	if err != nil {
		return nil, err
	}
	crs, err := cat.Lookup(scenario.Course)
	if err != nil {
		return nil, fmt.Errorf("scenario %q: %w", scenario.Name, err)
	}

	h := &Harness{
		course:   crs,
		store:    testutil.NewRecordingStore(),
		clock:    testutil.NewLogicalClock(),
		sessions: testutil.NewFixedSessionGenerator(scenario.SessionID),
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)), // Suppress logs in tests
		result:   NewResult(),
	}
	for _, opt := range opts {
		opt(h)
	}

	h.seed(scenario)

	ctx := context.Background()
	h.engine = progress.Load(ctx, h.store, crs.ID,
		progress.WithLogger(h.logger),
		progress.WithSynchronousWrites(),
	)
	defer h.engine.Close()

	h.trace(TraceEvent{Action: ActionLoad, IDs: h.engine.Completed()})

	for i, step := range scenario.Steps {
		h.executeStep(i, step)
	}

	result := h.finish()
	for _, errMsg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(errMsg)
	}

	return result, nil
}

func loadCatalog(path string) (*catalog.Catalog, error) {
	if path == "" {
		return catalog.Default(), nil
	}
	cat, errs := catalog.LoadFile(path)
	if cat == nil {
		return nil, fmt.Errorf("failed to load catalog: %w", errors.Join(errs...))
	}
	return cat, nil
}

// seed prepares the recording store for the scenario's store state.
func (h *Harness) seed(s *Scenario) {
	if s.Completed != nil {
		h.store.Seed(h.course.ID, s.Completed...)
	}

	switch s.Store {
	case StoreCorrupt:
		h.store.SeedError(h.course.ID, fmt.Errorf("%w: seeded by scenario", progress.ErrCorrupt))
	case StoreUnavailable:
		h.store.FailReads(true)
	case StoreReadOnly:
		h.store.FailWrites(true)
		h.readOnly = true
	}
}

func (h *Harness) executeStep(i int, step Step) {
	switch {
	case step.Mark != "":
		before := h.engine.IsCompleted(step.Mark)
		h.engine.MarkCompleted(step.Mark)
		h.trace(TraceEvent{Action: ActionMark, Lesson: step.Mark, Outcome: markOutcome(before)})
		h.traceWrites()

	case step.Toggle != "":
		h.engine.ToggleCompletion(step.Toggle)
		outcome := "uncompleted"
		if h.engine.IsCompleted(step.Toggle) {
			outcome = "completed"
		}
		h.trace(TraceEvent{Action: ActionToggle, Lesson: step.Toggle, Outcome: outcome})
		h.traceWrites()

	case step.Open != "":
		h.lastView = navigation.Decide(h.course, step.Open)
		h.trace(TraceEvent{Action: ActionOpen, Lesson: step.Open, Outcome: h.lastView.Kind.String()})

	case step.Quiz != nil:
		h.runQuiz(i, step.Quiz)

	case step.Expect != nil:
		h.checkExpect(i, step.Expect)
	}

	h.logger.Debug("scenario step completed", "step", i)
}

func markOutcome(alreadyCompleted bool) string {
	if alreadyCompleted {
		return "unchanged"
	}
	return "completed"
}

// runQuiz answers a quiz lesson. Finishing the quiz marks the lesson
// complete through the runner's completion callback.
func (h *Harness) runQuiz(i int, step *QuizStep) {
	ref, ok := navigation.FindActive(h.course, step.Lesson)
	if !ok {
		h.result.AddError(fmt.Sprintf("steps[%d].quiz: lesson %q not found", i, step.Lesson))
		return
	}
	if ref.Lesson.Type != course.LessonQuiz {
		h.result.AddError(fmt.Sprintf("steps[%d].quiz: lesson %q is a %s lesson", i, step.Lesson, ref.Lesson.Type))
		return
	}

	var runner *quiz.Runner
	runner = quiz.NewRunner(ref.Lesson, func(lessonID string) {
		st := runner.State()
		h.trace(TraceEvent{
			Action:  ActionQuizComplete,
			Lesson:  lessonID,
			Outcome: fmt.Sprintf("%d/%d %d%%", st.Score, st.Total, st.Percent()),
		})
		before := h.engine.IsCompleted(lessonID)
		h.engine.MarkCompleted(lessonID)
		h.trace(TraceEvent{Action: ActionMark, Lesson: lessonID, Outcome: markOutcome(before)})
		h.traceWrites()
	},
		quiz.WithLogger(h.logger),
		quiz.WithSessionIDGenerator(h.sessions),
	)

	for _, answer := range step.Answers {
		q, active := runner.Question()
		if !active {
			h.trace(TraceEvent{Action: ActionQuizAnswer, Lesson: step.Lesson, Outcome: fmt.Sprintf("%d ignored", answer)})
			continue
		}

		if !runner.Accepts(answer) {
			h.trace(TraceEvent{Action: ActionQuizAnswer, Lesson: step.Lesson, Outcome: fmt.Sprintf("%s=%d invalid", q.ID, answer)})
			continue
		}

		// Trace the verdict before Next, which may finish the quiz.
		runner.SelectOption(answer)
		runner.CheckAnswer()
		verdict := "incorrect"
		if runner.IsCorrect() {
			verdict = "correct"
		}
		h.trace(TraceEvent{Action: ActionQuizAnswer, Lesson: step.Lesson, Outcome: fmt.Sprintf("%s=%d %s", q.ID, answer, verdict)})
		runner.NextQuestion()
	}

	st := runner.State()
	h.lastQuiz = &st
}

// traceWrites records store writes made since the last call.
func (h *Harness) traceWrites() {
	writes := h.store.Writes()
	for _, w := range writes[h.seenWrites:] {
		ev := TraceEvent{Action: ActionWrite, IDs: w.LessonIDs}
		if h.readOnly {
			ev.Outcome = "failed"
		}
		h.trace(ev)
	}
	h.seenWrites = len(writes)
}

func (h *Harness) trace(ev TraceEvent) {
	ev.Seq = h.clock.Next()
	h.result.AddTrace(ev)
}

func (h *Harness) checkExpect(i int, exp *Expect) {
	fail := func(field, format string, args ...any) {
		h.result.AddError(fmt.Sprintf("steps[%d].expect.%s: %s", i, field, fmt.Sprintf(format, args...)))
	}

	if exp.Start != "" {
		got, _ := navigation.StartTarget(h.course, h.engine.IsCompleted)
		if got != exp.Start {
			fail("start", "expected %q, got %q", exp.Start, got)
		}
	}

	for _, id := range sortedKeys(exp.NextOf) {
		want := exp.NextOf[id]
		got, _ := navigation.NextLesson(h.course, id)
		if got != want {
			fail("next_of."+id, "expected %q, got %q", want, got)
		}
	}

	percent := h.engine.CompletionPercentage(navigation.TotalLessons(h.course))
	if exp.Percent != nil && math.Abs(percent-*exp.Percent) > percentTolerance {
		fail("percent", "expected %v, got %v", *exp.Percent, percent)
	}
	if exp.DisplayPercent != nil {
		if got := progress.DisplayPercent(percent); got != *exp.DisplayPercent {
			fail("display_percent", "expected %d, got %d", *exp.DisplayPercent, got)
		}
	}

	if exp.Completed != nil {
		if got := h.engine.Completed(); !sameIDs(got, exp.Completed) {
			fail("completed", "expected %v, got %v", exp.Completed, got)
		}
	}
	if exp.Stored != nil {
		if got := h.stored(); !sameIDs(got, exp.Stored) {
			fail("stored", "expected %v, got %v", exp.Stored, got)
		}
	}

	if exp.View != "" {
		if got := h.lastView.Kind.String(); got != exp.View {
			fail("view", "expected %q, got %q", exp.View, got)
		}
	}

	if exp.QuizPercent != nil {
		switch {
		case h.lastQuiz == nil:
			fail("quiz_percent", "no quiz has run")
		case h.lastQuiz.Percent() != *exp.QuizPercent:
			fail("quiz_percent", "expected %d, got %d", *exp.QuizPercent, h.lastQuiz.Percent())
		}
	}
}

func (h *Harness) stored() []string {
	ids, ok := h.store.Stored(h.course.ID)
	if !ok {
		return nil
	}
	slices.Sort(ids)
	if ids == nil {
		ids = []string{}
	}
	return ids
}

func (h *Harness) finish() *Result {
	h.result.Completed = h.engine.Completed()
	h.result.Stored = h.stored()
	h.result.Percent = h.engine.CompletionPercentage(navigation.TotalLessons(h.course))
	return h.result
}

// sameIDs compares two id lists as sets.
func sameIDs(a, b []string) bool {
	x := slices.Clone(a)
	y := slices.Clone(b)
	slices.Sort(x)
	slices.Sort(y)
	return slices.Equal(slices.Compact(x), slices.Compact(y))
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
