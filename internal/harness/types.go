package harness

// Trace actions.
const (
	ActionLoad         = "load"
	ActionMark         = "mark"
	ActionToggle       = "toggle"
	ActionWrite        = "write"
	ActionOpen         = "open"
	ActionQuizAnswer   = "quiz_answer"
	ActionQuizComplete = "quiz_complete"
)

// TraceEvent is one observable effect of a scenario, in logical order.
type TraceEvent struct {
	Seq     int64    `json:"seq"`
	Action  string   `json:"action"`
	Lesson  string   `json:"lesson,omitempty"`
	Outcome string   `json:"outcome,omitempty"`
	IDs     []string `json:"ids,omitempty"`
}

// Result is the outcome of a test scenario execution.
type Result struct {
	// Pass indicates overall test success.
	// True if all expectations and assertions hold.
	Pass bool `json:"pass"`

	// Trace contains every session effect in order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Completed is the final in-memory completion set.
	Completed []string `json:"completed"`

	// Stored is the final persisted completion set (nil if never written).
	Stored []string `json:"stored"`

	// Percent is the final completion percentage.
	Percent float64 `json:"percent"`
}

// NewResult creates a new passing result.
// Used as the starting point for test execution.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddTrace appends an event.
func (r *Result) AddTrace(ev TraceEvent) {
	r.Trace = append(r.Trace, ev)
}
