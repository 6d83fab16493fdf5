package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Scenario defines a learner session to replay against a course.
// Steps run in order against a fresh in-memory progress store; expectations
// and assertions check navigation, percentages and persisted state.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Course is the slug of the course under test.
	Course string `yaml:"course"`

	// Catalog is an optional catalog file. Relative paths resolve against
	// the scenario file's directory. Empty selects the embedded catalog.
	Catalog string `yaml:"catalog,omitempty"`

	// Store simulates the state of the progress store: "" (healthy),
	// "corrupt" (stored value undecodable), "unavailable" (reads fail) or
	// "read_only" (writes fail).
	Store string `yaml:"store,omitempty"`

	// Completed seeds the stored completion set before the session loads.
	Completed []string `yaml:"completed,omitempty"`

	// Steps are the learner actions and checkpoints, in order.
	Steps []Step `yaml:"steps"`

	// Assertions validate the final trace and state.
	// Supported types: trace_contains, trace_order, trace_count, final_state
	Assertions []Assertion `yaml:"assertions,omitempty"`

	// SessionID fixes the quiz session id for deterministic logs.
	// If empty, defaults to "test-session-default".
	SessionID string `yaml:"session_id,omitempty"`
}

// Store states.
const (
	StoreHealthy     = ""
	StoreCorrupt     = "corrupt"
	StoreUnavailable = "unavailable"
	StoreReadOnly    = "read_only"
)

// Step is exactly one of: mark, toggle, open, quiz or expect.
type Step struct {
	// Mark completes a lesson (idempotent).
	Mark string `yaml:"mark,omitempty"`

	// Toggle flips a lesson's completion.
	Toggle string `yaml:"toggle,omitempty"`

	// Open resolves a lesson id to the overview or lesson view.
	Open string `yaml:"open,omitempty"`

	// Quiz runs a quiz lesson with scripted answers.
	Quiz *QuizStep `yaml:"quiz,omitempty"`

	// Expect checks the session at this point.
	Expect *Expect `yaml:"expect,omitempty"`
}

// QuizStep answers a quiz lesson. Each answer is selected, checked and
// followed by "next".
type QuizStep struct {
	Lesson  string `yaml:"lesson"`
	Answers []int  `yaml:"answers"`
}

// Expect is a checkpoint. Only the fields that are set are checked.
type Expect struct {
	// Start is the expected start/continue target.
	Start string `yaml:"start,omitempty"`

	// NextOf maps lesson ids to their expected successor; "" means
	// end of course.
	NextOf map[string]string `yaml:"next_of,omitempty"`

	// Percent is the expected completion percentage (unclamped).
	Percent *float64 `yaml:"percent,omitempty"`

	// DisplayPercent is the expected rounded, clamped percentage.
	DisplayPercent *int `yaml:"display_percent,omitempty"`

	// Completed is the expected in-memory completion set, sorted.
	Completed []string `yaml:"completed,omitempty"`

	// Stored is the expected persisted completion set, sorted.
	Stored []string `yaml:"stored,omitempty"`

	// View is the expected view kind of the last open step.
	View string `yaml:"view,omitempty"`

	// QuizPercent is the expected percent of the last quiz run.
	QuizPercent *int `yaml:"quiz_percent,omitempty"`
}

// Assertion validates the trace or final state.
type Assertion struct {
	// Type specifies the assertion type:
	// - "trace_contains": Check action appears in trace (optionally for lesson)
	// - "trace_order": Check actions appear in order
	// - "trace_count": Check action appears exactly N times
	// - "final_state": Check the final completed and/or stored set
	Type string `yaml:"type"`

	// Action is the trace action (used by trace_contains, trace_count).
	Action string `yaml:"action,omitempty"`

	// Lesson narrows trace_contains and trace_count to one lesson.
	Lesson string `yaml:"lesson,omitempty"`

	// Count is the expected number of occurrences (used by trace_count).
	Count int `yaml:"count,omitempty"`

	// Actions is the expected action order (used by trace_order).
	Actions []string `yaml:"actions,omitempty"`

	// Completed and Stored are the expected final sets (used by final_state).
	Completed []string `yaml:"completed,omitempty"`
	Stored    []string `yaml:"stored,omitempty"`
}

// Assertion type constants.
const (
	AssertTraceContains = "trace_contains"
	AssertTraceOrder    = "trace_order"
	AssertTraceCount    = "trace_count"
	AssertFinalState    = "final_state"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
//
// A relative catalog path is resolved against the scenario's directory.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	scenario, err := ParseScenario(data)
	if err != nil {
		return nil, err
	}

	if scenario.Catalog != "" && !filepath.IsAbs(scenario.Catalog) {
		scenario.Catalog = filepath.Join(filepath.Dir(path), scenario.Catalog)
	}
	if scenario.Catalog != "" {
		if _, err := os.Stat(scenario.Catalog); os.IsNotExist(err) {
			return nil, fmt.Errorf("invalid scenario: catalog file not found: %s", scenario.Catalog)
		}
	}

	return scenario, nil
}

// ParseScenario decodes scenario YAML without touching the filesystem.
func ParseScenario(data []byte) (*Scenario, error) {
	// Parse YAML with strict field validation (catches typos like "assertion:" vs "assertions:")
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if s.Course == "" {
		return fmt.Errorf("course is required")
	}

	switch s.Store {
	case StoreHealthy, StoreCorrupt, StoreUnavailable, StoreReadOnly:
	default:
		return fmt.Errorf("unknown store state %q", s.Store)
	}

	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	for i, step := range s.Steps {
		if err := validateStep(i, &step); err != nil {
			return err
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

func validateStep(index int, st *Step) error {
	kinds := 0
	if st.Mark != "" {
		kinds++
	}
	if st.Toggle != "" {
		kinds++
	}
	if st.Open != "" {
		kinds++
	}
	if st.Quiz != nil {
		kinds++
		if st.Quiz.Lesson == "" {
			return fmt.Errorf("steps[%d].quiz: lesson is required", index)
		}
	}
	if st.Expect != nil {
		kinds++
	}

	if kinds != 1 {
		return fmt.Errorf("steps[%d]: exactly one of mark, toggle, open, quiz, expect is required", index)
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertTraceContains:
		if a.Action == "" {
			return fmt.Errorf("assertions[%d]: action is required for trace_contains", index)
		}
	case AssertTraceOrder:
		if len(a.Actions) == 0 {
			return fmt.Errorf("assertions[%d]: actions list is required for trace_order", index)
		}
	case AssertTraceCount:
		if a.Action == "" {
			return fmt.Errorf("assertions[%d]: action is required for trace_count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for trace_count", index)
		}
	case AssertFinalState:
		if a.Completed == nil && a.Stored == nil {
			return fmt.Errorf("assertions[%d]: completed or stored is required for final_state", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
