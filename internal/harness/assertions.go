package harness

import (
	"fmt"
	"strings"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Trace) > 0 {
		fmt.Fprintf(&buf, "\nFull trace:\n")
		for _, event := range e.Trace {
			fmt.Fprintf(&buf, "  [%d] %s", event.Seq, event.Action)
			if event.Lesson != "" {
				fmt.Fprintf(&buf, " %s", event.Lesson)
			}
			if event.Outcome != "" {
				fmt.Fprintf(&buf, " (%s)", event.Outcome)
			}
			buf.WriteString("\n")
		}
	}

	return buf.String()
}

func matches(event TraceEvent, action, lesson string) bool {
	return event.Action == action && (lesson == "" || event.Lesson == lesson)
}

func describe(action, lesson string) string {
	if lesson == "" {
		return action
	}
	return action + " " + lesson
}

// assertTraceContains checks that the trace contains the action, for the
// given lesson when one is set.
func assertTraceContains(trace []TraceEvent, assertion Assertion) error {
	for _, event := range trace {
		if matches(event, assertion.Action, assertion.Lesson) {
			return nil
		}
	}

	return &AssertionError{
		Type:     AssertTraceContains,
		Expected: describe(assertion.Action, assertion.Lesson),
		Actual:   "not found in trace",
		Trace:    trace,
	}
}

// assertTraceOrder checks if actions appear in the specified order.
// Actions don't need to be consecutive (intervening actions are allowed).
// Each entry is an action, optionally followed by a space and a lesson id.
func assertTraceOrder(trace []TraceEvent, assertion Assertion) error {
	pos := 0
	for _, want := range assertion.Actions {
		action, lesson, _ := strings.Cut(want, " ")

		found := false
		for pos < len(trace) {
			event := trace[pos]
			pos++
			if matches(event, action, lesson) {
				found = true
				break
			}
		}
		if !found {
			return &AssertionError{
				Type:     AssertTraceOrder,
				Expected: fmt.Sprintf("actions in order: %v", assertion.Actions),
				Actual:   fmt.Sprintf("%q not found after preceding actions", want),
				Trace:    trace,
			}
		}
	}

	return nil
}

// assertTraceCount checks if the action appears exactly the specified number of times.
func assertTraceCount(trace []TraceEvent, assertion Assertion) error {
	count := 0
	for _, event := range trace {
		if matches(event, assertion.Action, assertion.Lesson) {
			count++
		}
	}

	if count != assertion.Count {
		return &AssertionError{
			Type:     AssertTraceCount,
			Expected: fmt.Sprintf("%d occurrences of %s", assertion.Count, describe(assertion.Action, assertion.Lesson)),
			Actual:   fmt.Sprintf("%d occurrences", count),
			Trace:    trace,
		}
	}

	return nil
}

// assertFinalState checks the final in-memory and persisted sets.
func assertFinalState(result *Result, assertion Assertion) error {
	if assertion.Completed != nil && !sameIDs(result.Completed, assertion.Completed) {
		return &AssertionError{
			Type:     AssertFinalState,
			Expected: fmt.Sprintf("completed %v", assertion.Completed),
			Actual:   fmt.Sprintf("completed %v", result.Completed),
		}
	}

	if assertion.Stored != nil {
		if result.Stored == nil {
			return &AssertionError{
				Type:     AssertFinalState,
				Expected: fmt.Sprintf("stored %v", assertion.Stored),
				Actual:   "nothing stored",
			}
		}
		if !sameIDs(result.Stored, assertion.Stored) {
			return &AssertionError{
				Type:     AssertFinalState,
				Expected: fmt.Sprintf("stored %v", assertion.Stored),
				Actual:   fmt.Sprintf("stored %v", result.Stored),
			}
		}
	}

	return nil
}

// EvaluateAssertions evaluates all assertions against the result.
// Returns a slice of error messages for failed assertions.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errors []string

	for i, assertion := range assertions {
		var err error

		switch assertion.Type {
		case AssertTraceContains:
			err = assertTraceContains(result.Trace, assertion)
		case AssertTraceOrder:
			err = assertTraceOrder(result.Trace, assertion)
		case AssertTraceCount:
			err = assertTraceCount(result.Trace, assertion)
		case AssertFinalState:
			err = assertFinalState(result, assertion)
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
		}

		if err != nil {
			errors = append(errors, err.Error())
		}
	}

	return errors
}
