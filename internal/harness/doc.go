// Package harness replays scripted learner sessions against a course and
// checks the outcome.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: resume_after_quiz
//	description: "What this scenario validates"
//	course: crypto-foundations
//	catalog: catalogs/custom.yaml   # optional, relative to the scenario
//	store: read_only                # optional: corrupt, unavailable, read_only
//	completed: [l1-1]               # stored set before the session loads
//	steps:
//	  - mark: l1-2
//	  - toggle: l1-1
//	  - open: l2-1
//	  - quiz: {lesson: l1-3, answers: [1, 2, 2]}
//	  - expect:
//	      start: l1-1
//	      next_of: {l1-3: l2-1, l3-2: ""}
//	      percent: 42.857142857142854
//	      display_percent: 43
//	      completed: [l1-2, l1-3]
//	      stored: [l1-2, l1-3]
//	      view: lesson
//	      quiz_percent: 100
//	assertions:
//	  - type: trace_contains
//	    action: quiz_complete
//	    lesson: l1-3
//	  - type: trace_order
//	    actions: [quiz_complete l1-3, mark l1-3]
//	  - type: trace_count
//	    action: write
//	    count: 3
//	  - type: final_state
//	    stored: [l1-2, l1-3]
//
// # Deterministic Testing
//
// Each run uses a fresh recording store, synchronous progress writes, a
// logical clock for trace sequence numbers and a fixed quiz session id.
// Identical scenarios therefore produce byte-identical traces, which are
// compared against golden files under testdata/golden.
package harness
