// Package quiz implements the per-lesson quiz session as an explicit state
// machine.
//
// States:
//
//	Empty                          (no questions; terminal, inert)
//	Answering(i) --Check-->  Checked(i)
//	Checked(i)   --Next-->   Answering(i+1)   when i is not the last question
//	Checked(last)--Next-->   Finished         emits SignalCompletion once
//
// Apply is a pure function from (state, event) to (next state, commands).
// Events that are illegal in the current state return the state unchanged
// and no commands; callers' UIs are expected to disable those actions, so
// this is not reported as an error.
//
// Runner wraps Apply with the question list, a completion callback and
// logging. A Runner is single-threaded: it is not safe for concurrent use.
// Quiz state is never persisted; only the completion signal leaves the
// package.
package quiz
