// Package progress tracks which lessons of one course a learner has completed.
//
// The Engine owns the completion set for a single course id. Reads always
// see the latest local mutation; persistence happens behind them.
//
// ARCHITECTURE:
//
// Optimistic local state, single background writer:
//   - Mutations (MarkCompleted, ToggleCompletion) update the in-memory set
//     immediately and enqueue a full snapshot of the set.
//   - One writer goroutine per Engine drains the FIFO queue and calls
//     Store.Write in enqueue order, so the last durable value is always the
//     snapshot of the last mutation.
//   - Full snapshots, never deltas: a retried or duplicated write converges
//     to the same value.
//
// Failure policy:
//   - Load never fails. A missing, unreadable or corrupt stored value is an
//     empty set (logged at Warn).
//   - Write failures are logged and swallowed; the in-memory set remains
//     authoritative for the session. Flush reports the most recent write
//     error to callers that want it.
//
// Only one Engine per course id should be active in a runtime. Two engines
// for the same id are unsupported: last write wins, no merge.
package progress
