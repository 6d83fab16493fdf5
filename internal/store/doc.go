// Package store provides SQL-backed durable storage for course progress.
//
// One row per course holds the completed lesson ids as a JSON array:
//
//	course_progress(course_id PRIMARY KEY, lesson_ids TEXT, updated_seq INTEGER)
//
// Every write replaces the whole set and bumps updated_seq, a per-course
// logical revision. Ordering never depends on wall-clock time.
//
// # Dialects
//
// SQLite is the default. PostgreSQL (lib/pq) and MySQL (go-sql-driver/mysql)
// are selected through config.Config.DatabaseType. Queries are written with
// ? placeholders and rewritten per dialect.
//
// # SQLite configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - Single open connection: one writer, no SQLITE_BUSY
package store
