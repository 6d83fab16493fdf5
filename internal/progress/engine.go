package progress

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"sync"
)

// ErrClosed is returned by Flush after Close.
var ErrClosed = errors.New("progress: engine closed")

// Engine owns the completion set of one course.
//
// Thread-safety model:
//   - Query methods are safe from any goroutine and never wait on the store.
//   - Mutations are expected from a single caller (one learner session) but
//     are serialized internally, so concurrent calls do not corrupt state.
//   - Persistence runs on one writer goroutine per Engine, or inline on the
//     mutating goroutine with WithSynchronousWrites. Both apply writes in
//     mutation order.
type Engine struct {
	courseID string
	store    Store
	logger   *slog.Logger
	ctx      context.Context

	mu  sync.RWMutex
	set CompletionSet
	seq int64 // logical write counter, one per persisted mutation

	queue       *writeQueue
	synchronous bool
	writeMu     sync.Mutex // synchronous mode: guards written
	writeCond   *sync.Cond
	written     int64 // synchronous mode: seq of the last write applied or skipped
	done        chan struct{}

	errMu   sync.Mutex
	lastErr error
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithSynchronousWrites makes every mutation write to the store before
// returning, instead of via the background writer. Intended for one-shot
// CLI commands and tests.
func WithSynchronousWrites() Option {
	return func(e *Engine) {
		e.synchronous = true
	}
}

// Load creates an Engine for courseID and reads its stored completion set.
//
// Load never fails: a store error or corrupt value yields an empty set and a
// Warn log line. The context is used for the initial read; background writes
// keep its values but not its cancellation.
//
// Call Close when done to drain pending writes.
func Load(ctx context.Context, st Store, courseID string, opts ...Option) *Engine {
	e := &Engine{
		courseID: courseID,
		store:    st,
		logger:   slog.Default(),
		ctx:      context.WithoutCancel(ctx),
		set:      NewCompletionSet(),
		queue:    newWriteQueue(),
		done:     make(chan struct{}),
	}
	e.writeCond = sync.NewCond(&e.writeMu)
	for _, opt := range opts {
		opt(e)
	}
	e.logger = e.logger.With("course_id", courseID)

	e.set = e.read(ctx)

	if e.synchronous {
		close(e.done)
	} else {
		go e.writeLoop()
	}

	return e
}

func (e *Engine) read(ctx context.Context) CompletionSet {
	if e.store == nil {
		return NewCompletionSet()
	}

	ids, err := e.store.Read(ctx, e.courseID)
	if err != nil {
		if errors.Is(err, ErrCorrupt) {
			e.logger.Warn("stored progress is corrupt, starting empty", "error", err)
		} else {
			e.logger.Warn("failed to load progress, starting empty", "error", err)
		}
		return NewCompletionSet()
	}

	set := NewCompletionSet(ids...)
	e.logger.Debug("progress loaded", "completed", set.Len())
	return set
}

// CourseID returns the course this engine tracks.
func (e *Engine) CourseID() string {
	return e.courseID
}

// IsCompleted reports whether lessonID is in the completion set.
func (e *Engine) IsCompleted(lessonID string) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.set.Has(lessonID)
}

// Completed returns the completed lesson ids, sorted.
func (e *Engine) Completed() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.set.IDs()
}

// CompletedCount returns the size of the completion set.
func (e *Engine) CompletedCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.set.Len()
}

// MarkCompleted adds lessonID. Already-completed ids are a no-op and do
// not trigger a write.
func (e *Engine) MarkCompleted(lessonID string) {
	e.mu.Lock()
	if !e.set.Add(lessonID) {
		e.mu.Unlock()
		return
	}
	job := e.snapshotLocked()
	e.mu.Unlock()

	e.logger.Debug("lesson completed", "lesson_id", lessonID)
	e.persist(job)
}

// ToggleCompletion adds lessonID if absent, removes it if present.
// Toggling the same id twice restores the previous set.
func (e *Engine) ToggleCompletion(lessonID string) {
	if lessonID == "" {
		return
	}

	e.mu.Lock()
	removed := e.set.Remove(lessonID)
	if !removed {
		e.set.Add(lessonID)
	}
	job := e.snapshotLocked()
	e.mu.Unlock()

	e.logger.Debug("lesson toggled", "lesson_id", lessonID, "completed", !removed)
	e.persist(job)
}

// CompletionPercentage returns 100*|set|/totalLessons, or 0 when
// totalLessons is not positive. The value is not clamped; use
// ClampPercent for display.
func (e *Engine) CompletionPercentage(totalLessons int) float64 {
	if totalLessons <= 0 {
		return 0
	}
	return 100 * float64(e.CompletedCount()) / float64(totalLessons)
}

// snapshotLocked stamps the next write. Caller must hold e.mu.
// In async mode the job is enqueued here, under the lock, so queue order
// always matches mutation order.
func (e *Engine) snapshotLocked() writeJob {
	e.seq++
	job := writeJob{seq: e.seq, ids: e.set.IDs()}
	if !e.synchronous {
		if !e.queue.Enqueue(job) {
			e.logger.Warn("engine closed, progress change not persisted", "seq", job.seq)
		}
	}
	return job
}

// persist writes job inline in synchronous mode. Writes run in seq order:
// a job waits until every earlier job has been written or skipped.
func (e *Engine) persist(job writeJob) {
	if !e.synchronous {
		return
	}
	e.writeMu.Lock()
	defer e.writeMu.Unlock()
	for e.written != job.seq-1 {
		e.writeCond.Wait()
	}
	if e.queue.Closed() {
		e.logger.Warn("engine closed, progress change not persisted", "seq", job.seq)
	} else {
		e.write(job)
	}
	e.written = job.seq
	e.writeCond.Broadcast()
}

// write performs one store write; failures are logged and remembered.
func (e *Engine) write(job writeJob) {
	if e.store == nil {
		return
	}
	err := e.store.Write(e.ctx, e.courseID, job.ids)

	e.errMu.Lock()
	e.lastErr = err
	e.errMu.Unlock()

	if err != nil {
		e.logger.Warn("failed to persist progress", "seq", job.seq, "error", err)
		return
	}
	e.logger.Debug("progress persisted", "seq", job.seq, "completed", len(job.ids))
}

// writeLoop is the single writer. It drains the queue in FIFO order and
// exits once the queue is closed and empty.
func (e *Engine) writeLoop() {
	defer close(e.done)
	for {
		for {
			job, ok := e.queue.TryDequeue()
			if !ok {
				break
			}
			if job.barrier != nil {
				close(job.barrier)
				continue
			}
			e.write(job)
		}

		if e.queue.Drained() {
			return
		}
		<-e.queue.Wait()
	}
}

// Flush waits until every write enqueued before the call has been applied.
// Returns the error of the most recent write attempt, ctx.Err() if ctx ends
// first, or ErrClosed after Close.
func (e *Engine) Flush(ctx context.Context) error {
	if e.queue.Closed() {
		return ErrClosed
	}
	if !e.synchronous {
		barrier := make(chan struct{})
		if !e.queue.Enqueue(writeJob{barrier: barrier}) {
			return ErrClosed
		}
		select {
		case <-barrier:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	e.errMu.Lock()
	defer e.errMu.Unlock()
	return e.lastErr
}

// Close stops accepting writes and blocks until queued writes are applied.
// Mutations after Close still update the in-memory set but are not persisted.
func (e *Engine) Close() {
	e.queue.Close()
	<-e.done
}

// ClampPercent limits p to [0, 100] for display.
func ClampPercent(p float64) float64 {
	return math.Max(0, math.Min(100, p))
}

// DisplayPercent clamps and rounds p to a whole percentage, rounding halves
// up (1/3 → 33, 2/3 → 67).
func DisplayPercent(p float64) int {
	return int(math.Floor(ClampPercent(p) + 0.5))
}
