package progress

import "sync"

// writeJob is one queued persistence request.
//
// A job with a non-nil barrier carries no snapshot; the writer closes the
// barrier when it reaches the job, which lets Flush wait for everything
// enqueued before it.
type writeJob struct {
	seq     int64
	ids     []string
	barrier chan struct{}
}

// writeQueue is a thread-safe FIFO queue of snapshot writes.
//
// The queue is unbounded so mutations never block on a slow store.
// Enqueue may be called from any goroutine; exactly one writer dequeues.
//
// The queue uses a channel for signaling to enable context-free waiting in
// the writer loop and a prompt wake-up on Close.
type writeQueue struct {
	mu     sync.Mutex
	jobs   []writeJob
	closed bool
	signal chan struct{} // buffered, size 1
}

func newWriteQueue() *writeQueue {
	return &writeQueue{
		jobs:   make([]writeJob, 0, 8),
		signal: make(chan struct{}, 1),
	}
}

// Enqueue adds a job to the back of the queue.
// Returns false if the queue is closed.
func (q *writeQueue) Enqueue(j writeJob) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}

	q.jobs = append(q.jobs, j)

	// Non-blocking: buffer of 1 coalesces multiple signals.
	select {
	case q.signal <- struct{}{}:
	default:
	}

	return true
}

// TryDequeue removes the front job without blocking.
func (q *writeQueue) TryDequeue() (writeJob, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.jobs) == 0 {
		return writeJob{}, false
	}

	j := q.jobs[0]
	// Drop the reference so the snapshot slice can be collected.
	q.jobs[0] = writeJob{}

	if len(q.jobs) == 1 {
		q.jobs = q.jobs[:0]
	} else {
		q.jobs = q.jobs[1:]
	}

	return j, true
}

// Wait returns a channel that signals when jobs may be available.
// The channel is closed once the queue is closed.
func (q *writeQueue) Wait() <-chan struct{} {
	return q.signal
}

// Len returns the current queue length.
func (q *writeQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.jobs)
}

// Drained reports whether the queue is closed and empty.
func (q *writeQueue) Drained() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed && len(q.jobs) == 0
}

// Closed reports whether Close has been called.
func (q *writeQueue) Closed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed
}

// Close stops accepting jobs and wakes the writer.
func (q *writeQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}

	q.closed = true
	close(q.signal)
}
