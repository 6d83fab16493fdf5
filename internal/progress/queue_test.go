package progress

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteQueue_FIFO(t *testing.T) {
	q := newWriteQueue()

	for i := int64(1); i <= 3; i++ {
		require.True(t, q.Enqueue(writeJob{seq: i}))
	}
	assert.Equal(t, 3, q.Len())

	for i := int64(1); i <= 3; i++ {
		j, ok := q.TryDequeue()
		require.True(t, ok)
		assert.Equal(t, i, j.seq)
	}

	_, ok := q.TryDequeue()
	assert.False(t, ok, "dequeue from empty queue should return false")
}

func TestWriteQueue_EnqueueAfterClose(t *testing.T) {
	q := newWriteQueue()
	q.Close()
	q.Close() // idempotent

	assert.False(t, q.Enqueue(writeJob{seq: 1}))
	assert.True(t, q.Closed())
	assert.True(t, q.Drained())
}

func TestWriteQueue_DrainedOnlyWhenEmpty(t *testing.T) {
	q := newWriteQueue()
	q.Enqueue(writeJob{seq: 1})
	q.Close()

	assert.False(t, q.Drained())
	_, ok := q.TryDequeue()
	require.True(t, ok)
	assert.True(t, q.Drained())
}

func TestWriteQueue_CloseWakesWaiter(t *testing.T) {
	q := newWriteQueue()
	q.Close()

	select {
	case <-q.Wait():
	default:
		t.Fatal("closed queue should wake waiters")
	}
}

func TestWriteQueue_ConcurrentEnqueue(t *testing.T) {
	q := newWriteQueue()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int64) {
			defer wg.Done()
			q.Enqueue(writeJob{seq: n})
		}(int64(i))
	}
	wg.Wait()
	assert.Equal(t, 50, q.Len())
}
