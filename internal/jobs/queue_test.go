// internal/jobs/queue_test.go
package jobs

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitForFinish(t *testing.T, q *Queue, id uuid.UUID) *State {
	t.Helper()

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		state, ok := q.Poll(id)
		require.True(t, ok)
		if state.Status != StatusPending {
			return state
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("job did not finish in time")
	return nil
}

func TestQueueSuccess(t *testing.T) {
	q := NewQueue(2, 8)
	defer q.Shutdown()

	handle, err := q.Enqueue(Spec{
		Name: "noop",
		Run: func() (interface{}, error) {
			return map[string]int{"written": 3}, nil
		},
	})
	require.NoError(t, err)

	state := waitForFinish(t, q, handle.ID)
	assert.Equal(t, StatusSuccess, state.Status)
	assert.Equal(t, 1, state.Attempts)
	assert.Empty(t, state.Error)
	assert.NotNil(t, state.Result)
	assert.NotNil(t, state.FinishedAt)
}

func TestQueueRetryThenSuccess(t *testing.T) {
	q := NewQueue(1, 8)
	defer q.Shutdown()

	var calls int32
	handle, err := q.Enqueue(Spec{
		Name:       "flaky",
		MaxRetries: 3,
		Backoff:    time.Millisecond,
		Run: func() (interface{}, error) {
			if atomic.AddInt32(&calls, 1) < 3 {
				return nil, errors.New("transient")
			}
			return "ok", nil
		},
	})
	require.NoError(t, err)

	state := waitForFinish(t, q, handle.ID)
	assert.Equal(t, StatusSuccess, state.Status)
	assert.Equal(t, 3, state.Attempts)
}

func TestQueueExhaustedRetries(t *testing.T) {
	q := NewQueue(1, 8)
	defer q.Shutdown()

	handle, err := q.Enqueue(Spec{
		Name:       "doomed",
		MaxRetries: 2,
		Backoff:    time.Millisecond,
		Run: func() (interface{}, error) {
			return nil, errors.New("feed unreachable")
		},
	})
	require.NoError(t, err)

	state := waitForFinish(t, q, handle.ID)
	assert.Equal(t, StatusFailure, state.Status)
	assert.Equal(t, 3, state.Attempts, "initial attempt plus two retries")
	assert.Contains(t, state.Error, "feed unreachable")
}

func TestQueueRecoversPanics(t *testing.T) {
	q := NewQueue(1, 8)
	defer q.Shutdown()

	handle, err := q.Enqueue(Spec{
		Name: "panicky",
		Run: func() (interface{}, error) {
			panic("boom")
		},
	})
	require.NoError(t, err)

	state := waitForFinish(t, q, handle.ID)
	assert.Equal(t, StatusFailure, state.Status)
	assert.Contains(t, state.Error, "boom")
}

func TestQueuePollUnknown(t *testing.T) {
	q := NewQueue(1, 8)
	defer q.Shutdown()

	_, ok := q.Poll(uuid.New())
	assert.False(t, ok)
}

func TestQueueEnqueueWithFullBuffer(t *testing.T) {
	q := NewQueue(1, 0)

	release := make(chan struct{})
	first, err := q.Enqueue(Spec{
		Name: "slow",
		Run: func() (interface{}, error) {
			<-release
			return "first", nil
		},
	})
	require.NoError(t, err)

	type enqueued struct {
		handle *Handle
		err    error
	}
	second := make(chan enqueued, 1)
	go func() {
		h, err := q.Enqueue(Spec{
			Name: "queued",
			Run: func() (interface{}, error) {
				return "second", nil
			},
		})
		second <- enqueued{h, err}
	}()

	// The only worker is parked in the first job and the buffer has no
	// room, so the second enqueue waits. Letting the worker finish must
	// unblock it: the worker has to be able to record the first result
	// and come back for more work.
	close(release)

	select {
	case got := <-second:
		require.NoError(t, got.err)
		state := waitForFinish(t, q, got.handle.ID)
		assert.Equal(t, StatusSuccess, state.Status)
	case <-time.After(3 * time.Second):
		t.Fatal("enqueue stayed blocked after the worker became free")
	}

	state := waitForFinish(t, q, first.ID)
	assert.Equal(t, StatusSuccess, state.Status)

	q.Shutdown()
}

func TestQueueShutdownRejectsNewWork(t *testing.T) {
	q := NewQueue(1, 8)

	handle, err := q.Enqueue(Spec{
		Name: "last",
		Run: func() (interface{}, error) {
			return nil, nil
		},
	})
	require.NoError(t, err)

	q.Shutdown()

	// In-flight work drained before Shutdown returned.
	state, ok := q.Poll(handle.ID)
	require.True(t, ok)
	assert.Equal(t, StatusSuccess, state.Status)

	_, err = q.Enqueue(Spec{Name: "late", Run: func() (interface{}, error) { return nil, nil }})
	assert.Error(t, err)

	// Shutdown twice is a no-op.
	q.Shutdown()
}
