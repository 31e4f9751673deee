// internal/jobs/queue.go
package jobs

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type Status string

const (
	StatusPending Status = "pending"
	StatusSuccess Status = "success"
	StatusFailure Status = "failure"
)

// Spec describes one fire-and-forget job. Retry policy travels with the
// spec rather than the queue, so import and email jobs can back off
// differently.
type Spec struct {
	Name       string
	MaxRetries int
	Backoff    time.Duration
	Run        func() (interface{}, error)
}

type Handle struct {
	ID uuid.UUID `json:"id"`
}

// State is the pollable view of a dispatched job.
type State struct {
	ID         uuid.UUID   `json:"id"`
	Name       string      `json:"name"`
	Status     Status      `json:"status"`
	Result     interface{} `json:"result,omitempty"`
	Error      string      `json:"error,omitempty"`
	Attempts   int         `json:"attempts"`
	EnqueuedAt time.Time   `json:"enqueued_at"`
	FinishedAt *time.Time  `json:"finished_at,omitempty"`
}

type task struct {
	id   uuid.UUID
	spec Spec
}

// Queue runs jobs on a fixed worker pool, decoupled from request
// handlers. Callers get a handle back immediately and poll for the
// outcome; exhausted retries leave the job in failure state with the
// last error recorded.
type Queue struct {
	mtx     sync.RWMutex
	states  map[uuid.UUID]*State
	tasks   chan task
	done    chan struct{}
	wg      sync.WaitGroup
	senders sync.WaitGroup
	closed  bool
}

func NewQueue(workers, buffer int) *Queue {
	if workers < 1 {
		workers = 1
	}
	q := &Queue{
		states: make(map[uuid.UUID]*State),
		tasks:  make(chan task, buffer),
		done:   make(chan struct{}),
	}
	for i := 0; i < workers; i++ {
		q.wg.Add(1)
		go q.worker()
	}
	return q
}

// Enqueue registers the job as pending and hands it to the pool. The
// channel send happens outside the lock: workers take the same lock to
// record results, so sending under it would wedge the whole queue the
// moment the task buffer fills up.
func (q *Queue) Enqueue(spec Spec) (*Handle, error) {
	q.mtx.Lock()
	if q.closed {
		q.mtx.Unlock()
		return nil, fmt.Errorf("job queue is shut down")
	}

	id := uuid.New()
	q.states[id] = &State{
		ID:         id,
		Name:       spec.Name,
		Status:     StatusPending,
		EnqueuedAt: time.Now(),
	}
	q.senders.Add(1)
	q.mtx.Unlock()
	defer q.senders.Done()

	select {
	case q.tasks <- task{id: id, spec: spec}:
		return &Handle{ID: id}, nil
	case <-q.done:
		q.mtx.Lock()
		delete(q.states, id)
		q.mtx.Unlock()
		return nil, fmt.Errorf("job queue is shut down")
	}
}

// Poll returns a snapshot of the job state.
func (q *Queue) Poll(id uuid.UUID) (*State, bool) {
	q.mtx.RLock()
	defer q.mtx.RUnlock()

	state, ok := q.states[id]
	if !ok {
		return nil, false
	}
	snapshot := *state
	return &snapshot, true
}

// Shutdown stops accepting work and waits for in-flight jobs to finish.
func (q *Queue) Shutdown() {
	q.mtx.Lock()
	if q.closed {
		q.mtx.Unlock()
		return
	}
	q.closed = true
	close(q.done)
	q.mtx.Unlock()

	// closed is set, so no new senders appear; wait out any send still
	// in flight before closing the channel the workers drain.
	q.senders.Wait()
	close(q.tasks)
	q.wg.Wait()
}

func (q *Queue) worker() {
	defer q.wg.Done()
	for t := range q.tasks {
		q.execute(t)
	}
}

func (q *Queue) execute(t task) {
	var (
		result  interface{}
		lastErr error
	)

	attempts := 0
	for attempt := 0; attempt <= t.spec.MaxRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(t.spec.Backoff)
		}
		attempts++

		result, lastErr = q.runOnce(t.spec)
		if lastErr == nil {
			break
		}

		logrus.WithFields(logrus.Fields{
			"job_id":  t.id,
			"job":     t.spec.Name,
			"attempt": attempts,
		}).WithError(lastErr).Warn("Job attempt failed")
	}

	now := time.Now()

	q.mtx.Lock()
	state := q.states[t.id]
	state.Attempts = attempts
	state.FinishedAt = &now
	if lastErr != nil {
		state.Status = StatusFailure
		state.Error = lastErr.Error()
	} else {
		state.Status = StatusSuccess
		state.Result = result
	}
	q.mtx.Unlock()

	if lastErr != nil {
		logrus.WithFields(logrus.Fields{
			"job_id":   t.id,
			"job":      t.spec.Name,
			"attempts": attempts,
		}).WithError(lastErr).Error("Job failed")
	} else {
		logrus.WithFields(logrus.Fields{
			"job_id":   t.id,
			"job":      t.spec.Name,
			"attempts": attempts,
		}).Info("Job completed")
	}
}

func (q *Queue) runOnce(spec Spec) (result interface{}, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job panicked: %v", r)
		}
	}()
	return spec.Run()
}
