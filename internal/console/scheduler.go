package console

import (
	"errors"
	"sync"
)

// ErrSchedulerClosed is returned by Run when the scheduler has been closed
// and can no longer execute tasks.
var ErrSchedulerClosed = errors.New("scheduler closed")

// postQueueSize bounds the number of pending asynchronous tasks. Posts beyond
// this are dropped; Post is best-effort only.
const postQueueSize = 64

// Scheduler executes tasks one at a time on a single dedicated goroutine.
// It is the explicit stand-in for a GUI toolkit's rendering thread: the
// document and its subscribers are confined to the scheduler goroutine, and
// producers marshal mutations onto it.
type Scheduler struct {
	tasks chan schedTask

	mu     sync.Mutex
	closed bool
	quit   chan struct{}
	done   chan struct{}
}

type schedTask struct {
	fn  func()
	ack chan struct{} // nil for posted tasks
}

// NewScheduler creates a scheduler and starts its goroutine.
func NewScheduler() *Scheduler {
	s := &Scheduler{
		tasks: make(chan schedTask, postQueueSize),
		quit:  make(chan struct{}),
		done:  make(chan struct{}),
	}
	go s.loop()
	return s
}

func (s *Scheduler) loop() {
	defer close(s.done)
	for {
		select {
		case <-s.quit:
			// Queued tasks are abandoned, never acknowledged. Run callers
			// blocked on an ack observe the done channel instead and report
			// ErrSchedulerClosed.
			return
		case t := <-s.tasks:
			t.fn()
			if t.ack != nil {
				close(t.ack)
			}
		}
	}
}

// Run executes fn on the scheduler goroutine and blocks until it has
// completed. It returns ErrSchedulerClosed if the scheduler is closed before
// fn could execute.
//
// Run must not be called from the scheduler goroutine itself.
func (s *Scheduler) Run(fn func()) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSchedulerClosed
	}
	s.mu.Unlock()

	t := schedTask{fn: fn, ack: make(chan struct{})}
	select {
	case s.tasks <- t:
	case <-s.quit:
		return ErrSchedulerClosed
	}

	select {
	case <-t.ack:
		return nil
	case <-s.done:
		// The loop exited without executing the task.
		select {
		case <-t.ack:
			return nil
		default:
			return ErrSchedulerClosed
		}
	}
}

// Post queues fn for asynchronous execution on the scheduler goroutine.
// It never blocks: if the scheduler is closed or the queue is full the task
// is silently dropped.
func (s *Scheduler) Post(fn func()) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	select {
	case s.tasks <- schedTask{fn: fn}:
	default:
	}
}

// Close stops the scheduler goroutine. Pending posted tasks are discarded and
// subsequent Run calls fail with ErrSchedulerClosed. Close is idempotent and
// returns once the goroutine has exited.
func (s *Scheduler) Close() {
	s.mu.Lock()
	if !s.closed {
		s.closed = true
		close(s.quit)
	}
	s.mu.Unlock()
	<-s.done
}
