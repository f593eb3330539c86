// Package queue provides the ordered execution context that asynchronous
// engine operations are submitted to.
//
// Tasks submitted to one Queue run in submission order on a single worker
// goroutine. Submit returns before the task has run; a result produced by
// an earlier task on the same queue is therefore safe input for a later
// task on that queue without synchronization. Consuming a result anywhere
// else requires Wait first.
//
// A failed task marks the queue failed: later tasks are skipped and the
// failure is reported (wrapped in ErrFailed) by every subsequent Wait.
// This layer has no cancellation; a task either runs to completion or the
// queue is already failed.
//
// A nil *Queue is the synchronous context: Submit runs the task inline and
// returns its error directly, and Wait is a no-op.
package queue

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

var (
	// ErrFailed wraps the first task error when Wait reports a failed queue.
	ErrFailed = errors.New("queue: deferred task failed")

	// ErrClosed is returned by Submit after Close.
	ErrClosed = errors.New("queue: closed")
)

const defaultDepth = 256

type task struct {
	fn    func() error
	flush chan struct{} // non-nil for Wait barriers
}

// Queue is an ordered asynchronous execution context.
type Queue struct {
	id    string
	tasks chan task
	done  chan struct{}

	// sendMu guards closed and brackets every channel send, so Close
	// cannot close the channel under an in-flight Submit. The worker
	// never takes it.
	sendMu sync.RWMutex
	closed bool

	errMu sync.Mutex
	err   error
}

// Option configures a Queue.
type Option func(*config)

type config struct {
	depth int
}

// WithDepth sets the submission buffer depth. Submit blocks only when the
// buffer is full. Default 256.
func WithDepth(depth int) Option {
	return func(c *config) {
		if depth > 0 {
			c.depth = depth
		}
	}
}

// New creates a Queue and starts its worker.
func New(optFns ...Option) *Queue {
	cfg := config{depth: defaultDepth}
	for _, fn := range optFns {
		fn(&cfg)
	}

	q := &Queue{
		id:    uuid.NewString(),
		tasks: make(chan task, cfg.depth),
		done:  make(chan struct{}),
	}
	go q.run()
	return q
}

// ID returns the queue's identity, used for log correlation.
func (q *Queue) ID() string {
	if q == nil {
		return "sync"
	}
	return q.id
}

func (q *Queue) run() {
	defer close(q.done)
	for t := range q.tasks {
		if t.flush != nil {
			close(t.flush)
			continue
		}
		if q.Err() != nil {
			continue // queue already failed, skip
		}
		if err := t.fn(); err != nil {
			q.fail(err)
		}
	}
}

func (q *Queue) fail(err error) {
	q.errMu.Lock()
	defer q.errMu.Unlock()
	if q.err == nil {
		q.err = err
	}
}

// Err returns the queue's sticky failure, unwrapped, or nil.
func (q *Queue) Err() error {
	if q == nil {
		return nil
	}
	q.errMu.Lock()
	defer q.errMu.Unlock()
	return q.err
}

func (q *Queue) send(t task) error {
	q.sendMu.RLock()
	defer q.sendMu.RUnlock()
	if q.closed {
		return ErrClosed
	}
	q.tasks <- t
	return nil
}

// Submit enqueues fn. On a nil Queue, fn runs inline and its error is
// returned directly. On a live Queue the only Submit error is ErrClosed;
// task failures surface later through Wait.
func (q *Queue) Submit(fn func() error) error {
	if q == nil {
		return fn()
	}
	return q.send(task{fn: fn})
}

// Wait blocks until every previously submitted task has run, then reports
// the queue's sticky failure wrapped in ErrFailed, or nil.
func (q *Queue) Wait() error {
	if q == nil {
		return nil
	}

	flush := make(chan struct{})
	if err := q.send(task{flush: flush}); err != nil {
		// Closed: the worker drains everything before exiting.
		<-q.done
	} else {
		<-flush
	}

	if err := q.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrFailed, err)
	}
	return nil
}

// Close stops accepting submissions, drains pending tasks and reports the
// sticky failure like Wait. Close is idempotent.
func (q *Queue) Close() error {
	if q == nil {
		return nil
	}

	q.sendMu.Lock()
	if !q.closed {
		q.closed = true
		close(q.tasks)
	}
	q.sendMu.Unlock()

	<-q.done
	if err := q.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrFailed, err)
	}
	return nil
}
