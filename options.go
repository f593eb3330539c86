package dictcol

import (
	"github.com/hupe1980/dictcol/queue"
	"github.com/hupe1980/dictcol/resource"
)

type options struct {
	alloc   *resource.Allocator
	queue   *queue.Queue
	logger  *Logger
	metrics MetricsCollector
}

// Option configures a single engine operation.
//
// Options exist per call rather than per engine instance: every operation
// is a one-shot transformation with no shared mutable state, so the
// allocator and execution context are part of the call, not of a handle.
type Option func(*options)

func newOptions(optFns ...Option) *options {
	o := &options{
		alloc:   resource.Default(),
		logger:  NoopLogger(),
		metrics: NoopMetricsCollector{},
	}
	for _, fn := range optFns {
		fn(o)
	}
	return o
}

// WithAllocator routes the operation's allocations through a.
//
// If nil is passed, the process-wide default allocator is used.
func WithAllocator(a *resource.Allocator) Option {
	return func(o *options) {
		if a == nil {
			a = resource.Default()
		}
		o.alloc = a
	}
}

// WithQueue submits the operation to q instead of running it inline.
//
// The operation then returns its result before the work is complete. The
// result is safe input for later operations on the same queue; any other
// consumer must call q.Wait() first. Execution failures surface from
// q.Wait() as ErrAsyncExecution.
func WithQueue(q *queue.Queue) Option {
	return func(o *options) {
		o.queue = q
	}
}

// WithLogger configures structured logging for the operation.
//
// If nil is passed, logging is disabled.
func WithLogger(l *Logger) Option {
	return func(o *options) {
		if l == nil {
			l = NoopLogger()
		}
		o.logger = l
	}
}

// WithMetrics configures a metrics collector for the operation.
//
// If nil is passed, metrics collection is disabled.
func WithMetrics(m MetricsCollector) Option {
	return func(o *options) {
		if m == nil {
			m = NoopMetricsCollector{}
		}
		o.metrics = m
	}
}
