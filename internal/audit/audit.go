// Package audit records calculations on a best-effort basis. Recording never
// blocks a request and a failing sink never changes a response.
package audit

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/ANIKETSHETTY47/drive-savings-calculator/internal/domain"
)

// Sink appends one calculation to an audit store.
type Sink interface {
	Append(ctx context.Context, calc domain.Calculation) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, calc domain.Calculation) error

func (f SinkFunc) Append(ctx context.Context, calc domain.Calculation) error { return f(ctx, calc) }

// Multi fans a calculation out to every sink and joins their errors.
type Multi []Sink

func (m Multi) Append(ctx context.Context, calc domain.Calculation) error {
	var errs []error
	for _, s := range m {
		if err := s.Append(ctx, calc); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Recorder queues calculations and appends them to a Sink from a single
// background worker.
type Recorder struct {
	sink    Sink
	timeout time.Duration
	queue   chan domain.Calculation

	mu     sync.RWMutex
	closed bool
	done   chan struct{}
}

// NewRecorder starts the worker. A nil sink yields a recorder that discards
// everything.
func NewRecorder(sink Sink, queueSize int, timeout time.Duration) *Recorder {
	if queueSize <= 0 {
		queueSize = 1
	}
	r := &Recorder{
		sink:    sink,
		timeout: timeout,
		queue:   make(chan domain.Calculation, queueSize),
		done:    make(chan struct{}),
	}
	go r.run()
	return r
}

// Record serializes the pair and enqueues it. It returns immediately; when
// the queue is full the calculation is dropped and logged.
func (r *Recorder) Record(kind string, input, result any) {
	if r == nil || r.sink == nil {
		return
	}
	calc, err := domain.NewCalculation(kind, input, result)
	if err != nil {
		log.Error().Err(err).Str("kind", kind).Msg("audit encode failed")
		return
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		return
	}
	select {
	case r.queue <- calc:
	default:
		log.Warn().Str("kind", kind).Msg("audit queue full; calculation dropped")
	}
}

// Close stops accepting calculations and waits for the queue to drain or
// ctx to end.
func (r *Recorder) Close(ctx context.Context) error {
	r.mu.Lock()
	if !r.closed {
		r.closed = true
		close(r.queue)
	}
	r.mu.Unlock()

	select {
	case <-r.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Recorder) run() {
	defer close(r.done)
	for calc := range r.queue {
		r.append(calc)
	}
}

func (r *Recorder) append(calc domain.Calculation) {
	ctx := context.Background()
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}
	if err := r.sink.Append(ctx, calc); err != nil {
		log.Error().Err(err).Str("kind", calc.Kind).Msg("audit append failed")
	}
}
