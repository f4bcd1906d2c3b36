package audit

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
)

// ErrDrainTimeout is returned by Shutdown when queued events were still
// waiting for the sink at the deadline.
var ErrDrainTimeout = errors.New("audit: queue not drained before deadline")

// Config controls how events are queued for the sink.
type Config struct {
	Enabled    bool
	BufferSize int
	// DropIfFull makes Emit give up at once on a full queue instead of
	// waiting for room or for the caller's context.
	DropIfFull bool
}

// Dispatcher hands login events to a Sink on one background goroutine, so a
// slow sink never holds up an OTP or password response.
//
// Every event that does not reach the sink is counted by Dropped:
//   - a full queue with DropIfFull set
//   - a caller context that ends before there is room
//   - a panicking sink
//   - a backlog abandoned by Shutdown
type Dispatcher struct {
	sink       Sink
	dropIfFull bool

	queue   chan Event
	stop    chan struct{}
	abort   chan struct{}
	stopped chan struct{}

	stopOnce  sync.Once
	abortOnce sync.Once
	closing   atomic.Bool
	dropped   atomic.Uint64
	delivered atomic.Uint64
}

// NewDispatcher starts a dispatcher. It returns nil when cfg.Enabled is
// false; every method is safe on a nil Dispatcher.
func NewDispatcher(cfg Config, sink Sink) *Dispatcher {
	if !cfg.Enabled {
		return nil
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 1
	}
	if sink == nil {
		sink = NoOpSink{}
	}

	d := &Dispatcher{
		sink:       sink,
		dropIfFull: cfg.DropIfFull,
		queue:      make(chan Event, cfg.BufferSize),
		stop:       make(chan struct{}),
		abort:      make(chan struct{}),
		stopped:    make(chan struct{}),
	}
	go d.run()
	return d
}

func (d *Dispatcher) run() {
	defer close(d.stopped)

	for {
		// stop wins over a non-empty queue so an abort is seen promptly.
		select {
		case <-d.stop:
			d.drain()
			return
		default:
		}

		select {
		case event := <-d.queue:
			d.deliver(event)
		case <-d.stop:
			d.drain()
			return
		}
	}
}

// drain flushes the backlog after stop, until the queue is empty or
// Shutdown aborts.
func (d *Dispatcher) drain() {
	for {
		select {
		case <-d.abort:
			d.dropped.Add(uint64(len(d.queue)))
			return
		default:
		}

		select {
		case event := <-d.queue:
			d.deliver(event)
		default:
			return
		}
	}
}

func (d *Dispatcher) deliver(event Event) {
	defer func() {
		if recover() != nil {
			d.dropped.Add(1)
		}
	}()
	d.sink.Emit(context.Background(), event)
	d.delivered.Add(1)
}

// Emit queues event. After Shutdown has begun it drops the event.
func (d *Dispatcher) Emit(ctx context.Context, event Event) {
	if d == nil {
		return
	}
	if d.closing.Load() {
		d.dropped.Add(1)
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}

	if d.dropIfFull {
		select {
		case d.queue <- event:
		default:
			d.dropped.Add(1)
		}
		return
	}

	select {
	case d.queue <- event:
	case <-ctx.Done():
		d.dropped.Add(1)
	case <-d.stop:
		d.dropped.Add(1)
	}
}

// Shutdown stops accepting events and waits for the backlog to reach the
// sink. When ctx ends first the remaining events are counted as dropped and
// ErrDrainTimeout is returned; a sink call already in progress is not
// interrupted. Later calls return nil at once.
func (d *Dispatcher) Shutdown(ctx context.Context) error {
	if d == nil {
		return nil
	}
	first := false
	d.stopOnce.Do(func() {
		first = true
		d.closing.Store(true)
		close(d.stop)
	})
	if !first {
		return nil
	}

	select {
	case <-d.stopped:
		return nil
	case <-ctx.Done():
		pending := len(d.queue)
		d.abortOnce.Do(func() { close(d.abort) })
		return fmt.Errorf("%w: %d events pending", ErrDrainTimeout, pending)
	}
}

// Close is Shutdown without a deadline.
func (d *Dispatcher) Close() {
	_ = d.Shutdown(context.Background())
}

// Dropped returns how many events never reached the sink.
func (d *Dispatcher) Dropped() uint64 {
	if d == nil {
		return 0
	}
	return d.dropped.Load()
}

// Delivered returns how many events the sink accepted.
func (d *Dispatcher) Delivered() uint64 {
	if d == nil {
		return 0
	}
	return d.delivered.Load()
}

// Pending returns the number of queued events not yet handed to the sink.
func (d *Dispatcher) Pending() int {
	if d == nil {
		return 0
	}
	return len(d.queue)
}
