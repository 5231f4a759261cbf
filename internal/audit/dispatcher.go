package audit

import (
	"context"
	"sync"
	"sync/atomic"
)

// Config controls dispatcher buffering behavior.
type Config struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// Dispatcher asynchronously forwards values to a delivery function on one
// goroutine, preserving emit order.
type Dispatcher[T any] struct {
	cfg       Config
	deliver   func(context.Context, T)
	ch        chan T
	done      chan struct{}
	wg        sync.WaitGroup
	dropped   atomic.Uint64
	closed    atomic.Bool
	closeOnce sync.Once
}

// NewDispatcher returns nil when cfg is disabled or deliver is nil. A nil
// Dispatcher accepts and discards every call.
func NewDispatcher[T any](cfg Config, deliver func(context.Context, T)) *Dispatcher[T] {
	if !cfg.Enabled || deliver == nil {
		return nil
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 1
	}

	d := &Dispatcher[T]{
		cfg:     cfg,
		deliver: deliver,
		ch:      make(chan T, cfg.BufferSize),
		done:    make(chan struct{}),
	}

	d.wg.Add(1)
	go d.run()

	return d
}

// NewSinkDispatcher adapts a [Sink] to a Dispatcher of [Event].
func NewSinkDispatcher(cfg Config, sink Sink) *Dispatcher[Event] {
	if sink == nil {
		sink = NoOpSink{}
	}
	return NewDispatcher(cfg, sink.Emit)
}

func (d *Dispatcher[T]) run() {
	defer d.wg.Done()

	for {
		select {
		case v := <-d.ch:
			d.deliver(context.Background(), v)
		case <-d.done:
			for {
				select {
				case v := <-d.ch:
					d.deliver(context.Background(), v)
				default:
					return
				}
			}
		}
	}
}

// Emit queues v. With DropIfFull a full buffer drops v and counts it;
// otherwise Emit waits for room, ctx cancellation or Close.
func (d *Dispatcher[T]) Emit(ctx context.Context, v T) {
	if d == nil || d.closed.Load() {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}

	if d.cfg.DropIfFull {
		select {
		case d.ch <- v:
		case <-d.done:
		default:
			d.dropped.Add(1)
		}
		return
	}

	select {
	case d.ch <- v:
	case <-ctx.Done():
	case <-d.done:
	}
}

// Close drains queued values and stops the delivery goroutine.
func (d *Dispatcher[T]) Close() {
	if d == nil {
		return
	}
	d.closeOnce.Do(func() {
		d.closed.Store(true)
		close(d.done)
		d.wg.Wait()
	})
}

// Dropped returns the number of values discarded because the buffer was full.
func (d *Dispatcher[T]) Dropped() uint64 {
	if d == nil {
		return 0
	}
	return d.dropped.Load()
}
