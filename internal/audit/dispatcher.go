package audit

import (
	"sync"

	"go.uber.org/zap"
)

type Event struct {
	CompanyID uint
	UserID    *uint
	Action    string
	Entity    string
	EntityID  *uint
	Metadata  any
}

// Sink persists a single audit event.
type Sink interface {
	Log(ev Event) error
}

// Dispatcher writes audit events on a background goroutine. Events are
// dropped when the queue is full so callers never block.
type Dispatcher struct {
	sink  Sink
	queue chan Event

	closeOnce sync.Once
	done      chan struct{}
}

func NewDispatcher(sink Sink) *Dispatcher {
	return NewDispatcherSize(sink, 100)
}

func NewDispatcherSize(sink Sink, size int) *Dispatcher {
	d := &Dispatcher{
		sink:  sink,
		queue: make(chan Event, size),
		done:  make(chan struct{}),
	}

	go d.worker()
	return d
}

func (d *Dispatcher) worker() {
	defer close(d.done)
	for ev := range d.queue {
		if err := d.sink.Log(ev); err != nil {
			zap.L().Warn("audit write failed",
				zap.String("action", ev.Action),
				zap.Error(err),
			)
		}
	}
}

func (d *Dispatcher) Dispatch(ev Event) {
	if d == nil {
		return
	}
	select {
	case d.queue <- ev:
	default:
		zap.L().Warn("audit queue full, dropping event", zap.String("action", ev.Action))
	}
}

// Close drains the queue and waits for the worker to exit. Dispatch must not
// be called after Close.
func (d *Dispatcher) Close() {
	d.closeOnce.Do(func() {
		close(d.queue)
	})
	<-d.done
}
