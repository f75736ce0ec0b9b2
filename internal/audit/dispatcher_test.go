package audit

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"
)

type memorySink struct {
	mu     sync.Mutex
	events []Event
	block  chan struct{}
}

func (s *memorySink) Log(ev Event) error {
	if s.block != nil {
		<-s.block
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
	if ev.Action == "fail" {
		return errors.New("boom")
	}
	return nil
}

func TestDispatcher_DeliversAndCloses(t *testing.T) {
	defer goleak.VerifyNone(t)

	sink := &memorySink{}
	d := NewDispatcher(sink)

	d.Dispatch(Event{CompanyID: 1, Action: "booking_created"})
	d.Dispatch(Event{CompanyID: 1, Action: "fail"})
	d.Dispatch(Event{CompanyID: 1, Action: "booking_cancelled"})
	d.Close()

	assert.Len(t, sink.events, 3)
	assert.Equal(t, "booking_cancelled", sink.events[2].Action)
}

func TestDispatcher_DropsWhenFull(t *testing.T) {
	defer goleak.VerifyNone(t)

	sink := &memorySink{block: make(chan struct{})}
	d := NewDispatcherSize(sink, 1)

	// The worker takes the first event and blocks on it; the second fills
	// the buffer and the rest are dropped.
	for i := 0; i < 10; i++ {
		d.Dispatch(Event{Action: "x"})
	}
	close(sink.block)
	d.Close()

	assert.LessOrEqual(t, len(sink.events), 2)
	assert.GreaterOrEqual(t, len(sink.events), 1)
}

func TestDispatcher_NilIsNoop(t *testing.T) {
	var d *Dispatcher
	assert.NotPanics(t, func() { d.Dispatch(Event{Action: "x"}) })
}
