package dispatcher

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/mcpsentry/mcpsentry/pkg/output/events"
	"github.com/mcpsentry/mcpsentry/pkg/testutil"
)

type recordingHook struct {
	mu    sync.Mutex
	types []events.EventType
	seen  []events.EventType
	err   error
}

func (h *recordingHook) OnEvent(_ context.Context, e events.Event) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.seen = append(h.seen, e.EventType())
	return h.err
}

func (h *recordingHook) EventTypes() []events.EventType { return h.types }

func (h *recordingHook) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.seen)
}

func TestDispatchToAllHooks(t *testing.T) {
	t.Parallel()

	d := New()
	all := &recordingHook{}
	filtered := &recordingHook{types: []events.EventType{events.EventTypeSummary}}
	d.RegisterHook(all)
	d.RegisterHook(filtered)

	ctx := context.Background()
	d.Dispatch(ctx, events.StartEvent{BaseEvent: events.NewBase(events.EventTypeStart, "r1")})
	d.Dispatch(ctx, events.SummaryEvent{BaseEvent: events.NewBase(events.EventTypeSummary, "r1")})

	if got := all.count(); got != 2 {
		t.Errorf("unfiltered hook saw %d events, want 2", got)
	}
	if got := filtered.count(); got != 1 {
		t.Errorf("filtered hook saw %d events, want 1", got)
	}
}

func TestDispatchSwallowsHookErrors(t *testing.T) {
	t.Parallel()

	d := New()
	broken := &recordingHook{err: errors.New("hook down")}
	healthy := &recordingHook{}
	d.RegisterHook(broken)
	d.RegisterHook(healthy)

	d.Dispatch(context.Background(), events.StartEvent{BaseEvent: events.NewBase(events.EventTypeStart, "r")})

	if got := healthy.count(); got != 1 {
		t.Errorf("healthy hook saw %d events after sibling error, want 1", got)
	}
}

func TestNilDispatcherDropsEvents(t *testing.T) {
	t.Parallel()

	var d *Dispatcher
	testutil.AssertNoPanic(t, "nil dispatcher", func() {
		d.Dispatch(context.Background(), events.StartEvent{BaseEvent: events.NewBase(events.EventTypeStart, "r")})
	})
}

func TestDispatchConcurrent(t *testing.T) {
	t.Parallel()

	d := New()
	h := &recordingHook{}
	d.RegisterHook(h)

	testutil.RunConcurrently(50, func(int) {
		d.Dispatch(context.Background(), events.ServerResultEvent{
			BaseEvent: events.NewBase(events.EventTypeServerResult, "r"),
		})
	})

	if got := h.count(); got != 50 {
		t.Errorf("hook saw %d events, want 50", got)
	}
}
