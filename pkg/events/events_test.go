package events

import (
	"fmt"
	"sync"
	"testing"

	"github.com/machovotrish/luma/pkg/agent"
)

func TestFIFOOrder(t *testing.T) {
	q := NewQueue(16)

	for i := 0; i < 5; i++ {
		q.Push(Chat("Agent", fmt.Sprintf("line %d", i), agent.KindAgent))
	}

	for i := 0; i < 5; i++ {
		ev, ok := q.TryNext()
		if !ok {
			t.Fatalf("expected event %d", i)
		}
		want := fmt.Sprintf("line %d", i)
		if ev.Message.Body != want {
			t.Errorf("event %d: got %q, want %q", i, ev.Message.Body, want)
		}
	}

	if _, ok := q.TryNext(); ok {
		t.Error("queue should be empty")
	}
}

func TestControlEventHasNoChatLine(t *testing.T) {
	q := NewQueue(4)
	q.Push(Control())

	ev, ok := q.TryNext()
	if !ok {
		t.Fatal("expected control event")
	}
	if ev.Type != TypeControl {
		t.Errorf("expected control type, got %v", ev.Type)
	}
	if ev.Message.Body != "" {
		t.Errorf("control event must not carry a chat body, got %q", ev.Message.Body)
	}
}

func TestFullQueueDropsInsteadOfBlocking(t *testing.T) {
	q := NewQueue(2)

	if !q.Push(Control()) || !q.Push(Control()) {
		t.Fatal("first two pushes should succeed")
	}
	if q.Push(Control()) {
		t.Error("push on full queue should report a drop")
	}
	if q.Dropped() != 1 {
		t.Errorf("expected 1 drop, got %d", q.Dropped())
	}
}

func TestDrain(t *testing.T) {
	q := NewQueue(8)
	q.Push(Chat("User", "a", agent.KindUser))
	q.Push(Control())
	q.Push(Chat("System", "b", agent.KindSystem))

	evs := q.Drain()
	if len(evs) != 3 {
		t.Fatalf("expected 3 events, got %d", len(evs))
	}
	if evs[0].Message.Body != "a" || evs[2].Message.Body != "b" {
		t.Errorf("drain order wrong: %+v", evs)
	}
	if q.Len() != 0 {
		t.Errorf("queue should be empty after drain, len=%d", q.Len())
	}
}

func TestConcurrentProducers(t *testing.T) {
	q := NewQueue(1024)

	var wg sync.WaitGroup
	for p := 0; p < 4; p++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				q.Push(Chat("Agent", "x", agent.KindAgent))
			}
		}()
	}
	wg.Wait()

	if got := len(q.Drain()); got != 200 {
		t.Errorf("expected 200 events, got %d", got)
	}
}
