// Package events carries updates from background work into the UI thread.
// The queue is a bounded FIFO: the worker goroutine and the output sink
// produce, and the TUI's fixed tick drains. Ordering is by enqueue time
// across all producers; nothing is coalesced or reordered.
package events

import (
	"sync/atomic"

	"github.com/machovotrish/luma/pkg/agent"
)

// Type discriminates the two event shapes on the queue.
type Type int

const (
	// TypeChat renders as a chat line
	TypeChat Type = iota
	// TypeControl refreshes start/stop control state without a chat line
	TypeControl
)

// Event is one queue entry.
type Event struct {
	Type    Type
	Message agent.ChatMessage
}

// Chat builds a chat event.
func Chat(sender, body string, kind agent.Kind) Event {
	return Event{
		Type:    TypeChat,
		Message: agent.NewChatMessage(sender, body, kind),
	}
}

// Control builds the control sentinel.
func Control() Event {
	return Event{Type: TypeControl}
}

// Queue is a bounded thread-safe FIFO with a single consumer.
type Queue struct {
	ch      chan Event
	dropped atomic.Int64
}

// DefaultCapacity bounds the queue when no capacity is given.
const DefaultCapacity = 256

// NewQueue creates a queue with the given capacity (DefaultCapacity if <= 0).
func NewQueue(capacity int) *Queue {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Queue{ch: make(chan Event, capacity)}
}

// Push enqueues an event. When the queue is full the event is dropped so a
// producer is never blocked behind a stalled UI; drops are counted and
// reported through Dropped.
func (q *Queue) Push(ev Event) bool {
	select {
	case q.ch <- ev:
		return true
	default:
		q.dropped.Add(1)
		return false
	}
}

// TryNext pops the oldest event without blocking.
func (q *Queue) TryNext() (Event, bool) {
	select {
	case ev := <-q.ch:
		return ev, true
	default:
		return Event{}, false
	}
}

// Drain pops every queued event, in order.
func (q *Queue) Drain() []Event {
	var out []Event
	for {
		ev, ok := q.TryNext()
		if !ok {
			return out
		}
		out = append(out, ev)
	}
}

// Len returns the number of queued events.
func (q *Queue) Len() int {
	return len(q.ch)
}

// Dropped returns how many events were discarded because the queue was full.
func (q *Queue) Dropped() int64 {
	return q.dropped.Load()
}
