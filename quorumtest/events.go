package quorumtest

import (
	"sync"

	"github.com/iov-one/quorum"
)

// EventRecorder is an EventSink that keeps all published events in memory.
type EventRecorder struct {
	mu     sync.Mutex
	events []quorum.Event
}

var _ quorum.EventSink = (*EventRecorder)(nil)

func (r *EventRecorder) Publish(ctx quorum.Context, db quorum.KVStore, e quorum.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

// Events returns all events published so far.
func (r *EventRecorder) Events() []quorum.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]quorum.Event(nil), r.events...)
}

// Topics returns the topics of all published events, in order.
func (r *EventRecorder) Topics() []string {
	var topics []string
	for _, e := range r.Events() {
		topics = append(topics, e.Topic)
	}
	return topics
}

// Reset drops all recorded events.
func (r *EventRecorder) Reset() {
	r.mu.Lock()
	r.events = nil
	r.mu.Unlock()
}
