package quorum

import (
	"github.com/tendermint/tendermint/libs/common"
)

// Event is a notification emitted by a state transition. Events are
// observable by clients and are not part of the application state logic.
type Event struct {
	Topic      string
	Attributes []Attribute
}

// Attribute is a single key value pair carried by an Event.
type Attribute struct {
	Key   string
	Value []byte
}

// NewEvent returns an event for the given topic. Attributes are provided as
// key value pairs.
func NewEvent(topic string, attrs ...Attribute) Event {
	return Event{Topic: topic, Attributes: attrs}
}

// Attr is a shortcut to build an Attribute.
func Attr(key string, value []byte) Attribute {
	return Attribute{Key: key, Value: value}
}

// Get returns the value of the first attribute with the given key.
func (e Event) Get(key string) ([]byte, bool) {
	for _, a := range e.Attributes {
		if a.Key == key {
			return a.Value, true
		}
	}
	return nil, false
}

// Tags converts the event into ABCI tags. Each key is prefixed with the
// topic so that the transaction indexer can search by them.
func (e Event) Tags() []common.KVPair {
	tags := make([]common.KVPair, 0, len(e.Attributes))
	for _, a := range e.Attributes {
		tags = append(tags, common.KVPair{
			Key:   []byte(e.Topic + "." + a.Key),
			Value: a.Value,
		})
	}
	return tags
}

// EventSink receives all events emitted while processing a transaction.
// Publishing happens within the transaction store so a failed transaction
// leaves no trace of its events.
type EventSink interface {
	Publish(ctx Context, db KVStore, e Event)
}

// EventSinkFunc allows to use a function as an EventSink.
type EventSinkFunc func(ctx Context, db KVStore, e Event)

// Publish calls the wrapped function.
func (fn EventSinkFunc) Publish(ctx Context, db KVStore, e Event) {
	fn(ctx, db, e)
}

// NopEventSink drops all events.
var NopEventSink EventSink = EventSinkFunc(func(Context, KVStore, Event) {})
