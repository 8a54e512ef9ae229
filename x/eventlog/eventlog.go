/*
Package eventlog persists events emitted by the extensions.

Each event is stored under a monotonically increasing 8 byte key, so the log
can be read back in the order of emission. Writing happens within the
transaction store: events of a failed transaction are dropped together with
the rest of its state changes.
*/
package eventlog

import (
	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/errors"
	"github.com/iov-one/quorum/orm"
	amino "github.com/tendermint/go-amino"
)

const bucketName = "events"

var cdc = amino.NewCodec()

// Record is an event as stored in the log.
type Record struct {
	Height     int64
	Topic      string
	Attributes []quorum.Attribute
}

var _ orm.Model = (*Record)(nil)

// Marshal serializes the record with the binary codec.
func (r *Record) Marshal() ([]byte, error) {
	return cdc.MarshalBinaryBare(r)
}

// Unmarshal loads the record from its binary form.
func (r *Record) Unmarshal(bz []byte) error {
	return cdc.UnmarshalBinaryBare(bz, r)
}

// Validate ensures the record carries a topic.
func (r *Record) Validate() error {
	if r.Topic == "" {
		return errors.Wrap(errors.ErrEmpty, "topic")
	}
	return nil
}

// Event converts the record back to the event it was created from.
func (r *Record) Event() quorum.Event {
	return quorum.Event{Topic: r.Topic, Attributes: r.Attributes}
}

// Bucket stores event records.
type Bucket struct {
	orm.Bucket
	seq orm.Sequence
}

// NewBucket returns a bucket for the event log.
func NewBucket() Bucket {
	b := orm.NewBucket(bucketName, orm.NewSimpleObj(nil, new(Record)))
	return Bucket{
		Bucket: b,
		seq:    b.Sequence(orm.SeqID),
	}
}

// Append stores the record under the next sequence key.
func (b Bucket) Append(db quorum.KVStore, r *Record) ([]byte, error) {
	key, err := b.seq.NextVal(db)
	if err != nil {
		return nil, err
	}
	if err := b.Save(db, orm.NewSimpleObj(key, r)); err != nil {
		return nil, err
	}
	return key, nil
}

// Records returns all stored records in the order they were appended. If
// topic is not empty, only records of that topic are returned.
func (b Bucket) Records(db quorum.ReadOnlyKVStore, topic string) ([]*Record, error) {
	var res []*Record
	err := b.Iterate(db, nil, func(obj orm.Object) error {
		r, ok := obj.Value().(*Record)
		if !ok {
			return errors.WithType(errors.ErrType, obj.Value())
		}
		if topic == "" || r.Topic == topic {
			res = append(res, r)
		}
		return nil
	})
	return res, err
}

// Sink is a quorum.EventSink that logs every event and appends it to the
// event log bucket.
type Sink struct {
	bucket Bucket
}

var _ quorum.EventSink = Sink{}

// NewSink returns a sink writing to the event log.
func NewSink() Sink {
	return Sink{bucket: NewBucket()}
}

// Publish never fails. A storage failure is logged and the event is only
// available in the logs.
func (s Sink) Publish(ctx quorum.Context, db quorum.KVStore, e quorum.Event) {
	logger := quorum.GetLogger(ctx).With("module", "eventlog", "topic", e.Topic)
	keyvals := make([]interface{}, 0, 2*len(e.Attributes))
	for _, a := range e.Attributes {
		keyvals = append(keyvals, a.Key, a.Value)
	}
	logger.Info("event", keyvals...)

	height, _ := quorum.GetHeight(ctx)
	r := &Record{Height: height, Topic: e.Topic, Attributes: e.Attributes}
	if _, err := s.bucket.Append(db, r); err != nil {
		logger.Error("cannot store event", "err", err)
	}
}

// RegisterQuery exposes the event log under /events.
func RegisterQuery(qr quorum.QueryRouter) {
	NewBucket().Register("events", qr)
}
