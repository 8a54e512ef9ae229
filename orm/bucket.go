/*
Package orm stores typed objects in named, prefixed sections of the state.

A Bucket holds objects of a single type under "<name>:<key>" and answers
key and prefix queries for them. Sequences stored beside the bucket hand
out increasing ids.
*/
package orm

import (
	"fmt"
	"regexp"

	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/errors"
)

// SeqID is the name of a bucket's default id sequence.
const SeqID = "id"

var isBucketName = regexp.MustCompile(`^[a-z_]{3,10}$`).MatchString

// Bucket maps keys to objects cloned from proto. Wrap it in a type that
// only accepts one concrete model, as the multisig and sigs buckets do.
type Bucket struct {
	name   string
	prefix []byte
	proto  Cloneable
}

var _ quorum.QueryHandler = Bucket{}

// NewBucket panics on a name that is not 3 to 10 lower case letters or
// underscores.
func NewBucket(name string, proto Cloneable) Bucket {
	if !isBucketName(name) {
		panic(errors.Wrapf(ErrInvalidBucket, "illegal bucket name: %q", name))
	}
	return Bucket{name: name, prefix: []byte(name + ":"), proto: proto}
}

func (b Bucket) Name() string {
	return b.name
}

func (b Bucket) String() string {
	return fmt.Sprintf("bucket %s", b.name)
}

// Register serves the bucket under "/<name>", the bucket name when name
// is empty.
func (b Bucket) Register(name string, r quorum.QueryRouter) {
	if name == "" {
		name = b.name
	}
	r.Register("/"+name, b)
}

// Query looks up a single key, or every key starting with data for the
// prefix modifier. A missing key gives no models and no error.
func (b Bucket) Query(db quorum.ReadOnlyKVStore, mod string, data []byte) ([]quorum.Model, error) {
	key := b.DBKey(data)
	switch mod {
	case quorum.KeyQueryMod:
		value, err := db.Get(key)
		if err != nil || value == nil {
			return nil, err
		}
		return []quorum.Model{quorum.Pair(key, value)}, nil
	case quorum.PrefixQueryMod:
		return queryPrefix(db, key)
	}
	return nil, errors.Wrapf(errors.ErrInput, "unknown mod: %s", mod)
}

// DBKey prefixes key with the bucket name. The result never shares
// memory with key or with an earlier result.
func (b Bucket) DBKey(key []byte) []byte {
	out := make([]byte, 0, len(b.prefix)+len(key))
	return append(append(out, b.prefix...), key...)
}

// Get returns nil and no error for a missing key.
func (b Bucket) Get(db quorum.ReadOnlyKVStore, key []byte) (Object, error) {
	raw, err := db.Get(b.DBKey(key))
	if err != nil || raw == nil {
		return nil, err
	}
	return b.Parse(key, raw)
}

func (b Bucket) Has(db quorum.ReadOnlyKVStore, key []byte) (bool, error) {
	return db.Has(b.DBKey(key))
}

// Parse decodes a stored value into a fresh clone of the proto object.
func (b Bucket) Parse(key, value []byte) (Object, error) {
	obj := b.proto.Clone()
	if err := obj.Value().Unmarshal(value); err != nil {
		return nil, errors.Wrapf(errors.ErrModel, "%s: %s", b.name, err)
	}
	obj.SetKey(key)
	return obj, nil
}

// Save validates the object and writes it under its key.
func (b Bucket) Save(db quorum.KVStore, obj Object) error {
	if err := obj.Validate(); err != nil {
		return err
	}
	raw, err := obj.Value().Marshal()
	if err != nil {
		return errors.Wrapf(errors.ErrModel, "%s: %s", b.name, err)
	}
	return db.Set(b.DBKey(obj.Key()), raw)
}

func (b Bucket) Delete(db quorum.KVStore, key []byte) error {
	return db.Delete(b.DBKey(key))
}

// Iterate calls fn for every object which key starts with the given
// prefix, in ascending key order. Iteration stops on the first error.
func (b Bucket) Iterate(db quorum.ReadOnlyKVStore, prefix []byte, fn func(Object) error) error {
	models, err := queryPrefix(db, b.DBKey(prefix))
	if err != nil {
		return err
	}
	for _, m := range models {
		obj, err := b.Parse(m.Key[len(b.prefix):], m.Value)
		if err != nil {
			return err
		}
		if err := fn(obj); err != nil {
			return err
		}
	}
	return nil
}

// Sequence returns the named id counter of this bucket.
func (b Bucket) Sequence(name string) Sequence {
	return NewSequence(b.name, name)
}
