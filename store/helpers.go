package store

import "fmt"

// SliceIterator walks a sorted slice of models.
type SliceIterator struct {
	data []Model
	idx  int
}

var _ Iterator = (*SliceIterator)(nil)

func NewSliceIterator(data []Model) *SliceIterator {
	return &SliceIterator{data: data}
}

func (s *SliceIterator) Valid() bool {
	return s.idx < len(s.data)
}

// Next panics once the iterator is no longer valid, as do Key and Value.
func (s *SliceIterator) Next() {
	s.current()
	s.idx++
}

func (s *SliceIterator) Key() []byte {
	return s.current().Key
}

func (s *SliceIterator) Value() []byte {
	return s.current().Value
}

// Close invalidates the iterator.
func (s *SliceIterator) Close() {
	s.data = nil
}

func (s *SliceIterator) current() Model {
	if !s.Valid() {
		panic(fmt.Sprintf("slice iterator read past the end at %d", s.idx))
	}
	return s.data[s.idx]
}

// ReadAll drains and closes the iterator.
func ReadAll(it Iterator) []Model {
	defer it.Close()
	var res []Model
	for ; it.Valid(); it.Next() {
		res = append(res, Pair(it.Key(), it.Value()))
	}
	return res
}

// EmptyKVStore holds nothing and drops every write. MemStore caches on
// top of it.
type EmptyKVStore struct{}

var _ KVStore = EmptyKVStore{}

func (EmptyKVStore) Get([]byte) ([]byte, error) {
	return nil, nil
}

func (EmptyKVStore) Has([]byte) (bool, error) {
	return false, nil
}

func (EmptyKVStore) Set(_, _ []byte) error {
	return nil
}

func (EmptyKVStore) Delete([]byte) error {
	return nil
}

func (e EmptyKVStore) NewBatch() Batch {
	return NewNonAtomicBatch(e)
}

func (EmptyKVStore) Iterator(_, _ []byte) (Iterator, error) {
	return NewSliceIterator(nil), nil
}

func (EmptyKVStore) ReverseIterator(_, _ []byte) (Iterator, error) {
	return NewSliceIterator(nil), nil
}

// Op is one recorded write: a set, or a delete when del is true.
type Op struct {
	key, value []byte
	del        bool
}

// SetOp records setting key to value.
func SetOp(key, value []byte) Op {
	return Op{key: key, value: value}
}

func (o Op) IsSetOp() bool {
	return !o.del
}

// Key returns a copy of the key.
func (o Op) Key() []byte {
	return append([]byte(nil), o.key...)
}

// Value returns a copy of the value, nil for a delete.
func (o Op) Value() []byte {
	return append([]byte(nil), o.value...)
}

func (o Op) apply(out SetDeleter) error {
	if o.del {
		return out.Delete(o.key)
	}
	return out.Set(o.key, o.value)
}

// NonAtomicBatch records writes and replays them in order on Write. A
// failed replay leaves the ops applied so far in place, so it only backs
// in-memory stores.
type NonAtomicBatch struct {
	out SetDeleter
	ops []Op
}

var _ Batch = (*NonAtomicBatch)(nil)

func NewNonAtomicBatch(out SetDeleter) *NonAtomicBatch {
	return &NonAtomicBatch{out: out}
}

func (b *NonAtomicBatch) Set(key, value []byte) error {
	b.ops = append(b.ops, SetOp(key, value))
	return nil
}

func (b *NonAtomicBatch) Delete(key []byte) error {
	b.ops = append(b.ops, Op{key: key, del: true})
	return nil
}

// Write replays the recorded ops and empties the batch.
func (b *NonAtomicBatch) Write() error {
	for _, op := range b.ops {
		if err := op.apply(b.out); err != nil {
			return err
		}
	}
	b.ops = nil
	return nil
}

// ShowOps lists the pending ops, for tests.
func (b *NonAtomicBatch) ShowOps() []Op {
	return b.ops
}
