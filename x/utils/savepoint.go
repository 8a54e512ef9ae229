package utils

import (
	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/errors"
)

// Savepoint runs the rest of the chain in a cache wrap and keeps its
// writes only when it succeeds. It is off for both phases until OnCheck
// or OnDeliver enables it.
type Savepoint struct {
	onCheck   bool
	onDeliver bool
}

var _ quorum.Decorator = Savepoint{}

func NewSavepoint() Savepoint {
	return Savepoint{}
}

func (s Savepoint) OnCheck() Savepoint {
	s.onCheck = true
	return s
}

func (s Savepoint) OnDeliver() Savepoint {
	s.onDeliver = true
	return s
}

func (s Savepoint) Check(ctx quorum.Context, store quorum.KVStore, tx quorum.Tx, next quorum.Checker) (res *quorum.CheckResult, err error) {
	if !s.onCheck {
		return next.Check(ctx, store, tx)
	}
	err = WithSavepoint(store, func(db quorum.KVStore) (err error) {
		res, err = next.Check(ctx, db, tx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (s Savepoint) Deliver(ctx quorum.Context, store quorum.KVStore, tx quorum.Tx, next quorum.Deliverer) (res *quorum.DeliverResult, err error) {
	if !s.onDeliver {
		return next.Deliver(ctx, store, tx)
	}
	err = WithSavepoint(store, func(db quorum.KVStore) (err error) {
		res, err = next.Deliver(ctx, db, tx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// WithSavepoint runs fn on a cache wrap of the store. All writes done by fn
// are applied only if it returns no error, otherwise they are discarded.
// Stores that cannot be cache wrapped are passed to fn as they are.
func WithSavepoint(store quorum.KVStore, fn func(quorum.KVStore) error) error {
	cacheable, ok := store.(quorum.CacheableKVStore)
	if !ok {
		return fn(store)
	}
	cache := cacheable.CacheWrap()
	if err := fn(cache); err != nil {
		cache.Discard()
		return err
	}
	return errors.Wrap(cache.Write(), "writing savepoint")
}
