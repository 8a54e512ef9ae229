package utils

import (
	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/errors"
)

// Recovery turns a panic raised further down the chain into an ErrPanic
// result. The panic is logged together with the route of the message, so a
// faulty handler can be found without a debug build.
type Recovery struct{}

var _ quorum.Decorator = Recovery{}

// NewRecovery creates a Recovery decorator
func NewRecovery() Recovery {
	return Recovery{}
}

func (r Recovery) Check(ctx quorum.Context, store quorum.KVStore, tx quorum.Tx, next quorum.Checker) (_ *quorum.CheckResult, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = panicked(ctx, tx, p)
		}
	}()
	return next.Check(ctx, store, tx)
}

func (r Recovery) Deliver(ctx quorum.Context, store quorum.KVStore, tx quorum.Tx, next quorum.Deliverer) (_ *quorum.DeliverResult, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = panicked(ctx, tx, p)
		}
	}()
	return next.Deliver(ctx, store, tx)
}

func panicked(ctx quorum.Context, tx quorum.Tx, p interface{}) error {
	path := quorum.GetPath(tx)
	quorum.GetLogger(ctx).Error("transaction panicked", "path", path, "panic", p)
	return errors.Wrapf(errors.ErrPanic, "%s: %v", path, p)
}
