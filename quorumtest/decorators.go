package quorumtest

import "github.com/iov-one/quorum"

// Decorator passes every call on to the next handler unless CheckErr or
// DeliverErr is set, in which case it stops the chain with that error.
// Calls are counted either way.
type Decorator struct {
	checkCall int
	CheckErr  error

	deliverCall int
	DeliverErr  error
}

var _ quorum.Decorator = (*Decorator)(nil)

func (d *Decorator) Check(ctx quorum.Context, db quorum.KVStore, tx quorum.Tx, next quorum.Checker) (*quorum.CheckResult, error) {
	d.checkCall++
	if d.CheckErr != nil {
		return &quorum.CheckResult{}, d.CheckErr
	}
	return next.Check(ctx, db, tx)
}

func (d *Decorator) Deliver(ctx quorum.Context, db quorum.KVStore, tx quorum.Tx, next quorum.Deliverer) (*quorum.DeliverResult, error) {
	d.deliverCall++
	if d.DeliverErr != nil {
		return &quorum.DeliverResult{}, d.DeliverErr
	}
	return next.Deliver(ctx, db, tx)
}

func (d *Decorator) CheckCallCount() int {
	return d.checkCall
}

func (d *Decorator) DeliverCallCount() int {
	return d.deliverCall
}

func (d *Decorator) CallCount() int {
	return d.checkCall + d.deliverCall
}

// Decorate wraps h with a single decorator, for testing a decorator
// without building a whole chain.
func Decorate(h quorum.Handler, d quorum.Decorator) quorum.Handler {
	return decorated{next: h, dec: d}
}

type decorated struct {
	next quorum.Handler
	dec  quorum.Decorator
}

func (d decorated) Check(ctx quorum.Context, db quorum.KVStore, tx quorum.Tx) (*quorum.CheckResult, error) {
	return d.dec.Check(ctx, db, tx, d.next)
}

func (d decorated) Deliver(ctx quorum.Context, db quorum.KVStore, tx quorum.Tx) (*quorum.DeliverResult, error) {
	return d.dec.Deliver(ctx, db, tx, d.next)
}
