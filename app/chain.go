package app

import (
	"reflect"

	"github.com/iov-one/quorum"
)

// Decorators is an ordered stack of decorators waiting for the handler
// they will wrap. The first decorator added runs first.
type Decorators struct {
	chain []quorum.Decorator
}

// ChainDecorators starts a stack. Nil decorators, including typed nil
// pointers, are dropped, so optional decorators can be passed as is:
//
//   app.ChainDecorators(
//     utils.NewLogging(),
//     utils.NewRecovery(),
//     sigs.NewDecorator(),
//   ).WithHandler(router)
func ChainDecorators(ds ...quorum.Decorator) Decorators {
	return Decorators{}.Chain(ds...)
}

// Chain returns a new stack with ds appended after the current ones.
func (d Decorators) Chain(ds ...quorum.Decorator) Decorators {
	chain := make([]quorum.Decorator, 0, len(d.chain)+len(ds))
	chain = append(chain, d.chain...)
	for _, dec := range ds {
		if !isNilDecorator(dec) {
			chain = append(chain, dec)
		}
	}
	return Decorators{chain: chain}
}

func isNilDecorator(d quorum.Decorator) bool {
	if d == nil {
		return true
	}
	v := reflect.ValueOf(d)
	return v.Kind() == reflect.Ptr && v.IsNil()
}

// WithHandler closes the stack over h.
func (d Decorators) WithHandler(h quorum.Handler) quorum.Handler {
	for i := len(d.chain) - 1; i >= 0; i-- {
		h = link{dec: d.chain[i], next: h}
	}
	return h
}

// link binds one decorator to the rest of the stack.
type link struct {
	dec  quorum.Decorator
	next quorum.Handler
}

var _ quorum.Handler = link{}

func (l link) Check(ctx quorum.Context, db quorum.KVStore, tx quorum.Tx) (*quorum.CheckResult, error) {
	return l.dec.Check(ctx, db, tx, l.next)
}

func (l link) Deliver(ctx quorum.Context, db quorum.KVStore, tx quorum.Tx) (*quorum.DeliverResult, error) {
	return l.dec.Deliver(ctx, db, tx, l.next)
}
