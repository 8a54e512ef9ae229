package app

import (
	"context"
	"testing"

	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/errors"
	"github.com/iov-one/quorum/quorumtest"
	"github.com/iov-one/quorum/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// tracer appends its name to a shared log on every call.
type tracer struct {
	name string
	log  *[]string
}

func (t tracer) Check(ctx quorum.Context, db quorum.KVStore, tx quorum.Tx, next quorum.Checker) (*quorum.CheckResult, error) {
	*t.log = append(*t.log, t.name)
	return next.Check(ctx, db, tx)
}

func (t tracer) Deliver(ctx quorum.Context, db quorum.KVStore, tx quorum.Tx, next quorum.Deliverer) (*quorum.DeliverResult, error) {
	*t.log = append(*t.log, t.name)
	return next.Deliver(ctx, db, tx)
}

func TestChainOrder(t *testing.T) {
	var calls []string
	h := &quorumtest.Handler{}

	stack := ChainDecorators(
		tracer{name: "logging", log: &calls},
		tracer{name: "recovery", log: &calls},
	).Chain(
		tracer{name: "sigs", log: &calls},
	).WithHandler(h)

	ctx := context.Background()
	_, err := stack.Deliver(ctx, store.MemStore(), txFor("multisig/submit"))
	require.NoError(t, err)

	assert.Equal(t, []string{"logging", "recovery", "sigs"}, calls)
	assert.Equal(t, 1, h.DeliverCallCount())
}

func TestChainStopsOnError(t *testing.T) {
	var (
		first  = &quorumtest.Decorator{}
		failed = &quorumtest.Decorator{CheckErr: errors.ErrUnauthorized}
		last   = &quorumtest.Decorator{}
		h      = &quorumtest.Handler{}
	)
	stack := ChainDecorators(first, failed, last).WithHandler(h)

	_, err := stack.Check(context.Background(), store.MemStore(), txFor("multisig/approve"))
	assert.True(t, errors.ErrUnauthorized.Is(err))
	assert.Equal(t, 1, first.CheckCallCount())
	assert.Equal(t, 1, failed.CheckCallCount())
	assert.Equal(t, 0, last.CheckCallCount())
	assert.Equal(t, 0, h.CheckCallCount())
}

func TestChainSkipsNil(t *testing.T) {
	var missing *quorumtest.Decorator
	d := &quorumtest.Decorator{}
	h := &quorumtest.Handler{}

	stack := ChainDecorators(nil, d, missing).WithHandler(h)
	_, err := stack.Deliver(context.Background(), store.MemStore(), txFor("multisig/execute"))
	require.NoError(t, err)
	assert.Equal(t, 1, d.DeliverCallCount())
	assert.Equal(t, 1, h.DeliverCallCount())
}
