package utils

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/errors"
	"github.com/iov-one/quorum/quorumtest"
	"github.com/iov-one/quorum/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendermint/tendermint/libs/log"
)

func TestSavepoint(t *testing.T) {
	written := quorum.Pair([]byte("proposal"), []byte("p0"))

	cases := map[string]struct {
		save      Savepoint
		handler   *quorumtest.Handler
		check     bool
		wantErr   *errors.Error
		wantSaved bool
	}{
		"deliver success is written": {
			save:      NewSavepoint().OnDeliver(),
			handler:   &quorumtest.Handler{Write: &written},
			wantSaved: true,
		},
		"deliver failure is rolled back": {
			save:    NewSavepoint().OnDeliver(),
			handler: &quorumtest.Handler{Write: &written, DeliverErr: errors.ErrUnauthorized},
			wantErr: errors.ErrUnauthorized,
		},
		"savepoint not enabled for deliver": {
			save:      NewSavepoint().OnCheck(),
			handler:   &quorumtest.Handler{Write: &written, DeliverErr: errors.ErrUnauthorized},
			wantErr:   errors.ErrUnauthorized,
			wantSaved: true,
		},
		"check failure is rolled back": {
			save:    NewSavepoint().OnCheck(),
			handler: &quorumtest.Handler{Write: &written, CheckErr: errors.ErrInput},
			check:   true,
			wantErr: errors.ErrInput,
		},
		"check success is written": {
			save:      NewSavepoint().OnCheck().OnDeliver(),
			handler:   &quorumtest.Handler{Write: &written},
			check:     true,
			wantSaved: true,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			db := store.MemStore()
			h := quorumtest.Decorate(tc.handler, tc.save)
			var err error
			if tc.check {
				_, err = h.Check(context.Background(), db, &quorumtest.Tx{})
			} else {
				_, err = h.Deliver(context.Background(), db, &quorumtest.Tx{})
			}
			if tc.wantErr != nil {
				assert.True(t, tc.wantErr.Is(err), "%+v", err)
			} else {
				assert.NoError(t, err)
			}
			has, err := db.Has(written.Key)
			require.NoError(t, err)
			assert.Equal(t, tc.wantSaved, has)
		})
	}
}

func TestRecovery(t *testing.T) {
	h := quorumtest.Decorate(&quorumtest.Handler{Panic: "boom"}, NewRecovery())

	_, err := h.Check(context.Background(), store.MemStore(), &quorumtest.Tx{})
	assert.True(t, errors.ErrPanic.Is(err))
	_, err = h.Deliver(context.Background(), store.MemStore(), &quorumtest.Tx{})
	assert.True(t, errors.ErrPanic.Is(err))
	assert.Contains(t, err.Error(), "boom")

	// the panic is logged with the route of the message
	var out bytes.Buffer
	ctx := quorum.WithLogger(context.Background(), log.NewTMLogger(&out))
	tx := &quorumtest.Tx{Msg: &quorumtest.Msg{RoutePath: "multisig/execute"}}
	_, err = h.Deliver(ctx, store.MemStore(), tx)
	assert.True(t, errors.ErrPanic.Is(err))
	assert.Contains(t, err.Error(), "multisig/execute: boom")
	assert.Contains(t, out.String(), "transaction panicked")
	assert.Contains(t, out.String(), "path=multisig/execute")
}

func TestActionTagger(t *testing.T) {
	tx := &quorumtest.Tx{Msg: &quorumtest.Msg{RoutePath: "multisig/approve"}}

	h := quorumtest.Decorate(&quorumtest.Handler{}, NewActionTagger())
	res, err := h.Deliver(context.Background(), store.MemStore(), tx)
	require.NoError(t, err)
	require.Len(t, res.Tags, 1)
	assert.Equal(t, ActionKey, string(res.Tags[0].Key))
	assert.Equal(t, "multisig/approve", string(res.Tags[0].Value))

	failing := quorumtest.Decorate(&quorumtest.Handler{DeliverErr: errors.ErrNotFound}, NewActionTagger())
	_, err = failing.Deliver(context.Background(), store.MemStore(), tx)
	assert.True(t, errors.ErrNotFound.Is(err))

	broken := &quorumtest.Tx{Err: errors.ErrType}
	_, err = h.Deliver(context.Background(), store.MemStore(), broken)
	assert.True(t, errors.ErrType.Is(err))
}

func TestLogging(t *testing.T) {
	var buf bytes.Buffer
	logger := log.NewTMLogger(log.NewSyncWriter(&buf))
	ctx := quorum.WithLogger(context.Background(), logger)
	tx := &quorumtest.Tx{Msg: &quorumtest.Msg{RoutePath: "multisig/execute"}}

	ok := quorumtest.Decorate(&quorumtest.Handler{DeliverResult: quorum.DeliverResult{Log: "executed"}}, NewLogging())
	_, err := ok.Deliver(ctx, store.MemStore(), tx)
	require.NoError(t, err)

	failing := quorumtest.Decorate(&quorumtest.Handler{DeliverErr: errors.ErrState}, NewLogging())
	_, err = failing.Deliver(ctx, store.MemStore(), tx)
	require.Error(t, err)

	out := buf.String()
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2, out)
	assert.Contains(t, lines[0], "executed")
	assert.Contains(t, lines[0], "path=multisig/execute")
	assert.Contains(t, lines[1], "err=")
}
