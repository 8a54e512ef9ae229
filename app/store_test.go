package app

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/errors"
	"github.com/iov-one/quorum/orm"
	"github.com/iov-one/quorum/quorumtest"
	"github.com/iov-one/quorum/store/iavl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	abci "github.com/tendermint/tendermint/abci/types"
)

// genesis remembers the section it was initialized with.
type genesis struct {
	Threshold int `json:"threshold"`
}

func (g *genesis) FromGenesis(opts quorum.Options, db quorum.KVStore) error {
	return opts.ReadOptions("multisig", g)
}

// pathDecoder turns the raw bytes into a message path.
func pathDecoder(bz []byte) (quorum.Tx, error) {
	switch string(bz) {
	case "":
		return nil, errors.Wrap(errors.ErrInput, "empty tx")
	case "panic":
		panic("cannot decode")
	}
	return txFor(string(bz)), nil
}

func newTestApp(t *testing.T, db quorum.CommitKVStore, init quorum.Initializer) BaseApp {
	t.Helper()

	qr := quorum.NewQueryRouter()
	orm.RegisterQuery(qr)

	s, err := NewStoreApp("quorum-test", db, qr, context.Background())
	require.NoError(t, err)
	s = s.WithInit(init)

	r := NewRouter()
	r.Handle("test/write", &quorumtest.Handler{
		Write: &quorum.Model{Key: []byte("k"), Value: []byte("v")},
	})
	r.Handle("test/fail", &quorumtest.Handler{
		CheckErr:   errors.ErrState,
		DeliverErr: errors.ErrState,
	})
	return NewBaseApp(s, pathDecoder, r, false)
}

func TestAppLifecycle(t *testing.T) {
	db := iavl.NewMemCommitStore()
	var gen genesis
	app := newTestApp(t, db, &gen)

	info := app.Info(abci.RequestInfo{})
	assert.Equal(t, "quorum-test", info.Data)
	assert.Equal(t, int64(0), info.LastBlockHeight)

	app.InitChain(abci.RequestInitChain{
		ChainId:       "quorum-chain",
		AppStateBytes: []byte(`{"multisig": {"threshold": 2}}`),
	})
	assert.Equal(t, "quorum-chain", app.GetChainID())
	assert.Equal(t, 2, gen.Threshold)

	now := time.Now().UTC()
	app.BeginBlock(abci.RequestBeginBlock{Header: abci.Header{Height: 1, Time: now}})
	assert.Equal(t, "quorum-chain", quorum.GetChainID(app.BlockContext()))
	height, ok := quorum.GetHeight(app.BlockContext())
	require.True(t, ok)
	assert.Equal(t, int64(1), height)
	blockTime, ok := quorum.BlockTime(app.BlockContext())
	require.True(t, ok)
	assert.Equal(t, now, blockTime)

	check := app.CheckTx([]byte("test/write"))
	require.Equal(t, uint32(0), check.Code, check.Log)

	deliver := app.DeliverTx([]byte("test/write"))
	require.Equal(t, uint32(0), deliver.Code, deliver.Log)

	// queries see committed state only
	assert.Nil(t, queryValue(t, app, "/", []byte("k")))

	app.EndBlock(abci.RequestEndBlock{Height: 1})
	commit := app.Commit()
	assert.NotEmpty(t, commit.Data)

	assert.Equal(t, []byte("v"), queryValue(t, app, "/", []byte("k")))

	info = app.Info(abci.RequestInfo{})
	assert.Equal(t, int64(1), info.LastBlockHeight)
	assert.Equal(t, commit.Data, info.LastBlockAppHash)

	// chain id can only be set once
	assert.Panics(t, func() {
		app.InitChain(abci.RequestInitChain{ChainId: "other-chain"})
	})

	// state survives creating a new app on the same store
	again := newTestApp(t, db, nil)
	assert.Equal(t, "quorum-chain", again.GetChainID())
	assert.Equal(t, []byte("v"), queryValue(t, again, "/", []byte("k")))
}

func TestAppTxErrors(t *testing.T) {
	app := newTestApp(t, iavl.NewMemCommitStore(), nil)
	app.InitChain(abci.RequestInitChain{ChainId: "quorum-chain"})
	app.BeginBlock(abci.RequestBeginBlock{Header: abci.Header{Height: 1}})

	cases := map[string]struct {
		tx   string
		code uint32
	}{
		"decoding failure": {tx: "", code: errors.ErrInput.ABCICode()},
		"decoder panic":    {tx: "panic", code: errors.ErrPanic.ABCICode()},
		"unknown path":     {tx: "test/unknown", code: errors.ErrNotFound.ABCICode()},
		"handler failure":  {tx: "test/fail", code: errors.ErrState.ABCICode()},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			check := app.CheckTx([]byte(tc.tx))
			assert.Equal(t, tc.code, check.Code, check.Log)
			deliver := app.DeliverTx([]byte(tc.tx))
			assert.Equal(t, tc.code, deliver.Code, deliver.Log)
		})
	}
}

func TestAppQueryErrors(t *testing.T) {
	app := newTestApp(t, iavl.NewMemCommitStore(), nil)

	res := app.Query(abci.RequestQuery{Path: "/nothing", Data: []byte("k")})
	assert.Equal(t, errors.ErrNotFound.ABCICode(), res.Code)

	res = app.Query(abci.RequestQuery{Path: "/?range", Data: []byte("k")})
	assert.Equal(t, errors.ErrInput.ABCICode(), res.Code)

	// unregistered errors do not leak their message
	app.queryRouter.Register("/broken", brokenQuery{})
	res = app.Query(abci.RequestQuery{Path: "/broken", Data: []byte("k")})
	assert.Equal(t, errors.ErrInternal.ABCICode(), res.Code)
	assert.Equal(t, "internal", res.Log)
}

type brokenQuery struct{}

func (brokenQuery) Query(quorum.ReadOnlyKVStore, string, []byte) ([]quorum.Model, error) {
	return nil, fmt.Errorf("disk at /var/lib/quorum is corrupted")
}

func TestABCIStore(t *testing.T) {
	app := newTestApp(t, iavl.NewMemCommitStore(), nil)
	app.InitChain(abci.RequestInitChain{ChainId: "quorum-chain"})
	app.BeginBlock(abci.RequestBeginBlock{Header: abci.Header{Height: 1}})
	res := app.DeliverTx([]byte("test/write"))
	require.Equal(t, uint32(0), res.Code, res.Log)
	app.Commit()

	kv := NewABCIStore(app)

	v, err := kv.Get([]byte("k"))
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), v)

	has, err := kv.Has([]byte("missing"))
	require.NoError(t, err)
	assert.False(t, has)

	itr, err := kv.Iterator(nil, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{chainIDKey, "k"}, iterKeys(itr))

	itr, err = kv.ReverseIterator(nil, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"k", chainIDKey}, iterKeys(itr))

	itr, err = kv.Iterator([]byte("a"), []byte("z"))
	require.NoError(t, err)
	assert.Equal(t, []string{"k"}, iterKeys(itr))

	itr, err = kv.ReverseIterator(nil, []byte("k"))
	require.NoError(t, err)
	assert.Equal(t, []string{chainIDKey}, iterKeys(itr))
}

func queryValue(t *testing.T, app BaseApp, path string, key []byte) []byte {
	t.Helper()
	res := app.Query(abci.RequestQuery{Path: path, Data: key})
	require.Equal(t, uint32(0), res.Code, res.Log)

	var keys, values ResultSet
	require.NoError(t, keys.Unmarshal(res.Key))
	require.NoError(t, values.Unmarshal(res.Value))
	models, err := JoinResults(&keys, &values)
	require.NoError(t, err)
	if len(models) == 0 {
		return nil
	}
	require.Len(t, models, 1)
	return models[0].Value
}

func iterKeys(itr quorum.Iterator) []string {
	defer itr.Close()
	var keys []string
	for ; itr.Valid(); itr.Next() {
		keys = append(keys, string(itr.Key()))
	}
	return keys
}
