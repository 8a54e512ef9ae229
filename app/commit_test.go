package app

import (
	"testing"

	"github.com/iov-one/quorum/errors"
	"github.com/iov-one/quorum/store"
	"github.com/iov-one/quorum/store/iavl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChainID(t *testing.T) {
	kv := store.MemStore()

	id, err := loadChainID(kv)
	require.NoError(t, err)
	assert.Equal(t, "", id)

	err = saveChainID(kv, "x")
	assert.True(t, errors.ErrInput.Is(err))

	require.NoError(t, saveChainID(kv, "quorum-test"))
	id, err = loadChainID(kv)
	require.NoError(t, err)
	assert.Equal(t, "quorum-test", id)

	err = saveChainID(kv, "another-chain")
	assert.True(t, errors.ErrUnauthorized.Is(err))
}

func TestCommitStore(t *testing.T) {
	cs, err := NewCommitStore(iavl.NewMemCommitStore())
	require.NoError(t, err)

	info, err := cs.CommitInfo()
	require.NoError(t, err)
	assert.Equal(t, int64(0), info.Version)

	key := []byte("registry")
	require.NoError(t, cs.DeliverStore().Set(key, []byte("deliver")))
	require.NoError(t, cs.CheckStore().Set([]byte("scratch"), []byte("check")))

	// check does not see deliver until commit
	v, err := cs.CheckStore().Get(key)
	require.NoError(t, err)
	assert.Nil(t, v)

	id, err := cs.Commit()
	require.NoError(t, err)
	assert.Equal(t, int64(1), id.Version)
	assert.NotEmpty(t, id.Hash)

	v, err = cs.CheckStore().Get(key)
	require.NoError(t, err)
	assert.Equal(t, []byte("deliver"), v)

	// check writes are never persisted
	v, err = cs.DeliverStore().Get([]byte("scratch"))
	require.NoError(t, err)
	assert.Nil(t, v)

	info, err = cs.CommitInfo()
	require.NoError(t, err)
	assert.Equal(t, id, info)
}
