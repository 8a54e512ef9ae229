package store

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestSuite runs the same KVStore checks against any cache-wrappable
// base store. The btree and iavl packages both use it.
type TestSuite struct {
	makeBase TestStoreConstructor
}

// TestStoreConstructor returns a fresh empty base store and a function
// that releases it.
type TestStoreConstructor func() (base CacheableKVStore, cleanup func())

func NewTestSuite(constructor TestStoreConstructor) *TestSuite {
	return &TestSuite{makeBase: constructor}
}

// CacheLayers checks that writes are isolated in a cache until it is
// written, and that a discarded cache leaves no trace.
func (s *TestSuite) CacheLayers(t *testing.T) {
	base, cleanup := s.makeBase()
	defer cleanup()

	registry, proposal, approval := []byte("registry"), []byte("proposal:0"), []byte("approval:0")
	require.NoError(t, base.Set(registry, []byte("a,b")))

	cache := base.CacheWrap()
	s.AssertGetHas(t, cache, registry, []byte("a,b"), true)
	require.NoError(t, cache.Set(proposal, []byte("p0")))
	require.NoError(t, cache.Set(registry, []byte("a,b,c")))
	s.AssertGetHas(t, cache, proposal, []byte("p0"), true)
	s.AssertGetHas(t, base, proposal, nil, false)
	s.AssertGetHas(t, base, registry, []byte("a,b"), true)

	require.NoError(t, cache.Write())
	s.AssertGetHas(t, base, proposal, []byte("p0"), true)
	s.AssertGetHas(t, base, registry, []byte("a,b,c"), true)

	discarded := base.CacheWrap()
	require.NoError(t, discarded.Set(approval, []byte{1}))
	require.NoError(t, discarded.Delete(proposal))
	s.AssertGetHas(t, discarded, proposal, nil, false)
	discarded.Discard()
	s.AssertGetHas(t, base, approval, nil, false)
	s.AssertGetHas(t, base, proposal, []byte("p0"), true)

	// a delete written down removes the key from the base
	drop := base.CacheWrap()
	require.NoError(t, drop.Delete(registry))
	require.NoError(t, drop.Write())
	s.AssertGetHas(t, base, registry, nil, false)
}

// Iteration checks ranged forward and reverse iteration over a cache
// that overwrites and deletes keys of its parent.
func (s *TestSuite) Iteration(t *testing.T) {
	parent := numbered("p", 0, 12)
	child := numbered("p", 8, 16)
	for i := range child {
		child[i].Value = []byte("child")
	}
	deleted := [][]byte{parent[2].Key, parent[3].Key}

	// merged view: p00, p01, p04..p07 from the parent, p08..p15 from the child
	merged := append(append([]Model{}, parent[:2]...), parent[4:8]...)
	merged = append(merged, child...)

	cases := map[string]struct {
		start, end []byte
		reverse    bool
		want       []Model
	}{
		"everything":           {nil, nil, false, merged},
		"everything reversed":  {nil, nil, true, reverse(merged)},
		"from a deleted key":   {parent[2].Key, nil, false, merged[2:]},
		"up to an overwrite":   {nil, child[1].Key, false, merged[:7]},
		"inner range":          {parent[5].Key, child[3].Key, false, merged[3:9]},
		"inner range reversed": {parent[5].Key, child[3].Key, true, reverse(merged[3:9])},
		"empty range":          {parent[2].Key, parent[4].Key, false, nil},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			base, cleanup := s.makeBase()
			defer cleanup()
			for _, m := range parent {
				require.NoError(t, base.Set(m.Key, m.Value))
			}
			cache := base.CacheWrap()
			for _, m := range child {
				require.NoError(t, cache.Set(m.Key, m.Value))
			}
			for _, k := range deleted {
				require.NoError(t, cache.Delete(k))
			}

			var (
				iter Iterator
				err  error
			)
			if tc.reverse {
				iter, err = cache.ReverseIterator(tc.start, tc.end)
			} else {
				iter, err = cache.Iterator(tc.start, tc.end)
			}
			require.NoError(t, err)
			defer iter.Close()

			var got []Model
			for ; iter.Valid(); iter.Next() {
				got = append(got, Pair(iter.Key(), iter.Value()))
			}
			require.Len(t, got, len(tc.want))
			for i := range tc.want {
				assert.Equal(t, tc.want[i].Key, got[i].Key, "key %d", i)
				assert.Equal(t, tc.want[i].Value, got[i].Value, "value %d", i)
			}
		})
	}
}

// AssertGetHas checks Get and Has agree on the expected value.
func (s *TestSuite) AssertGetHas(t testing.TB, kv ReadOnlyKVStore, key, val []byte, has bool) {
	t.Helper()
	got, err := kv.Get(key)
	assert.NoError(t, err)
	assert.Equal(t, val, got)
	exists, err := kv.Has(key)
	assert.NoError(t, err)
	assert.Equal(t, has, exists)
}

// numbered returns models prefix<from>..prefix<to-1>, already in key order.
func numbered(prefix string, from, to int) []Model {
	var res []Model
	for i := from; i < to; i++ {
		res = append(res, Pair([]byte(fmt.Sprintf("%s%02d", prefix, i)), []byte(fmt.Sprintf("v%d", i))))
	}
	return res
}
