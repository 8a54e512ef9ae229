package store

import (
	"bytes"

	"github.com/google/btree"
)

// ascendBtree returns all cached items within [start, end) in ascending key
// order. A nil bound means no limit on that side.
func ascendBtree(bt *btree.BTree, start, end []byte) []btree.Item {
	var items []btree.Item
	collect := func(item btree.Item) bool {
		items = append(items, item)
		return true
	}

	switch {
	case start == nil && end == nil:
		bt.Ascend(collect)
	case start == nil:
		bt.AscendLessThan(entry{key: end}, collect)
	case end == nil:
		bt.AscendGreaterOrEqual(entry{key: start}, collect)
	default:
		bt.AscendRange(entry{key: start}, entry{key: end}, collect)
	}
	return items
}

// merge combines cached items with the models of the parent store. Both must
// be sorted by key. Cached values shadow the parent and deleted items remove
// the parent value from the result.
func merge(ours []btree.Item, parent []Model) []Model {
	res := make([]Model, 0, len(ours)+len(parent))
	i, j := 0, 0
	for i < len(ours) || j < len(parent) {
		if i == len(ours) {
			res = append(res, parent[j])
			j++
			continue
		}

		item := ours[i].(entry)
		if j < len(parent) {
			cmp := bytes.Compare(parent[j].Key, item.key)
			if cmp < 0 {
				res = append(res, parent[j])
				j++
				continue
			}
			if cmp == 0 {
				// shadowed by the cache
				j++
			}
		}

		if !item.deleted {
			res = append(res, Pair(item.key, item.value))
		}
		i++
	}
	return res
}

// reverse returns a copy of the slice with elements in reverse order
func reverse(models []Model) []Model {
	max := len(models)
	res := make([]Model, max)
	for i := 0; i < max; i++ {
		res[i] = models[max-1-i]
	}
	return res
}
