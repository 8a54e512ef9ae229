package orm

import (
	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/errors"
)

// ConsumeIterator will read all remaining data into an
// array and close the iterator
func ConsumeIterator(itr quorum.Iterator) []quorum.Model {
	defer itr.Close()

	var res []quorum.Model
	for ; itr.Valid(); itr.Next() {
		res = append(res, quorum.Pair(itr.Key(), itr.Value()))
	}
	return res
}

// queryPrefix returns all models which key starts with the prefix.
func queryPrefix(db quorum.ReadOnlyKVStore, prefix []byte) ([]quorum.Model, error) {
	itr, err := db.Iterator(prefix, prefixEnd(prefix))
	if err != nil {
		return nil, err
	}
	return ConsumeIterator(itr), nil
}

// prefixEnd returns the smallest key that is greater than all keys starting
// with prefix. Returns nil if there is no such key.
func prefixEnd(prefix []byte) []byte {
	end := append([]byte(nil), prefix...)
	for i := len(end) - 1; i >= 0; i-- {
		end[i]++
		if end[i] != 0 {
			return end[:i+1]
		}
	}
	return nil
}

// RegisterQuery will register a root query (literal keys)
// under "/"
func RegisterQuery(qr quorum.QueryRouter) {
	qr.Register("/", rawQuery{})
}

// rawQuery resolves keys and prefixes against the whole store.
type rawQuery struct{}

var _ quorum.QueryHandler = rawQuery{}

func (rawQuery) Query(db quorum.ReadOnlyKVStore, mod string, data []byte) ([]quorum.Model, error) {
	switch mod {
	case quorum.KeyQueryMod:
		value, err := db.Get(data)
		if err != nil {
			return nil, err
		}
		if value == nil {
			return nil, nil
		}
		return []quorum.Model{quorum.Pair(data, value)}, nil
	case quorum.PrefixQueryMod:
		return queryPrefix(db, data)
	default:
		return nil, errors.Wrapf(errors.ErrInput, "unknown mod: %s", mod)
	}
}
