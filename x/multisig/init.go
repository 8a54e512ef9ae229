package multisig

import (
	"context"

	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/errors"
)

// Initializer fulfils the Initializer interface to load the owner registry
// from the genesis file:
//
//	"multisig": {"owners": ["<address>", ...], "threshold": 2}
//
// A missing section leaves the engine uninitialized, so that it can be
// initialized later with an InitMsg.
type Initializer struct {
	Engine *Engine
}

var _ quorum.Initializer = (*Initializer)(nil)

// FromGenesis will parse the registry from genesis and save it in the
// database.
func (i *Initializer) FromGenesis(opts quorum.Options, kv quorum.KVStore) error {
	var genesis struct {
		Owners    []quorum.Address `json:"owners"`
		Threshold uint32           `json:"threshold"`
	}
	if err := opts.ReadOptions("multisig", &genesis); err != nil {
		return errors.Wrap(errors.ErrInput, err.Error())
	}
	if len(genesis.Owners) == 0 && genesis.Threshold == 0 {
		return nil
	}
	engine := i.Engine
	if engine == nil {
		engine = NewEngine(nil, nil)
	}
	if err := engine.Init(context.Background(), kv, genesis.Owners, genesis.Threshold); err != nil {
		return errors.Wrap(err, "genesis")
	}
	return nil
}
