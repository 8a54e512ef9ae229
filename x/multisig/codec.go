package multisig

import (
	amino "github.com/tendermint/go-amino"
)

// cdc serializes all models and messages of this package. None of them
// contain interface fields, so no type registration is needed.
var cdc = amino.NewCodec()
