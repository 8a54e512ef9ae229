package app

import (
	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/errors"
	abci "github.com/tendermint/tendermint/abci/types"
)

// BaseApp is the complete ABCI application: StoreApp plus transaction
// decoding and dispatch to the handler stack.
type BaseApp struct {
	*StoreApp
	decoder quorum.TxDecoder
	handler quorum.Handler
	debug   bool
}

var _ abci.Application = BaseApp{}

// NewBaseApp builds the application. With debug set, error responses
// carry full messages and stack traces.
func NewBaseApp(store *StoreApp, decoder quorum.TxDecoder, handler quorum.Handler, debug bool) BaseApp {
	return BaseApp{StoreApp: store, decoder: decoder, handler: handler, debug: debug}
}

// DeliverTx runs the transaction against the block's deliver cache.
func (b BaseApp) DeliverTx(txBytes []byte) abci.ResponseDeliverTx {
	b.mu.Lock()
	defer b.mu.Unlock()

	tx, err := b.decode(txBytes)
	if err != nil {
		return quorum.DeliverTxError(err, b.debug)
	}
	ctx := b.txContext("deliver_tx", tx)
	res, err := b.handler.Deliver(ctx, b.store.DeliverStore(), tx)
	return quorum.DeliverOrError(res, err, b.debug)
}

// CheckTx runs the transaction against the check cache, which starts
// from the last committed state.
func (b BaseApp) CheckTx(txBytes []byte) abci.ResponseCheckTx {
	b.mu.Lock()
	defer b.mu.Unlock()

	tx, err := b.decode(txBytes)
	if err != nil {
		return quorum.CheckTxError(err, b.debug)
	}
	ctx := b.txContext("check_tx", tx)
	res, err := b.handler.Check(ctx, b.store.CheckStore(), tx)
	return quorum.CheckOrError(res, err, b.debug)
}

func (b BaseApp) txContext(call string, tx quorum.Tx) quorum.Context {
	return quorum.WithLogInfo(b.blockContext, "call", call, "path", quorum.GetPath(tx))
}

// decode turns a decoder panic into ErrPanic.
func (b BaseApp) decode(txBytes []byte) (tx quorum.Tx, err error) {
	defer errors.Recover(&err)
	return b.decoder(txBytes)
}
