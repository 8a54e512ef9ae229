// Package app assembles the quorumd application: the multisig engine,
// signature checks, decorators, query paths and the iavl store.
package app

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/app"
	"github.com/iov-one/quorum/errors"
	"github.com/iov-one/quorum/orm"
	"github.com/iov-one/quorum/store/iavl"
	"github.com/iov-one/quorum/x"
	"github.com/iov-one/quorum/x/eventlog"
	"github.com/iov-one/quorum/x/multisig"
	"github.com/iov-one/quorum/x/sigs"
	"github.com/iov-one/quorum/x/utils"
)

// Name is reported by ABCI Info.
const Name = "quorumd"

// Authenticator accepts owners that signed the transaction.
func Authenticator() x.Authenticator {
	return x.ChainAuth(sigs.Authenticate{})
}

// Engine returns the multisig engine, authenticating callers with
// signatures and persisting its events in the event log.
func Engine() *multisig.Engine {
	return multisig.NewEngine(Authenticator(), eventlog.NewSink())
}

// Chain is the decorator stack every transaction passes before its
// handler.
func Chain() app.Decorators {
	return app.ChainDecorators(
		utils.NewLogging(),
		utils.NewRecovery(),
		utils.NewActionTagger(),
		// a rejected CheckTx leaves no trace, not even a sequence bump
		utils.NewSavepoint().OnCheck(),
		// anyone may execute, the engine authorizes submit and approve
		sigs.NewDecorator().AllowMissingSigs(),
		// below the sigs decorator, so a failed DeliverTx still consumes
		// the signer sequence
		utils.NewSavepoint().OnDeliver(),
	)
}

// Router returns a router dispatching to the multisig messages.
func Router(e *multisig.Engine) *app.Router {
	r := app.NewRouter()
	multisig.RegisterRoutes(r, e)
	return r
}

// QueryRouter serves "/registry", "/proposals", "/approvals", "/events",
// "/auth" and the raw store under "/".
func QueryRouter() quorum.QueryRouter {
	r := quorum.NewQueryRouter()
	r.RegisterAll(
		multisig.RegisterQuery,
		sigs.RegisterQuery,
		eventlog.RegisterQuery,
		orm.RegisterQuery,
	)
	return r
}

// Stack is the full transaction handler for BaseApp.
func Stack(e *multisig.Engine) quorum.Handler {
	return Chain().WithHandler(Router(e))
}

// Application opens the store at dbPath and builds the ABCI application
// around h, normally Stack.
func Application(name string, h quorum.Handler,
	tx quorum.TxDecoder, dbPath string, debug bool) (app.BaseApp, error) {

	kv, err := CommitKVStore(dbPath)
	if err != nil {
		return app.BaseApp{}, err
	}
	store, err := app.NewStoreApp(name, kv, QueryRouter(), context.Background())
	if err != nil {
		return app.BaseApp{}, err
	}
	return app.NewBaseApp(store, tx, h, debug), nil
}

// CommitKVStore opens the iavl store at dbPath. "state.db" and "state"
// name the same database. An empty path gives an in-memory store.
func CommitKVStore(dbPath string) (quorum.CommitKVStore, error) {
	if dbPath == "" {
		return iavl.NewMemCommitStore(), nil
	}
	path, err := filepath.Abs(dbPath)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "invalid database name: %s", dbPath)
	}
	path = strings.TrimSuffix(path, filepath.Ext(path))
	return iavl.NewCommitStore(filepath.Dir(path), filepath.Base(path))
}
