package app

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/errors"
	abci "github.com/tendermint/tendermint/abci/types"
	"github.com/tendermint/tendermint/libs/log"
)

// StoreApp owns the committed multisig state and answers the ABCI calls
// that do not carry transactions: handshake, genesis, block boundaries,
// commit and queries. BaseApp embeds it to add CheckTx and DeliverTx.
//
// Info, InitChain and Commit have no way to report an error back to the
// node, so a failing store makes them panic.
type StoreApp struct {
	// mu is held by every ABCI call that reads or writes the store
	mu sync.Mutex

	name   string
	logger log.Logger
	store  *CommitStore

	initializer quorum.Initializer
	queryRouter quorum.QueryRouter

	// chainID is empty until InitChain persisted it
	chainID string

	// baseContext lives as long as the app, blockContext is replaced
	// on every BeginBlock
	baseContext  quorum.Context
	blockContext quorum.Context
}

// NewStoreApp wraps a commit store and restores the chain id and last
// height already persisted in it.
func NewStoreApp(name string, kv quorum.CommitKVStore,
	queryRouter quorum.QueryRouter, baseContext quorum.Context) (*StoreApp, error) {

	cs, err := NewCommitStore(kv)
	if err != nil {
		return nil, err
	}
	s := &StoreApp{
		name:        name,
		store:       cs,
		queryRouter: queryRouter,
		baseContext: baseContext,
	}
	s.WithLogger(log.NewNopLogger())

	chainID, err := loadChainID(cs.DeliverStore())
	if err != nil {
		return nil, err
	}
	if chainID != "" {
		s.setChainID(chainID)
	}

	last, err := cs.CommitInfo()
	if err != nil {
		return nil, err
	}
	s.blockContext = quorum.WithHeight(s.baseContext, last.Version)
	return s, nil
}

// WithInit sets the genesis loader called by InitChain.
func (s *StoreApp) WithInit(init quorum.Initializer) *StoreApp {
	s.initializer = init
	return s
}

// WithLogger sets the logger used by the app and handed to every
// transaction through the base context.
func (s *StoreApp) WithLogger(logger log.Logger) *StoreApp {
	s.logger = logger
	s.baseContext = quorum.WithLogger(s.baseContext, logger)
	return s
}

func (s *StoreApp) GetChainID() string {
	return s.chainID
}

// BlockContext is the context handed to transactions of the current block.
func (s *StoreApp) BlockContext() quorum.Context {
	return s.blockContext
}

func (s *StoreApp) setChainID(chainID string) {
	s.chainID = chainID
	s.baseContext = quorum.WithChainID(s.baseContext, chainID)
}

// genesis runs once per chain. A restarted node already has a chain id
// and must never see InitChain again.
func (s *StoreApp) genesis(chainID string, appState []byte) error {
	if s.chainID != "" {
		return errors.Wrapf(errors.ErrState, "genesis already loaded for chain %s", s.chainID)
	}
	var opts quorum.Options
	if len(appState) > 0 {
		if err := json.Unmarshal(appState, &opts); err != nil {
			return errors.Wrap(errors.ErrInput, err.Error())
		}
	}

	db := s.store.DeliverStore()
	if err := saveChainID(db, chainID); err != nil {
		return err
	}
	s.setChainID(chainID)
	if s.initializer == nil {
		return nil
	}
	return s.initializer.FromGenesis(opts, db)
}

// Info reports the last committed height and app hash, so the node can
// replay any blocks the app has not seen.
func (s *StoreApp) Info(req abci.RequestInfo) abci.ResponseInfo {
	s.mu.Lock()
	defer s.mu.Unlock()

	last, err := s.store.CommitInfo()
	if err != nil {
		panic(err)
	}
	s.logger.Info("handshake", "height", last.Version, "hash", fmt.Sprintf("%X", last.Hash))
	return abci.ResponseInfo{
		Data:             s.name,
		Version:          quorum.Version(),
		LastBlockHeight:  last.Version,
		LastBlockAppHash: last.Hash,
	}
}

func (s *StoreApp) SetOption(abci.RequestSetOption) abci.ResponseSetOption {
	return abci.ResponseSetOption{Log: "not supported"}
}

func (s *StoreApp) InitChain(req abci.RequestInitChain) abci.ResponseInitChain {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.genesis(req.ChainId, req.AppStateBytes); err != nil {
		panic(err)
	}
	return abci.ResponseInitChain{}
}

// BeginBlock stamps the height and block time on the context used by
// the transactions of this block.
func (s *StoreApp) BeginBlock(req abci.RequestBeginBlock) abci.ResponseBeginBlock {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx := quorum.WithHeight(s.baseContext, req.Header.Height)
	s.blockContext = quorum.WithBlockTime(ctx, req.Header.Time)
	return abci.ResponseBeginBlock{}
}

func (s *StoreApp) EndBlock(abci.RequestEndBlock) abci.ResponseEndBlock {
	return abci.ResponseEndBlock{}
}

func (s *StoreApp) Commit() abci.ResponseCommit {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := s.store.Commit()
	if err != nil {
		panic(err)
	}
	s.logger.Debug("committed", "height", id.Version, "hash", fmt.Sprintf("%X", id.Hash))
	return abci.ResponseCommit{Data: id.Hash}
}

// Query reads from the last committed state. The path selects the query
// handler and may end in "?prefix" to ask for every key starting with
// the data. Key and Value of the response hold the matching keys and
// values as two ResultSets of equal length. Errors without a registered
// code are reported as ErrInternal.
func (s *StoreApp) Query(req abci.RequestQuery) abci.ResponseQuery {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.query(req.Path, req.Data)
	if err != nil {
		code, msg := errors.ABCIInfo(errors.Redact(err, false), false)
		return abci.ResponseQuery{Code: code, Log: msg}
	}
	return res
}

func (s *StoreApp) query(fullPath string, data []byte) (abci.ResponseQuery, error) {
	var res abci.ResponseQuery

	path, mod := fullPath, ""
	if i := strings.IndexByte(fullPath, '?'); i >= 0 {
		path, mod = fullPath[:i], fullPath[i+1:]
	}
	qh := s.queryRouter.Handler(path)
	if qh == nil {
		return res, errors.Wrapf(errors.ErrNotFound, "unexpected query path: %v", fullPath)
	}

	last, err := s.store.CommitInfo()
	if err != nil {
		return res, err
	}
	db := s.store.committed.CacheWrap()
	defer db.Discard()

	models, err := qh.Query(db, mod, data)
	if err != nil {
		return res, err
	}
	res.Height = last.Version
	if res.Key, err = ResultsFromKeys(models).Marshal(); err != nil {
		return res, err
	}
	if res.Value, err = ResultsFromValues(models).Marshal(); err != nil {
		return res, err
	}
	return res, nil
}
