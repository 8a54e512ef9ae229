package utils

import (
	"time"

	"github.com/iov-one/quorum"
	"github.com/tendermint/tendermint/libs/log"
)

// Logging writes one line per transaction with its route and how long the
// rest of the chain took. Failures are logged as errors, delivered
// transactions as info and checked ones as debug.
type Logging struct{}

var _ quorum.Decorator = Logging{}

func NewLogging() Logging {
	return Logging{}
}

func (Logging) Check(ctx quorum.Context, store quorum.KVStore, tx quorum.Tx, next quorum.Checker) (*quorum.CheckResult, error) {
	start := time.Now()
	res, err := next.Check(ctx, store, tx)
	entry := txLogger(ctx, tx, start)
	if err != nil {
		entry.Error("", "err", err)
	} else {
		entry.Debug(res.Log)
	}
	return res, err
}

func (Logging) Deliver(ctx quorum.Context, store quorum.KVStore, tx quorum.Tx, next quorum.Deliverer) (*quorum.DeliverResult, error) {
	start := time.Now()
	res, err := next.Deliver(ctx, store, tx)
	entry := txLogger(ctx, tx, start)
	if err != nil {
		entry.Error("", "err", err)
	} else {
		entry.Info(res.Log)
	}
	return res, err
}

// txLogger always yields an entry, even when the result has no log
// message, since route and duration are worth recording on their own.
func txLogger(ctx quorum.Context, tx quorum.Tx, start time.Time) log.Logger {
	return quorum.GetLogger(ctx).With(
		"path", quorum.GetPath(tx),
		"duration", time.Since(start)/time.Microsecond,
	)
}
