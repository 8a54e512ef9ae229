package server

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/iov-one/quorum/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	abci "github.com/tendermint/tendermint/abci/types"
	"github.com/tendermint/tendermint/libs/log"
)

func freeAddr(t *testing.T) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())
	return addr
}

func TestStart(t *testing.T) {
	addr := freeAddr(t)
	var gotDebug bool
	gen := func(home string, logger log.Logger, debug bool) (abci.Application, error) {
		gotDebug = debug
		return abci.NewBaseApplication(), nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Start(ctx, gen, log.NewNopLogger(), "", StartOptions{
			Bind:  "tcp://" + addr,
			Debug: true,
		})
	}()

	// wait until the server accepts connections
	var conn net.Conn
	var err error
	for i := 0; i < 50; i++ {
		conn, err = net.Dial("tcp", addr)
		if err == nil {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	require.NoError(t, err)
	conn.Close()

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("server did not stop")
	}
	assert.True(t, gotDebug)
}

func TestStartGeneratorError(t *testing.T) {
	gen := func(string, log.Logger, bool) (abci.Application, error) {
		return nil, errors.Wrap(errors.ErrDatabase, "cannot open")
	}
	err := Start(context.Background(), gen, log.NewNopLogger(), "", StartOptions{Bind: "tcp://" + freeAddr(t)})
	assert.True(t, errors.ErrDatabase.Is(err))
}
