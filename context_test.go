package quorum

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendermint/tendermint/libs/log"
)

func TestContextHeight(t *testing.T) {
	bg := context.Background()
	_, ok := GetHeight(bg)
	assert.False(t, ok)

	ctx := WithHeight(bg, 7)
	h, ok := GetHeight(ctx)
	require.True(t, ok)
	assert.Equal(t, int64(7), h)

	assert.Panics(t, func() { WithHeight(ctx, 8) })
}

func TestContextChainID(t *testing.T) {
	bg := context.Background()
	assert.Equal(t, "", GetChainID(bg))

	ctx := WithChainID(bg, "quorum-test")
	assert.Equal(t, "quorum-test", GetChainID(ctx))

	assert.Panics(t, func() { WithChainID(ctx, "quorum-other") })
	assert.Panics(t, func() { WithChainID(bg, "bad") })
	assert.Panics(t, func() { WithChainID(bg, "spaces are bad") })
}

func TestContextBlockTime(t *testing.T) {
	now := time.Now().UTC()
	ctx := WithBlockTime(context.Background(), now)
	got, ok := BlockTime(ctx)
	require.True(t, ok)
	assert.Equal(t, now, got)
}

func TestContextLogger(t *testing.T) {
	bg := context.Background()
	assert.Equal(t, DefaultLogger, GetLogger(bg))

	var buf bytes.Buffer
	logger := log.NewTMLogger(log.NewSyncWriter(&buf))
	ctx := WithLogInfo(WithLogger(bg, logger), "module", "multisig")
	GetLogger(ctx).Info("proposal executed", "id", 3)

	out := buf.String()
	assert.True(t, strings.Contains(out, "module=multisig"), out)
	assert.True(t, strings.Contains(out, "id=3"), out)
}
