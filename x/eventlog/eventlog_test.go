package eventlog

import (
	"context"
	"testing"

	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSinkPersistsEvents(t *testing.T) {
	db := store.MemStore()
	ctx := quorum.WithHeight(context.Background(), 12)
	sink := NewSink()

	sink.Publish(ctx, db, quorum.NewEvent("proposal_submitted", quorum.Attr("id", []byte{0, 0, 0, 0})))
	sink.Publish(ctx, db, quorum.NewEvent("approval", quorum.Attr("id", []byte{0, 0, 0, 0})))
	sink.Publish(ctx, db, quorum.NewEvent("approval", quorum.Attr("id", []byte{0, 0, 0, 1})))

	all, err := NewBucket().Records(db, "")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "proposal_submitted", all[0].Topic)
	assert.Equal(t, int64(12), all[0].Height)

	approvals, err := NewBucket().Records(db, "approval")
	require.NoError(t, err)
	require.Len(t, approvals, 2)
	id, ok := approvals[1].Event().Get("id")
	require.True(t, ok)
	assert.Equal(t, []byte{0, 0, 0, 1}, id)
}

func TestSinkRollback(t *testing.T) {
	db := store.MemStore()
	cache := db.CacheWrap()
	NewSink().Publish(context.Background(), cache, quorum.NewEvent("approval"))
	cache.Discard()

	all, err := NewBucket().Records(db, "")
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestRecordValidate(t *testing.T) {
	assert.Error(t, (&Record{}).Validate())
	assert.NoError(t, (&Record{Topic: "approval"}).Validate())
}

func TestQuery(t *testing.T) {
	db := store.MemStore()
	NewSink().Publish(context.Background(), db, quorum.NewEvent("approval"))

	qr := quorum.NewQueryRouter()
	RegisterQuery(qr)
	res, err := qr.Handler("/events").Query(db, quorum.PrefixQueryMod, nil)
	require.NoError(t, err)
	require.Len(t, res, 1)

	var r Record
	require.NoError(t, r.Unmarshal(res[0].Value))
	assert.Equal(t, "approval", r.Topic)
}
