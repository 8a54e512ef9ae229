package app

import (
	"testing"

	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResultSetRoundTrip(t *testing.T) {
	models := []quorum.Model{
		quorum.Pair([]byte("proposal:1"), []byte("first")),
		quorum.Pair([]byte("proposal:2"), []byte("second")),
	}

	kbz, err := ResultsFromKeys(models).Marshal()
	require.NoError(t, err)
	vbz, err := ResultsFromValues(models).Marshal()
	require.NoError(t, err)

	got, err := toModels(kbz, vbz)
	require.NoError(t, err)
	assert.Equal(t, models, got)
}

func TestResultSetEmpty(t *testing.T) {
	bz, err := ResultsFromKeys(nil).Marshal()
	require.NoError(t, err)

	var res ResultSet
	require.NoError(t, res.Unmarshal(bz))
	assert.Len(t, res.Results, 0)

	var o recordingModel
	require.NoError(t, UnmarshalOneResult(bz, &o))
	assert.False(t, o.called)
}

func TestJoinResultsMismatch(t *testing.T) {
	keys := &ResultSet{Results: [][]byte{[]byte("a"), []byte("b")}}
	values := &ResultSet{Results: [][]byte{[]byte("1")}}
	_, err := JoinResults(keys, values)
	assert.True(t, errors.ErrInput.Is(err))
}

// recordingModel records whether it was unmarshalled.
type recordingModel struct {
	called bool
}

func (q *recordingModel) Marshal() ([]byte, error) { return nil, nil }
func (q *recordingModel) Unmarshal([]byte) error {
	q.called = true
	return nil
}
