package app

import (
	"encoding/binary"
	"testing"

	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/app"
	"github.com/iov-one/quorum/crypto"
	"github.com/iov-one/quorum/errors"
	"github.com/iov-one/quorum/x/eventlog"
	"github.com/iov-one/quorum/x/multisig"
	"github.com/iov-one/quorum/x/sigs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	abci "github.com/tendermint/tendermint/abci/types"
	"github.com/tendermint/tendermint/libs/common"
	"github.com/tendermint/tendermint/libs/log"
)

const testChainID = "quorum-test"

func ownerKey(n byte) *crypto.PrivateKey {
	seed := make([]byte, 32)
	seed[31] = n
	return crypto.PrivKeyEd25519FromSeed(seed)
}

func signedTx(t *testing.T, msg quorum.Msg, keys ...*crypto.PrivateKey) []byte {
	t.Helper()
	return signedTxSeq(t, msg, -1, keys...)
}

// signedTxSeq signs with the given sequence, or with a per key counter
// kept in sequences when seq is negative.
func signedTxSeq(t *testing.T, msg quorum.Msg, seq int64, keys ...*crypto.PrivateKey) []byte {
	t.Helper()
	tx := NewTx(msg)
	for _, k := range keys {
		s := seq
		if s < 0 {
			addr := k.PublicKey().Address().String()
			s = sequences[addr]
			sequences[addr]++
		}
		require.NoError(t, tx.Sign(k, testChainID, s))
	}
	bz, err := tx.Marshal()
	require.NoError(t, err)
	return bz
}

var sequences map[string]int64

func newApp(t *testing.T, owners ...*crypto.PrivateKey) app.BaseApp {
	t.Helper()
	sequences = make(map[string]int64)

	application, err := InlineApp("", log.NewNopLogger(), false)
	require.NoError(t, err)

	args := []string{"2"}
	for _, o := range owners {
		args = append(args, o.PublicKey().Address().String())
	}
	state, err := GenInitOptions(args)
	require.NoError(t, err)

	application.InitChain(abci.RequestInitChain{
		ChainId:       testChainID,
		AppStateBytes: state,
	})
	application.BeginBlock(abci.RequestBeginBlock{Header: abci.Header{Height: 1}})
	return application
}

func TestScenario(t *testing.T) {
	a, b, c := ownerKey(1), ownerKey(2), ownerKey(3)
	application := newApp(t, a, b, c)

	recipient := ownerKey(9).PublicKey().Address()
	submit := &multisig.SubmitMsg{Recipient: recipient, Value: multisig.NewValue(100)}

	res := application.DeliverTx(signedTx(t, submit, a))
	require.Equal(t, uint32(0), res.Code, res.Log)
	assert.Equal(t, uint32(0), binary.BigEndian.Uint32(res.Data))
	assert.Contains(t, res.Tags, common.KVPair{Key: []byte("action"), Value: []byte("multisig/submit")})
	assert.Contains(t, res.Tags, common.KVPair{Key: []byte(multisig.ProposalIDTag), Value: []byte("0")})

	res = application.DeliverTx(signedTx(t, &multisig.ApproveMsg{ProposalID: 0}, a))
	require.Equal(t, uint32(0), res.Code, res.Log)

	// execution carries no caller precondition
	execute := &multisig.ExecuteMsg{ProposalID: 0}
	res = application.DeliverTx(signedTx(t, execute))
	assert.Equal(t, multisig.ErrInsufficientApprovals.ABCICode(), res.Code, res.Log)

	res = application.DeliverTx(signedTx(t, &multisig.ApproveMsg{ProposalID: 0}, b))
	require.Equal(t, uint32(0), res.Code, res.Log)

	res = application.DeliverTx(signedTx(t, execute))
	require.Equal(t, uint32(0), res.Code, res.Log)
	assert.Contains(t, res.Tags, common.KVPair{Key: []byte("action"), Value: []byte("multisig/execute")})
	assert.Contains(t, res.Tags, common.KVPair{Key: []byte("proposal_executed.recipient"), Value: []byte(recipient.String())})
	assert.Contains(t, res.Tags, common.KVPair{Key: []byte("proposal_executed.approvals"), Value: []byte("2")})

	res = application.DeliverTx(signedTx(t, &multisig.ApproveMsg{ProposalID: 0}, c))
	require.Equal(t, uint32(0), res.Code, res.Log)

	res = application.DeliverTx(signedTx(t, execute))
	assert.Equal(t, multisig.ErrAlreadyExecuted.ABCICode(), res.Code, res.Log)

	application.EndBlock(abci.RequestEndBlock{Height: 1})
	application.Commit()

	var p multisig.Proposal
	query(t, application, "/proposals", []byte{0, 0, 0, 0}, &p)
	assert.True(t, p.Executed)
	assert.Equal(t, recipient, p.Recipient)
	assert.Equal(t, a.PublicKey().Address(), p.Proposer)
	assert.Equal(t, "100", p.Value.String())

	// events of failed transactions are dropped with their state
	records := events(t, application)
	var topics []string
	for _, r := range records {
		topics = append(topics, r.Topic)
	}
	assert.Equal(t, []string{
		multisig.TopicProposalSubmitted,
		multisig.TopicApproval,
		multisig.TopicApproval,
		multisig.TopicProposalExecuted,
		multisig.TopicApproval,
	}, topics)
	for _, r := range records {
		assert.Equal(t, int64(1), r.Height)
	}

	// one submit and one approve by a
	var user sigs.UserData
	query(t, application, "/auth", a.PublicKey().Address(), &user)
	assert.Equal(t, int64(2), user.Sequence)
}

func TestUnauthorized(t *testing.T) {
	a, b, c := ownerKey(1), ownerKey(2), ownerKey(3)
	application := newApp(t, a, b, c)

	outsider := ownerKey(7)
	recipient := ownerKey(9).PublicKey().Address()

	// CheckTx runs against committed state only, so genesis must be committed
	application.EndBlock(abci.RequestEndBlock{Height: 1})
	application.Commit()
	application.BeginBlock(abci.RequestBeginBlock{Header: abci.Header{Height: 2}})

	// every case fails on CheckTx, so no sequence is ever consumed
	cases := map[string]struct {
		tx   []byte
		code uint32
	}{
		"submit by a non owner": {
			tx:   signedTxSeq(t, &multisig.SubmitMsg{Recipient: recipient, Value: multisig.NewValue(1)}, 0, outsider),
			code: errors.ErrUnauthorized.ABCICode(),
		},
		"submit claiming another owner": {
			tx: signedTxSeq(t, &multisig.SubmitMsg{
				Proposer:  a.PublicKey().Address(),
				Recipient: recipient,
				Value:     multisig.NewValue(1),
			}, 0, outsider),
			code: errors.ErrUnauthorized.ABCICode(),
		},
		"unsigned submit": {
			tx:   signedTxSeq(t, &multisig.SubmitMsg{Recipient: recipient, Value: multisig.NewValue(1)}, 0),
			code: errors.ErrUnauthorized.ABCICode(),
		},
		"signature for another chain": {
			tx: func() []byte {
				tx := NewTx(&multisig.SubmitMsg{Recipient: recipient, Value: multisig.NewValue(1)})
				require.NoError(t, tx.Sign(a, "other-chain", 0))
				bz, err := tx.Marshal()
				require.NoError(t, err)
				return bz
			}(),
			code: errors.ErrUnauthorized.ABCICode(),
		},
		"replayed sequence": {
			tx:   signedTxSeq(t, &multisig.SubmitMsg{Recipient: recipient, Value: multisig.NewValue(1)}, 5, b),
			code: sigs.ErrInvalidSequence.ABCICode(),
		},
		"approve of a missing proposal": {
			tx:   signedTxSeq(t, &multisig.ApproveMsg{ProposalID: 3}, 0, c),
			code: errors.ErrNotFound.ABCICode(),
		},
		"second init": {
			tx:   signedTxSeq(t, &multisig.InitMsg{Owners: []quorum.Address{recipient}, Threshold: 1}, 0),
			code: errors.ErrState.ABCICode(),
		},
		"garbage": {
			tx:   []byte{0xff, 0x01, 0x02},
			code: errors.ErrInput.ABCICode(),
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			check := application.CheckTx(tc.tx)
			assert.Equal(t, tc.code, check.Code, check.Log)
		})
	}

	// the same submit signed by an owner passes
	ok := application.CheckTx(signedTxSeq(t, &multisig.SubmitMsg{Recipient: recipient, Value: multisig.NewValue(1)}, 0, a))
	require.Equal(t, uint32(0), ok.Code, ok.Log)

	application.EndBlock(abci.RequestEndBlock{Height: 2})
	application.Commit()
	var p multisig.Proposal
	res := application.Query(abci.RequestQuery{Path: "/proposals?prefix"})
	require.Equal(t, uint32(0), res.Code, res.Log)
	require.NoError(t, app.UnmarshalOneResult(res.Value, &p))
	assert.Nil(t, p.Recipient, "no proposal must be created")
}

func TestGenInitOptions(t *testing.T) {
	a, b := ownerKey(1), ownerKey(2)

	_, err := GenInitOptions([]string{"3", a.PublicKey().Address().String(), b.PublicKey().Address().String()})
	assert.True(t, errors.ErrInput.Is(err))

	_, err = GenInitOptions([]string{"two", a.PublicKey().Address().String()})
	assert.True(t, errors.ErrInput.Is(err))

	opts, err := GenInitOptions([]string{"1", "bech32:" + mustBech32(t, a.PublicKey().Address())})
	require.NoError(t, err)
	assert.Contains(t, string(opts), `"threshold": 1`)

	opts, err = GenInitOptions(nil)
	require.NoError(t, err)
	assert.Contains(t, string(opts), `"multisig"`)
}

func TestTxCodec(t *testing.T) {
	a := ownerKey(1)
	tx := NewTx(&multisig.ExecuteMsg{ProposalID: 0})
	require.NoError(t, tx.Sign(a, testChainID, 4))

	bz, err := tx.Marshal()
	require.NoError(t, err)
	decoded, err := TxDecoder(bz)
	require.NoError(t, err)

	msg, err := decoded.GetMsg()
	require.NoError(t, err)
	assert.Equal(t, &multisig.ExecuteMsg{ProposalID: 0}, msg)

	signed := decoded.(*Tx)
	require.Len(t, signed.Signatures, 1)
	assert.Equal(t, int64(4), signed.Signatures[0].Sequence)

	// signatures are not part of the signed bytes
	want, err := NewTx(&multisig.ExecuteMsg{ProposalID: 0}).GetSignBytes()
	require.NoError(t, err)
	got, err := signed.GetSignBytes()
	require.NoError(t, err)
	assert.Equal(t, want, got)

	_, err = (&Tx{}).GetMsg()
	assert.True(t, errors.ErrMsg.Is(err))
}

func TestExamples(t *testing.T) {
	examples := Examples()
	require.Len(t, examples, 5)
	for _, ex := range examples {
		_, err := ex.Obj.Marshal()
		assert.NoError(t, err, ex.Filename)
	}
}

func query(t *testing.T, application app.BaseApp, path string, key []byte, obj quorum.Persistent) {
	t.Helper()
	res := application.Query(abci.RequestQuery{Path: path, Data: key})
	require.Equal(t, uint32(0), res.Code, res.Log)
	require.NoError(t, app.UnmarshalOneResult(res.Value, obj))
}

func events(t *testing.T, application app.BaseApp) []*eventlog.Record {
	t.Helper()
	res := application.Query(abci.RequestQuery{Path: "/events?prefix"})
	require.Equal(t, uint32(0), res.Code, res.Log)

	var values app.ResultSet
	require.NoError(t, values.Unmarshal(res.Value))
	var records []*eventlog.Record
	for _, v := range values.Results {
		var r eventlog.Record
		require.NoError(t, r.Unmarshal(v))
		records = append(records, &r)
	}
	return records
}

func mustBech32(t *testing.T, addr quorum.Address) string {
	t.Helper()
	s, err := addr.Bech32("quorum")
	require.NoError(t, err)
	return s
}
