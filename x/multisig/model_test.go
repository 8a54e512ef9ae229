package multisig

import (
	"testing"

	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/errors"
	"github.com/iov-one/quorum/quorumtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProposalSerialization(t *testing.T) {
	p := &Proposal{
		ID:        7,
		Proposer:  quorumtest.NewCondition().Address(),
		Recipient: quorumtest.NewCondition().Address(),
		Value:     MinValue(),
	}
	require.NoError(t, p.Validate())

	bz, err := p.Marshal()
	require.NoError(t, err)
	var back Proposal
	require.NoError(t, back.Unmarshal(bz))
	assert.Equal(t, *p, back)

	p.Recipient = nil
	assert.True(t, errors.ErrModel.Is(p.Validate()))
}

func TestApprovalValidate(t *testing.T) {
	assert.NoError(t, (&Approval{Approved: true}).Validate())
	assert.True(t, errors.ErrModel.Is((&Approval{}).Validate()))
}

func TestRegistryContains(t *testing.T) {
	a := quorumtest.NewCondition().Address()
	r := &Registry{Owners: []quorum.Address{a}, Threshold: 1}
	require.NoError(t, r.Validate())
	assert.True(t, r.Contains(a))
	assert.False(t, r.Contains(quorumtest.NewCondition().Address()))

	r.Threshold = 2
	assert.True(t, errors.ErrModel.Is(r.Validate()))
}

func TestMsgValidate(t *testing.T) {
	a := quorumtest.NewCondition().Address()
	cases := map[string]struct {
		msg     quorum.Msg
		wantErr *errors.Error
	}{
		"init":                {msg: &InitMsg{Owners: []quorum.Address{a}, Threshold: 1}},
		"init without owners": {msg: &InitMsg{Threshold: 1}, wantErr: errors.ErrInput},
		"submit":              {msg: &SubmitMsg{Recipient: a, Value: NewValue(1)}},
		"submit bad proposer": {msg: &SubmitMsg{Proposer: []byte{1}, Recipient: a}, wantErr: errors.ErrInput},
		"submit no recipient": {msg: &SubmitMsg{}, wantErr: errors.ErrInput},
		"approve":             {msg: &ApproveMsg{ProposalID: 3}},
		"approve bad owner":   {msg: &ApproveMsg{Owner: []byte{1}}, wantErr: errors.ErrInput},
		"execute":             {msg: &ExecuteMsg{ProposalID: 1}},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			err := tc.msg.Validate()
			if tc.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.True(t, tc.wantErr.Is(err), "got %v", err)
			}
		})
	}
}
