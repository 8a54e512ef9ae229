package multisig

import (
	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/errors"
)

const (
	pathInitMsg    = "multisig/init"
	pathSubmitMsg  = "multisig/submit"
	pathApproveMsg = "multisig/approve"
	pathExecuteMsg = "multisig/execute"
)

// InitMsg registers the owners and the approval threshold. It is accepted
// only once.
type InitMsg struct {
	Owners    []quorum.Address `json:"owners"`
	Threshold uint32           `json:"threshold"`
}

var _ quorum.Msg = (*InitMsg)(nil)

func (InitMsg) Path() string {
	return pathInitMsg
}

func (m *InitMsg) Marshal() ([]byte, error) {
	return cdc.MarshalBinaryBare(m)
}

func (m *InitMsg) Unmarshal(bz []byte) error {
	return cdc.UnmarshalBinaryBare(bz, m)
}

func (m *InitMsg) Validate() error {
	return validateRegistry(errors.ErrInput, m.Owners, m.Threshold)
}

// SubmitMsg creates a proposal to send Value to Recipient. Proposer is
// optional and defaults to the main signer of the transaction.
type SubmitMsg struct {
	Proposer  quorum.Address `json:"proposer,omitempty"`
	Recipient quorum.Address `json:"recipient"`
	Value     Value          `json:"value"`
}

var _ quorum.Msg = (*SubmitMsg)(nil)

func (SubmitMsg) Path() string {
	return pathSubmitMsg
}

func (m *SubmitMsg) Marshal() ([]byte, error) {
	return cdc.MarshalBinaryBare(m)
}

func (m *SubmitMsg) Unmarshal(bz []byte) error {
	return cdc.UnmarshalBinaryBare(bz, m)
}

func (m *SubmitMsg) Validate() error {
	if len(m.Proposer) != 0 {
		if err := m.Proposer.Validate(); err != nil {
			return errors.Wrap(err, "proposer")
		}
	}
	if err := m.Recipient.Validate(); err != nil {
		return errors.Wrap(err, "recipient")
	}
	return nil
}

// ApproveMsg records the approval of Owner for a proposal. Owner is optional
// and defaults to the main signer of the transaction.
type ApproveMsg struct {
	ProposalID uint32         `json:"proposal_id"`
	Owner      quorum.Address `json:"owner,omitempty"`
}

var _ quorum.Msg = (*ApproveMsg)(nil)

func (ApproveMsg) Path() string {
	return pathApproveMsg
}

func (m *ApproveMsg) Marshal() ([]byte, error) {
	return cdc.MarshalBinaryBare(m)
}

func (m *ApproveMsg) Unmarshal(bz []byte) error {
	return cdc.UnmarshalBinaryBare(bz, m)
}

func (m *ApproveMsg) Validate() error {
	if len(m.Owner) != 0 {
		if err := m.Owner.Validate(); err != nil {
			return errors.Wrap(err, "owner")
		}
	}
	return nil
}

// ExecuteMsg executes a proposal that collected enough approvals. Anyone
// can send it.
type ExecuteMsg struct {
	ProposalID uint32 `json:"proposal_id"`
}

var _ quorum.Msg = (*ExecuteMsg)(nil)

func (ExecuteMsg) Path() string {
	return pathExecuteMsg
}

func (m *ExecuteMsg) Marshal() ([]byte, error) {
	return cdc.MarshalBinaryBare(m)
}

func (m *ExecuteMsg) Unmarshal(bz []byte) error {
	return cdc.UnmarshalBinaryBare(bz, m)
}

func (m *ExecuteMsg) Validate() error {
	return nil
}
