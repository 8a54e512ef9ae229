package multisig

import (
	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/errors"
	"github.com/iov-one/quorum/x"
	"github.com/tendermint/tendermint/libs/common"
)

const (
	initCost    int64 = 10
	submitCost  int64 = 5
	approveCost int64 = 2
	executeCost int64 = 5

	// ProposalIDTag is the tag set on every delivered proposal operation.
	ProposalIDTag = "proposal-id"
)

// RegisterRoutes will instantiate and register
// all handlers in this package
func RegisterRoutes(r quorum.Registry, e *Engine) {
	r.Handle(pathInitMsg, InitHandler{e})
	r.Handle(pathSubmitMsg, SubmitHandler{e})
	r.Handle(pathApproveMsg, ApproveHandler{e})
	r.Handle(pathExecuteMsg, ExecuteHandler{e})
}

// RegisterQuery register queries from buckets in this package
func RegisterQuery(qr quorum.QueryRouter) {
	NewRegistryBucket().Register("registry", qr)
	NewProposalBucket().Register("proposals", qr)
	NewApprovalBucket().Register("approvals", qr)
}

// InitHandler registers the owners. Anyone can send the first InitMsg.
type InitHandler struct {
	engine *Engine
}

var _ quorum.Handler = InitHandler{}

func (h InitHandler) Check(ctx quorum.Context, db quorum.KVStore, tx quorum.Tx) (*quorum.CheckResult, error) {
	msg, err := h.validate(tx)
	if err != nil {
		return nil, err
	}
	if err := h.engine.checkInit(db, msg.Owners, msg.Threshold); err != nil {
		return nil, err
	}
	return quorum.NewCheck(initCost, ""), nil
}

func (h InitHandler) Deliver(ctx quorum.Context, db quorum.KVStore, tx quorum.Tx) (*quorum.DeliverResult, error) {
	msg, err := h.validate(tx)
	if err != nil {
		return nil, err
	}
	if err := h.engine.Init(ctx, db, msg.Owners, msg.Threshold); err != nil {
		return nil, err
	}
	return &quorum.DeliverResult{}, nil
}

func (h InitHandler) validate(tx quorum.Tx) (*InitMsg, error) {
	msg, err := loadMsg(tx)
	if err != nil {
		return nil, err
	}
	m, ok := msg.(*InitMsg)
	if !ok {
		return nil, errors.WithType(errors.ErrMsg, msg)
	}
	return m, nil
}

// SubmitHandler creates proposals.
type SubmitHandler struct {
	engine *Engine
}

var _ quorum.Handler = SubmitHandler{}

func (h SubmitHandler) Check(ctx quorum.Context, db quorum.KVStore, tx quorum.Tx) (*quorum.CheckResult, error) {
	msg, proposer, err := h.validate(ctx, tx)
	if err != nil {
		return nil, err
	}
	if err := h.engine.checkSubmit(ctx, db, proposer, msg.Recipient); err != nil {
		return nil, err
	}
	return quorum.NewCheck(submitCost, ""), nil
}

func (h SubmitHandler) Deliver(ctx quorum.Context, db quorum.KVStore, tx quorum.Tx) (*quorum.DeliverResult, error) {
	msg, proposer, err := h.validate(ctx, tx)
	if err != nil {
		return nil, err
	}
	id, ev, err := h.engine.submit(ctx, db, proposer, msg.Recipient, msg.Value)
	if err != nil {
		return nil, err
	}
	return &quorum.DeliverResult{
		Data: idKey(id),
		Tags: proposalTags(id, ev),
	}, nil
}

func (h SubmitHandler) validate(ctx quorum.Context, tx quorum.Tx) (*SubmitMsg, quorum.Address, error) {
	msg, err := loadMsg(tx)
	if err != nil {
		return nil, nil, err
	}
	m, ok := msg.(*SubmitMsg)
	if !ok {
		return nil, nil, errors.WithType(errors.ErrMsg, msg)
	}
	proposer, err := caller(ctx, h.engine.auth, m.Proposer)
	if err != nil {
		return nil, nil, err
	}
	return m, proposer, nil
}

// ApproveHandler records owner approvals.
type ApproveHandler struct {
	engine *Engine
}

var _ quorum.Handler = ApproveHandler{}

func (h ApproveHandler) Check(ctx quorum.Context, db quorum.KVStore, tx quorum.Tx) (*quorum.CheckResult, error) {
	msg, owner, err := h.validate(ctx, tx)
	if err != nil {
		return nil, err
	}
	if err := h.engine.checkApprove(ctx, db, owner, msg.ProposalID); err != nil {
		return nil, err
	}
	return quorum.NewCheck(approveCost, ""), nil
}

func (h ApproveHandler) Deliver(ctx quorum.Context, db quorum.KVStore, tx quorum.Tx) (*quorum.DeliverResult, error) {
	msg, owner, err := h.validate(ctx, tx)
	if err != nil {
		return nil, err
	}
	ev, err := h.engine.approve(ctx, db, owner, msg.ProposalID)
	if err != nil {
		return nil, err
	}
	return &quorum.DeliverResult{Tags: proposalTags(msg.ProposalID, ev)}, nil
}

func (h ApproveHandler) validate(ctx quorum.Context, tx quorum.Tx) (*ApproveMsg, quorum.Address, error) {
	msg, err := loadMsg(tx)
	if err != nil {
		return nil, nil, err
	}
	m, ok := msg.(*ApproveMsg)
	if !ok {
		return nil, nil, errors.WithType(errors.ErrMsg, msg)
	}
	owner, err := caller(ctx, h.engine.auth, m.Owner)
	if err != nil {
		return nil, nil, err
	}
	return m, owner, nil
}

// ExecuteHandler executes proposals that collected enough approvals.
type ExecuteHandler struct {
	engine *Engine
}

var _ quorum.Handler = ExecuteHandler{}

func (h ExecuteHandler) Check(ctx quorum.Context, db quorum.KVStore, tx quorum.Tx) (*quorum.CheckResult, error) {
	msg, err := h.validate(tx)
	if err != nil {
		return nil, err
	}
	if _, _, err := h.engine.checkExecute(db, msg.ProposalID); err != nil {
		return nil, err
	}
	return quorum.NewCheck(executeCost, ""), nil
}

func (h ExecuteHandler) Deliver(ctx quorum.Context, db quorum.KVStore, tx quorum.Tx) (*quorum.DeliverResult, error) {
	msg, err := h.validate(tx)
	if err != nil {
		return nil, err
	}
	ev, err := h.engine.execute(ctx, db, msg.ProposalID)
	if err != nil {
		return nil, err
	}
	return &quorum.DeliverResult{Tags: proposalTags(msg.ProposalID, ev)}, nil
}

func (h ExecuteHandler) validate(tx quorum.Tx) (*ExecuteMsg, error) {
	msg, err := loadMsg(tx)
	if err != nil {
		return nil, err
	}
	m, ok := msg.(*ExecuteMsg)
	if !ok {
		return nil, errors.WithType(errors.ErrMsg, msg)
	}
	return m, nil
}

// loadMsg returns the validated message of the transaction.
func loadMsg(tx quorum.Tx) (quorum.Msg, error) {
	msg, err := tx.GetMsg()
	if err != nil {
		return nil, errors.Wrap(err, "cannot load message")
	}
	if msg == nil {
		return nil, errors.Wrap(errors.ErrMsg, "missing message")
	}
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	return msg, nil
}

// caller returns the explicitly declared address or, if none, the address
// of the main signer.
func caller(ctx quorum.Context, auth x.Authenticator, declared quorum.Address) (quorum.Address, error) {
	if len(declared) != 0 {
		return declared, nil
	}
	signer := x.MainSigner(ctx, auth)
	if signer == nil {
		return nil, errors.Wrap(errors.ErrUnauthorized, "no signer")
	}
	return signer.Address(), nil
}

// proposalTags returns the proposal id tag followed by the tags of the
// event the operation published.
func proposalTags(id uint32, ev quorum.Event) []common.KVPair {
	tags := []common.KVPair{{Key: []byte(ProposalIDTag), Value: formatID(id)}}
	return append(tags, ev.Tags()...)
}
