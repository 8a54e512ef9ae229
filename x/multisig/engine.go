package multisig

import (
	"strconv"

	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/errors"
	"github.com/iov-one/quorum/x"
	"github.com/iov-one/quorum/x/utils"
	"github.com/tendermint/tendermint/libs/log"
)

// Event topics emitted by the engine.
const (
	TopicProposalSubmitted = "proposal_submitted"
	TopicApproval          = "approval"
	TopicProposalExecuted  = "proposal_executed"
)

// Engine owns the multisig state: the owner registry, the proposals with
// their id allocator and the approval ledger. The store is passed to every
// call, the engine itself holds no state that changes.
//
// Every operation that writes runs in its own savepoint, so a failed call
// leaves the store untouched.
type Engine struct {
	registry  RegistryBucket
	proposals ProposalBucket
	approvals ApprovalBucket
	auth      x.Authenticator
	sink      quorum.EventSink
}

// NewEngine returns an engine authenticating callers with auth and
// publishing events to sink. A nil sink drops all events.
func NewEngine(auth x.Authenticator, sink quorum.EventSink) *Engine {
	if sink == nil {
		sink = quorum.NopEventSink
	}
	return &Engine{
		registry:  NewRegistryBucket(),
		proposals: NewProposalBucket(),
		approvals: NewApprovalBucket(),
		auth:      auth,
		sink:      sink,
	}
}

// Init stores the owners and the threshold and resets the proposal id
// allocator. It fails with ErrState if the engine is already initialized.
func (e *Engine) Init(ctx quorum.Context, db quorum.KVStore, owners []quorum.Address, threshold uint32) error {
	if err := e.checkInit(db, owners, threshold); err != nil {
		return err
	}
	err := utils.WithSavepoint(db, func(db quorum.KVStore) error {
		r := &Registry{Owners: owners, Threshold: threshold}
		if err := e.registry.Put(db, r); err != nil {
			return errors.Wrap(err, "cannot save registry")
		}
		return e.proposals.ResetIDs(db)
	})
	if err != nil {
		return err
	}
	logger(ctx).Debug("initialized", "owners", len(owners), "threshold", threshold)
	return nil
}

func (e *Engine) checkInit(db quorum.ReadOnlyKVStore, owners []quorum.Address, threshold uint32) error {
	if err := validateRegistry(errors.ErrInput, owners, threshold); err != nil {
		return err
	}
	r, err := e.registry.GetRegistry(db)
	if err != nil {
		return err
	}
	if r != nil {
		return errors.Wrap(errors.ErrState, "already initialized")
	}
	return nil
}

// Owners returns the owners in the order they were registered. It is empty
// if the engine was not initialized.
func (e *Engine) Owners(db quorum.ReadOnlyKVStore) ([]quorum.Address, error) {
	r, err := e.registry.GetRegistry(db)
	if err != nil || r == nil {
		return nil, err
	}
	return r.Owners, nil
}

// Registry returns the owners together with the threshold, or ErrState if
// the engine was not initialized.
func (e *Engine) Registry(db quorum.ReadOnlyKVStore) (*Registry, error) {
	r, err := e.registry.GetRegistry(db)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, errors.Wrap(errors.ErrState, "not initialized")
	}
	return r, nil
}

// RequireOwner ensures that the caller signed the current transaction and is
// one of the owners.
func (e *Engine) RequireOwner(ctx quorum.Context, db quorum.ReadOnlyKVStore, caller quorum.Address) error {
	if !e.auth.HasAddress(ctx, caller) {
		return errors.Wrapf(errors.ErrUnauthorized, "%s did not sign", caller)
	}
	r, err := e.Registry(db)
	if err != nil {
		return err
	}
	if !r.Contains(caller) {
		return errors.Wrapf(errors.ErrUnauthorized, "%s is not an owner", caller)
	}
	return nil
}

// Submit creates a proposal to send value to recipient and returns its id.
// The caller must be an owner.
func (e *Engine) Submit(ctx quorum.Context, db quorum.KVStore, caller, recipient quorum.Address, value Value) (uint32, error) {
	id, _, err := e.submit(ctx, db, caller, recipient, value)
	return id, err
}

// submit is Submit returning the published event as well.
func (e *Engine) submit(ctx quorum.Context, db quorum.KVStore, caller, recipient quorum.Address, value Value) (uint32, quorum.Event, error) {
	if err := e.checkSubmit(ctx, db, caller, recipient); err != nil {
		return 0, quorum.Event{}, err
	}

	var (
		p  *Proposal
		ev quorum.Event
	)
	err := utils.WithSavepoint(db, func(db quorum.KVStore) error {
		id, err := e.proposals.NextID(db)
		if err != nil {
			return err
		}
		p = &Proposal{
			ID:        id,
			Proposer:  caller,
			Recipient: recipient,
			Value:     value,
		}
		if err := e.proposals.Put(db, p); err != nil {
			return errors.Wrap(err, "cannot save proposal")
		}
		ev = quorum.NewEvent(TopicProposalSubmitted,
			quorum.Attr("id", formatID(id)),
			quorum.Attr("proposer", []byte(caller.String())),
			quorum.Attr("recipient", []byte(recipient.String())),
			quorum.Attr("value", []byte(value.String())),
		)
		e.sink.Publish(ctx, db, ev)
		return nil
	})
	if err != nil {
		return 0, quorum.Event{}, err
	}
	logger(ctx).Debug("proposal submitted", "proposal", p.ID, "owner", caller, "value", value)
	return p.ID, ev, nil
}

func (e *Engine) checkSubmit(ctx quorum.Context, db quorum.ReadOnlyKVStore, caller, recipient quorum.Address) error {
	if err := e.RequireOwner(ctx, db, caller); err != nil {
		return err
	}
	if err := recipient.Validate(); err != nil {
		return errors.Wrap(err, "recipient")
	}
	return nil
}

// Proposal returns the proposal with the given id or ErrNotFound.
func (e *Engine) Proposal(db quorum.ReadOnlyKVStore, id uint32) (*Proposal, error) {
	return e.proposals.GetProposal(db, id)
}

// ProposalCount returns how many proposals were submitted since init.
func (e *Engine) ProposalCount(db quorum.ReadOnlyKVStore) (int64, error) {
	return e.proposals.ProposalCount(db)
}

// Proposals returns all proposals ordered by id.
func (e *Engine) Proposals(db quorum.ReadOnlyKVStore) ([]*Proposal, error) {
	return e.proposals.Proposals(db)
}

// Approve records the approval of the caller, who must be an owner, for an
// existing proposal. Approving twice has no further effect.
func (e *Engine) Approve(ctx quorum.Context, db quorum.KVStore, caller quorum.Address, id uint32) error {
	_, err := e.approve(ctx, db, caller, id)
	return err
}

func (e *Engine) approve(ctx quorum.Context, db quorum.KVStore, caller quorum.Address, id uint32) (quorum.Event, error) {
	if err := e.checkApprove(ctx, db, caller, id); err != nil {
		return quorum.Event{}, err
	}
	ev := quorum.NewEvent(TopicApproval,
		quorum.Attr("id", formatID(id)),
		quorum.Attr("owner", []byte(caller.String())),
	)
	err := utils.WithSavepoint(db, func(db quorum.KVStore) error {
		if err := e.approvals.Approve(db, id, caller); err != nil {
			return errors.Wrap(err, "cannot save approval")
		}
		e.sink.Publish(ctx, db, ev)
		return nil
	})
	if err != nil {
		return quorum.Event{}, err
	}
	logger(ctx).Debug("proposal approved", "proposal", id, "owner", caller)
	return ev, nil
}

func (e *Engine) checkApprove(ctx quorum.Context, db quorum.ReadOnlyKVStore, caller quorum.Address, id uint32) error {
	if err := e.RequireOwner(ctx, db, caller); err != nil {
		return err
	}
	_, err := e.proposals.GetProposal(db, id)
	return err
}

// HasApproved returns true if the owner approved the proposal.
func (e *Engine) HasApproved(db quorum.ReadOnlyKVStore, id uint32, owner quorum.Address) (bool, error) {
	return e.approvals.HasApproved(db, id, owner)
}

// Tally counts the approvals of the registered owners for an existing
// proposal. Approvals recorded for anyone else are ignored.
func (e *Engine) Tally(db quorum.ReadOnlyKVStore, id uint32) (uint32, error) {
	if _, err := e.proposals.GetProposal(db, id); err != nil {
		return 0, err
	}
	r, err := e.Registry(db)
	if err != nil {
		return 0, err
	}
	return e.tally(db, r, id)
}

func (e *Engine) tally(db quorum.ReadOnlyKVStore, r *Registry, id uint32) (uint32, error) {
	var n uint32
	for _, owner := range r.Owners {
		ok, err := e.approvals.HasApproved(db, id, owner)
		if err != nil {
			return 0, err
		}
		if ok {
			n++
		}
	}
	return n, nil
}

// Execute marks the proposal as executed once enough owners approved it.
// Anyone can execute a proposal, but only once.
func (e *Engine) Execute(ctx quorum.Context, db quorum.KVStore, id uint32) error {
	_, err := e.execute(ctx, db, id)
	return err
}

func (e *Engine) execute(ctx quorum.Context, db quorum.KVStore, id uint32) (quorum.Event, error) {
	p, approvals, err := e.checkExecute(db, id)
	if err != nil {
		return quorum.Event{}, err
	}
	ev := quorum.NewEvent(TopicProposalExecuted,
		quorum.Attr("id", formatID(id)),
		quorum.Attr("recipient", []byte(p.Recipient.String())),
		quorum.Attr("value", []byte(p.Value.String())),
		quorum.Attr("approvals", []byte(strconv.FormatUint(uint64(approvals), 10))),
	)
	err = utils.WithSavepoint(db, func(db quorum.KVStore) error {
		p.Executed = true
		if err := e.proposals.Put(db, p); err != nil {
			return errors.Wrap(err, "cannot save proposal")
		}
		e.sink.Publish(ctx, db, ev)
		return nil
	})
	if err != nil {
		return quorum.Event{}, err
	}
	logger(ctx).Debug("proposal executed", "proposal", id, "approvals", approvals)
	return ev, nil
}

// checkExecute returns the proposal and its approval count if it can be
// executed. The executed flag is checked before the approvals are counted.
func (e *Engine) checkExecute(db quorum.ReadOnlyKVStore, id uint32) (*Proposal, uint32, error) {
	p, err := e.proposals.GetProposal(db, id)
	if err != nil {
		return nil, 0, err
	}
	if p.Executed {
		return nil, 0, errors.Wrapf(ErrAlreadyExecuted, "proposal %d", id)
	}
	r, err := e.Registry(db)
	if err != nil {
		return nil, 0, err
	}
	n, err := e.tally(db, r, id)
	if err != nil {
		return nil, 0, err
	}
	if n < r.Threshold {
		return nil, 0, errors.Wrapf(ErrInsufficientApprovals, "%d of %d", n, r.Threshold)
	}
	return p, n, nil
}

func formatID(id uint32) []byte {
	return []byte(strconv.FormatUint(uint64(id), 10))
}

func logger(ctx quorum.Context) log.Logger {
	return quorum.GetLogger(ctx).With("module", "multisig")
}
