package multisig

import (
	"encoding/binary"
	"math"

	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/errors"
	"github.com/iov-one/quorum/orm"
)

const (
	registryBucketName = "registry"
	proposalBucketName = "proposal"
	approvalBucketName = "approval"

	// registryKey is the only key used in the registry bucket.
	registryKey = "registry"
)

// Registry is the owner set together with the number of approvals a
// proposal needs before it can be executed.
type Registry struct {
	Owners    []quorum.Address `json:"owners"`
	Threshold uint32           `json:"threshold"`
}

var _ orm.Model = (*Registry)(nil)

func (r *Registry) Marshal() ([]byte, error) {
	return cdc.MarshalBinaryBare(r)
}

func (r *Registry) Unmarshal(bz []byte) error {
	return cdc.UnmarshalBinaryBare(bz, r)
}

func (r *Registry) Validate() error {
	return validateRegistry(errors.ErrModel, r.Owners, r.Threshold)
}

// Contains returns true if addr is one of the owners.
func (r *Registry) Contains(addr quorum.Address) bool {
	for _, o := range r.Owners {
		if o.Equals(addr) {
			return true
		}
	}
	return false
}

// validateRegistry returns an error wrapping base if the owners are empty,
// invalid or repeated, or the threshold cannot be reached.
func validateRegistry(base *errors.Error, owners []quorum.Address, threshold uint32) error {
	if len(owners) == 0 {
		return errors.Wrap(base, "no owners")
	}
	seen := make(map[string]struct{}, len(owners))
	for i, o := range owners {
		if err := o.Validate(); err != nil {
			return errors.Wrapf(base, "owner #%d: %s", i, err)
		}
		if _, ok := seen[string(o)]; ok {
			return errors.Wrapf(base, "duplicated owner %s", o)
		}
		seen[string(o)] = struct{}{}
	}
	if threshold == 0 {
		return errors.Wrap(base, "threshold must be greater than zero")
	}
	if int64(threshold) > int64(len(owners)) {
		return errors.Wrapf(base, "threshold %d greater than the number of owners %d", threshold, len(owners))
	}
	return nil
}

// Proposal is a request to send a value to a recipient, waiting for
// enough owner approvals.
type Proposal struct {
	ID        uint32         `json:"id"`
	Proposer  quorum.Address `json:"proposer"`
	Recipient quorum.Address `json:"recipient"`
	Value     Value          `json:"value"`
	Executed  bool           `json:"executed"`
}

var _ orm.Model = (*Proposal)(nil)

func (p *Proposal) Marshal() ([]byte, error) {
	return cdc.MarshalBinaryBare(p)
}

func (p *Proposal) Unmarshal(bz []byte) error {
	return cdc.UnmarshalBinaryBare(bz, p)
}

func (p *Proposal) Validate() error {
	if err := p.Proposer.Validate(); err != nil {
		return errors.Wrapf(errors.ErrModel, "proposer: %s", err)
	}
	if err := p.Recipient.Validate(); err != nil {
		return errors.Wrapf(errors.ErrModel, "recipient: %s", err)
	}
	return nil
}

// Approval marks that an owner approved a proposal. Approvals are never
// retracted.
type Approval struct {
	Approved bool `json:"approved"`
}

var _ orm.Model = (*Approval)(nil)

func (a *Approval) Marshal() ([]byte, error) {
	return cdc.MarshalBinaryBare(a)
}

func (a *Approval) Unmarshal(bz []byte) error {
	return cdc.UnmarshalBinaryBare(bz, a)
}

func (a *Approval) Validate() error {
	if !a.Approved {
		return errors.Wrap(errors.ErrModel, "only approvals are stored")
	}
	return nil
}

// idKey encodes a proposal id as 4 bytes big endian, so that keys sort in
// id order.
func idKey(id uint32) []byte {
	bz := make([]byte, 4)
	binary.BigEndian.PutUint32(bz, id)
	return bz
}

// RegistryBucket keeps the single Registry entry.
type RegistryBucket struct {
	orm.Bucket
}

// NewRegistryBucket returns a bucket for the owner registry.
func NewRegistryBucket() RegistryBucket {
	return RegistryBucket{
		Bucket: orm.NewBucket(registryBucketName, orm.NewSimpleObj(nil, new(Registry))),
	}
}

// GetRegistry returns the stored registry, or nil if the engine was never
// initialized.
func (b RegistryBucket) GetRegistry(db quorum.ReadOnlyKVStore) (*Registry, error) {
	obj, err := b.Get(db, []byte(registryKey))
	if err != nil {
		return nil, errors.Wrap(err, "bucket lookup")
	}
	if obj == nil || obj.Value() == nil {
		return nil, nil
	}
	r, ok := obj.Value().(*Registry)
	if !ok {
		return nil, errors.WithType(errors.ErrModel, obj.Value())
	}
	return r, nil
}

// Put stores the registry.
func (b RegistryBucket) Put(db quorum.KVStore, r *Registry) error {
	return b.Save(db, orm.NewSimpleObj([]byte(registryKey), r))
}

// ProposalBucket stores proposals under their id and owns the id
// allocator.
type ProposalBucket struct {
	orm.Bucket
	seq orm.Sequence
}

// NewProposalBucket returns a bucket for proposals.
func NewProposalBucket() ProposalBucket {
	b := orm.NewBucket(proposalBucketName, orm.NewSimpleObj(nil, new(Proposal)))
	return ProposalBucket{
		Bucket: b,
		seq:    b.Sequence(orm.SeqID),
	}
}

// NextID returns the next free proposal id. Ids start at zero and are never
// reused.
func (b ProposalBucket) NextID(db quorum.KVStore) (uint32, error) {
	count, err := b.seq.Latest(db)
	if err != nil {
		return 0, errors.Wrap(err, "proposal sequence")
	}
	if count > math.MaxUint32 {
		return 0, errors.Wrap(errors.ErrOverflow, "no proposal id left")
	}
	next, err := b.seq.NextInt(db)
	if err != nil {
		return 0, errors.Wrap(err, "proposal sequence")
	}
	return uint32(next - 1), nil
}

// ProposalCount returns how many ids were allocated so far.
func (b ProposalBucket) ProposalCount(db quorum.ReadOnlyKVStore) (int64, error) {
	return b.seq.Latest(db)
}

// ResetIDs makes the allocator start again from zero.
func (b ProposalBucket) ResetIDs(db quorum.KVStore) error {
	return b.seq.Reset(db)
}

// GetProposal returns the proposal with the given id or ErrNotFound.
func (b ProposalBucket) GetProposal(db quorum.ReadOnlyKVStore, id uint32) (*Proposal, error) {
	obj, err := b.Get(db, idKey(id))
	if err != nil {
		return nil, errors.Wrap(err, "bucket lookup")
	}
	if obj == nil || obj.Value() == nil {
		return nil, errors.Wrapf(errors.ErrNotFound, "proposal %d", id)
	}
	p, ok := obj.Value().(*Proposal)
	if !ok {
		return nil, errors.WithType(errors.ErrModel, obj.Value())
	}
	return p, nil
}

// Put stores the proposal under its id.
func (b ProposalBucket) Put(db quorum.KVStore, p *Proposal) error {
	return b.Save(db, orm.NewSimpleObj(idKey(p.ID), p))
}

// Proposals returns all proposals in id order.
func (b ProposalBucket) Proposals(db quorum.ReadOnlyKVStore) ([]*Proposal, error) {
	var res []*Proposal
	err := b.Iterate(db, nil, func(obj orm.Object) error {
		p, ok := obj.Value().(*Proposal)
		if !ok {
			return errors.WithType(errors.ErrModel, obj.Value())
		}
		res = append(res, p)
		return nil
	})
	return res, err
}

// ApprovalBucket is the approval ledger, keyed by proposal id and owner.
type ApprovalBucket struct {
	orm.Bucket
}

// NewApprovalBucket returns a bucket for approvals.
func NewApprovalBucket() ApprovalBucket {
	return ApprovalBucket{
		Bucket: orm.NewBucket(approvalBucketName, orm.NewSimpleObj(nil, new(Approval))),
	}
}

func approvalKey(id uint32, owner quorum.Address) []byte {
	return append(idKey(id), owner...)
}

// HasApproved returns true if the owner approved the proposal.
func (b ApprovalBucket) HasApproved(db quorum.ReadOnlyKVStore, id uint32, owner quorum.Address) (bool, error) {
	obj, err := b.Get(db, approvalKey(id, owner))
	if err != nil {
		return false, errors.Wrap(err, "bucket lookup")
	}
	if obj == nil || obj.Value() == nil {
		return false, nil
	}
	a, ok := obj.Value().(*Approval)
	if !ok {
		return false, errors.WithType(errors.ErrModel, obj.Value())
	}
	return a.Approved, nil
}

// Approve records the approval. Repeating it has no further effect.
func (b ApprovalBucket) Approve(db quorum.KVStore, id uint32, owner quorum.Address) error {
	return b.Save(db, orm.NewSimpleObj(approvalKey(id, owner), &Approval{Approved: true}))
}

// Approvers returns the addresses of everyone with an approval recorded
// for the proposal, in key order. This can include non owners only if the
// ledger was written around the engine.
func (b ApprovalBucket) Approvers(db quorum.ReadOnlyKVStore, id uint32) ([]quorum.Address, error) {
	var res []quorum.Address
	err := b.Iterate(db, idKey(id), func(obj orm.Object) error {
		a, ok := obj.Value().(*Approval)
		if !ok {
			return errors.WithType(errors.ErrModel, obj.Value())
		}
		if a.Approved {
			res = append(res, quorum.Address(obj.Key()[4:]))
		}
		return nil
	})
	return res, err
}
