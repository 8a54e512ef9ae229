package x

import (
	"bytes"

	"github.com/iov-one/quorum"
)

// Authenticator tells which conditions signed the current transaction.
// Extensions receive it in their constructor, so the signature scheme
// stays pluggable.
type Authenticator interface {
	// GetConditions returns the fulfilled conditions, main signer first.
	GetConditions(quorum.Context) []quorum.Condition
	// HasAddress is the require_auth primitive: true if any fulfilled
	// condition resolves to addr.
	HasAddress(quorum.Context, quorum.Address) bool
}

// MultiAuth merges several Authenticators, for example signatures and
// conditions granted by the application itself.
type MultiAuth struct {
	impls []Authenticator
}

var _ Authenticator = MultiAuth{}

// ChainAuth groups together a series of Authenticator
func ChainAuth(impls ...Authenticator) MultiAuth {
	return MultiAuth{impls}
}

// GetConditions returns the conditions of all Authenticators in order.
// A condition reported more than once is listed only the first time.
func (m MultiAuth) GetConditions(ctx quorum.Context) []quorum.Condition {
	var res []quorum.Condition
	for _, impl := range m.impls {
		for _, c := range impl.GetConditions(ctx) {
			if !containsCondition(res, c) {
				res = append(res, c)
			}
		}
	}
	return res
}

func containsCondition(set []quorum.Condition, c quorum.Condition) bool {
	for _, s := range set {
		if bytes.Equal(s, c) {
			return true
		}
	}
	return false
}

// HasAddress returns true iff any Authenticator support this
func (m MultiAuth) HasAddress(ctx quorum.Context, addr quorum.Address) bool {
	for _, impl := range m.impls {
		if impl.HasAddress(ctx, addr) {
			return true
		}
	}
	return false
}

// MainSigner returns the first condition if any, otherwise nil. Messages
// that do not name their caller act on behalf of the main signer.
func MainSigner(ctx quorum.Context, auth Authenticator) quorum.Condition {
	signers := auth.GetConditions(ctx)
	if len(signers) == 0 {
		return nil
	}
	return signers[0]
}
