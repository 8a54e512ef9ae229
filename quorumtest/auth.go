package quorumtest

import (
	"context"
	"crypto/rand"
	"fmt"

	"github.com/iov-one/quorum"
)

// NewCondition returns a new and unique condition, suitable as an owner
// identity in tests.
func NewCondition() quorum.Condition {
	data := make([]byte, 32)
	if _, err := rand.Read(data); err != nil {
		panic(err)
	}
	return quorum.NewCondition("test", "mock", data)
}

// Auth is a static x.Authenticator: Signer, if set, followed by Signers
// are authenticated for every context.
type Auth struct {
	Signer  quorum.Condition
	Signers []quorum.Condition
}

func (a *Auth) GetConditions(quorum.Context) []quorum.Condition {
	if a.Signer != nil {
		return append([]quorum.Condition{a.Signer}, a.Signers...)
	}
	return a.Signers
}

func (a *Auth) HasAddress(ctx quorum.Context, addr quorum.Address) bool {
	for _, s := range a.GetConditions(ctx) {
		if addr.Equals(s.Address()) {
			return true
		}
	}
	return false
}

// CtxAuth is an x.Authenticator reading the conditions stored in the
// context by SetConditions under Key. Use different keys to simulate
// several authenticators.
type CtxAuth struct {
	Key string
}

type ctxAuthKey string

func (a CtxAuth) SetConditions(ctx quorum.Context, permissions ...quorum.Condition) quorum.Context {
	return context.WithValue(ctx, ctxAuthKey(a.Key), permissions)
}

func (a CtxAuth) GetConditions(ctx quorum.Context) []quorum.Condition {
	val := ctx.Value(ctxAuthKey(a.Key))
	if val == nil {
		return nil
	}
	conds, ok := val.([]quorum.Condition)
	if !ok {
		panic(fmt.Sprintf("instead of []quorum.Condition got %T", val))
	}
	return conds
}

func (a CtxAuth) HasAddress(ctx quorum.Context, addr quorum.Address) bool {
	for _, s := range a.GetConditions(ctx) {
		if addr.Equals(s.Address()) {
			return true
		}
	}
	return false
}
