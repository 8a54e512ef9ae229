package multisig

import (
	"github.com/iov-one/quorum/errors"
)

// multisig takes 1040-1049
var (
	ErrAlreadyExecuted       = errors.Register(1040, "proposal already executed")
	ErrInsufficientApprovals = errors.Register(1041, "insufficient approvals")
)
