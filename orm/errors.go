package orm

import (
	"github.com/iov-one/quorum/errors"
)

// Orm reserves 100~109 error codes

// ErrInvalidBucket is returned when a bucket is configured with a name
// that cannot be used as a key prefix.
var ErrInvalidBucket = errors.Register(100, "invalid bucket")
