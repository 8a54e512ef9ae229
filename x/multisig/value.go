package multisig

import (
	"encoding/json"
	"math/big"
	"strings"

	"github.com/iov-one/quorum/errors"
)

// Value is a signed 128 bit integer in two's complement, split into the high
// and the low 64 bits.
type Value struct {
	Hi int64
	Lo uint64
}

var (
	two64     = new(big.Int).Lsh(big.NewInt(1), 64)
	two128    = new(big.Int).Lsh(big.NewInt(1), 128)
	maxValue  = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 127), big.NewInt(1))
	minValue  = new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(1), 127))
	lowerMask = new(big.Int).Sub(two64, big.NewInt(1))
)

// NewValue returns the Value of n.
func NewValue(n int64) Value {
	return Value{Hi: n >> 63, Lo: uint64(n)}
}

// MaxValue returns 2^127-1.
func MaxValue() Value {
	return Value{Hi: 1<<63 - 1, Lo: 1<<64 - 1}
}

// MinValue returns -2^127.
func MinValue() Value {
	return Value{Hi: -1 << 63, Lo: 0}
}

// ParseValue reads a base 10 integer. Values that do not fit into 128 bits
// fail with ErrOverflow.
func ParseValue(s string) (Value, error) {
	n, ok := new(big.Int).SetString(strings.TrimSpace(s), 10)
	if !ok {
		return Value{}, errors.Wrapf(errors.ErrInput, "value %q is not an integer", s)
	}
	return ValueFromBig(n)
}

// ValueFromBig converts n, failing with ErrOverflow when n does not fit into
// 128 bits.
func ValueFromBig(n *big.Int) (Value, error) {
	if n.Cmp(maxValue) > 0 || n.Cmp(minValue) < 0 {
		return Value{}, errors.Wrapf(errors.ErrOverflow, "value %s out of 128 bit range", n)
	}
	u := new(big.Int).Set(n)
	if u.Sign() < 0 {
		u.Add(u, two128)
	}
	lo := new(big.Int).And(u, lowerMask).Uint64()
	hi := new(big.Int).Rsh(u, 64).Uint64()
	return Value{Hi: int64(hi), Lo: lo}, nil
}

// BigInt returns the value as a big integer.
func (v Value) BigInt() *big.Int {
	n := big.NewInt(v.Hi)
	n.Lsh(n, 64)
	return n.Add(n, new(big.Int).SetUint64(v.Lo))
}

// Int64 returns the value if it fits into an int64.
func (v Value) Int64() (int64, bool) {
	n := int64(v.Lo)
	return n, v.Hi == n>>63
}

// Sign returns -1, 0 or +1.
func (v Value) Sign() int {
	switch {
	case v.Hi < 0:
		return -1
	case v.Hi == 0 && v.Lo == 0:
		return 0
	default:
		return 1
	}
}

// Cmp compares two values, returning -1, 0 or +1.
func (v Value) Cmp(other Value) int {
	switch {
	case v.Hi < other.Hi:
		return -1
	case v.Hi > other.Hi:
		return 1
	case v.Lo < other.Lo:
		return -1
	case v.Lo > other.Lo:
		return 1
	}
	return 0
}

// String returns the base 10 representation.
func (v Value) String() string {
	return v.BigInt().String()
}

// MarshalJSON encodes the value as a base 10 string, as a JSON number would
// lose precision in most clients.
func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.String())
}

// UnmarshalJSON accepts both a string and a number.
func (v *Value) UnmarshalJSON(raw []byte) error {
	s := string(raw)
	if strings.HasPrefix(s, `"`) {
		if err := json.Unmarshal(raw, &s); err != nil {
			return errors.Wrap(errors.ErrInput, "cannot decode json")
		}
	}
	val, err := ParseValue(s)
	if err != nil {
		return err
	}
	*v = val
	return nil
}
