package orm

import (
	"encoding/binary"

	"github.com/iov-one/quorum/errors"
)

// counter is a minimal model used by the tests of this package.
type counter struct {
	Count int64
}

func (c counter) Marshal() ([]byte, error) {
	bz := make([]byte, 8)
	binary.BigEndian.PutUint64(bz, uint64(c.Count))
	return bz, nil
}

func (c *counter) Unmarshal(bz []byte) error {
	if len(bz) != 8 {
		return errors.ErrModel.Newf("counter: invalid length %d", len(bz))
	}
	c.Count = int64(binary.BigEndian.Uint64(bz))
	return nil
}

func (c counter) Validate() error {
	if c.Count < 0 {
		return errors.ErrModel.New("negative count")
	}
	return nil
}
