package quorumtest

import "github.com/iov-one/quorum"

// Tx carries a single Msg. GetMsg fails with Err when it is set. Tx
// cannot be serialized.
type Tx struct {
	Msg quorum.Msg
	Err error
}

var _ quorum.Tx = (*Tx)(nil)

func (tx *Tx) GetMsg() (quorum.Msg, error) {
	return tx.Msg, tx.Err
}

func (tx *Tx) Marshal() ([]byte, error) {
	panic("quorumtest.Tx is not serializable")
}

func (tx *Tx) Unmarshal([]byte) error {
	panic("quorumtest.Tx is not serializable")
}

// Msg routes to RoutePath and serializes to the Serialized bytes as they
// are. Every method but Path returns Err.
type Msg struct {
	RoutePath  string
	Serialized []byte
	Err        error
}

var _ quorum.Msg = (*Msg)(nil)

func (m *Msg) Path() string {
	return m.RoutePath
}

func (m *Msg) Validate() error {
	return m.Err
}

func (m *Msg) Marshal() ([]byte, error) {
	return m.Serialized, m.Err
}

func (m *Msg) Unmarshal(raw []byte) error {
	m.Serialized = raw
	return m.Err
}
