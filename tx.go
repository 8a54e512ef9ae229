package quorum

// Msg is the action a transaction asks for. Handlers validate it against
// state; the signatures authorizing it travel in the enclosing Tx.
type Msg interface {
	Persistent

	// Path routes the message to its handler, e.g. "multisig/submit".
	// It matches [0-9A-Za-z_\-/]+ and several message types may share
	// one path.
	Path() string

	// Validate checks the message on its own, without reading state.
	Validate() error
}

// Marshaller serializes a value, validating it first where that applies.
type Marshaller interface {
	Marshal() ([]byte, error)
}

// Persistent can be written and read back. Unmarshal usually needs a
// pointer receiver, so code that only writes takes a Marshaller.
type Persistent interface {
	Marshaller
	Unmarshal([]byte) error
}

// Tx is what a client broadcasts: one Msg plus whatever the decorators
// need to authenticate it.
type Tx interface {
	Persistent

	GetMsg() (Msg, error)
}

// GetPath returns the route of the carried message, or "(missing)" when
// the tx has none.
func GetPath(tx Tx) string {
	if msg, err := tx.GetMsg(); err == nil && msg != nil {
		return msg.Path()
	}
	return "(missing)"
}

// TxDecoder parses raw transaction bytes.
type TxDecoder func(txBytes []byte) (Tx, error)
