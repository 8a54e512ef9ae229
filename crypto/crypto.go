/*
Package crypto holds the ed25519 keys owners use to sign transactions.

Keys and signatures are plain structs so that they can be carried inside a
transaction and serialized with the application codec.
*/
package crypto

import (
	"github.com/iov-one/quorum"
)

// ExtensionName is used for the Conditions we get from signatures
const ExtensionName = "sigs"

// PubKey represents a crypto public key we use
type PubKey interface {
	Verify(message []byte, sig *Signature) bool
	Condition() quorum.Condition
	Address() quorum.Address
}

// Signer is the functionality we use from a private key
// No serializing to support hardware devices as well.
type Signer interface {
	Sign(message []byte) (*Signature, error)
	PublicKey() *PublicKey
}
