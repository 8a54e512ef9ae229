package app

import (
	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/commands"
	"github.com/iov-one/quorum/crypto"
	"github.com/iov-one/quorum/x/multisig"
)

// examplesChainID is used to sign the example transactions.
const examplesChainID = "quorum-examples"

// Examples returns the messages and a signed transaction encoded with
// deterministic keys, for clients to test their codecs against.
func Examples() []commands.Example {
	var owners []*crypto.PrivateKey
	for i := byte(1); i <= 3; i++ {
		seed := make([]byte, 32)
		seed[0] = i
		owners = append(owners, crypto.PrivKeyEd25519FromSeed(seed))
	}
	addr := func(k *crypto.PrivateKey) quorum.Address {
		return k.PublicKey().Address()
	}

	initMsg := &multisig.InitMsg{
		Owners:    []quorum.Address{addr(owners[0]), addr(owners[1]), addr(owners[2])},
		Threshold: 2,
	}
	value, err := multisig.ParseValue("-170141183460469231731687303715884105728")
	if err != nil {
		panic(err)
	}
	submitMsg := &multisig.SubmitMsg{
		Proposer:  addr(owners[0]),
		Recipient: quorum.NewCondition("test", "recipient", []byte{0xca, 0xfe}).Address(),
		Value:     value,
	}
	approveMsg := &multisig.ApproveMsg{ProposalID: 0, Owner: addr(owners[1])}
	executeMsg := &multisig.ExecuteMsg{ProposalID: 0}

	tx := NewTx(approveMsg)
	if err := tx.Sign(owners[1], examplesChainID, 0); err != nil {
		panic(err)
	}

	return []commands.Example{
		{Filename: "init_msg", Obj: initMsg},
		{Filename: "submit_msg", Obj: submitMsg},
		{Filename: "approve_msg", Obj: approveMsg},
		{Filename: "execute_msg", Obj: executeMsg},
		{Filename: "approve_tx", Obj: tx},
	}
}
