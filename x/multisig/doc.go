/*
Package multisig implements a threshold multi-party transaction engine.

A fixed set of owners is registered once, together with the number of owner
approvals a proposal needs. Any owner can submit a proposal to send a value to
a recipient. Owners approve proposals and once enough approvals are recorded,
anyone can execute the proposal. A proposal can be executed only once.

Executing a proposal does not move any funds. It marks the proposal as
executed and emits an event that an external settlement step acts upon.

State is kept in four prefixed regions of the store:

	registry:registry               owners and threshold
	_s.proposal:id                  proposal id counter
	proposal:<id>                   proposals, id is 4 bytes big endian
	approval:<id><owner address>    approvals
*/
package multisig
