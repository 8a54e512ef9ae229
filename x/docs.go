/*
Package x contains the standard quorum extensions

Extensions implement common functionality (Handler, Decorator,
etc.) and are combined together to construct the application.

x/sigs authenticates signers, x/utils carries the generic decorators,
x/eventlog persists emitted events and x/multisig holds the wallet itself.
This package defines the Authenticator abstraction they share.
*/
package x
