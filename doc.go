/*
Package quorum defines the common interfaces that tie together the quorum
subpackages: the stores, the handlers and decorators, the transaction and
message types and the owner addresses.

We pass context through context.Context between app, middleware, and
handlers. To do so, quorum defines some common keys to store info, such as
block height and chain id. Each extension, such as sigs, may add its own keys
to enrich the context with specific data.

There should exist two functions for every XYZ of type T that we want to
support in Context:

  WithXYZ(Context, T) Context
  GetXYZ(Context) (val T, ok bool)

WithXYZ may panic if the value was previously set to avoid lower-level
modules overwriting the value (eg. height, chain id)
*/
package quorum
