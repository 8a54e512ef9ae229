/*
Package errors implements the error values used across quorum.

Reuse the root errors declared here whenever possible and declare custom
extension errors only when a client must tell them apart. x/multisig does that
for ErrAlreadyExecuted and ErrInsufficientApprovals.

To register a custom error use Register(code, description). To create an
instance use ErrXyz.New / ErrXyz.Newf or errors.Wrap(ErrXyz, "..."). Test the
kind of an error with ErrXyz.Is(err), which unwraps any number of Wrap layers.
The code is the ABCI response code, which lets clients react on the kind of the
failure.

A stack trace is attached at the innermost Wrap. Once you have an error, use
fmt to get more context for it
	%s is just the error message
	%+v is the full stack trace
	%v appends a compressed [filename:line] where the error was created
*/
package errors
