package reactor

import "errors"

// Sentinel errors a caller can match with errors.Is. No function in this
// package returns any of them: socket construction failures come back
// wrapped in a *netutil.NetworkError, which carries the failed
// operation's name and the underlying errno.
var (
	// ErrClosed names an operation attempted against a handler or
	// reactor that has already shut down.
	ErrClosed = errors.New("reactor: closed")

	// ErrNotRegistered names a Del for an fd the reactor has no record
	// of. Del itself returns no error and ignores such a call.
	ErrNotRegistered = errors.New("reactor: handler not registered")

	// ErrInvalidArgument names malformed caller input. NewStream does not
	// validate its receive policy and returns no error.
	ErrInvalidArgument = errors.New("reactor: invalid argument")
)
