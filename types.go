package reactor

import "github.com/aimoonchen/actor-framework/poller"

// FD is a native OS socket/file descriptor. InvalidFD denotes "no socket".
type FD = poller.FD

// InvalidFD is the sentinel value meaning "no socket".
const InvalidFD FD = -1

// Operation is a bit set over {read, write, error}. It is the same type
// the poller back ends speak, re-exported here so callers never need to
// import the poller package directly.
type Operation = poller.Operation

const (
	OpRead  = poller.OpRead
	OpWrite = poller.OpWrite
	OpError = poller.OpError
)
