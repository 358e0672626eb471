package reactor

import "github.com/aimoonchen/actor-framework/internal/netutil"

// Family re-exports netutil.Family so callers never need to import the
// internal package directly.
type Family = netutil.Family

const (
	FamilyUnspecified = netutil.FamilyUnspecified
	FamilyIPv4        = netutil.FamilyIPv4
	FamilyIPv6        = netutil.FamilyIPv6
)

// Manager is the external collaborator a Stream reports to: the broker
// actor that consumes bytes, learns of failures, and (when ack_writes is
// set) learns how much of its last write actually reached the socket.
type Manager interface {
	Consume(backend *Reactor, data []byte)
	IOFailure(backend *Reactor, op Operation)
	DataTransferred(backend *Reactor, sent, remaining int)
}

// ConnectionManager is the Manager seen by a Stream. It exists as a
// distinct name so call sites document which side of a connection they
// mean, even though the method set is identical to Manager.
type ConnectionManager interface {
	Manager
}

// AcceptManager is the external collaborator an Acceptor reports to.
type AcceptManager interface {
	NewConnection(backend *Reactor, fd FD)
}

// Scheduler is the external collaborator exec_later hands non-IO tasks
// to.
type Scheduler interface {
	Enqueue(task Resumable)
}

// Resolver resolves a hostname to an address, honoring a preferred
// family hint. Nothing in this package accepts or calls a Resolver:
// NewTCPScribe and AddTCPScribe always resolve through the minimal
// default lookup in internal/netutil.
type Resolver interface {
	Resolve(host string, preferred Family) (ip string, family Family, err error)
}
