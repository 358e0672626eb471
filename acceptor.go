package reactor

import (
	"log"

	"github.com/aimoonchen/actor-framework/internal/netutil"
)

// Acceptor is a listening-socket handler: it accepts incoming
// connections and hands the accepted fd to its manager.
type Acceptor struct {
	handlerBase
	reactor  *Reactor
	manager  AcceptManager
	accepted FD
}

// NewAcceptor wraps an already-listening, already-nonblocking fd.
func NewAcceptor(reactor *Reactor, fd FD, manager AcceptManager) *Acceptor {
	return &Acceptor{
		handlerBase: newHandlerBase(fd),
		reactor:     reactor,
		manager:     manager,
		accepted:    InvalidFD,
	}
}

func (a *Acceptor) HandleEvent(op Operation) {
	switch {
	case op.Has(OpRead):
		a.handleAccept()
	case op.Has(OpError):
		a.handleError()
	}
}

func (a *Acceptor) handleAccept() {
	fd, err := netutil.Accept4(a.fd)
	if err != nil {
		if netutil.WouldBlock(err) {
			return
		}
		a.handleError()
		return
	}
	a.accepted = fd
	if a.manager != nil {
		a.manager.NewConnection(a.reactor, fd)
	}
}

func (a *Acceptor) handleError() {
	log.Printf("reactor: acceptor fd %d failed, tearing down", a.fd)
	a.reactor.Del(OpRead, a.fd, a)
}

// RemovedFromLoop drops the manager reference once the acceptor's
// single direction is removed.
func (a *Acceptor) RemovedFromLoop(op Operation) {
	if op.Has(OpRead) {
		a.manager = nil
	}
}

// Close closes the listening fd.
func (a *Acceptor) Close() {
	if a.fd == InvalidFD {
		return
	}
	a.closeFD()
}
