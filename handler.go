package reactor

import (
	"github.com/aimoonchen/actor-framework/internal/netutil"
)

// Handler is the polymorphic interface the reactor dispatches events to.
// The three closed variants are *Stream, *Acceptor and the unexported
// pipe reader; all embed handlerBase.
type Handler interface {
	// HandleEvent is invoked from the reactor's own goroutine when fd()
	// is ready for op. Must not block.
	HandleEvent(op Operation)

	// RemovedFromLoop is called once per direction that drops out of the
	// committed interest mask, giving the handler a chance to release
	// the manager reference for that direction.
	RemovedFromLoop(op Operation)

	FD() FD

	// EventBF/SetEventBF track the last-committed interest mask so the
	// reactor can compute add/modify/delete deltas without re-querying
	// the OS.
	EventBF() Operation
	SetEventBF(Operation)

	ReadChannelClosed() bool
}

// handlerBase holds the state common to every handler variant: the fd,
// its last-committed interest mask, and whether the read side has been
// half-shut. Embedding it satisfies most of the Handler interface for
// free.
type handlerBase struct {
	fd                FD
	eventbf           Operation
	readChannelClosed bool
}

// adopt applies the invariants every fd a handler owns must satisfy:
// nonblocking mode, TCP_NODELAY, and SIGPIPE suppression.
func adopt(fd FD) error {
	if err := netutil.SetNonblock(fd, true); err != nil {
		return err
	}
	if err := netutil.SetNoDelay(fd, true); err != nil {
		return err
	}
	if err := netutil.SetNoSigpipe(fd); err != nil {
		return err
	}
	return nil
}

func newHandlerBase(fd FD) handlerBase {
	return handlerBase{fd: fd}
}

func (h *handlerBase) FD() FD                  { return h.fd }
func (h *handlerBase) EventBF() Operation      { return h.eventbf }
func (h *handlerBase) SetEventBF(op Operation) { h.eventbf = op }
func (h *handlerBase) ReadChannelClosed() bool { return h.readChannelClosed }

// closeReadChannel issues a half-shutdown of the read side and suppresses
// further read dispatch.
func (h *handlerBase) closeReadChannel() {
	if h.fd == InvalidFD || h.readChannelClosed {
		return
	}
	_ = netutil.ShutdownRead(h.fd)
	h.readChannelClosed = true
}

// closeFD closes the underlying descriptor exactly once.
func (h *handlerBase) closeFD() {
	if h.fd != InvalidFD {
		netutil.Close(h.fd)
		h.fd = InvalidFD
	}
}
