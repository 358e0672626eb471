package reactor

import "github.com/aimoonchen/actor-framework/internal/netutil"

// defaultScribePolicy is the receive policy every scribe built by
// NewTCPScribe or AddTCPScribe uses. Stream has no method to change its
// policy afterwards; exactly/at-least framing needs a Stream built with
// NewStream.
var defaultScribePolicy = ReceivePolicy{Flag: AtMost, N: 1024}

// NewTCPScribe resolves host, connects (with the v6-then-v4 fallback in
// internal/netutil), and wraps the resulting fd in a Stream not yet
// registered with any manager. NewStream adopts the fd.
func (r *Reactor) NewTCPScribe(host string, port uint16, preferred Family) (*Stream, error) {
	fd, err := netutil.NewTCPConnection(host, port, preferred)
	if err != nil {
		return nil, err
	}
	return NewStream(r, fd, defaultScribePolicy), nil
}

// AssignTCPScribe registers an already-built Stream with mgr and starts
// read dispatch for it.
func (r *Reactor) AssignTCPScribe(s *Stream, mgr ConnectionManager) {
	s.reader = mgr
	s.writer = mgr
	r.Add(OpRead, s.FD(), s)
}

// AddTCPScribe is NewTCPScribe followed by AssignTCPScribe in one call.
func (r *Reactor) AddTCPScribe(mgr ConnectionManager, host string, port uint16, preferred Family) (*Stream, error) {
	s, err := r.NewTCPScribe(host, port, preferred)
	if err != nil {
		return nil, err
	}
	r.AssignTCPScribe(s, mgr)
	return s, nil
}

// AddTCPDoorman binds, listens, and registers a new Acceptor against
// mgr, returning the bound port (useful when port was 0).
func (r *Reactor) AddTCPDoorman(mgr AcceptManager, port uint16, addr string, reuseAddr bool) (*Acceptor, uint16, error) {
	fd, boundPort, err := netutil.NewTCPAcceptor(port, addr, reuseAddr)
	if err != nil {
		return nil, 0, err
	}
	a := NewAcceptor(r, fd, mgr)
	r.Add(OpRead, fd, a)
	return a, boundPort, nil
}
