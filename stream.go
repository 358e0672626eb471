package reactor

import (
	"io"
	"log"

	"github.com/aimoonchen/actor-framework/internal/netutil"
	"github.com/aimoonchen/actor-framework/internal/ring"
)

// PolicyFlag selects how a Stream decides when to deliver accumulated
// read bytes to its manager.
type PolicyFlag uint8

const (
	Exactly PolicyFlag = iota
	AtMost
	AtLeast
)

// ReceivePolicy is the (flag, N) pair that decides when a Stream has
// collected enough bytes to deliver to its manager.
type ReceivePolicy struct {
	Flag PolicyFlag
	N    int
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// bufferAndThreshold implements the read-policy table verbatim:
//
//	exactly  -> buffer N,                    threshold N
//	at-most  -> buffer N,                    threshold 1
//	at-least -> buffer N+max(100, N/10),     threshold N
func (p ReceivePolicy) bufferAndThreshold() (size, threshold int) {
	switch p.Flag {
	case Exactly:
		return p.N, p.N
	case AtMost:
		return p.N, 1
	case AtLeast:
		return p.N + maxInt(100, p.N/10), p.N
	default:
		return p.N, p.N
	}
}

// Stream is a buffered, byte-oriented TCP connection handler: the read
// policy state machine plus an offline/online write queue.
type Stream struct {
	handlerBase
	reactor *Reactor

	policy        ReceivePolicy
	rd            ring.Buffer
	rdBuf         []byte
	collected     int
	readThreshold int
	reader        ConnectionManager

	wrOffline []byte
	wrOnline  []byte
	written   int
	writing   bool
	ackWrites bool
	writer    ConnectionManager
}

// NewStream adopts fd (nonblocking, TCP_NODELAY, no-SIGPIPE) and wraps
// it in a Stream configured with the given receive policy. Every fd a
// Stream owns passes through here, whether it arrived via a connect
// (NewTCPScribe) or an accept (a doorman's AcceptManager), so both
// paths get the same socket options.
func NewStream(reactor *Reactor, fd FD, policy ReceivePolicy) *Stream {
	if err := adopt(fd); err != nil {
		log.Printf("reactor: adopt fd %d failed: %v", fd, err)
	}
	s := &Stream{
		handlerBase: newHandlerBase(fd),
		reactor:     reactor,
		policy:      policy,
	}
	s.resetReadLoop()
	return s
}

// SetAckWrites toggles per-flush DataTransferred notifications.
func (s *Stream) SetAckWrites(enable bool) { s.ackWrites = enable }

func (s *Stream) resetReadLoop() {
	size, threshold := s.policy.bufferAndThreshold()
	s.rdBuf = s.rd.Reset(size)
	s.collected = 0
	s.readThreshold = threshold
}

// HandleEvent dispatches a single ready direction to the read or write
// state machine, or tears the stream down on an error-only event.
func (s *Stream) HandleEvent(op Operation) {
	switch {
	case op.Has(OpRead):
		s.handleRead()
	case op.Has(OpWrite):
		s.handleWrite()
	case op.Has(OpError):
		s.handleError()
	}
}

// RemovedFromLoop drops the manager reference for whichever direction
// the reactor just removed; read and write managers are cleared
// independently of each other.
func (s *Stream) RemovedFromLoop(op Operation) {
	if op.Has(OpRead) {
		s.reader = nil
	}
	if op.Has(OpWrite) {
		s.writer = nil
		s.writing = false
	}
}

func (s *Stream) handleRead() {
	n, err := netutil.Read(s.fd, s.rdBuf[s.collected:])
	if err != nil {
		if netutil.WouldBlock(err) || netutil.Interrupted(err) {
			return
		}
		s.failRead(err)
		return
	}
	if n == 0 {
		s.failRead(io.EOF)
		return
	}
	s.collected += n
	if s.collected >= s.readThreshold {
		data := make([]byte, s.collected)
		copy(data, s.rdBuf[:s.collected])
		mgr := s.reader
		s.resetReadLoop()
		if mgr != nil {
			mgr.Consume(s.reactor, data)
		}
	}
}

func (s *Stream) failRead(_ error) {
	mgr := s.reader
	s.reactor.Del(OpRead, s.fd, s)
	s.closeReadChannel()
	if mgr != nil {
		mgr.IOFailure(s.reactor, OpRead)
	}
}

// Write appends p to the offline buffer; it is drained on the next
// Flush and subsequent writable events.
func (s *Stream) Write(p []byte) (int, error) {
	s.wrOffline = append(s.wrOffline, p...)
	return len(p), nil
}

// Flush is idempotent: if the offline buffer is nonempty and the stream
// is not already writing, it adopts mgr as the write-side manager,
// registers write interest, and enters the write loop.
func (s *Stream) Flush(mgr ConnectionManager) {
	if len(s.wrOffline) == 0 || s.writing {
		return
	}
	s.writer = mgr
	s.writing = true
	s.reactor.Add(OpWrite, s.fd, s)
	s.enterWriteLoop()
}

func (s *Stream) enterWriteLoop() {
	s.written = 0
	s.wrOnline = s.wrOnline[:0]
	if len(s.wrOffline) == 0 {
		s.writing = false
		s.reactor.Del(OpWrite, s.fd, s)
		return
	}
	s.wrOnline, s.wrOffline = s.wrOffline, s.wrOnline
}

func (s *Stream) handleWrite() {
	if len(s.wrOnline) == 0 {
		return
	}
	n, err := netutil.Write(s.fd, s.wrOnline[s.written:])
	if err != nil {
		if netutil.WouldBlock(err) || netutil.Interrupted(err) {
			return
		}
		mgr := s.writer
		s.reactor.Del(OpWrite, s.fd, s)
		if mgr != nil {
			mgr.IOFailure(s.reactor, OpWrite)
		}
		return
	}
	s.written += n
	if s.ackWrites && s.writer != nil {
		remaining := (len(s.wrOnline) - s.written) + len(s.wrOffline)
		s.writer.DataTransferred(s.reactor, n, remaining)
	}
	if s.written >= len(s.wrOnline) {
		s.enterWriteLoop()
	}
}

func (s *Stream) handleError() {
	mgr := s.reader
	if mgr == nil {
		mgr = s.writer
	}
	s.reactor.Del(OpRead, s.fd, s)
	s.reactor.Del(OpWrite, s.fd, s)
	if mgr != nil {
		mgr.IOFailure(s.reactor, OpError)
	}
}

// StopReading half-shuts the read side and deregisters read interest
// without tearing down the write side.
func (s *Stream) StopReading() {
	s.closeReadChannel()
	s.reactor.Del(OpRead, s.fd, s)
}

// Close closes the underlying fd. Callers are expected to have already
// detached both directions (StopReading plus a drained write side).
func (s *Stream) Close() {
	if s.fd == InvalidFD {
		return
	}
	s.closeFD()
}
