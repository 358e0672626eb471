package reactor

import (
	"testing"

	"github.com/aimoonchen/actor-framework/internal/netutil"
)

func TestHandlerBaseCloseFDIsIdempotent(t *testing.T) {
	readFD, writeFD, err := netutil.CreatePipe()
	if err != nil {
		t.Fatalf("CreatePipe: %v", err)
	}
	defer netutil.Close(readFD)

	h := newHandlerBase(writeFD)
	h.closeFD()
	if h.fd != InvalidFD {
		t.Fatalf("fd = %d after closeFD, want InvalidFD", h.fd)
	}
	h.closeFD() // must not double-close
}

func TestHandlerBaseCloseReadChannelOnce(t *testing.T) {
	readFD, writeFD, err := netutil.CreatePipe()
	if err != nil {
		t.Fatalf("CreatePipe: %v", err)
	}
	defer netutil.Close(writeFD)

	h := newHandlerBase(readFD)
	if h.ReadChannelClosed() {
		t.Fatalf("ReadChannelClosed() = true before any close")
	}
	h.closeReadChannel()
	if !h.ReadChannelClosed() {
		t.Fatalf("ReadChannelClosed() = false after closeReadChannel")
	}
	h.closeReadChannel() // must be a no-op, not double-shutdown
}

func TestAdoptSucceedsOnConnectedSocket(t *testing.T) {
	listenFD, port, err := netutil.NewTCPAcceptor(0, "127.0.0.1", true)
	if err != nil {
		t.Fatalf("NewTCPAcceptor: %v", err)
	}
	defer netutil.Close(listenFD)

	fd, err := netutil.NewTCPConnection("127.0.0.1", port, FamilyIPv4)
	if err != nil {
		t.Fatalf("NewTCPConnection: %v", err)
	}
	defer netutil.Close(fd)

	if err := adopt(fd); err != nil {
		t.Fatalf("adopt: %v", err)
	}
}
