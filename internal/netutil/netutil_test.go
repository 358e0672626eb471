package netutil

import "testing"

func TestGuardReleaseSuppressesClose(t *testing.T) {
	readFD, writeFD, err := CreatePipe()
	if err != nil {
		t.Fatalf("CreatePipe: %v", err)
	}
	defer Close(readFD)
	defer Close(writeFD)

	g := NewGuard(writeFD)
	released := g.Release()
	if released != writeFD {
		t.Fatalf("Release() = %d, want %d", released, writeFD)
	}
	g.Close() // must be a no-op: writeFD is still valid afterward

	if _, err := Write(writeFD, []byte("x")); err != nil {
		t.Fatalf("write after Release+Close failed, fd was closed: %v", err)
	}
}

func TestGuardCloseWithoutRelease(t *testing.T) {
	readFD, writeFD, err := CreatePipe()
	if err != nil {
		t.Fatalf("CreatePipe: %v", err)
	}
	defer Close(readFD)

	g := NewGuard(writeFD)
	g.Close()

	if _, err := Write(writeFD, []byte("x")); err == nil {
		t.Fatalf("write succeeded after unreleased Close, fd should have been closed")
	}
}

func TestLoopbackConnectionRoundTrip(t *testing.T) {
	listenFD, port, err := NewTCPAcceptor(0, "127.0.0.1", true)
	if err != nil {
		t.Fatalf("NewTCPAcceptor: %v", err)
	}
	defer Close(listenFD)
	if port == 0 {
		t.Fatalf("bound port is 0")
	}

	clientFD, err := NewTCPConnection("127.0.0.1", port, FamilyIPv4)
	if err != nil {
		t.Fatalf("NewTCPConnection: %v", err)
	}
	defer Close(clientFD)

	var serverFD int
	for i := 0; i < 1000; i++ {
		serverFD, err = Accept4(listenFD)
		if err == nil {
			break
		}
		if !WouldBlock(err) {
			t.Fatalf("Accept4: %v", err)
		}
	}
	if err != nil {
		t.Fatalf("Accept4 never became ready: %v", err)
	}
	defer Close(serverFD)

	if _, err := Write(clientFD, []byte("ping")); err != nil {
		t.Fatalf("Write: %v", err)
	}

	buf := make([]byte, 4)
	var n int
	for i := 0; i < 1000; i++ {
		n, err = Read(serverFD, buf)
		if err == nil {
			break
		}
		if !WouldBlock(err) {
			t.Fatalf("Read: %v", err)
		}
	}
	if string(buf[:n]) != "ping" {
		t.Fatalf("Read = %q, want %q", buf[:n], "ping")
	}
}
