//go:build !windows

package poller

import (
	"testing"

	"golang.org/x/sys/unix"
)

func TestApplyWaitRoundTrip(t *testing.T) {
	p, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer p.Close()

	var fds [2]int
	if err := unix.Pipe2(fds[:], unix.O_CLOEXEC|unix.O_NONBLOCK); err != nil {
		t.Fatalf("Pipe2: %v", err)
	}
	defer unix.Close(fds[0])
	defer unix.Close(fds[1])
	readFD := fds[0]

	if err := p.Apply(readFD, 0, OpRead); err != nil {
		t.Fatalf("Apply add: %v", err)
	}
	if p.RegisteredCount() != 1 {
		t.Fatalf("RegisteredCount = %d, want 1", p.RegisteredCount())
	}

	if _, err := unix.Write(fds[1], []byte("x")); err != nil {
		t.Fatalf("Write: %v", err)
	}

	events, err := p.Wait()
	if err != nil {
		t.Fatalf("Wait: %v", err)
	}
	found := false
	for _, ev := range events {
		if ev.FD == readFD && ev.Mask.Has(OpRead) {
			found = true
		}
	}
	if !found {
		t.Fatalf("Wait() = %v, want an OpRead event for fd %d", events, readFD)
	}

	if err := p.Apply(readFD, OpRead, 0); err != nil {
		t.Fatalf("Apply delete: %v", err)
	}
	if p.RegisteredCount() != 0 {
		t.Fatalf("RegisteredCount after delete = %d, want 0", p.RegisteredCount())
	}
}

func TestOperationString(t *testing.T) {
	cases := []struct {
		op   Operation
		want string
	}{
		{0, "0"},
		{OpRead, "R"},
		{OpWrite, "W"},
		{OpRead | OpWrite | OpError, "RWE"},
	}
	for _, c := range cases {
		if got := c.op.String(); got != c.want {
			t.Errorf("Operation(%d).String() = %q, want %q", c.op, got, c.want)
		}
	}
}
