package reactor

import "testing"

func TestReceivePolicyBufferAndThreshold(t *testing.T) {
	cases := []struct {
		policy        ReceivePolicy
		wantSize      int
		wantThreshold int
	}{
		{ReceivePolicy{Flag: Exactly, N: 4}, 4, 4},
		{ReceivePolicy{Flag: AtMost, N: 1024}, 1024, 1},
		{ReceivePolicy{Flag: AtLeast, N: 10}, 10 + 100, 10},  // max(100, 1) == 100
		{ReceivePolicy{Flag: AtLeast, N: 2000}, 2000 + 200, 2000}, // max(100, 200) == 200
	}
	for _, c := range cases {
		size, threshold := c.policy.bufferAndThreshold()
		if size != c.wantSize {
			t.Errorf("policy %+v: size = %d, want %d", c.policy, size, c.wantSize)
		}
		if threshold != c.wantThreshold {
			t.Errorf("policy %+v: threshold = %d, want %d", c.policy, threshold, c.wantThreshold)
		}
	}
}

func TestStreamResetReadLoop(t *testing.T) {
	s := &Stream{policy: ReceivePolicy{Flag: AtLeast, N: 100}}
	s.resetReadLoop()
	if len(s.rdBuf) != 200 {
		t.Fatalf("rdBuf len = %d, want 200", len(s.rdBuf))
	}
	if s.readThreshold != 100 {
		t.Fatalf("readThreshold = %d, want 100", s.readThreshold)
	}
	if s.collected != 0 {
		t.Fatalf("collected = %d, want 0", s.collected)
	}

	// A second reset with a smaller policy should reuse the backing
	// array rather than reallocate.
	old := s.rdBuf
	s.policy = ReceivePolicy{Flag: Exactly, N: 50}
	s.resetReadLoop()
	if len(s.rdBuf) != 50 {
		t.Fatalf("rdBuf len = %d, want 50", len(s.rdBuf))
	}
	if &s.rdBuf[0] != &old[0] {
		t.Fatalf("resetReadLoop reallocated when capacity was sufficient")
	}
}

// recordingManager captures every callback a Manager can receive.
type recordingManager struct {
	consumed   [][]byte
	failures   []Operation
	transfers  []struct{ sent, remaining int }
}

func (m *recordingManager) Consume(_ *Reactor, data []byte) {
	cp := make([]byte, len(data))
	copy(cp, data)
	m.consumed = append(m.consumed, cp)
}

func (m *recordingManager) IOFailure(_ *Reactor, op Operation) {
	m.failures = append(m.failures, op)
}

func (m *recordingManager) DataTransferred(_ *Reactor, sent, remaining int) {
	m.transfers = append(m.transfers, struct{ sent, remaining int }{sent, remaining})
}

func TestStreamRemovedFromLoopClearsManagers(t *testing.T) {
	mgr := &recordingManager{}
	s := &Stream{reader: mgr, writer: mgr, writing: true}
	s.RemovedFromLoop(OpRead)
	if s.reader != nil {
		t.Fatalf("reader not cleared after RemovedFromLoop(OpRead)")
	}
	if s.writer == nil {
		t.Fatalf("writer cleared by an OpRead removal")
	}
	s.RemovedFromLoop(OpWrite)
	if s.writer != nil {
		t.Fatalf("writer not cleared after RemovedFromLoop(OpWrite)")
	}
	if s.writing {
		t.Fatalf("writing flag not cleared after RemovedFromLoop(OpWrite)")
	}
}

func TestStreamEnterWriteLoopSwapsBuffers(t *testing.T) {
	s := &Stream{writing: true}
	s.wrOffline = []byte("payload")
	s.enterWriteLoop()
	if string(s.wrOnline) != "payload" {
		t.Fatalf("wrOnline = %q, want %q", s.wrOnline, "payload")
	}
	if len(s.wrOffline) != 0 {
		t.Fatalf("wrOffline not cleared after swap")
	}
	if s.written != 0 {
		t.Fatalf("written = %d, want 0", s.written)
	}
}
