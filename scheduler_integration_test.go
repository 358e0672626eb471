package reactor_test

import (
	"sync/atomic"
	"testing"
	"time"

	reactor "github.com/aimoonchen/actor-framework"
	"github.com/aimoonchen/actor-framework/scheduler"
)

func TestDispatchToSchedulerBypassesPipe(t *testing.T) {
	r, err := reactor.NewReactor(reactor.DefaultConfig())
	if err != nil {
		t.Fatalf("NewReactor: %v", err)
	}
	fifo := scheduler.NewFIFO()
	r.SetScheduler(fifo)

	var ran int64
	r.DispatchToScheduler(func() { atomic.AddInt64(&ran, 1) })

	deadline := time.Now().Add(time.Second)
	for fifo.Len() == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if fifo.Len() != 1 {
		t.Fatalf("fifo.Len() = %d, want 1 (task should have gone straight to the scheduler, not the wake pipe)", fifo.Len())
	}

	task := fifo.Pop()
	if task == nil {
		t.Fatal("Pop returned nil")
	}
	if task.Kind() != reactor.SchedulerTask {
		t.Fatalf("Kind() = %v, want SchedulerTask", task.Kind())
	}
	task.Resume(r, 1)
	if atomic.LoadInt64(&ran) != 1 {
		t.Fatalf("ran = %d, want 1 after Resume", ran)
	}
}

func TestDispatchToSchedulerFallsBackToPipeWithoutScheduler(t *testing.T) {
	r, err := reactor.NewReactor(reactor.DefaultConfig())
	if err != nil {
		t.Fatalf("NewReactor: %v", err)
	}
	sup := r.MakeSupervisor()
	done := make(chan struct{})
	go func() {
		r.Run()
		close(done)
	}()

	var ran int64
	r.DispatchToScheduler(func() { atomic.AddInt64(&ran, 1) })

	deadline := time.Now().Add(time.Second)
	for atomic.LoadInt64(&ran) == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if atomic.LoadInt64(&ran) != 1 {
		t.Fatalf("ran = %d, want 1 (no scheduler installed, task should run on the reactor thread)", ran)
	}

	sup.Close()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after supervisor Close")
	}
}
