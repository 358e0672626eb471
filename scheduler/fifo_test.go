package scheduler

import (
	"testing"

	"github.com/aimoonchen/actor-framework"
)

type stubResumable struct{ id int }

func (s *stubResumable) Resume(*reactor.Reactor, int) reactor.ResumeResult {
	return reactor.ResumeDone
}
func (s *stubResumable) Release() {}

func (s *stubResumable) Kind() reactor.ResumableKind { return reactor.SchedulerTask }

func TestFIFOOrdering(t *testing.T) {
	f := NewFIFO()
	for i := 0; i < 5; i++ {
		f.Enqueue(&stubResumable{id: i})
	}
	if f.Len() != 5 {
		t.Fatalf("Len = %d, want 5", f.Len())
	}
	for i := 0; i < 5; i++ {
		v := f.Pop()
		if v == nil {
			t.Fatalf("Pop returned nil at index %d", i)
		}
		got := v.(*stubResumable).id
		if got != i {
			t.Fatalf("Pop order[%d] = %d, want %d", i, got, i)
		}
	}
	if v := f.Pop(); v != nil {
		t.Fatalf("Pop on empty queue = %v, want nil", v)
	}
}

func TestFIFODrain(t *testing.T) {
	f := NewFIFO()
	for i := 0; i < 3; i++ {
		f.Enqueue(&stubResumable{id: i})
	}
	var order []int
	f.Drain(func(task reactor.Resumable) {
		order = append(order, task.(*stubResumable).id)
	})
	want := []int{0, 1, 2}
	if len(order) != len(want) {
		t.Fatalf("drained %d tasks, want %d", len(order), len(want))
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order[%d] = %d, want %d", i, order[i], want[i])
		}
	}
	if f.Len() != 0 {
		t.Fatalf("Len after Drain = %d, want 0", f.Len())
	}
}
