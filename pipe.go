package reactor

import (
	"encoding/binary"
	"log"
	"sync"
	"sync/atomic"

	"github.com/aimoonchen/actor-framework/internal/netutil"
)

// taskTable hands out small integer ids for in-flight Resumables. A raw
// pointer value is not safe to round-trip through a uintptr in Go once
// the garbage collector is involved, so the pipe instead carries an
// 8-byte id into this table — same pointer-sized atomic write, a
// GC-safe payload.
type taskTable struct {
	nextID uint64
	m      sync.Map // uint64 -> Resumable
}

func (t *taskTable) store(task Resumable) uint64 {
	id := atomic.AddUint64(&t.nextID, 1)
	t.m.Store(id, task)
	return id
}

func (t *taskTable) take(id uint64) (Resumable, bool) {
	v, ok := t.m.LoadAndDelete(id)
	if !ok {
		return nil, false
	}
	return v.(Resumable), true
}

// drainTasks releases every task still in flight, exactly once each,
// the way the reactor's destructor drains the pipe at shutdown.
func (r *Reactor) drainTasks() {
	r.tasks.m.Range(func(key, value any) bool {
		r.tasks.m.Delete(key)
		value.(Resumable).Release()
		return true
	})
}

// pipeReader is the permanent Handler registered on the wake pipe's read
// end. It drains one id at a time, up to cfg.MaxThroughput ids per
// event, resolving each against the reactor's task table.
type pipeReader struct {
	handlerBase
	reactor *Reactor
}

func (p *pipeReader) HandleEvent(op Operation) {
	if !op.Has(OpRead) {
		return
	}
	max := p.reactor.cfg.MaxThroughput
	if max <= 0 {
		max = 1
	}
	for i := 0; i < max; i++ {
		var buf [8]byte
		n, err := netutil.Read(p.fd, buf[:])
		if err != nil {
			if netutil.WouldBlock(err) || netutil.Interrupted(err) {
				return
			}
			return
		}
		if n == 0 {
			return
		}
		if n < len(buf) {
			log.Fatalf("reactor: short read from wake pipe (got %d of %d bytes)", n, len(buf))
		}
		id := binary.LittleEndian.Uint64(buf[:])
		task, ok := p.reactor.tasks.take(id)
		if !ok {
			continue
		}
		switch task.Resume(p.reactor, max) {
		case ResumeDone:
			task.Release()
		case ResumeLater:
			p.reactor.ExecLater(task)
		default:
			// any other variant is ignored: neither released nor requeued.
		}
	}
}

func (p *pipeReader) RemovedFromLoop(Operation) {}

// initPipe creates the wake pipe, wraps its read end in a pipeReader,
// and schedules it for registration (applied on the first Run loop
// iteration). Pipe creation failure is fatal-to-process.
func (r *Reactor) initPipe() {
	readFD, writeFD, err := netutil.CreatePipe()
	if err != nil {
		log.Fatalf("reactor: failed to create wake pipe: %v", err)
	}
	r.pipeReadFD = readFD
	r.pipeWriteFD = writeFD
	r.pr = &pipeReader{handlerBase: newHandlerBase(readFD), reactor: r}
	r.Add(OpRead, readFD, r.pr)
}

func (r *Reactor) defaultPipeWrite(fd FD, buf []byte) (int, error) {
	for {
		n, err := netutil.Write(fd, buf)
		if err != nil && netutil.Interrupted(err) {
			continue
		}
		return n, err
	}
}

// ExecLater is the only reactor method safe to call from any goroutine.
// A SchedulerTask goes straight to the external Scheduler, if one is
// installed; everything else (and any SchedulerTask when no Scheduler
// is installed) writes the task's id into the wake pipe, where the
// pipe-reader handler picks it up on the reactor thread.
func (r *Reactor) ExecLater(task Resumable) {
	if task.Kind() == SchedulerTask && r.sched != nil {
		r.sched.Enqueue(task)
		return
	}
	id := r.tasks.store(task)
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], id)
	n, err := r.writeFn(r.pipeWriteFD, buf[:])
	switch {
	case n <= 0:
		if t, ok := r.tasks.take(id); ok {
			t.Release()
		}
	case n < len(buf):
		log.Fatalf("reactor: short write to wake pipe (wrote %d of %d bytes)", n, len(buf))
	case err != nil:
		log.Printf("reactor: wake pipe write reported %v despite writing %d bytes", err, n)
	}
}
