package reactor

import (
	"log"

	"github.com/aimoonchen/actor-framework/poller"
)

// pendingEvent is a recorded (fd, desired-mask, handler) change, queued
// while the loop is dispatching I/O events and applied in a batch at the
// end of each iteration.
type pendingEvent struct {
	fd      FD
	mask    Operation
	handler Handler
}

// Reactor owns the readiness primitive and registration table, runs the
// event loop, and applies pending registration changes. It is safe to
// call ExecLater, and Dispatch and DispatchToScheduler which only wrap
// it, from any goroutine; every other method is reactor-thread-only.
type Reactor struct {
	cfg     Config
	poll    poller.Poller
	sched   Scheduler
	writeFn func(fd FD, buf []byte) (int, error)

	handlers map[FD]Handler
	pending  []pendingEvent

	pipeReadFD  FD
	pipeWriteFD FD
	pr          *pipeReader

	tasks taskTable
}

// NewReactor constructs a Reactor with its platform poller back end and
// wake pipe already created and scheduled for registration; callers must
// still call Run.
func NewReactor(cfg Config) (*Reactor, error) {
	p, err := poller.New()
	if err != nil {
		return nil, err
	}
	r := &Reactor{
		cfg:      cfg,
		poll:     p,
		handlers: make(map[FD]Handler),
	}
	r.writeFn = r.defaultPipeWrite
	r.initPipe()
	return r, nil
}

// SetScheduler installs the external Scheduler that ExecLater hands
// SchedulerTask-kind tasks to (including those built by
// DispatchToScheduler) instead of writing them into the wake pipe.
// IOTask-kind tasks never reach it.
func (r *Reactor) SetScheduler(s Scheduler) { r.sched = s }

// Add requests that op be added to the interest mask for fd, owned by
// handler. The change is scheduled, not applied synchronously.
func (r *Reactor) Add(op Operation, fd FD, handler Handler) {
	r.schedule(fd, handler, op, true)
}

// Del requests that op be removed from the interest mask for fd.
// handler may be nil when removing the wake pipe's read registration;
// any other nil handler is a caller bug and is resolved from the
// registration table instead of panicking.
func (r *Reactor) Del(op Operation, fd FD, handler Handler) {
	if handler == nil {
		handler = r.handlers[fd]
	}
	if handler == nil {
		return
	}
	r.schedule(fd, handler, op, false)
}

func (r *Reactor) schedule(fd FD, handler Handler, op Operation, adding bool) {
	base := handler.EventBF()
	for i := len(r.pending) - 1; i >= 0; i-- {
		if r.pending[i].fd == fd {
			base = r.pending[i].mask
			break
		}
	}
	var newMask Operation
	if adding {
		newMask = base | op
	} else {
		newMask = base &^ op
	}
	r.pending = append(r.pending, pendingEvent{fd: fd, mask: newMask, handler: handler})
	r.handlers[fd] = handler
}

// applyPending commits every scheduled change to the poller, in
// insertion order, then clears the pending list.
func (r *Reactor) applyPending() {
	for _, pe := range r.pending {
		r.handle(pe)
	}
	r.pending = r.pending[:0]
}

func (r *Reactor) handle(pe pendingEvent) {
	h := pe.handler
	old := h.EventBF()
	if err := r.poll.Apply(pe.fd, old, pe.mask); err != nil {
		log.Printf("reactor: apply fd %d mask %s->%s failed: %v", pe.fd, old, pe.mask, err)
	}
	removed := old &^ pe.mask
	if removed.Has(OpRead) {
		h.RemovedFromLoop(OpRead)
	}
	if removed.Has(OpWrite) {
		h.RemovedFromLoop(OpWrite)
	}
	h.SetEventBF(pe.mask)
	if pe.mask == 0 {
		delete(r.handlers, pe.fd)
	} else {
		r.handlers[pe.fd] = h
	}
}

// handleSocketEvent dispatches one ready fd's triple to its handler:
// read and write are each delivered independently, and an error is only
// delivered when neither read nor write fired for this event.
func (r *Reactor) handleSocketEvent(h Handler, mask Operation) {
	checkError := true
	if mask.Has(OpRead) {
		if !h.ReadChannelClosed() {
			h.HandleEvent(OpRead)
		}
		checkError = false
	}
	if mask.Has(OpWrite) {
		h.HandleEvent(OpWrite)
		checkError = false
	}
	if checkError && mask.Has(OpError) {
		h.HandleEvent(OpError)
		r.Del(OpRead, h.FD(), h)
		r.Del(OpWrite, h.FD(), h)
	}
}

// Run blocks, dispatching events, until no registrations remain —
// i.e. until the supervisor handle has been closed and the pipe and
// every other handler have been removed from the loop.
func (r *Reactor) Run() {
	r.applyPending()
	for r.poll.RegisteredCount() > 0 {
		events, err := r.poll.Wait()
		if err != nil {
			log.Fatalf("reactor: readiness wait failed: %v", err)
		}
		for _, ev := range events {
			if h, ok := r.handlers[ev.FD]; ok {
				r.handleSocketEvent(h, ev.Mask)
			}
		}
		r.applyPending()
	}
	r.drainTasks()
}

// Dispatch is the convenience wrapper around ExecLater for a plain
// closure that must run on the reactor thread.
func (r *Reactor) Dispatch(fn func()) {
	r.ExecLater(&funcResumable{fn: fn})
}

// DispatchToScheduler wraps fn as a SchedulerTask and hands it to
// ExecLater, which routes it to the installed Scheduler instead of the
// wake pipe. With no Scheduler installed it falls back to running on
// the reactor thread, same as Dispatch.
func (r *Reactor) DispatchToScheduler(fn func()) {
	r.ExecLater(&schedulerFuncResumable{fn: fn})
}
