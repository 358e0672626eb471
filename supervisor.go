package reactor

import (
	"sync"

	"github.com/aimoonchen/actor-framework/internal/netutil"
)

// Supervisor is a scoped ownership handle: closing it removes the wake
// pipe from the interest set, which is the termination signal for Run.
type Supervisor struct {
	r    *Reactor
	once sync.Once
}

// MakeSupervisor returns a handle whose Close causes Run to exit once
// the pipe and any remaining handlers drain.
func (r *Reactor) MakeSupervisor() *Supervisor {
	return &Supervisor{r: r}
}

// Close dispatches a single closure onto the reactor loop that removes
// the pipe from the interest set and closes both pipe ends; Run releases
// any tasks still in flight once it returns. Go has no destructors, so
// callers must call Close; calls after the first are no-ops.
func (s *Supervisor) Close() {
	s.once.Do(func() {
		s.r.Dispatch(func() {
			s.r.Del(OpRead, s.r.pipeReadFD, s.r.pr)
			netutil.Close(s.r.pipeReadFD)
			netutil.Close(s.r.pipeWriteFD)
		})
	})
}
