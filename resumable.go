package reactor

// Resumable is an externally defined task handle with reference-counted
// lifetime, resumed either on the reactor thread (delivered across the
// wake pipe) or on whatever thread the external Scheduler runs it on.
type Resumable interface {
	// Resume runs (or continues) the task, processing at most
	// maxThroughput units of work before returning.
	Resume(reactor *Reactor, maxThroughput int) ResumeResult

	// Release drops one reference. The reactor calls it once for a task
	// sent through the wake pipe when that task resumes Done, when the
	// pipe write fails, or when Run releases the tasks still in flight
	// as it returns. A Stopped resume, and a task handed to the external
	// Scheduler, are not released by the reactor.
	Release()

	// Kind reports how ExecLater should route this task: through the
	// wake pipe to run on the reactor thread, or straight to the
	// external Scheduler to run wherever it schedules work.
	Kind() ResumableKind
}

// ResumableKind distinguishes reactor-thread work from work that
// belongs to the external actor scheduler.
type ResumableKind uint8

const (
	// IOTask is resumed on the reactor thread via the wake pipe: socket
	// handlers, housekeeping closures, anything that must not run
	// concurrently with the event loop.
	IOTask ResumableKind = iota
	// SchedulerTask is handed directly to Reactor.sched.Enqueue instead
	// of going through the pipe: regular actor mailboxes, which the
	// external scheduler resumes on its own worker threads.
	SchedulerTask
)

// ResumeResult is the outcome of a single Resume call.
type ResumeResult uint8

const (
	// ResumeDone means the task completed; the reactor releases its
	// reference and discards it.
	ResumeDone ResumeResult = iota
	// ResumeLater means the task has more work; the reactor re-enqueues
	// it via ExecLater without releasing the reference.
	ResumeLater
	// ResumeStopped and any other value are ignored: the task is
	// neither released nor re-enqueued.
	ResumeStopped
)

// funcResumable adapts a plain closure to Resumable for Reactor.Dispatch.
type funcResumable struct {
	fn func()
}

func (f *funcResumable) Resume(*Reactor, int) ResumeResult {
	f.fn()
	return ResumeDone
}

func (f *funcResumable) Release() {}

func (f *funcResumable) Kind() ResumableKind { return IOTask }

// schedulerFuncResumable is funcResumable's SchedulerTask counterpart,
// used by Reactor.DispatchToScheduler.
type schedulerFuncResumable struct {
	fn func()
}

func (f *schedulerFuncResumable) Resume(*Reactor, int) ResumeResult {
	f.fn()
	return ResumeDone
}

func (f *schedulerFuncResumable) Release() {}

func (f *schedulerFuncResumable) Kind() ResumableKind { return SchedulerTask }
