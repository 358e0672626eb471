// Package reactor implements a single-threaded, event-driven I/O
// multiplexer for a concurrent-actor runtime. It owns a set of nonblocking
// TCP endpoints (stream connections and listening acceptors), drives them
// from a readiness-notification primitive (epoll or poll/WSAPoll), and
// exposes a cross-thread wake-up path so other goroutines can inject
// resumable work into the loop.
//
// The actor scheduler, broker business logic, and address resolution are
// deliberately out of scope: this package talks to the broker and the
// scheduler only through the Manager and Scheduler interfaces. Host names
// are resolved by a minimal default lookup in internal/netutil; the
// Resolver interface is declared here but not consumed.
package reactor
