//go:build linux

package poller

import (
	"log"

	"golang.org/x/sys/unix"
)

// maxEpollEvents caps the number of events returned by a single
// epoll_wait trip. Sustained load beyond this simply costs extra trips
// through epoll_wait rather than growing the array.
const maxEpollEvents = 64

func maskToEpoll(m Operation) uint32 {
	var ev uint32
	if m.Has(OpRead) {
		ev |= unix.EPOLLIN
	}
	if m.Has(OpWrite) {
		ev |= unix.EPOLLOUT
	}
	return ev
}

type epollPoller struct {
	epfd   int
	shadow int // number of fds currently registered with the kernel
	events []unix.EpollEvent
}

// New returns the Linux epoll back end.
func New() (Poller, error) {
	epfd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, err
	}
	return &epollPoller{epfd: epfd, events: make([]unix.EpollEvent, maxEpollEvents)}, nil
}

func (p *epollPoller) RegisteredCount() int { return p.shadow }

func (p *epollPoller) Close() error { return unix.Close(p.epfd) }

func (p *epollPoller) Apply(fd FD, oldMask, newMask Operation) error {
	if oldMask == newMask {
		return nil
	}
	var op int
	switch {
	case newMask == 0:
		op = unix.EPOLL_CTL_DEL
		p.shadow--
	case oldMask == 0:
		op = unix.EPOLL_CTL_ADD
		p.shadow++
	default:
		op = unix.EPOLL_CTL_MOD
	}
	ev := &unix.EpollEvent{Events: maskToEpoll(newMask), Fd: int32(fd)}
	if op == unix.EPOLL_CTL_DEL {
		ev = nil
	}
	if err := unix.EpollCtl(p.epfd, op, fd, ev); err != nil {
		switch err {
		case unix.EEXIST:
			log.Printf("poller: fd %d already registered with epoll", fd)
			p.shadow--
		case unix.ENOENT:
			log.Printf("poller: fd %d not registered, cannot %s", fd, opName(op))
			if newMask == 0 {
				p.shadow++
			}
		default:
			return err
		}
	}
	return nil
}

func opName(op int) string {
	switch op {
	case unix.EPOLL_CTL_ADD:
		return "add"
	case unix.EPOLL_CTL_MOD:
		return "modify"
	case unix.EPOLL_CTL_DEL:
		return "delete"
	default:
		return "?"
	}
}

func (p *epollPoller) Wait() ([]Event, error) {
	for {
		n, err := unix.EpollWait(p.epfd, p.events, -1)
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			return nil, err
		}
		out := make([]Event, 0, n)
		for i := 0; i < n; i++ {
			ev := p.events[i]
			var mask Operation
			if ev.Events&(unix.EPOLLIN|unix.EPOLLHUP|unix.EPOLLRDHUP) != 0 {
				mask |= OpRead
			}
			if ev.Events&unix.EPOLLOUT != 0 {
				mask |= OpWrite
			}
			if ev.Events&(unix.EPOLLERR|unix.EPOLLHUP) != 0 {
				mask |= OpError
			}
			out = append(out, Event{FD: int(ev.Fd), Mask: mask})
		}
		return out, nil
	}
}
