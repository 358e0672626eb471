//go:build !linux && !windows

package poller

import (
	"log"
	"sort"

	"golang.org/x/sys/unix"
)

func maskToPoll(m Operation) int16 {
	var ev int16
	if m.Has(OpRead) {
		ev |= unix.POLLIN
	}
	if m.Has(OpWrite) {
		ev |= unix.POLLOUT
	}
	return ev
}

// pollPoller maintains a single fd-sorted vector of unix.PollFd. Unlike
// epoll, poll carries no user pointer, so the reactor's own fd->Handler
// map (not this package) is what turns a ready fd back into a callback;
// this back end only has to keep the kernel's view and its own vector in
// lock-step, sorted for O(log n) lookup.
type pollPoller struct {
	fds []unix.PollFd
}

func New() (Poller, error) {
	return &pollPoller{}, nil
}

func (p *pollPoller) RegisteredCount() int { return len(p.fds) }

func (p *pollPoller) Close() error { return nil }

func (p *pollPoller) search(fd FD) (int, bool) {
	i := sort.Search(len(p.fds), func(i int) bool { return p.fds[i].Fd >= int32(fd) })
	return i, i < len(p.fds) && p.fds[i].Fd == int32(fd)
}

func (p *pollPoller) Apply(fd FD, oldMask, newMask Operation) error {
	i, found := p.search(fd)
	if newMask == 0 {
		if found {
			p.fds = append(p.fds[:i], p.fds[i+1:]...)
		} else {
			log.Printf("poller: cannot delete fd %d, not registered", fd)
		}
		return nil
	}
	entry := unix.PollFd{Fd: int32(fd), Events: maskToPoll(newMask)}
	if found {
		p.fds[i] = entry
		return nil
	}
	p.fds = append(p.fds, unix.PollFd{})
	copy(p.fds[i+1:], p.fds[i:])
	p.fds[i] = entry
	return nil
}

func (p *pollPoller) Wait() ([]Event, error) {
	for {
		n, err := unix.Poll(p.fds, -1)
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			if err == unix.ENOMEM {
				log.Printf("poller: poll() failed with ENOMEM, retrying")
				continue
			}
			return nil, err
		}
		out := make([]Event, 0, n)
		for i := range p.fds {
			if n == 0 {
				break
			}
			pfd := &p.fds[i]
			if pfd.Revents == 0 {
				continue
			}
			n--
			var mask Operation
			if pfd.Revents&(unix.POLLIN|unix.POLLHUP) != 0 {
				mask |= OpRead
			}
			if pfd.Revents&unix.POLLOUT != 0 {
				mask |= OpWrite
			}
			if pfd.Revents&(unix.POLLERR|unix.POLLHUP|unix.POLLNVAL) != 0 {
				mask |= OpError
			}
			out = append(out, Event{FD: int(pfd.Fd), Mask: mask})
			pfd.Revents = 0
		}
		return out, nil
	}
}
