//go:build windows

package poller

import (
	"log"
	"sort"

	"golang.org/x/sys/windows"
)

func maskToWSAPoll(m Operation) int16 {
	var ev int16
	if m.Has(OpRead) {
		ev |= windows.POLLIN
	}
	if m.Has(OpWrite) {
		ev |= windows.POLLOUT
	}
	return ev
}

// pollPoller is the WSAPoll-based back end for Windows. It mirrors
// poll_other.go's sorted-vector bookkeeping; Windows has no epoll
// equivalent, and IOCP is out of scope, so this is the only back end
// on this platform.
type pollPoller struct {
	fds []windows.WSAPollFd
}

func New() (Poller, error) {
	return &pollPoller{}, nil
}

func (p *pollPoller) RegisteredCount() int { return len(p.fds) }

func (p *pollPoller) Close() error { return nil }

func (p *pollPoller) search(fd FD) (int, bool) {
	i := sort.Search(len(p.fds), func(i int) bool { return int(p.fds[i].Fd) >= fd })
	return i, i < len(p.fds) && int(p.fds[i].Fd) == fd
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
	entry := windows.WSAPollFd{Fd: windows.Handle(fd), Events: maskToWSAPoll(newMask)}
	if found {
		p.fds[i] = entry
		return nil
	}
	p.fds = append(p.fds, windows.WSAPollFd{})
	copy(p.fds[i+1:], p.fds[i:])
	p.fds[i] = entry
	return nil
}

func (p *pollPoller) Wait() ([]Event, error) {
	for {
		n, err := windows.WSAPoll(p.fds, -1)
		if err != nil {
			if err == windows.WSAEINTR {
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
			if pfd.REvents == 0 {
				continue
			}
			n--
			var mask Operation
			if pfd.REvents&(windows.POLLIN|windows.POLLHUP) != 0 {
				mask |= OpRead
			}
			if pfd.REvents&windows.POLLOUT != 0 {
				mask |= OpWrite
			}
			if pfd.REvents&(windows.POLLERR|windows.POLLHUP) != 0 {
				mask |= OpError
			}
			out = append(out, Event{FD: int(pfd.Fd), Mask: mask})
			pfd.REvents = 0
		}
		return out, nil
	}
}
