//go:build darwin || freebsd || netbsd || openbsd || dragonfly

package netutil

import "golang.org/x/sys/unix"

// SetNoSigpipe sets SO_NOSIGPIPE, the BSD-family equivalent of Linux's
// implicit EPIPE-instead-of-signal behavior.
func SetNoSigpipe(fd int) error {
	return unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_NOSIGPIPE, 1)
}
