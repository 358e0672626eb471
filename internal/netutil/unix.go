//go:build !windows

package netutil

import (
	"context"
	"net"

	"golang.org/x/sys/unix"
)

// Close closes fd, discarding the result the way every handler
// destructor does.
func Close(fd int) { _ = unix.Close(fd) }

func SetNonblock(fd int, nonblock bool) error {
	return unix.SetNonblock(fd, nonblock)
}

func SetNoDelay(fd int, enable bool) error {
	v := 0
	if enable {
		v = 1
	}
	return unix.SetsockoptInt(fd, unix.IPPROTO_TCP, unix.TCP_NODELAY, v)
}

func SetReuseAddr(fd int, enable bool) error {
	v := 0
	if enable {
		v = 1
	}
	return unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, v)
}

func SetRecvBuf(fd int, n int) error {
	return unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_RCVBUF, n)
}

func SetSendBuf(fd int, n int) error {
	return unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_SNDBUF, n)
}

// ShutdownRead half-shuts the read side of fd.
func ShutdownRead(fd int) error {
	return unix.Shutdown(fd, unix.SHUT_RD)
}

// Read performs a single nonblocking recv. A return of (0, nil) means
// orderly close (recv == 0), treated identically to a read error one
// layer up.
func Read(fd int, buf []byte) (int, error) {
	return unix.Read(fd, buf)
}

// Write performs a single nonblocking send.
func Write(fd int, buf []byte) (int, error) {
	return unix.Write(fd, buf)
}

// resolveHost looks up host and returns an address string plus the
// family it resolved to, honoring preferred when the host has both A and
// AAAA records. This is the minimal default resolver so the package is
// usable standalone.
func resolveHost(host string, preferred Family) (string, Family, error) {
	if ip := net.ParseIP(host); ip != nil {
		if ip.To4() != nil {
			return ip.String(), FamilyIPv4, nil
		}
		return ip.String(), FamilyIPv6, nil
	}
	ips, err := net.DefaultResolver.LookupIPAddr(context.Background(), host)
	if err != nil {
		return "", FamilyUnspecified, err
	}
	if len(ips) == 0 {
		return "", FamilyUnspecified, wrapErr("resolve", errNoSuchHost(host))
	}
	wantV6 := preferred == FamilyIPv6
	for _, a := range ips {
		isV4 := a.IP.To4() != nil
		if wantV6 && !isV4 {
			return a.IP.String(), FamilyIPv6, nil
		}
		if !wantV6 && isV4 {
			return a.IP.String(), FamilyIPv4, nil
		}
	}
	// fall back to whatever we got
	a := ips[0]
	if a.IP.To4() != nil {
		return a.IP.String(), FamilyIPv4, nil
	}
	return a.IP.String(), FamilyIPv6, nil
}

type errNoSuchHost string

func (e errNoSuchHost) Error() string { return "no such host: " + string(e) }

func familyToDomain(f Family) int {
	if f == FamilyIPv6 {
		return unix.AF_INET6
	}
	return unix.AF_INET
}

func ipConnect(fd int, ip string, port uint16, fam Family) error {
	if fam == FamilyIPv6 {
		var sa unix.SockaddrInet6
		copy(sa.Addr[:], net.ParseIP(ip).To16())
		sa.Port = int(port)
		return unix.Connect(fd, &sa)
	}
	var sa unix.SockaddrInet4
	copy(sa.Addr[:], net.ParseIP(ip).To4())
	sa.Port = int(port)
	return unix.Connect(fd, &sa)
}

// NewTCPConnection resolves host, creates a socket of the resolved
// family and connects it while still blocking, so a slow or unreachable
// peer fails the connect call itself instead of returning EINPROGRESS.
// If the family was IPv6 and the connect failed, it closes that socket
// and retries once with the family forced to IPv4; if that attempt fails
// too, the connect error is returned. The returned fd is still
// blocking; callers adopt it (nonblocking, TCP_NODELAY, no-SIGPIPE)
// once it's handed to a handler.
func NewTCPConnection(host string, port uint16, preferred Family) (int, error) {
	ip, fam, err := resolveHost(host, preferred)
	if err != nil {
		return -1, wrapErr("resolve", err)
	}
	fd, err := unix.Socket(familyToDomain(fam), unix.SOCK_STREAM, 0)
	if err != nil {
		return -1, wrapErr("socket", err)
	}
	guard := NewGuard(fd)
	defer guard.Close()
	if err := ipConnect(fd, ip, port, fam); err != nil {
		if fam == FamilyIPv6 && preferred != FamilyIPv4 {
			guard.Close()
			return NewTCPConnection(host, port, FamilyIPv4)
		}
		return -1, wrapErr("connect", err)
	}
	return guard.Release(), nil
}

func setInaddrAny(fd int, fam Family) error {
	if fam != FamilyIPv6 {
		return nil
	}
	// Clear IPV6_V6ONLY so the wildcard listener also accepts IPv4
	// clients.
	return unix.SetsockoptInt(fd, unix.IPPROTO_IPV6, unix.IPV6_V6ONLY, 0)
}

// NewTCPAcceptor creates, optionally SO_REUSEADDRs, binds and listens a
// TCP socket on port (0 for an ephemeral port) and addr (empty for the
// wildcard address). It returns the listening fd and the bound port
// read back via getsockname, so callers can discover an ephemeral port.
func NewTCPAcceptor(port uint16, addr string, reuseAddr bool) (int, uint16, error) {
	fam := FamilyIPv6
	ip := ""
	if addr != "" {
		resolved, f, err := resolveHost(addr, FamilyUnspecified)
		if err != nil {
			return -1, 0, wrapErr("resolve", err)
		}
		ip, fam = resolved, f
	}
	fd, err := unix.Socket(familyToDomain(fam), unix.SOCK_STREAM, 0)
	if err != nil {
		return -1, 0, wrapErr("socket", err)
	}
	guard := NewGuard(fd)
	defer guard.Close()
	if reuseAddr {
		if err := SetReuseAddr(fd, true); err != nil {
			return -1, 0, wrapErr("setsockopt", err)
		}
	}
	if err := setInaddrAny(fd, fam); err != nil {
		return -1, 0, wrapErr("setsockopt", err)
	}
	if err := bindTCP(fd, ip, port, fam); err != nil {
		return -1, 0, wrapErr("bind", err)
	}
	boundPort, err := LocalPort(fd)
	if err != nil {
		return -1, 0, wrapErr("getsockname", err)
	}
	if err := unix.Listen(fd, unix.SOMAXCONN); err != nil {
		return -1, 0, wrapErr("listen", err)
	}
	if err := SetNonblock(fd, true); err != nil {
		return -1, 0, wrapErr("adopt", err)
	}
	return guard.Release(), boundPort, nil
}

func bindTCP(fd int, ip string, port uint16, fam Family) error {
	if fam == FamilyIPv6 {
		var sa unix.SockaddrInet6
		if ip != "" {
			copy(sa.Addr[:], net.ParseIP(ip).To16())
		}
		sa.Port = int(port)
		return unix.Bind(fd, &sa)
	}
	var sa unix.SockaddrInet4
	if ip != "" {
		copy(sa.Addr[:], net.ParseIP(ip).To4())
	}
	sa.Port = int(port)
	return unix.Bind(fd, &sa)
}

func sockaddrToString(sa unix.Sockaddr) (string, uint16) {
	switch a := sa.(type) {
	case *unix.SockaddrInet4:
		return net.IP(a.Addr[:]).String(), uint16(a.Port)
	case *unix.SockaddrInet6:
		return net.IP(a.Addr[:]).String(), uint16(a.Port)
	default:
		return "", 0
	}
}

func LocalAddr(fd int) (string, error) {
	sa, err := unix.Getsockname(fd)
	if err != nil {
		return "", wrapErr("getsockname", err)
	}
	addr, _ := sockaddrToString(sa)
	return addr, nil
}

func LocalPort(fd int) (uint16, error) {
	sa, err := unix.Getsockname(fd)
	if err != nil {
		return 0, wrapErr("getsockname", err)
	}
	_, port := sockaddrToString(sa)
	return port, nil
}

func RemoteAddr(fd int) (string, error) {
	sa, err := unix.Getpeername(fd)
	if err != nil {
		return "", wrapErr("getpeername", err)
	}
	addr, _ := sockaddrToString(sa)
	return addr, nil
}

func RemotePort(fd int) (uint16, error) {
	sa, err := unix.Getpeername(fd)
	if err != nil {
		return 0, wrapErr("getpeername", err)
	}
	_, port := sockaddrToString(sa)
	return port, nil
}

// Accept4 accepts a connection off listenFD, returning it already
// nonblocking and close-on-exec in one syscall.
func Accept4(listenFD int) (int, error) {
	fd, _, err := unix.Accept4(listenFD, unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC)
	return fd, err
}

// CreatePipe returns a (readFD, writeFD) pair for the wake-up pipe. On
// POSIX this is a real pipe; the read end is set nonblocking so a reader
// draining it gets EAGAIN instead of blocking once it is empty.
func CreatePipe() (readFD, writeFD int, err error) {
	var fds [2]int
	if err := unix.Pipe2(fds[:], unix.O_CLOEXEC); err != nil {
		return -1, -1, wrapErr("pipe", err)
	}
	if err := unix.SetNonblock(fds[0], true); err != nil {
		unix.Close(fds[0])
		unix.Close(fds[1])
		return -1, -1, wrapErr("pipe", err)
	}
	return fds[0], fds[1], nil
}
