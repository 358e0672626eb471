//go:build windows

package netutil

import (
	"context"
	"net"

	"golang.org/x/sys/windows"
)

func init() {
	var d windows.WSAData
	_ = windows.WSAStartup(uint32(0x0202), &d)
}

// Close closes fd.
func Close(fd int) { _ = windows.Closesocket(windows.Handle(fd)) }

// SetNoSigpipe is a no-op on Windows; there is no SIGPIPE to suppress.
func SetNoSigpipe(fd int) error { return nil }

func SetNonblock(fd int, nonblock bool) error {
	v := uint32(0)
	if nonblock {
		v = 1
	}
	return windows.SetNonblock(windows.Handle(fd), v != 0)
}

func SetNoDelay(fd int, enable bool) error {
	v := 0
	if enable {
		v = 1
	}
	return windows.SetsockoptInt(windows.Handle(fd), windows.IPPROTO_TCP, windows.TCP_NODELAY, v)
}

func SetReuseAddr(fd int, enable bool) error {
	v := 0
	if enable {
		v = 1
	}
	return windows.SetsockoptInt(windows.Handle(fd), windows.SOL_SOCKET, windows.SO_REUSEADDR, v)
}

func SetRecvBuf(fd int, n int) error {
	return windows.SetsockoptInt(windows.Handle(fd), windows.SOL_SOCKET, windows.SO_RCVBUF, n)
}

func SetSendBuf(fd int, n int) error {
	return windows.SetsockoptInt(windows.Handle(fd), windows.SOL_SOCKET, windows.SO_SNDBUF, n)
}

// ShutdownRead half-shuts the read side of fd.
func ShutdownRead(fd int) error {
	return windows.Shutdown(windows.Handle(fd), windows.SHUT_RD)
}

func Read(fd int, buf []byte) (int, error) {
	return windows.Read(windows.Handle(fd), buf)
}

func Write(fd int, buf []byte) (int, error) {
	return windows.Write(windows.Handle(fd), buf)
}

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
		return windows.AF_INET6
	}
	return windows.AF_INET
}

func ipConnect(fd int, ip string, port uint16, fam Family) error {
	if fam == FamilyIPv6 {
		var sa windows.SockaddrInet6
		copy(sa.Addr[:], net.ParseIP(ip).To16())
		sa.Port = int(port)
		return windows.Connect(windows.Handle(fd), &sa)
	}
	var sa windows.SockaddrInet4
	copy(sa.Addr[:], net.ParseIP(ip).To4())
	sa.Port = int(port)
	return windows.Connect(windows.Handle(fd), &sa)
}

// NewTCPConnection mirrors the unix implementation's v6-then-v4 fallback.
// The connect itself runs on a still-blocking socket; callers adopt the
// fd (nonblocking, TCP_NODELAY) once it's handed to a handler.
func NewTCPConnection(host string, port uint16, preferred Family) (int, error) {
	ip, fam, err := resolveHost(host, preferred)
	if err != nil {
		return -1, wrapErr("resolve", err)
	}
	h, err := windows.Socket(familyToDomain(fam), windows.SOCK_STREAM, 0)
	if err != nil {
		return -1, wrapErr("socket", err)
	}
	fd := int(h)
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
	return windows.SetsockoptInt(windows.Handle(fd), windows.IPPROTO_IPV6, windows.IPV6_V6ONLY, 0)
}

func bindTCP(fd int, ip string, port uint16, fam Family) error {
	if fam == FamilyIPv6 {
		var sa windows.SockaddrInet6
		if ip != "" {
			copy(sa.Addr[:], net.ParseIP(ip).To16())
		}
		sa.Port = int(port)
		return windows.Bind(windows.Handle(fd), &sa)
	}
	var sa windows.SockaddrInet4
	if ip != "" {
		copy(sa.Addr[:], net.ParseIP(ip).To4())
	}
	sa.Port = int(port)
	return windows.Bind(windows.Handle(fd), &sa)
}

// NewTCPAcceptor mirrors the unix implementation.
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
	h, err := windows.Socket(familyToDomain(fam), windows.SOCK_STREAM, 0)
	if err != nil {
		return -1, 0, wrapErr("socket", err)
	}
	fd := int(h)
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
	if err := windows.Listen(windows.Handle(fd), windows.SOMAXCONN); err != nil {
		return -1, 0, wrapErr("listen", err)
	}
	if err := SetNonblock(fd, true); err != nil {
		return -1, 0, wrapErr("adopt", err)
	}
	return guard.Release(), boundPort, nil
}

func sockaddrToString(sa windows.Sockaddr) (string, uint16) {
	switch a := sa.(type) {
	case *windows.SockaddrInet4:
		return net.IP(a.Addr[:]).String(), uint16(a.Port)
	case *windows.SockaddrInet6:
		return net.IP(a.Addr[:]).String(), uint16(a.Port)
	default:
		return "", 0
	}
}

func LocalAddr(fd int) (string, error) {
	sa, err := windows.Getsockname(windows.Handle(fd))
	if err != nil {
		return "", wrapErr("getsockname", err)
	}
	addr, _ := sockaddrToString(sa)
	return addr, nil
}

func LocalPort(fd int) (uint16, error) {
	sa, err := windows.Getsockname(windows.Handle(fd))
	if err != nil {
		return 0, wrapErr("getsockname", err)
	}
	_, port := sockaddrToString(sa)
	return port, nil
}

func RemoteAddr(fd int) (string, error) {
	sa, err := windows.Getpeername(windows.Handle(fd))
	if err != nil {
		return "", wrapErr("getpeername", err)
	}
	addr, _ := sockaddrToString(sa)
	return addr, nil
}

func RemotePort(fd int) (uint16, error) {
	sa, err := windows.Getpeername(windows.Handle(fd))
	if err != nil {
		return 0, wrapErr("getpeername", err)
	}
	_, port := sockaddrToString(sa)
	return port, nil
}

// Accept4 accepts a connection and puts it into nonblocking mode; Windows
// has no accept4, so the two steps happen separately.
func Accept4(listenFD int) (int, error) {
	h, _, err := windows.Accept(windows.Handle(listenFD))
	if err != nil {
		return -1, err
	}
	fd := int(h)
	if err := SetNonblock(fd, true); err != nil {
		Close(fd)
		return -1, err
	}
	return fd, nil
}

// CreatePipe has no native anonymous-pipe-with-select equivalent on
// Windows sockets, so the wake channel is a self-connected loopback TCP
// pair: a listener on 127.0.0.1:0, a client connect to it, and the
// accepted peer.
func CreatePipe() (readFD, writeFD int, err error) {
	lfd, port, err := NewTCPAcceptor(0, "127.0.0.1", false)
	if err != nil {
		return -1, -1, err
	}
	defer Close(lfd)

	wfd, err := NewTCPConnection("127.0.0.1", port, FamilyIPv4)
	if err != nil {
		return -1, -1, err
	}
	wguard := NewGuard(wfd)
	defer wguard.Close()

	rh, _, err := windows.Accept(windows.Handle(lfd))
	if err != nil {
		return -1, -1, wrapErr("accept", err)
	}
	rfd := int(rh)
	if err := SetNonblock(rfd, true); err != nil {
		Close(rfd)
		return -1, -1, err
	}
	return rfd, wguard.Release(), nil
}
