package mpinger

import (
	"fmt"
	"net"
)

// Type identifies the probe protocol used for a destination.
type Type int

// Values for Type.
const (
	ICMP Type = iota
	TCPConnect
	HTTPKeepAlive
	UDP
	Random
)

// String returns a short, log-friendly name. For the fixed human-readable
// labels from the original tool's UI, see Engine.RunnerDescription.
func (t Type) String() string {
	switch t {
	case ICMP:
		return "icmp"
	case TCPConnect:
		return "tcp_connect"
	case HTTPKeepAlive:
		return "http_keep_alive"
	case UDP:
		return "udp"
	case Random:
		return "random"
	default:
		return fmt.Sprintf("Type(%d)", int(t))
	}
}

// runnerDescriptions are the fixed human-readable labels for each Type.
var runnerDescriptions = map[Type]string{
	ICMP:          "ICMP ping",
	TCPConnect:    "TCP Connect",
	HTTPKeepAlive: "HTTP Keep Alive",
	Random:        "Random",
	UDP:           "UDP",
}

// Destination is a resolved ping target with a stable integer ID.
type Destination struct {
	// ID is unique, positive, and assigned monotonically at insertion. It
	// is stable for the lifetime of the engine and is never reused.
	ID int

	// Address is the original user-supplied string.
	Address string

	// Host is the resolved IPv4 address, in dotted-decimal form.
	Host string

	// Port is the resolved port. It is 0 for ICMP, which doesn't use one,
	// but is still recorded.
	Port uint16

	// SockAddr is the resolved IP and Port as a *net.UDPAddr, set for every
	// PingType. The probers do not read it; each builds its own address
	// from Host and Port (IPAddr, TCPAddr, UDPAddr).
	SockAddr net.Addr

	// PingType selects which prober handles this destination.
	PingType Type
}

// IP returns the destination's resolved address as a net.IP.
func (d Destination) IP() net.IP {
	return net.ParseIP(d.Host)
}

// UDPAddr returns the destination as a *net.UDPAddr.
func (d Destination) UDPAddr() *net.UDPAddr {
	return &net.UDPAddr{IP: d.IP(), Port: int(d.Port)}
}

// TCPAddr returns the destination as a *net.TCPAddr.
func (d Destination) TCPAddr() *net.TCPAddr {
	return &net.TCPAddr{IP: d.IP(), Port: int(d.Port)}
}

// IPAddr returns the destination as a *net.IPAddr, for protocols (ICMP) that
// address a host without a port.
func (d Destination) IPAddr() *net.IPAddr {
	return &net.IPAddr{IP: d.IP()}
}
