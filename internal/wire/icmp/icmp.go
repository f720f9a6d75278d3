// Package icmp encodes and decodes ICMPv4 Echo Request/Reply frames by hand.
// It deliberately avoids golang.org/x/net/icmp's message parser: that
// abstraction hides the raw IPv4 header that the probe's reply correlation
// logic needs to inspect directly (see ParseEchoReply).
package icmp

import "encoding/binary"

// Wire-level constants for an Echo Request/Reply (RFC 792).
const (
	TypeEchoRequest = 8
	TypeEchoReply   = 0
	Code            = 0

	// HeaderSize is the size in bytes of the ICMP header (no payload).
	HeaderSize = 8
)

// BuildEchoRequest constructs an Echo Request frame with the given
// identifier, sequence number, and payload, with a correctly computed
// checksum in bytes 2-3.
func BuildEchoRequest(identifier, sequence uint16, payload []byte) []byte {
	pkt := make([]byte, HeaderSize+len(payload))
	pkt[0] = TypeEchoRequest
	pkt[1] = Code
	// pkt[2:4] (checksum) left zero until computed below.
	binary.BigEndian.PutUint16(pkt[4:6], identifier)
	binary.BigEndian.PutUint16(pkt[6:8], sequence)
	copy(pkt[HeaderSize:], payload)

	cs := Checksum(pkt)
	binary.BigEndian.PutUint16(pkt[2:4], cs)
	return pkt
}

// Checksum computes the ICMP checksum: the 16-bit one's complement of the
// one's-complement sum of the packet's 16-bit big-endian words. If the
// packet length is odd, the final byte is treated as the high byte of a
// word whose low byte is zero.
func Checksum(data []byte) uint16 {
	var sum uint32
	n := len(data)
	i := 0
	for ; i+1 < n; i += 2 {
		sum += uint32(data[i])<<8 | uint32(data[i+1])
	}
	if i < n {
		sum += uint32(data[i]) << 8
	}
	for sum>>16 != 0 {
		sum = (sum & 0xFFFF) + (sum >> 16)
	}
	return ^uint16(sum)
}

// ParseEchoReply inspects a raw read from an "ip4:icmp" socket, which
// prepends the IPv4 header to the ICMP message. It reports whether buf[:n]
// contains a well-formed Echo Reply matching wantID/wantSeq, stripping the
// IP header using its IHL field (the low 4 bits of the first byte).
func ParseEchoReply(buf []byte, n int, wantID, wantSeq uint16) bool {
	if n < 1 {
		return false
	}
	ipHeaderLen := int(buf[0]&0x0F) * 4
	if n <= ipHeaderLen+7 {
		return false
	}
	icmpType := buf[ipHeaderLen]
	icmpCode := buf[ipHeaderLen+1]
	if icmpType != TypeEchoReply || icmpCode != Code {
		return false
	}
	gotID := binary.BigEndian.Uint16(buf[ipHeaderLen+4 : ipHeaderLen+6])
	gotSeq := binary.BigEndian.Uint16(buf[ipHeaderLen+6 : ipHeaderLen+8])
	return gotID == wantID && gotSeq == wantSeq
}
