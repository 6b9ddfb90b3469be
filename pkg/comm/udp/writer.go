// Package udp implements the best-effort datagram transport for reports.
package udp

import (
	"fmt"
	"net"
)

// Conn is the part of *net.UDPConn used to send datagrams.
type Conn interface {
	Write(b []byte) (int, error)
	Close() error
}

// Writer sends every packet as a single datagram to a fixed target.
// Nothing is acknowledged or retried.
type Writer struct {
	conn Conn
	addr string
}

// ResolveTarget parses host and port into a UDP address.
func ResolveTarget(host, port string) (*net.UDPAddr, error) {
	addr, err := net.ResolveUDPAddr("udp", net.JoinHostPort(host, port))
	if err != nil {
		return nil, fmt.Errorf("invalid target address %s:%s: %w", host, port, err)
	}
	if addr.Port == 0 {
		return nil, fmt.Errorf("invalid target address %s:%s: port required", host, port)
	}
	return addr, nil
}

// Dial resolves host:port and opens the datagram channel once.
func Dial(host, port string) (*Writer, error) {
	addr, err := ResolveTarget(host, port)
	if err != nil {
		return nil, err
	}
	return DialAddr(addr)
}

// DialAddr opens the datagram channel to addr.
func DialAddr(addr *net.UDPAddr) (*Writer, error) {
	conn, err := net.DialUDP("udp", nil, addr)
	if err != nil {
		return nil, fmt.Errorf("failed to create datagram channel to %s: %w", addr, err)
	}
	return NewWriter(conn, addr.String()), nil
}

// NewWriter wraps an already opened Conn.
func NewWriter(conn Conn, addr string) *Writer {
	return &Writer{conn: conn, addr: addr}
}

// Name implements Named.
func (w *Writer) Name() string {
	return "udp://" + w.addr
}

// WritePacket implements PacketWriter.
func (w *Writer) WritePacket(pkt []byte) error {
	n, err := w.conn.Write(pkt)
	if err != nil {
		return err
	}
	if n != len(pkt) {
		return fmt.Errorf("short write to %s: %d of %d bytes", w.addr, n, len(pkt))
	}
	return nil
}

// Close implements io.Closer.
func (w *Writer) Close() error {
	return w.conn.Close()
}
