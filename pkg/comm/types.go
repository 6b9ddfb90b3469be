// Package comm provides the transports reports are sent over.
package comm

import "io"

// PacketWriter writes packets in bytes.
type PacketWriter interface {
	WritePacket([]byte) error
}

// Sink is a PacketWriter owning an open channel.
type Sink interface {
	PacketWriter
	io.Closer
}
