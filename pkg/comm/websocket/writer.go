// Package websocket sends reports as text frames over a websocket.
package websocket

import (
	"fmt"
	"net/url"
	"time"

	"golang.org/x/net/websocket"
)

// DefaultWriteTimeout bounds a single frame write.
const DefaultWriteTimeout = time.Second

// Writer implements PacketWriter.
type Writer struct {
	// WriteTimeout fails a write to a peer which stopped reading.
	WriteTimeout time.Duration

	conn *websocket.Conn
	url  string
}

// Dial connects to a ws:// or wss:// URL once.
func Dial(rawURL string) (*Writer, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, err
	}
	origin := "http://" + u.Host + "/"
	if u.Scheme == "wss" {
		origin = "https://" + u.Host + "/"
	}
	conn, err := websocket.Dial(rawURL, "", origin)
	if err != nil {
		return nil, fmt.Errorf("websocket dial %s: %w", rawURL, err)
	}
	return New(conn, rawURL), nil
}

// New wraps websocket.Conn.
func New(conn *websocket.Conn, name string) *Writer {
	return &Writer{WriteTimeout: DefaultWriteTimeout, conn: conn, url: name}
}

// Name implements Named.
func (w *Writer) Name() string {
	return w.url
}

// WritePacket implements PacketWriter.
func (w *Writer) WritePacket(pkt []byte) error {
	timeout := w.WriteTimeout
	if timeout <= 0 {
		timeout = DefaultWriteTimeout
	}
	if err := w.conn.SetWriteDeadline(time.Now().Add(timeout)); err != nil {
		return err
	}
	return websocket.Message.Send(w.conn, string(pkt))
}

// Close implements io.Closer.
func (w *Writer) Close() error {
	return w.conn.Close()
}
