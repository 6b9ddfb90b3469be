package udp

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/golang/glog"

	fx "github.com/robotalks/irsense/pkg/framework"
)

// DefaultBufferSize is large enough for any report datagram.
const DefaultBufferSize = 1024

// Socket defines the UDP socket operations used by Listener.
type Socket interface {
	ReadFromUDP(b []byte) (n int, addr *net.UDPAddr, err error)
	Close() error
	LocalAddr() net.Addr
}

// Handler is called for every received datagram. pkt is only valid
// during the call.
type Handler func(pkt []byte, from *net.UDPAddr)

// Listener receives datagrams and dispatches them to Handler.
type Listener struct {
	Socket     Socket
	Handler    Handler
	BufferSize int
}

// Listen binds a UDP socket on addr, e.g. ":5000".
func Listen(addr string) (*Listener, error) {
	laddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("invalid listen address %q: %w", addr, err)
	}
	conn, err := net.ListenUDP("udp", laddr)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", addr, err)
	}
	return &Listener{Socket: conn, BufferSize: DefaultBufferSize}, nil
}

// Name implements Named.
func (l *Listener) Name() string {
	return "udp-listener"
}

// Run implements Runnable. The socket is closed when Run returns.
func (l *Listener) Run(ctx context.Context) error {
	size := l.BufferSize
	if size <= 0 {
		size = DefaultBufferSize
	}
	glog.Infof("listening for reports on %s", l.Socket.LocalAddr())
	return fx.RunWithContextCloser(ctx, l.Socket, func() error {
		buf := make([]byte, size)
		for {
			n, from, err := l.Socket.ReadFromUDP(buf)
			if err != nil {
				if errors.Is(err, net.ErrClosed) {
					return nil
				}
				var netErr net.Error
				if errors.As(err, &netErr) && netErr.Timeout() {
					continue
				}
				return err
			}
			if h := l.Handler; h != nil {
				h(buf[:n], from)
			}
		}
	})
}
