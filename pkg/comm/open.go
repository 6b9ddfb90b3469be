package comm

import (
	"fmt"
	"net"
	"net/url"

	"github.com/robotalks/irsense/pkg/comm/mqtt"
	"github.com/robotalks/irsense/pkg/comm/udp"
	"github.com/robotalks/irsense/pkg/comm/websocket"
)

// Open opens a Sink by URL scheme:
//
//	udp://host:port
//	mqtt://host:port/topic-prefix (also mqtts)
//	ws://host:port/path (also wss)
//
// sensorID identifies the publisher where the transport needs it.
func Open(rawURL, sensorID string) (Sink, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid report URL %q: %w", rawURL, err)
	}
	var sink Sink
	switch u.Scheme {
	case "udp":
		host, port, err := net.SplitHostPort(u.Host)
		if err != nil {
			return nil, fmt.Errorf("invalid report URL %q: %w", rawURL, err)
		}
		w, err := udp.Dial(host, port)
		if err != nil {
			return nil, err
		}
		sink = w
	case "mqtt", "mqtts":
		p, err := mqtt.NewPublisher(rawURL, sensorID)
		if err != nil {
			return nil, err
		}
		sink = p
	case "ws", "wss":
		w, err := websocket.Dial(rawURL)
		if err != nil {
			return nil, err
		}
		sink = w
	default:
		return nil, fmt.Errorf("unknown report URL scheme: %q", u.Scheme)
	}
	return sink, nil
}
