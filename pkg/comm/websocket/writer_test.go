package websocket

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/net/websocket"
)

func TestWriterSendsTextFrames(t *testing.T) {
	got := make(chan string, 2)
	srv := httptest.NewServer(websocket.Handler(func(conn *websocket.Conn) {
		for {
			var msg string
			if err := websocket.Message.Receive(conn, &msg); err != nil {
				return
			}
			got <- msg
		}
	}))
	defer srv.Close()

	w, err := Dial("ws" + strings.TrimPrefix(srv.URL, "http"))
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, w.WritePacket([]byte("\nADC =65535 | STATUS =CLEAR")))
	require.NoError(t, w.WritePacket([]byte("\nADC =3000 | STATUS =OBSTRUCTED")))
	for _, expect := range []string{"\nADC =65535 | STATUS =CLEAR", "\nADC =3000 | STATUS =OBSTRUCTED"} {
		select {
		case msg := <-got:
			require.Equal(t, expect, msg)
		case <-time.After(time.Second):
			t.Fatal("frame not received")
		}
	}
}

func TestWriteTimeoutOnStalledPeer(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(websocket.Handler(func(conn *websocket.Conn) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	w, err := Dial("ws" + strings.TrimPrefix(srv.URL, "http"))
	require.NoError(t, err)
	defer w.Close()
	w.WriteTimeout = 100 * time.Millisecond

	pkt := make([]byte, 64*1024)
	done := make(chan error, 1)
	go func() {
		for i := 0; i < 10000; i++ {
			if err := w.WritePacket(pkt); err != nil {
				done <- err
				return
			}
		}
		done <- nil
	}()
	select {
	case err := <-done:
		require.Error(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("write blocked on a peer which is not reading")
	}
}

func TestDialError(t *testing.T) {
	srv := httptest.NewServer(nil)
	addr := srv.URL
	srv.Close()
	_, err := Dial("ws" + strings.TrimPrefix(addr, "http"))
	require.Error(t, err)
}
