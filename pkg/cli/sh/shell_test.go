package sh

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/irsense/pkg/comm/udp"
	"github.com/robotalks/irsense/pkg/monitor"
	"github.com/robotalks/irsense/pkg/obstacle"
	"github.com/robotalks/irsense/pkg/report"
)

func testShell(outputJSON bool) *Shell {
	m := monitor.New(time.Minute)
	now := time.Date(2024, 1, 2, 10, 20, 30, 0, time.UTC)
	m.Now = func() time.Time { return now }
	return &Shell{OutputJSON: outputJSON, Monitor: m}
}

func TestWriteStatusEmpty(t *testing.T) {
	s := testShell(false)
	var out bytes.Buffer
	require.NoError(t, s.WriteStatus(&out))
	require.Equal(t, "Waiting for reports ...\nreceived 0, dropped 0\n", out.String())

	out.Reset()
	require.NoError(t, s.WriteWindow(&out))
	require.Equal(t, "No reports in window\n", out.String())
}

func TestWriteStatus(t *testing.T) {
	s := testShell(false)
	s.Monitor.HandlePayload("10.0.0.2:4000", report.Format(5000, obstacle.Obstructed))
	s.Monitor.HandlePayload("10.0.0.2:4000", []byte("noise"))

	var out bytes.Buffer
	require.NoError(t, s.WriteStatus(&out))
	require.Equal(t, "Status: OBSTRUCTED  |  ADC = 5000\nreceived 1, dropped 1\n", out.String())

	out.Reset()
	require.NoError(t, s.WriteWindow(&out))
	require.Equal(t, "10:20:30.000 OBSTRUCTED ADC = 5000  from 10.0.0.2:4000\n", out.String())
}

func TestWriteJSON(t *testing.T) {
	s := testShell(true)
	s.Monitor.HandlePayload("a", report.Format(61000, obstacle.Clear))
	s.Monitor.HandlePayload("b", report.Format(100, obstacle.Obstructed))

	var out bytes.Buffer
	require.NoError(t, s.WriteStatus(&out))
	var status struct {
		Latest   *jsonEntry `json:"latest"`
		Received uint64     `json:"received"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &status))
	require.NotNil(t, status.Latest)
	require.Equal(t, 100, status.Latest.Value)
	require.Equal(t, "OBSTRUCTED", status.Latest.State)
	require.Equal(t, "b", status.Latest.From)
	require.Equal(t, uint64(2), status.Received)

	out.Reset()
	require.NoError(t, s.WriteWindow(&out))
	var items []jsonEntry
	require.NoError(t, json.Unmarshal(out.Bytes(), &items))
	require.Len(t, items, 2)
	require.Equal(t, "CLEAR", items[0].State)
	require.Equal(t, 61000, items[0].Value)
}

func TestNewConfig(t *testing.T) {
	conf := NewConfig()
	require.Equal(t, monitor.DefaultWindow, conf.Window)
	require.NotEmpty(t, conf.ListenAddr)
	conf.ListenAddr = "changed"
	require.NotEqual(t, "changed", NewConfig().ListenAddr)
}

func freeUDPAddr(t *testing.T) string {
	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	require.NoError(t, err)
	addr := conn.LocalAddr().String()
	require.NoError(t, conn.Close())
	return addr
}

func TestStartReleasesListenerOnError(t *testing.T) {
	for _, mqttURL := range []string{"mqtt:///no-host", "gopher://broker"} {
		conf := NewConfig()
		conf.ListenAddr = freeUDPAddr(t)
		conf.MQTTURL = mqttURL
		runner, err := conf.Start(context.Background(), monitor.New(time.Minute))
		require.Errorf(t, err, "mqtt %q", mqttURL)
		require.Nil(t, runner)

		l, err := udp.Listen(conf.ListenAddr)
		require.NoError(t, err, "listen address still bound")
		l.Socket.Close()
	}
}

func TestStartReceivesOverUDP(t *testing.T) {
	conf := NewConfig()
	conf.ListenAddr = freeUDPAddr(t)
	conf.MQTTURL = ""
	m := monitor.New(time.Minute)
	ctx, cancel := context.WithCancel(context.Background())
	runner, err := conf.Start(ctx, m)
	require.NoError(t, err)

	host, port, err := net.SplitHostPort(conf.ListenAddr)
	require.NoError(t, err)
	w, err := udp.Dial(host, port)
	require.NoError(t, err)
	defer w.Close()
	require.NoError(t, w.WritePacket(report.Format(42, obstacle.Obstructed)))
	require.Eventually(t, func() bool {
		_, ok := m.Latest()
		return ok
	}, time.Second, 10*time.Millisecond)

	cancel()
	require.NoError(t, runner.Wait())
}
