package detector

import (
	"bytes"
	"context"
	"errors"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/irsense/pkg/obstacle"
	"github.com/robotalks/irsense/pkg/report"
)

func testConfig(t *testing.T, adcValue string) *Config {
	path := filepath.Join(t.TempDir(), "in_voltage13_raw")
	if adcValue != "" {
		require.NoError(t, os.WriteFile(path, []byte(adcValue), 0644))
	}
	conf := NewConfig()
	conf.Sensor.Path = path
	conf.Interval = 10 * time.Millisecond
	conf.ReportURLs = nil
	conf.MetricsAddr = ""
	return conf
}

func TestConsoleVariant(t *testing.T) {
	conf := testConfig(t, "3000\n")
	conf.Iterations = 3
	d, err := conf.NewDetector()
	require.NoError(t, err)
	defer d.Close()
	require.Empty(t, d.Reporter.Sinks)

	var out bytes.Buffer
	d.Reporter.Out = &out
	require.NoError(t, d.Run(context.Background()))
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 3)
	for _, line := range lines {
		require.Equal(t, report.ConsoleLine(3000, obstacle.Obstructed), line)
	}
}

func TestNetworkVariant(t *testing.T) {
	server, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	require.NoError(t, err)
	defer server.Close()

	conf := testConfig(t, "12345\n")
	conf.Iterations = 2
	conf.WithTarget("127.0.0.1", strconv.Itoa(server.LocalAddr().(*net.UDPAddr).Port))
	d, err := conf.NewDetector()
	require.NoError(t, err)
	defer d.Close()
	d.Reporter.Out = &bytes.Buffer{}
	require.NoError(t, d.Run(context.Background()))

	buf := make([]byte, 1024)
	for i := 0; i < 2; i++ {
		require.NoError(t, server.SetReadDeadline(time.Now().Add(time.Second)))
		n, _, err := server.ReadFromUDP(buf)
		require.NoError(t, err)
		require.Equal(t, "\nADC =12345 | STATUS =OBSTRUCTED", string(buf[:n]))
	}
}

func TestUnavailableReadingSkipsCycle(t *testing.T) {
	conf := testConfig(t, "")
	conf.Iterations = 2
	d, err := conf.NewDetector()
	require.NoError(t, err)
	defer d.Close()
	var out bytes.Buffer
	d.Reporter.Out = &out
	require.NoError(t, d.Run(context.Background()))
	require.Empty(t, out.String())
}

func TestUnreachableTargetDoesNotStopLoop(t *testing.T) {
	// grab a free port, then close it so datagrams are refused.
	probe, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	require.NoError(t, err)
	port := strconv.Itoa(probe.LocalAddr().(*net.UDPAddr).Port)
	probe.Close()

	conf := testConfig(t, "65535")
	conf.Iterations = 4
	conf.WithTarget("127.0.0.1", port)
	d, err := conf.NewDetector()
	require.NoError(t, err)
	defer d.Close()
	var out bytes.Buffer
	d.Reporter.Out = &out
	require.NoError(t, d.Run(context.Background()))
	require.Equal(t, 4, strings.Count(out.String(), report.ConsoleLine(65535, obstacle.Clear)))
}

func TestInvalidConfig(t *testing.T) {
	testCases := []struct {
		name   string
		modify func(*Config)
	}{
		{"no path", func(c *Config) { c.Sensor.Path = "" }},
		{"zero interval", func(c *Config) { c.Interval = 0 }},
		{"host without port", func(c *Config) { c.TargetHost = "127.0.0.1" }},
		{"port without host", func(c *Config) { c.TargetPort = "5000" }},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			conf := testConfig(t, "1")
			tc.modify(conf)
			_, err := conf.NewDetector()
			require.True(t, errors.Is(err, ErrInvalidConfig), "unexpected error %v", err)
		})
	}
}

func TestInvalidTargetFailsInit(t *testing.T) {
	for _, port := range []string{"abc", "99999", "0"} {
		conf := testConfig(t, "1").WithTarget("127.0.0.1", port)
		d, err := conf.NewDetector()
		require.Errorf(t, err, "port %q", port)
		require.Nil(t, d)
	}
}

func TestInvalidReportURLFailsInit(t *testing.T) {
	conf := testConfig(t, "1")
	conf.ReportURLs = []string{"udp://127.0.0.1:5000", "gopher://nowhere"}
	d, err := conf.NewDetector()
	require.Error(t, err)
	require.Nil(t, d)
}

func TestMetricsAddrInUseFailsInit(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()

	conf := testConfig(t, "1")
	conf.MetricsAddr = l.Addr().String()
	d, err := conf.NewDetector()
	require.Error(t, err)
	require.Nil(t, d)
}

func TestMetricsServerStopsWithLoop(t *testing.T) {
	conf := testConfig(t, "4321")
	conf.MetricsAddr = "127.0.0.1:0"
	conf.Iterations = 2
	d, err := conf.NewDetector()
	require.NoError(t, err)
	defer d.Close()
	require.NotNil(t, d.MetricsServer)
	var out bytes.Buffer
	d.Reporter.Out = &out
	require.NoError(t, d.Run(context.Background()))
	require.Equal(t, 2, strings.Count(out.String(), report.ConsoleLine(4321, obstacle.Obstructed)))
}

func TestURLList(t *testing.T) {
	var l URLList
	require.NoError(t, l.Set("udp://a:1"))
	require.NoError(t, l.Set("mqtt://b:2/x"))
	require.Equal(t, URLList{"udp://a:1", "mqtt://b:2/x"}, l)
	require.Equal(t, "udp://a:1,mqtt://b:2/x", l.String())
}

func TestMachineID(t *testing.T) {
	require.NotEmpty(t, MachineID())
}
