package detector

import (
	"flag"
	"os"
	"strings"
	"time"

	"github.com/robotalks/irsense/pkg/sensor"
)

// Poll intervals of the two variants.
const (
	DefaultConsoleInterval = time.Second
	DefaultNetworkInterval = 300 * time.Millisecond
)

// Config provides the options to assemble a Detector.
type Config struct {
	Sensor   sensor.Config
	Interval time.Duration
	// Iterations bounds the number of poll cycles, 0 polls forever.
	Iterations uint64

	// TargetHost and TargetPort enable the UDP report target.
	TargetHost string
	TargetPort string
	// ReportURLs are additional sinks, see comm.Open.
	ReportURLs []string
	// SensorID identifies this sensor on transports that need it,
	// defaults to an id derived from the machine id.
	SensorID string

	// MetricsAddr serves Prometheus metrics when set, e.g. ":9100".
	MetricsAddr string
}

// URLList is a repeatable string flag.
type URLList []string

// String implements flag.Value.
func (l *URLList) String() string {
	return strings.Join(*l, ",")
}

// Set implements flag.Value.
func (l *URLList) Set(val string) error {
	*l = append(*l, val)
	return nil
}

var defaultConfig = Config{
	Interval: DefaultConsoleInterval,
}

func init() {
	if val := os.Getenv("IRSENSE_SENSOR_ID"); val != "" {
		defaultConfig.SensorID = val
	}
	if val := os.Getenv("IRSENSE_METRICS_ADDR"); val != "" {
		defaultConfig.MetricsAddr = val
	}
	if val := os.Getenv("IRSENSE_REPORT_URL"); val != "" {
		defaultConfig.ReportURLs = []string{val}
	}
}

// SetDefaultInterval should be called in init before SetupFlags to
// select the cadence of a variant.
func SetDefaultInterval(interval time.Duration) {
	defaultConfig.Interval = interval
}

// SetupFlags sets command line flags.
func SetupFlags() {
	sensor.SetupFlags()
	flag.DurationVar(&defaultConfig.Interval, "interval", defaultConfig.Interval, "Poll interval.")
	flag.Uint64Var(&defaultConfig.Iterations, "n", defaultConfig.Iterations, "Stop after n poll cycles, 0 runs forever.")
	flag.Var((*URLList)(&defaultConfig.ReportURLs), "report", "Additional report URL (udp://, mqtt://, ws://), repeatable.")
	flag.StringVar(&defaultConfig.SensorID, "sensor-id", defaultConfig.SensorID, "Sensor ID used in MQTT topics.")
	flag.StringVar(&defaultConfig.MetricsAddr, "metrics-addr", defaultConfig.MetricsAddr, "Serve Prometheus metrics on this address.")
}

// Default gets default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a Config with default configurations.
func NewConfig() *Config {
	conf := defaultConfig
	conf.Sensor = *sensor.NewConfig()
	conf.ReportURLs = append([]string(nil), defaultConfig.ReportURLs...)
	return &conf
}

// WithTarget sets the UDP report target.
func (c *Config) WithTarget(host, port string) *Config {
	c.TargetHost, c.TargetPort = host, port
	return c
}
