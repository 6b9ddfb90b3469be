package sensor

import (
	"flag"
	"os"
)

// DefaultPath is the IIO attribute the IR sensor is wired to.
const DefaultPath = "/sys/bus/iio/devices/iio:device0/in_voltage13_raw"

// Config defines the sensor options.
type Config struct {
	Path string
}

var defaultConfig = Config{
	Path: DefaultPath,
}

func init() {
	if val := os.Getenv("IRSENSE_ADC_PATH"); val != "" {
		defaultConfig.Path = val
	}
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.StringVar(&defaultConfig.Path, "adc-path", defaultConfig.Path, "Path of the ADC raw value.")
}

// Default gets default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a config with defaults.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// NewSensor creates a Sensor reading the configured path.
func (c *Config) NewSensor() *Sensor {
	return NewSensor(NewADC(c.Path))
}
