// Package detector assembles the sense, classify and report stages into
// a polling loop.
package detector

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/golang/glog"

	"github.com/robotalks/irsense/pkg/comm"
	"github.com/robotalks/irsense/pkg/comm/udp"
	fx "github.com/robotalks/irsense/pkg/framework"
	"github.com/robotalks/irsense/pkg/metrics"
	"github.com/robotalks/irsense/pkg/obstacle"
	"github.com/robotalks/irsense/pkg/report"
	"github.com/robotalks/irsense/pkg/sensor"
)

// ErrInvalidConfig wraps configuration errors found before any
// channel is opened.
var ErrInvalidConfig = errors.New("invalid configuration")

// Detector owns the loop stages and every report channel.
type Detector struct {
	Config     *Config
	Sensor     *sensor.Sensor
	Classifier *obstacle.Classifier
	Reporter   *report.Reporter
	Metrics    *metrics.Metrics
	// MetricsServer is bound at init when Config.MetricsAddr is set.
	MetricsServer *metrics.Server
}

// Validate checks the configuration without opening anything.
func (c *Config) Validate() error {
	if c.Sensor.Path == "" {
		return fmt.Errorf("%w: ADC path required", ErrInvalidConfig)
	}
	if c.Interval <= 0 {
		return fmt.Errorf("%w: interval must be positive", ErrInvalidConfig)
	}
	if (c.TargetHost == "") != (c.TargetPort == "") {
		return fmt.Errorf("%w: target needs both address and port", ErrInvalidConfig)
	}
	return nil
}

// NewDetector validates the config and opens every report channel once.
// On error all channels opened so far are closed again.
func (c *Config) NewDetector() (*Detector, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	m := metrics.New()
	d := &Detector{
		Config:     c,
		Sensor:     c.Sensor.NewSensor(),
		Classifier: &obstacle.Classifier{Metrics: m},
		Reporter:   report.NewReporter(),
		Metrics:    m,
	}
	d.Sensor.Metrics = m
	d.Reporter.Metrics = m

	if c.MetricsAddr != "" {
		srv := &metrics.Server{Addr: c.MetricsAddr, Metrics: m}
		if err := srv.Listen(); err != nil {
			return nil, err
		}
		d.MetricsServer = srv
	}

	if c.TargetHost != "" {
		w, err := udp.Dial(c.TargetHost, c.TargetPort)
		if err != nil {
			d.Close()
			return nil, err
		}
		glog.Infof("reporting to %s", w.Name())
		d.Reporter.Sinks = append(d.Reporter.Sinks, w)
	}
	for _, rawURL := range c.ReportURLs {
		sink, err := comm.Open(rawURL, c.sensorID(rawURL))
		if err != nil {
			d.Close()
			return nil, err
		}
		glog.Infof("reporting to %s", rawURL)
		d.Reporter.Sinks = append(d.Reporter.Sinks, sink)
	}
	return d, nil
}

func (c *Config) sensorID(rawURL string) string {
	if c.SensorID == "" && strings.HasPrefix(rawURL, "mqtt") {
		c.SensorID = MachineID()
	}
	return c.SensorID
}

// AddToLoop implements LoopAdder.
func (d *Detector) AddToLoop(loop *fx.Loop) {
	loop.Add(d.Sensor, d.Classifier, d.Reporter)
	if d.MetricsServer != nil {
		loop.AddRunnable(d.MetricsServer)
	}
}

// NewLoop creates the polling loop with the configured cadence.
func (d *Detector) NewLoop() *fx.Loop {
	loop := fx.NewLoop(d.Config.Interval)
	loop.MaxIterations = d.Config.Iterations
	return loop.Add(d)
}

// Run implements Runnable. It polls until ctx is canceled or the
// configured number of iterations completed.
func (d *Detector) Run(ctx context.Context) error {
	return d.NewLoop().Run(ctx)
}

// Close releases all report channels.
func (d *Detector) Close() error {
	var errs fx.AggregatedError
	if d.MetricsServer != nil {
		errs.Add(d.MetricsServer.Close())
	}
	errs.Add(d.Reporter.Close())
	return errs.Aggregate()
}

// RunMain creates the Detector, runs it until interrupted or the
// configured iterations completed, and returns the process exit code.
func (c *Config) RunMain() int {
	d, err := c.NewDetector()
	if err != nil {
		glog.Errorf("initialization failed: %v", err)
		return 1
	}
	defer d.Close()
	if err := fx.NewRunner().HandleSignals().Go(d).Wait(); err != nil {
		glog.Error(err)
		return 1
	}
	return 0
}
