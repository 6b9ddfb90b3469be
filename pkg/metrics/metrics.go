// Package metrics exposes loop counters in the Prometheus format.
// A nil *Metrics is valid and records nothing.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/golang/glog"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "irsense"

// Metrics holds the collectors of one detector.
type Metrics struct {
	Registry *prometheus.Registry

	readings    prometheus.Counter
	readErrors  prometheus.Counter
	lastValue   prometheus.Gauge
	detections  *prometheus.CounterVec
	reportsSent *prometheus.CounterVec
	reportErrs  *prometheus.CounterVec
}

// New creates Metrics registered in a private registry.
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		readings: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "readings_total",
			Help:      "Valid ADC readings acquired.",
		}),
		readErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "read_errors_total",
			Help:      "Cycles skipped because the ADC reading was unavailable.",
		}),
		lastValue: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "adc_value",
			Help:      "Last valid raw ADC count.",
		}),
		detections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "detections_total",
			Help:      "Classifications by state.",
		}, []string{"state"}),
		reportsSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reports_sent_total",
			Help:      "Reports handed to a sink without error.",
		}, []string{"sink"}),
		reportErrs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "report_errors_total",
			Help:      "Reports lost because the sink failed.",
		}, []string{"sink"}),
	}
	m.Registry.MustRegister(m.readings, m.readErrors, m.lastValue,
		m.detections, m.reportsSent, m.reportErrs)
	return m
}

// Reading records a valid reading.
func (m *Metrics) Reading(value int) {
	if m == nil {
		return
	}
	m.readings.Inc()
	m.lastValue.Set(float64(value))
}

// ReadError records a skipped cycle.
func (m *Metrics) ReadError() {
	if m == nil {
		return
	}
	m.readErrors.Inc()
}

// Detection records a classification.
func (m *Metrics) Detection(state string) {
	if m == nil {
		return
	}
	m.detections.WithLabelValues(state).Inc()
}

// ReportSent records the outcome of one send attempt on sink.
func (m *Metrics) ReportSent(sink string, err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.reportErrs.WithLabelValues(sink).Inc()
		return
	}
	m.reportsSent.WithLabelValues(sink).Inc()
}

// ReportsSent returns the sent counter of sink.
func (m *Metrics) ReportsSent(sink string) prometheus.Counter {
	return m.reportsSent.WithLabelValues(sink)
}

// ReportErrors returns the failure counter of sink.
func (m *Metrics) ReportErrors(sink string) prometheus.Counter {
	return m.reportErrs.WithLabelValues(sink)
}

// Server serves the registry over HTTP, it implements Runnable.
type Server struct {
	Addr    string
	Metrics *Metrics

	listener net.Listener
}

// Name implements Named.
func (s *Server) Name() string {
	return "metrics"
}

// Listen binds Addr so a bad address is reported before Run.
func (s *Server) Listen() error {
	if s.listener != nil {
		return nil
	}
	l, err := net.Listen("tcp", s.Addr)
	if err != nil {
		return fmt.Errorf("metrics listen %s: %w", s.Addr, err)
	}
	s.listener = l
	return nil
}

// Close releases the listener if Run never took it over.
func (s *Server) Close() error {
	if s.listener == nil {
		return nil
	}
	err := s.listener.Close()
	s.listener = nil
	if errors.Is(err, net.ErrClosed) {
		return nil
	}
	return err
}

// Run implements Runnable.
func (s *Server) Run(ctx context.Context) error {
	if err := s.Listen(); err != nil {
		return err
	}
	l := s.listener
	s.listener = nil
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(s.Metrics.Registry, promhttp.HandlerOpts{}))
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	errCh := make(chan error, 1)
	go func() {
		glog.Infof("metrics listening on %s", l.Addr())
		errCh <- srv.Serve(l)
	}()
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			glog.Warningf("metrics shutdown: %v", err)
		}
		return ctx.Err()
	}
}
