// Package sh provides the interactive shell of the report monitor.
package sh

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/abiosoft/ishell"
	"github.com/golang/glog"

	"github.com/robotalks/irsense/pkg/comm/mqtt"
	"github.com/robotalks/irsense/pkg/comm/udp"
	fx "github.com/robotalks/irsense/pkg/framework"
	"github.com/robotalks/irsense/pkg/monitor"
)

// Config defines the monitor options.
type Config struct {
	ListenAddr string
	Window     time.Duration
	// MQTTURL additionally subscribes to reports on a broker.
	MQTTURL string

	EvalOnly   bool
	OutputJSON bool
}

var defaultConfig = Config{
	ListenAddr: ":5000",
	Window:     monitor.DefaultWindow,
}

func init() {
	if val := os.Getenv("IRSENSE_LISTEN"); val != "" {
		defaultConfig.ListenAddr = val
	}
	if val := os.Getenv("IRSENSE_MQTT_URL"); val != "" {
		defaultConfig.MQTTURL = val
	}
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.StringVar(&defaultConfig.ListenAddr, "listen", defaultConfig.ListenAddr, "UDP address to receive reports on.")
	flag.DurationVar(&defaultConfig.Window, "window", defaultConfig.Window, "How long reports are kept.")
	flag.StringVar(&defaultConfig.MQTTURL, "mqtt", defaultConfig.MQTTURL, "Also subscribe to reports on this MQTT broker URL.")
	flag.BoolVar(&defaultConfig.EvalOnly, "e", defaultConfig.EvalOnly, "Evaluation only, no interactive shell.")
	flag.BoolVar(&defaultConfig.OutputJSON, "json", defaultConfig.OutputJSON, "Print output in JSON.")
}

// NewConfig creates a Config with default configurations.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// Shell provides ishell backed interactive shell over a Monitor.
type Shell struct {
	Interactive bool
	OutputJSON  bool

	Shell   *ishell.Shell
	Monitor *monitor.Monitor
}

const shellKey = "$shell"

var commands = []*ishell.Cmd{
	&StatusCmd,
	&WindowCmd,
	&ClearCmd,
}

// New creates a new shell.
func New(conf *Config, m *monitor.Monitor) *Shell {
	s := &Shell{
		Interactive: !conf.EvalOnly,
		OutputJSON:  conf.OutputJSON,
		Shell:       ishell.New(),
		Monitor:     m,
	}
	s.Shell.Set(shellKey, s)
	s.Shell.SetPrompt("irmon > ")
	for _, cmd := range commands {
		s.Shell.AddCmd(cmd)
	}
	return s
}

// ShellFrom gets Shell from ishell context.
func ShellFrom(c *ishell.Context) *Shell {
	return c.Get(shellKey).(*Shell)
}

// FormatEntry prints an entry into friendly string for display.
func FormatEntry(e monitor.Entry) string {
	return fmt.Sprintf("%s %-10s ADC = %-5d from %s",
		e.Time.Format("15:04:05.000"), e.State, e.Value, e.From)
}

type jsonEntry struct {
	Time  time.Time `json:"time"`
	Value int       `json:"adc"`
	State string    `json:"status"`
	From  string    `json:"from,omitempty"`
}

func toJSON(e monitor.Entry) jsonEntry {
	return jsonEntry{Time: e.Time, Value: e.Value, State: e.State.String(), From: e.From}
}

// WriteStatus writes the latest report and the counters.
func (s *Shell) WriteStatus(w io.Writer) error {
	latest, ok := s.Monitor.Latest()
	received, dropped := s.Monitor.Counts()
	if s.OutputJSON {
		out := struct {
			Latest   *jsonEntry `json:"latest,omitempty"`
			Received uint64     `json:"received"`
			Dropped  uint64     `json:"dropped"`
		}{Received: received, Dropped: dropped}
		if ok {
			e := toJSON(latest)
			out.Latest = &e
		}
		return json.NewEncoder(w).Encode(out)
	}
	if !ok {
		fmt.Fprintln(w, "Waiting for reports ...")
	} else {
		fmt.Fprintf(w, "Status: %s  |  ADC = %d\n", latest.State, latest.Value)
	}
	_, err := fmt.Fprintf(w, "received %d, dropped %d\n", received, dropped)
	return err
}

// WriteWindow writes all reports within the window.
func (s *Shell) WriteWindow(w io.Writer) error {
	entries := s.Monitor.Entries()
	if s.OutputJSON {
		items := make([]jsonEntry, 0, len(entries))
		for _, e := range entries {
			items = append(items, toJSON(e))
		}
		return json.NewEncoder(w).Encode(items)
	}
	if len(entries) == 0 {
		_, err := fmt.Fprintln(w, "No reports in window")
		return err
	}
	for _, e := range entries {
		if _, err := fmt.Fprintln(w, FormatEntry(e)); err != nil {
			return err
		}
	}
	return nil
}

func printWith(c *ishell.Context, fn func(io.Writer) error) {
	var buf bytes.Buffer
	if err := fn(&buf); err != nil {
		c.Err(err)
		return
	}
	c.Print(buf.String())
}

// Run runs the shell.
func (s *Shell) Run(args ...string) error {
	if len(args) > 0 {
		return s.Shell.Process(args...)
	}
	if s.Interactive {
		s.Shell.Run()
		return nil
	}
	return fmt.Errorf("command expected")
}

var (
	// StatusCmd prints the latest report.
	StatusCmd = ishell.Cmd{
		Name:    "status",
		Aliases: []string{"s"},
		Help:    "latest report",
		Func: func(c *ishell.Context) {
			printWith(c, ShellFrom(c).WriteStatus)
		},
	}

	// WindowCmd prints the reports within the window.
	WindowCmd = ishell.Cmd{
		Name:    "window",
		Aliases: []string{"w", "history"},
		Help:    "reports within the window",
		Func: func(c *ishell.Context) {
			printWith(c, ShellFrom(c).WriteWindow)
		},
	}

	// ClearCmd forgets all reports.
	ClearCmd = ishell.Cmd{
		Name: "clear",
		Help: "forget all reports",
		Func: func(c *ishell.Context) {
			ShellFrom(c).Monitor.Clear()
		},
	}
)

// Start starts receiving reports in background. Nothing keeps running
// when an error is returned.
func (conf *Config) Start(ctx context.Context, m *monitor.Monitor) (*fx.Runner, error) {
	l, err := udp.Listen(conf.ListenAddr)
	if err != nil {
		return nil, err
	}
	l.Handler = m.HandleDatagram
	var q *mqtt.Queue
	if conf.MQTTURL != "" {
		if q, err = conf.subscribe(m); err != nil {
			l.Socket.Close()
			return nil, err
		}
	}
	runner := fx.NewRunnerWith(ctx).Go(l)
	if q != nil {
		runner.Go(fx.NamedRun("mqtt", fx.RunFunc(func(ctx context.Context) error {
			<-ctx.Done()
			return q.Close()
		})))
	}
	return runner, nil
}

func (conf *Config) subscribe(m *monitor.Monitor) (*mqtt.Queue, error) {
	q, err := mqtt.NewQueueFromURL(conf.MQTTURL)
	if err != nil {
		return nil, err
	}
	err = q.Sub(mqtt.ReportTopicPattern, func(topic string, payload []byte) {
		id, _ := mqtt.SensorIDFromTopic(topic)
		m.HandlePayload("mqtt:"+id, payload)
	})
	if err != nil {
		return nil, err
	}
	if err := q.Connect(); err != nil {
		return nil, err
	}
	return q, nil
}

// Main is a helper to provide a single call in main.
func Main() {
	flag.Parse()
	conf := NewConfig()
	m := monitor.New(conf.Window)
	ctx, cancel := context.WithCancel(context.Background())
	runner, err := conf.Start(ctx, m)
	if err != nil {
		glog.Exitf("monitor: %v", err)
	}
	err = New(conf, m).Run(flag.Args()...)
	cancel()
	runner.Wait()
	if err != nil {
		glog.Exit(err)
	}
}
