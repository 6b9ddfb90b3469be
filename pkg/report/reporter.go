package report

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/golang/glog"

	"github.com/robotalks/irsense/pkg/comm"
	fx "github.com/robotalks/irsense/pkg/framework"
	"github.com/robotalks/irsense/pkg/metrics"
	"github.com/robotalks/irsense/pkg/obstacle"
)

// Reporter prints every Detection and sends it once to each sink.
// It owns the sinks and closes them in Close.
type Reporter struct {
	Out     io.Writer
	Sinks   []comm.Sink
	Metrics *metrics.Metrics
}

// NewReporter creates a Reporter printing to stdout.
func NewReporter(sinks ...comm.Sink) *Reporter {
	return &Reporter{Out: os.Stdout, Sinks: sinks}
}

// AddToLoop implements LoopAdder.
func (r *Reporter) AddToLoop(loop *fx.Loop) {
	loop.AddController(fx.PrLvAcuate, r)
}

// Control implements Controller. Send failures are logged and the
// report is dropped, the loop always continues.
func (r *Reporter) Control(cc fx.ControlContext) error {
	cc.Messages().ProcessMessages(fx.ProcessMessageFunc(func(mctx fx.MessageProcessingContext) {
		d, ok := mctx.CurrentMessage().(*obstacle.Detection)
		if !ok {
			return
		}
		mctx.MessageTaken()
		if err := r.Report(d.Value, d.State); err != nil {
			glog.Errorf("report error: %v", err)
		}
	}))
	return nil
}

// Report writes the console line and makes a single send attempt on
// every sink. The returned error aggregates the failed sinks.
func (r *Reporter) Report(value int, state obstacle.State) error {
	var errs fx.AggregatedError
	if r.Out != nil {
		if _, err := fmt.Fprintln(r.Out, ConsoleLine(value, state)); err != nil {
			errs.Add(fmt.Errorf("console: %w", err))
		}
	}
	if len(r.Sinks) == 0 {
		return errs.Aggregate()
	}
	pkt := Format(value, state)
	for n, sink := range r.Sinks {
		name := sinkName(n, sink)
		err := sink.WritePacket(pkt)
		r.Metrics.ReportSent(name, err)
		if err != nil {
			errs.Add(fmt.Errorf("%s: %w", name, err))
		}
	}
	return errs.Aggregate()
}

// Close releases all sinks.
func (r *Reporter) Close() error {
	var errs fx.AggregatedError
	for _, sink := range r.Sinks {
		errs.Add(sink.Close())
	}
	r.Sinks = nil
	return errs.Aggregate()
}

func sinkName(n int, sink comm.Sink) string {
	if named, ok := sink.(fx.Named); ok {
		return named.Name()
	}
	return "sink" + strconv.Itoa(n)
}
