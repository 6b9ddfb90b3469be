package sensor

import (
	"time"

	"github.com/golang/glog"

	fx "github.com/robotalks/irsense/pkg/framework"
	"github.com/robotalks/irsense/pkg/metrics"
)

// ValueReader acquires one raw value per call.
type ValueReader interface {
	ReadValue() (int, error)
}

// Reading is a valid raw value acquired in the current iteration.
type Reading struct {
	Value int
	Time  time.Time
}

// NewMessage implements Message.
func (m *Reading) NewMessage() fx.Message { return &Reading{} }

// Sensor polls a ValueReader once per loop iteration.
type Sensor struct {
	Reader  ValueReader
	Metrics *metrics.Metrics
}

// NewSensor creates a Sensor.
func NewSensor(reader ValueReader) *Sensor {
	return &Sensor{Reader: reader}
}

// AddToLoop implements LoopAdder.
func (s *Sensor) AddToLoop(loop *fx.Loop) {
	loop.AddController(fx.PrLvSense, s)
}

// Control implements Controller. An unavailable reading is logged and
// nothing is posted, so later stages have nothing to do this iteration.
func (s *Sensor) Control(cc fx.ControlContext) error {
	value, err := s.Reader.ReadValue()
	if err != nil {
		s.Metrics.ReadError()
		glog.Errorf("sensor read error: %v", err)
		return nil
	}
	s.Metrics.Reading(value)
	glog.V(2).Infof("iteration %d: ADC = %d", cc.Iteration(), value)
	cc.Messages().AddMessages(&Reading{Value: value, Time: cc.Time()})
	return nil
}
