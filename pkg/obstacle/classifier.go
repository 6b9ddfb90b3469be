package obstacle

import (
	"time"

	fx "github.com/robotalks/irsense/pkg/framework"
	"github.com/robotalks/irsense/pkg/metrics"
	"github.com/robotalks/irsense/pkg/sensor"
)

// Detection is a classified reading.
type Detection struct {
	Value int
	State State
	Time  time.Time
}

// NewMessage implements Message.
func (m *Detection) NewMessage() fx.Message { return &Detection{} }

// Classifier turns every sensor.Reading of the iteration into a Detection.
type Classifier struct {
	Metrics *metrics.Metrics
}

// AddToLoop implements LoopAdder.
func (c *Classifier) AddToLoop(loop *fx.Loop) {
	loop.AddController(fx.PrLvControl, c)
}

// Control implements Controller.
func (c *Classifier) Control(cc fx.ControlContext) error {
	cc.Messages().ProcessMessages(fx.ProcessMessageFunc(func(mctx fx.MessageProcessingContext) {
		reading, ok := mctx.CurrentMessage().(*sensor.Reading)
		if !ok {
			return
		}
		mctx.MessageTaken()
		state := Classify(reading.Value)
		c.Metrics.Detection(state.String())
		mctx.AddMessages(&Detection{Value: reading.Value, State: state, Time: reading.Time})
	}))
	return nil
}
