package obstacle

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	fx "github.com/robotalks/irsense/pkg/framework"
	"github.com/robotalks/irsense/pkg/sensor"
)

func TestClassify(t *testing.T) {
	testCases := []struct {
		value  int
		expect State
	}{
		{math.MinInt32, Obstructed},
		{-1, Obstructed},
		{0, Obstructed},
		{3000, Obstructed},
		{59999, Obstructed},
		{Threshold, Obstructed},
		{Threshold + 1, Clear},
		{65535, Clear},
		{math.MaxInt32, Clear},
	}
	for _, tc := range testCases {
		require.Equalf(t, tc.expect, Classify(tc.value), "Classify(%d)", tc.value)
	}
}

func TestStateLabels(t *testing.T) {
	require.Equal(t, "OBSTRUCTED", Obstructed.String())
	require.Equal(t, "CLEAR", Clear.String())
	require.Equal(t, "State(7)", State(7).String())

	for _, s := range []State{Obstructed, Clear} {
		parsed, err := ParseState(s.String())
		require.NoError(t, err)
		require.Equal(t, s, parsed)
	}
	parsed, err := ParseState(" clear ")
	require.NoError(t, err)
	require.Equal(t, Clear, parsed)
	_, err = ParseState("BLOCKED")
	require.Error(t, err)
}

func TestClassifierPostsDetections(t *testing.T) {
	values := []int{65535, 60000, 60001, 3000}
	var got []Detection
	loop := fx.NewLoop(time.Millisecond)
	loop.MaxIterations = uint64(len(values))
	loop.AddController(fx.PrLvSense, fx.ControlFunc(func(cc fx.ControlContext) error {
		cc.Messages().AddMessages(&sensor.Reading{Value: values[cc.Iteration()-1], Time: cc.Time()})
		return nil
	}))
	loop.Add(&Classifier{})
	loop.AddController(fx.PrLvAcuate, fx.ControlFunc(func(cc fx.ControlContext) error {
		cc.Messages().ProcessMessages(fx.ProcessMessageFunc(func(mctx fx.MessageProcessingContext) {
			if d, ok := mctx.CurrentMessage().(*Detection); ok {
				require.Equal(t, cc.Time(), d.Time)
				got = append(got, Detection{Value: d.Value, State: d.State})
			}
			_, isReading := mctx.CurrentMessage().(*sensor.Reading)
			require.False(t, isReading, "reading not consumed")
		}))
		return nil
	}))
	require.NoError(t, loop.Run(context.Background()))
	require.Equal(t, []Detection{
		{Value: 65535, State: Clear},
		{Value: 60000, State: Obstructed},
		{Value: 60001, State: Clear},
		{Value: 3000, State: Obstructed},
	}, got)
}
