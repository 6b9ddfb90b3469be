package main

import (
	"flag"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/irsense/pkg/detector"
)

func TestConsoleCadence(t *testing.T) {
	require.Equal(t, time.Second, detector.Default().Interval)
	require.Equal(t, time.Second, detector.NewConfig().Interval)
	require.Equal(t, "1s", flag.Lookup("interval").DefValue)
}
