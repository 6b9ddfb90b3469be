// Package obstacle classifies raw IR sensor counts.
//
// The unobstructed sensor saturates the ADC (about 65535) while reflected
// light from a nearby object pulls it down towards 3000, so a single
// fixed threshold well below saturation separates the two.
package obstacle

import (
	"fmt"
	"strings"
)

// Threshold is the highest raw count still classified as obstructed.
const Threshold = 60000

// State is the binary classification of one reading.
type State int

// States
const (
	Obstructed State = iota
	Clear
)

// String returns the label used on the wire.
func (s State) String() string {
	switch s {
	case Obstructed:
		return "OBSTRUCTED"
	case Clear:
		return "CLEAR"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// ParseState parses a wire label, case-insensitive.
func ParseState(label string) (State, error) {
	switch strings.ToUpper(strings.TrimSpace(label)) {
	case "OBSTRUCTED":
		return Obstructed, nil
	case "CLEAR":
		return Clear, nil
	}
	return Clear, fmt.Errorf("unknown state %q", label)
}

// Classify returns Obstructed iff value <= Threshold. It looks at the
// single value only, no smoothing across readings is applied.
func Classify(value int) State {
	if value <= Threshold {
		return Obstructed
	}
	return Clear
}
