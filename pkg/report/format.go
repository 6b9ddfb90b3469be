// Package report renders classified readings to the console and to the
// configured transports.
package report

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/robotalks/irsense/pkg/obstacle"
)

// Wire format field labels.
const (
	valueLabel = "ADC ="
	stateLabel = "STATUS ="
)

// ErrMalformed is returned by Parse for payloads not in the wire format.
var ErrMalformed = errors.New("malformed report")

// Report is one received report.
type Report struct {
	Value int
	State obstacle.State
	// Time is when the report was received, it is not on the wire.
	Time time.Time
}

// Format renders the datagram payload, e.g.
// "\nADC =12345 | STATUS =OBSTRUCTED".
func Format(value int, state obstacle.State) []byte {
	return []byte(fmt.Sprintf("\n%s%d | %s%s", valueLabel, value, stateLabel, state))
}

// ConsoleLine renders the human readable status line.
func ConsoleLine(value int, state obstacle.State) string {
	if state == obstacle.Obstructed {
		return fmt.Sprintf("Obstacle detected! ADC = %d (%s)", value, state)
	}
	return fmt.Sprintf("No obstacle. ADC = %d (%s)", value, state)
}

// Parse decodes a payload produced by Format. Newlines and surrounding
// whitespace are ignored and the state label is case-insensitive.
func Parse(payload []byte) (Report, error) {
	msg := strings.ReplaceAll(strings.TrimSpace(string(payload)), "\n", "")
	pos := strings.Index(msg, valueLabel)
	if pos < 0 {
		return Report{}, fmt.Errorf("%w: %q has no %q", ErrMalformed, msg, valueLabel)
	}
	rest := msg[pos+len(valueLabel):]
	sep := strings.Index(rest, "|")
	if sep < 0 {
		return Report{}, fmt.Errorf("%w: %q has no separator", ErrMalformed, msg)
	}
	value, err := strconv.Atoi(strings.TrimSpace(rest[:sep]))
	if err != nil {
		return Report{}, fmt.Errorf("%w: bad value: %v", ErrMalformed, err)
	}
	rest = rest[sep+1:]
	pos = strings.Index(rest, stateLabel)
	if pos < 0 {
		return Report{}, fmt.Errorf("%w: %q has no %q", ErrMalformed, msg, stateLabel)
	}
	state, err := obstacle.ParseState(rest[pos+len(stateLabel):])
	if err != nil {
		return Report{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return Report{Value: value, State: state}, nil
}
