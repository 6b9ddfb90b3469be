// Package sensor acquires raw ADC counts exposed through the filesystem,
// e.g. the IIO sysfs attribute of an IR reflective sensor.
package sensor

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
)

// ErrUnavailable marks a cycle without a valid reading. Every error
// returned by ADC.ReadValue wraps it.
var ErrUnavailable = errors.New("reading unavailable")

// ADC reads a single integer from Path.
type ADC struct {
	Path string
}

// NewADC creates an ADC reading from path.
func NewADC(path string) *ADC {
	return &ADC{Path: path}
}

// ReadValue opens Path, parses its first whitespace-delimited token as a
// base-10 integer and closes it again. The file is never held open
// between calls so a device that is temporarily not ready only fails the
// current call.
func (a *ADC) ReadValue() (int, error) {
	f, err := os.Open(a.Path)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Split(bufio.ScanWords)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return 0, fmt.Errorf("%w: read %s: %v", ErrUnavailable, a.Path, err)
		}
		return 0, fmt.Errorf("%w: %s is empty", ErrUnavailable, a.Path)
	}
	token := scanner.Text()
	value, err := strconv.Atoi(token)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: bad value %q", ErrUnavailable, a.Path, token)
	}
	return value, nil
}
