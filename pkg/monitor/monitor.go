// Package monitor receives reports and keeps the ones of a recent time
// window in memory.
package monitor

import (
	"net"
	"sync"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/irsense/pkg/report"
)

// DefaultWindow is how long reports are kept.
const DefaultWindow = 30 * time.Second

// Entry is a received report with its origin.
type Entry struct {
	report.Report
	From string
}

// Monitor records reports in arrival order. Datagrams may be lost,
// duplicated or reordered on the way, entries simply reflect what
// arrived.
type Monitor struct {
	Window time.Duration
	Now    func() time.Time

	lock     sync.RWMutex
	entries  []Entry
	received uint64
	dropped  uint64
}

// New creates a Monitor keeping reports for window.
func New(window time.Duration) *Monitor {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Monitor{Window: window, Now: time.Now}
}

// HandleDatagram implements udp.Handler.
func (m *Monitor) HandleDatagram(pkt []byte, from *net.UDPAddr) {
	var origin string
	if from != nil {
		origin = from.String()
	}
	m.HandlePayload(origin, pkt)
}

// HandlePayload parses and records one payload. Malformed payloads are
// logged and dropped.
func (m *Monitor) HandlePayload(origin string, payload []byte) {
	r, err := report.Parse(payload)
	m.lock.Lock()
	defer m.lock.Unlock()
	if err != nil {
		m.dropped++
		glog.V(1).Infof("drop report from %s: %v", origin, err)
		return
	}
	m.received++
	r.Time = m.Now()
	m.entries = append(m.entries, Entry{Report: r, From: origin})
	m.expire(r.Time)
}

func (m *Monitor) expire(now time.Time) {
	cutoff := now.Add(-m.Window)
	n := 0
	for n < len(m.entries) && m.entries[n].Time.Before(cutoff) {
		n++
	}
	if n > 0 {
		m.entries = append(m.entries[:0], m.entries[n:]...)
	}
}

// Latest returns the most recent entry.
func (m *Monitor) Latest() (Entry, bool) {
	m.lock.RLock()
	defer m.lock.RUnlock()
	if len(m.entries) == 0 {
		return Entry{}, false
	}
	return m.entries[len(m.entries)-1], true
}

// Entries returns a copy of the entries within the window.
func (m *Monitor) Entries() []Entry {
	m.lock.Lock()
	defer m.lock.Unlock()
	m.expire(m.Now())
	return append([]Entry(nil), m.entries...)
}

// Counts returns the number of accepted and dropped payloads.
func (m *Monitor) Counts() (received, dropped uint64) {
	m.lock.RLock()
	defer m.lock.RUnlock()
	return m.received, m.dropped
}

// Clear forgets all entries.
func (m *Monitor) Clear() {
	m.lock.Lock()
	m.entries = nil
	m.lock.Unlock()
}
