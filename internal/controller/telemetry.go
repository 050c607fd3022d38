package controller

import "time"

// TelemetryTicker reports whether now has crossed the next scheduled
// telemetry emission instant, and if so advances the schedule. It is a
// standalone type rather than part of Controller because the loop also
// needs it to decide whether to write the unsolicited frame to the wire,
// not just to compute it.
type TelemetryTicker struct {
	interval time.Duration
	next     time.Time
}

// NewTelemetryTicker returns a ticker whose first tick fires at start+interval.
func NewTelemetryTicker(interval time.Duration, start time.Time) *TelemetryTicker {
	return &TelemetryTicker{interval: interval, next: start.Add(interval)}
}

// Due reports whether now has reached the next scheduled tick, advancing
// the schedule forward by whole intervals so a long stall doesn't cause a
// burst of catch-up telemetry frames.
func (t *TelemetryTicker) Due(now time.Time) bool {
	if now.Before(t.next) {
		return false
	}
	for !t.next.After(now) {
		t.next = t.next.Add(t.interval)
	}
	return true
}
