package controller

import (
	"time"

	"github.com/saucerun/ssgcore/internal/units"
)

// AxisParams is the persistent per-axis configuration (spec §6 "Persistent
// configuration").
type AxisParams struct {
	StepsPerMM float64
	MaxSpeed   units.StepRate
	MaxAccel   units.StepAccel
	SoftMin    units.Millimeters
	SoftMax    units.Millimeters
}

// Config is the controller's full persistent configuration, loaded by
// internal/config from YAML at process start (spec §6). It is not sent over
// the connection; the host loads its own copy of the document.
type Config struct {
	AxisX, AxisY      AxisParams
	QueueCapacity     int
	HeartbeatTimeout  time.Duration
	FlowOnDwell       time.Duration
	FlowOffDwell      time.Duration
	TelemetryInterval time.Duration
}

// DefaultConfig matches the literal values used throughout spec §8's
// end-to-end scenarios.
func DefaultConfig() Config {
	return Config{
		AxisX: AxisParams{StepsPerMM: 80, MaxSpeed: 4000, MaxAccel: 20000, SoftMin: -120, SoftMax: 120},
		AxisY: AxisParams{StepsPerMM: 80, MaxSpeed: 4000, MaxAccel: 20000, SoftMin: -120, SoftMax: 120},
		QueueCapacity:     64,
		HeartbeatTimeout:  3 * time.Second,
		FlowOnDwell:       100 * time.Millisecond,
		FlowOffDwell:      50 * time.Millisecond,
		TelemetryInterval: 1 * time.Second,
	}
}
