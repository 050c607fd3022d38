// Package config loads the persistent configuration spec §6 says the
// controller and host must agree on: per-axis kinematics, soft limits,
// protocol timeouts, and the flow curve. It follows the viper-backed YAML
// config-manifest pattern common across the pack: a loaded struct rather
// than package vars compiled into one process, since two independent
// processes here must agree on the same values instead of sharing a
// compiled-in var block.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/saucerun/ssgcore/internal/compiler"
	"github.com/saucerun/ssgcore/internal/controller"
	"github.com/saucerun/ssgcore/internal/streamer"
	"github.com/saucerun/ssgcore/internal/units"
)

// Axis is the persistent per-axis tuning (spec §6 "Persistent
// configuration").
type Axis struct {
	StepsPerMM float64 `mapstructure:"steps_per_mm" yaml:"steps_per_mm"`
	MaxSpeed   float64 `mapstructure:"max_speed" yaml:"max_speed"`
	MaxAccel   float64 `mapstructure:"max_accel" yaml:"max_accel"`
	SoftMin    float64 `mapstructure:"soft_min" yaml:"soft_min"`
	SoftMax    float64 `mapstructure:"soft_max" yaml:"soft_max"`
}

// FlowCurvePoint is one duty->width calibration sample in the YAML
// document.
type FlowCurvePoint struct {
	Duty    int     `mapstructure:"duty" yaml:"duty"`
	WidthMM float64 `mapstructure:"width_mm" yaml:"width_mm"`
}

// Config is the full document shared by both binaries.
type Config struct {
	AxisX Axis `mapstructure:"axis_x" yaml:"axis_x"`
	AxisY Axis `mapstructure:"axis_y" yaml:"axis_y"`

	QueueCapacity        int     `mapstructure:"queue_capacity" yaml:"queue_capacity"`
	HeartbeatTimeoutMS   int     `mapstructure:"heartbeat_timeout_ms" yaml:"heartbeat_timeout_ms"`
	FlowOnDwellMS        int     `mapstructure:"flow_on_dwell_ms" yaml:"flow_on_dwell_ms"`
	FlowOffDwellMS       int     `mapstructure:"flow_off_dwell_ms" yaml:"flow_off_dwell_ms"`
	TelemetryIntervalMS  int     `mapstructure:"telemetry_interval_ms" yaml:"telemetry_interval_ms"`

	RapidFeed          float64 `mapstructure:"rapid_feed" yaml:"rapid_feed"`
	MaxPathLengthMM    float64 `mapstructure:"max_path_length_mm" yaml:"max_path_length_mm"`
	MaxVertices        int     `mapstructure:"max_vertices" yaml:"max_vertices"`
	SimplifyEpsilonMM  float64 `mapstructure:"simplify_epsilon_mm" yaml:"simplify_epsilon_mm"`
	Optimize2Opt       bool    `mapstructure:"optimize_2opt" yaml:"optimize_2opt"`

	WindowSize         int `mapstructure:"window_size" yaml:"window_size"`
	AckTimeoutMS       int `mapstructure:"ack_timeout_ms" yaml:"ack_timeout_ms"`
	MaxRetries         int `mapstructure:"max_retries" yaml:"max_retries"`
	BusyBackoffMS      int `mapstructure:"busy_backoff_ms" yaml:"busy_backoff_ms"`
	DrainTimeoutMS     int `mapstructure:"drain_timeout_ms" yaml:"drain_timeout_ms"`

	FlowCurve []FlowCurvePoint `mapstructure:"flow_curve" yaml:"flow_curve"`
}

// Default returns the document matching spec §8's literal end-to-end
// scenario values, used when no config file is given.
func Default() Config {
	d := controller.DefaultConfig()
	c := compiler.DefaultConfig()
	s := streamer.DefaultConfig()
	return Config{
		AxisX: axisFrom(d.AxisX),
		AxisY: axisFrom(d.AxisY),

		QueueCapacity:       d.QueueCapacity,
		HeartbeatTimeoutMS:  int(d.HeartbeatTimeout / time.Millisecond),
		FlowOnDwellMS:       int(d.FlowOnDwell / time.Millisecond),
		FlowOffDwellMS:      int(d.FlowOffDwell / time.Millisecond),
		TelemetryIntervalMS: int(d.TelemetryInterval / time.Millisecond),

		RapidFeed:         3000,
		MaxPathLengthMM:   c.MaxPathLengthMM,
		MaxVertices:       c.MaxVertices,
		SimplifyEpsilonMM: 0,
		Optimize2Opt:      false,

		WindowSize:     s.Window,
		AckTimeoutMS:   int(s.AckTimeout / time.Millisecond),
		MaxRetries:     s.MaxRetries,
		BusyBackoffMS:  int(s.BusyBackoff / time.Millisecond),
		DrainTimeoutMS: int(s.DrainTimeout / time.Millisecond),

		FlowCurve: []FlowCurvePoint{
			{Duty: 0, WidthMM: 0},
			{Duty: 50, WidthMM: 0.8},
			{Duty: 100, WidthMM: 1.6},
		},
	}
}

func axisFrom(a controller.AxisParams) Axis {
	return Axis{
		StepsPerMM: a.StepsPerMM,
		MaxSpeed:   float64(a.MaxSpeed),
		MaxAccel:   float64(a.MaxAccel),
		SoftMin:    float64(a.SoftMin),
		SoftMax:    float64(a.SoftMax),
	}
}

// Load reads path as a yaml.v3 document, merges it over Default() via
// viper so a partial file only needs to override what differs from spec
// §8's scenario values, and decodes the result into Config.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: reading %s: %w", path, err)
	}
	var doc map[string]any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return Config{}, fmt.Errorf("config: parsing %s: %w", path, err)
	}

	v := viper.New()
	if err := v.MergeConfigMap(doc); err != nil {
		return Config{}, fmt.Errorf("config: merging %s: %w", path, err)
	}
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: decoding %s: %w", path, err)
	}
	return cfg, nil
}

// Controller projects the document onto internal/controller's Config.
func (c Config) Controller() controller.Config {
	return controller.Config{
		AxisX:             toAxisParams(c.AxisX),
		AxisY:             toAxisParams(c.AxisY),
		QueueCapacity:     c.QueueCapacity,
		HeartbeatTimeout:  time.Duration(c.HeartbeatTimeoutMS) * time.Millisecond,
		FlowOnDwell:       time.Duration(c.FlowOnDwellMS) * time.Millisecond,
		FlowOffDwell:      time.Duration(c.FlowOffDwellMS) * time.Millisecond,
		TelemetryInterval: time.Duration(c.TelemetryIntervalMS) * time.Millisecond,
	}
}

func toAxisParams(a Axis) controller.AxisParams {
	return controller.AxisParams{
		StepsPerMM: a.StepsPerMM,
		MaxSpeed:   units.StepRate(a.MaxSpeed),
		MaxAccel:   units.StepAccel(a.MaxAccel),
		SoftMin:    units.Millimeters(a.SoftMin),
		SoftMax:    units.Millimeters(a.SoftMax),
	}
}

// Compiler projects the document onto internal/compiler's Config.
func (c Config) Compiler() compiler.Config {
	return compiler.Config{
		SoftMinX:          units.Millimeters(c.AxisX.SoftMin),
		SoftMaxX:          units.Millimeters(c.AxisX.SoftMax),
		SoftMinY:          units.Millimeters(c.AxisY.SoftMin),
		SoftMaxY:          units.Millimeters(c.AxisY.SoftMax),
		MaxPathLengthMM:   c.MaxPathLengthMM,
		MaxVertices:       c.MaxVertices,
		SimplifyEpsilonMM: c.SimplifyEpsilonMM,
		Optimize2Opt:      c.Optimize2Opt,
	}
}

// StreamerConfig projects the document onto internal/streamer's Config.
func (c Config) StreamerConfig() streamer.Config {
	return streamer.Config{
		Window:       c.WindowSize,
		AckTimeout:   time.Duration(c.AckTimeoutMS) * time.Millisecond,
		MaxRetries:   c.MaxRetries,
		BusyBackoff:  time.Duration(c.BusyBackoffMS) * time.Millisecond,
		DrainTimeout: time.Duration(c.DrainTimeoutMS) * time.Millisecond,
		PollInterval: 20 * time.Millisecond,
	}
}

// FlowCurveTable builds the compiler's FlowCurve from the loaded points.
func (c Config) FlowCurveTable() compiler.FlowCurve {
	fc := make(compiler.FlowCurve, len(c.FlowCurve))
	for i, p := range c.FlowCurve {
		fc[i] = compiler.FlowCurvePoint{Duty: p.Duty, WidthMM: p.WidthMM}
	}
	return fc
}
