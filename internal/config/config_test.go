package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultMatchesScenarioValues(t *testing.T) {
	cfg := Default()
	require.Equal(t, 80.0, cfg.AxisX.StepsPerMM)
	require.Equal(t, -120.0, cfg.AxisX.SoftMin)
	require.Equal(t, 120.0, cfg.AxisX.SoftMax)
	require.Equal(t, 64, cfg.QueueCapacity)
	require.Equal(t, 32, cfg.WindowSize)
	require.Equal(t, 250, cfg.AckTimeoutMS)
	require.Equal(t, 3000, cfg.HeartbeatTimeoutMS)
}

func TestLoadOverridesOnlyGivenFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("queue_capacity: 128\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 128, cfg.QueueCapacity)
	// Everything else still matches Default().
	require.Equal(t, 80.0, cfg.AxisX.StepsPerMM)
	require.Equal(t, 32, cfg.WindowSize)
}

func TestProjections(t *testing.T) {
	cfg := Default()
	require.Equal(t, cfg.QueueCapacity, cfg.Controller().QueueCapacity)
	require.Equal(t, cfg.MaxVertices, cfg.Compiler().MaxVertices)
	require.Equal(t, cfg.WindowSize, cfg.StreamerConfig().Window)
	require.Len(t, cfg.FlowCurveTable(), len(cfg.FlowCurve))
}
