package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Defaults(t *testing.T) {
	var out bytes.Buffer
	cfg, exit, err := Parse([]string{"grid.hcl"}, &out)
	require.NoError(t, err)
	require.False(t, exit)
	require.NotNil(t, cfg)

	assert.Equal(t, "grid.hcl", cfg.GridPath)
	assert.Equal(t, "--train", cfg.Mode)
	assert.Equal(t, []string{"0"}, cfg.GPUs)
	assert.Equal(t, 1, cfg.Workers)
	assert.Empty(t, cfg.Extra)
	assert.False(t, cfg.DryRun)
	assert.Equal(t, "runs.db", cfg.Ledger)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestParse_ConfigFlagVariants(t *testing.T) {
	var out bytes.Buffer

	cfg, _, err := Parse([]string{"--config", "a.hcl"}, &out)
	require.NoError(t, err)
	assert.Equal(t, "a.hcl", cfg.GridPath)

	cfg, _, err = Parse([]string{"-c", "b.hcl"}, &out)
	require.NoError(t, err)
	assert.Equal(t, "b.hcl", cfg.GridPath)
}

func TestParse_Passthrough(t *testing.T) {
	var out bytes.Buffer
	cfg, _, err := Parse([]string{"grid.hcl", "--", "--checkpoint_path", "model/ckpt"}, &out)
	require.NoError(t, err)
	assert.Equal(t, "grid.hcl", cfg.GridPath)
	assert.Equal(t, []string{"--checkpoint_path", "model/ckpt"}, cfg.Extra)
}

func TestParse_ModeAndGPU(t *testing.T) {
	var out bytes.Buffer
	cfg, _, err := Parse([]string{"--mode", "--inference", "--gpu", "2", "grid.hcl"}, &out)
	require.NoError(t, err)
	assert.Equal(t, "--inference", cfg.Mode)
	assert.Equal(t, []string{"2"}, cfg.GPUs)
}

func TestParse_GPUPool(t *testing.T) {
	var out bytes.Buffer
	cfg, _, err := Parse([]string{"--gpus", "0, 1,2", "--workers", "3", "grid.hcl"}, &out)
	require.NoError(t, err)
	assert.Equal(t, []string{"0", "1", "2"}, cfg.GPUs)
	assert.Equal(t, 3, cfg.Workers)
}

func TestParse_NoArgsPrintsUsage(t *testing.T) {
	var out bytes.Buffer
	cfg, exit, err := Parse(nil, &out)
	require.NoError(t, err)
	assert.True(t, exit)
	assert.Nil(t, cfg)
	assert.Contains(t, out.String(), "Usage:")
}

func TestParse_HistoryWithoutConfigPath(t *testing.T) {
	var out bytes.Buffer
	cfg, exit, err := Parse([]string{"--history", "5"}, &out)
	require.NoError(t, err)
	require.False(t, exit)
	require.NotNil(t, cfg)
	assert.Equal(t, 5, cfg.History)
	assert.Empty(t, cfg.GridPath)
}

func TestParse_InvalidLogFormat(t *testing.T) {
	var out bytes.Buffer
	_, _, err := Parse([]string{"--log-format", "yaml", "grid.hcl"}, &out)
	require.Error(t, err)

	exitErr, ok := err.(*ExitError)
	require.True(t, ok)
	assert.Equal(t, 2, exitErr.Code)
	assert.Contains(t, exitErr.Message, "invalid log-format")
}

func TestParse_InvalidLogLevel(t *testing.T) {
	var out bytes.Buffer
	_, _, err := Parse([]string{"--log-level", "verbose", "grid.hcl"}, &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log-level")
}

func TestParse_InvalidWorkers(t *testing.T) {
	var out bytes.Buffer
	_, _, err := Parse([]string{"--workers", "0", "grid.hcl"}, &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Workers must be at least 1")
}

func TestParse_HistoryRequiresLedger(t *testing.T) {
	var out bytes.Buffer
	_, _, err := Parse([]string{"--history", "5", "--ledger", ""}, &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "History requires a ledger path")
}

func TestParse_DryRun(t *testing.T) {
	var out bytes.Buffer
	cfg, _, err := Parse([]string{"--dry-run", "grid.hcl"}, &out)
	require.NoError(t, err)
	assert.True(t, cfg.DryRun)
}

func TestParse_EnvOverrides(t *testing.T) {
	t.Setenv("EXPGRIDGO_LOG_LEVEL", "debug")
	t.Setenv("EXPGRIDGO_WORKERS", "4")
	t.Setenv("EXPGRIDGO_GPUS", "0,1")

	var out bytes.Buffer
	cfg, _, err := Parse([]string{"grid.hcl"}, &out)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, []string{"0", "1"}, cfg.GPUs)

	// Explicit flags still beat the environment.
	cfg, _, err = Parse([]string{"--workers", "2", "grid.hcl"}, &out)
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Workers)
}
