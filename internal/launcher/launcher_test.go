package launcher

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func shell(script string) *Command {
	return &Command{Path: "/bin/sh", Args: []string{"-c", script}}
}

func TestRun_ZeroExit(t *testing.T) {
	t.Parallel()

	var stdout, stderr bytes.Buffer
	result, err := Run(context.Background(), shell("echo hello"), &stdout, &stderr)
	require.NoError(t, err)

	assert.Equal(t, 0, result.ExitCode)
	assert.Equal(t, "hello\n", stdout.String())
	assert.Equal(t, "hello\n", result.OutputTail)
	assert.Greater(t, result.Duration, time.Duration(0))
}

func TestRun_NonZeroExitIsNotAnError(t *testing.T) {
	t.Parallel()

	var stdout, stderr bytes.Buffer
	result, err := Run(context.Background(), shell("exit 42"), &stdout, &stderr)
	require.NoError(t, err)
	assert.Equal(t, 42, result.ExitCode)
}

func TestRun_SignalDeathMapsTo128PlusN(t *testing.T) {
	t.Parallel()

	var stdout, stderr bytes.Buffer
	result, err := Run(context.Background(), shell("kill -9 $$"), &stdout, &stderr)
	require.NoError(t, err)
	assert.Equal(t, 137, result.ExitCode)
}

func TestRun_SpawnFailure(t *testing.T) {
	t.Parallel()

	var stdout, stderr bytes.Buffer
	command := &Command{Path: "/no/such/binary/anywhere"}
	_, err := Run(context.Background(), command, &stdout, &stderr)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to start")
}

func TestRun_StderrSeparated(t *testing.T) {
	t.Parallel()

	var stdout, stderr bytes.Buffer
	result, err := Run(context.Background(), shell("echo out; echo err >&2"), &stdout, &stderr)
	require.NoError(t, err)

	assert.Equal(t, 0, result.ExitCode)
	assert.Equal(t, "out\n", stdout.String())
	assert.Equal(t, "err\n", stderr.String())
	// The tail tracks stdout only: stderr never feeds metrics harvesting.
	assert.Equal(t, "out\n", result.OutputTail)
}

func TestRun_ExtraEnv(t *testing.T) {
	t.Parallel()

	var stdout, stderr bytes.Buffer
	command := shell("printf '%s' \"$EXPGRID_PROBE\"")
	command.Env = []string{"EXPGRID_PROBE=live"}

	result, err := Run(context.Background(), command, &stdout, &stderr)
	require.NoError(t, err)
	assert.Equal(t, 0, result.ExitCode)
	assert.Equal(t, "live", stdout.String())
}

func TestRun_WorkDir(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	command := shell("pwd")
	command.Dir = dir

	var stdout, stderr bytes.Buffer
	result, err := Run(context.Background(), command, &stdout, &stderr)
	require.NoError(t, err)
	assert.Equal(t, 0, result.ExitCode)
	assert.Equal(t, dir, strings.TrimSpace(stdout.String()))
}

func TestTailWriter_KeepsTrailingBytes(t *testing.T) {
	t.Parallel()

	w := newTailWriter(8)
	_, err := w.Write([]byte("0123456789"))
	require.NoError(t, err)
	assert.Equal(t, "23456789", w.String())

	_, err = w.Write([]byte("ab"))
	require.NoError(t, err)
	assert.Equal(t, "456789ab", w.String())
}

func TestTailWriter_SingleOversizedWrite(t *testing.T) {
	t.Parallel()

	w := newTailWriter(4)
	_, err := w.Write([]byte("overflowing"))
	require.NoError(t, err)
	assert.Equal(t, "wing", w.String())
}
