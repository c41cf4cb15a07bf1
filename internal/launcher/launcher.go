// Package launcher spawns the downstream trainer as a foreground subprocess.
// It owns stdio wiring, signal forwarding, and exit-status mapping. It adds
// no retry, timeout, or error translation: whatever the trainer reports is
// what the caller sees.
package launcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"syscall"
	"time"

	"github.com/vk/expgridgo/internal/ctxlog"
)

// Command describes a single trainer invocation.
type Command struct {
	Path string   // interpreter binary
	Args []string // arguments, excluding the binary itself
	Dir  string   // working directory; empty means inherit
	Env  []string // extra KEY=VALUE entries appended to the parent environment
}

// Result is the outcome of a finished subprocess.
type Result struct {
	ExitCode   int
	Duration   time.Duration
	OutputTail string // trailing stdout, for metrics harvesting
}

// tailSize bounds the retained stdout tail. The trainer prints its final
// metric block last, well inside this window.
const tailSize = 64 * 1024

// Run executes the command in the foreground. Stdin is inherited; stdout is
// mirrored to the given writer and retained in a bounded tail. SIGINT and
// SIGTERM received by the launcher are forwarded to the child. A signal
// death maps to exit code 128+N, matching shell semantics.
//
// A non-zero exit is not an error: the Result carries it. The error return
// covers spawn failures only, where no exit status exists to propagate.
func Run(ctx context.Context, command *Command, stdout, stderr io.Writer) (*Result, error) {
	logger := ctxlog.FromContext(ctx)

	tail := newTailWriter(tailSize)
	cmd := exec.CommandContext(ctx, command.Path, command.Args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = io.MultiWriter(stdout, tail)
	cmd.Stderr = stderr
	cmd.Dir = command.Dir
	if len(command.Env) > 0 {
		cmd.Env = append(os.Environ(), command.Env...)
	}

	start := time.Now()
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start %s: %w", command.Path, err)
	}
	logger.Debug("Subprocess started.", "pid", cmd.Process.Pid, "path", command.Path)

	// Forward termination signals for the lifetime of the child.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	forwardDone := make(chan struct{})
	go func() {
		defer close(forwardDone)
		for sig := range sigCh {
			logger.Debug("Forwarding signal to subprocess.", "signal", sig.String(), "pid", cmd.Process.Pid)
			_ = cmd.Process.Signal(sig)
		}
	}()

	waitErr := cmd.Wait()
	signal.Stop(sigCh)
	close(sigCh)
	<-forwardDone

	result := &Result{
		Duration:   time.Since(start),
		OutputTail: tail.String(),
	}

	if waitErr == nil {
		result.ExitCode = 0
		return result, nil
	}

	var exitErr *exec.ExitError
	if errors.As(waitErr, &exitErr) {
		result.ExitCode = exitStatus(exitErr)
		return result, nil
	}

	return nil, fmt.Errorf("failed to wait for %s: %w", command.Path, waitErr)
}

// exitStatus maps a finished process state to a shell-style exit code.
func exitStatus(exitErr *exec.ExitError) int {
	if ws, ok := exitErr.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		return 128 + int(ws.Signal())
	}
	return exitErr.ExitCode()
}
