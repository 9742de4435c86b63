package adapter

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"time"

	"golang.org/x/sync/errgroup"

	m "gooze.dev/pkg/jumble/internal/model"
)

// StartSentinel is the first line a healthy worker prints on stdout.
const StartSentinel = "START"

// Poll granularities of the handshake and result waits.
const (
	HandshakePollInterval = 10 * time.Millisecond
	ResultPollInterval    = 50 * time.Millisecond
)

var (
	// ErrResultTimeout is returned by AwaitResult when no line arrived in time.
	ErrResultTimeout = errors.New("worker result timed out")
	// ErrLaunchDefect marks a worker that could not start properly.
	ErrLaunchDefect = errors.New("worker launch defect")
	// ErrChannelNotReady is returned when an operation is used out of order.
	ErrChannelNotReady = errors.New("worker channel not ready")
)

// LaunchError reports unexpected worker output observed before the handshake
// sentinel. It is fatal to the whole run.
type LaunchError struct {
	Stream string // "stdout" or "stderr"
	Line   string
	Exited bool // stdout ended before the sentinel
}

func (e *LaunchError) Error() string {
	if e.Exited {
		return fmt.Sprintf("worker exited before printing %s", StartSentinel)
	}

	return fmt.Sprintf("worker returned %q on %s instead of %s", e.Line, e.Stream, StartSentinel)
}

// Unwrap lets errors.Is match ErrLaunchDefect.
func (e *LaunchError) Unwrap() error {
	return ErrLaunchDefect
}

// WorkerChannel owns one worker process and the readers of its output streams.
type WorkerChannel interface {
	// Spawn launches the worker with argv appended to the configured command.
	Spawn(ctx context.Context, argv []string) error
	// Handshake waits, without a deadline, for the START sentinel.
	Handshake(ctx context.Context) error
	// AwaitResult returns the next stdout line, or ErrResultTimeout once more
	// than timeout has elapsed since the call started.
	AwaitResult(ctx context.Context, timeout time.Duration) (string, error)
	// Kill terminates the worker process.
	Kill() error
	// State reports the current lifecycle state.
	State() m.ChannelState
}

// WorkerCommand is the executable used to launch workers, with fixed leading
// arguments and extra environment entries.
type WorkerCommand struct {
	Path string
	Args []string
	Env  []string
}

// ProcessWorkerChannel is the os/exec backed WorkerChannel.
type ProcessWorkerChannel struct {
	command WorkerCommand
	verbose bool

	handshakePoll time.Duration
	resultPoll    time.Duration

	cmd     *exec.Cmd
	stdout  *LineReader
	stderr  *LineReader
	readers *errgroup.Group
	state   m.ChannelState
}

// NewProcessWorkerChannel constructs a channel in the Absent state.
func NewProcessWorkerChannel(command WorkerCommand, verbose bool) *ProcessWorkerChannel {
	return &ProcessWorkerChannel{
		command:       command,
		verbose:       verbose,
		handshakePoll: HandshakePollInterval,
		resultPoll:    ResultPollInterval,
		state:         m.ChannelAbsent,
	}
}

// State implements WorkerChannel.
func (c *ProcessWorkerChannel) State() m.ChannelState {
	return c.state
}

// Spawn implements WorkerChannel.
func (c *ProcessWorkerChannel) Spawn(ctx context.Context, argv []string) error {
	if c.state != m.ChannelAbsent && c.state != m.ChannelDead {
		return fmt.Errorf("%w: spawn in state %s", ErrChannelNotReady, c.state)
	}

	c.state = m.ChannelSpawning

	args := append(append([]string{}, c.command.Args...), argv...)
	// The worker is killed explicitly; ctx only guards the launch itself.
	cmd := exec.Command(c.command.Path, args...)
	cmd.Env = append(os.Environ(), c.command.Env...)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		c.state = m.ChannelDead
		return fmt.Errorf("failed to get stdout pipe: %w", err)
	}

	stderr, err := cmd.StderrPipe()
	if err != nil {
		c.state = m.ChannelDead
		return fmt.Errorf("failed to get stderr pipe: %w", err)
	}

	if err := ctx.Err(); err != nil {
		c.state = m.ChannelDead
		return err
	}

	if err := cmd.Start(); err != nil {
		c.state = m.ChannelDead
		slog.Error("Failed to start worker", "path", c.command.Path, "error", err)

		return fmt.Errorf("failed to start worker %s: %w", c.command.Path, err)
	}

	c.cmd = cmd
	c.stdout = NewLineReader("stdout", stdout)
	c.stderr = NewLineReader("stderr", stderr)
	c.readers = &errgroup.Group{}
	c.readers.Go(c.stdout.Run)
	c.readers.Go(c.stderr.Run)
	c.state = m.ChannelAwaitingHandshake

	slog.Debug("Spawned worker", "pid", cmd.Process.Pid, "args", args)

	return nil
}

// Handshake implements WorkerChannel.
func (c *ProcessWorkerChannel) Handshake(ctx context.Context) error {
	if c.state != m.ChannelAwaitingHandshake {
		return fmt.Errorf("%w: handshake in state %s", ErrChannelNotReady, c.state)
	}

	ticker := time.NewTicker(c.handshakePoll)
	defer ticker.Stop()

	for {
		out, hasOut := c.stdout.TakeIfReady()
		errLine, hasErr := c.stderr.TakeIfReady()
		c.debugOutput(out, hasOut, errLine, hasErr)

		switch {
		case hasOut && out == StartSentinel:
			c.state = m.ChannelReady
			return nil
		case hasOut:
			return &LaunchError{Stream: "stdout", Line: out}
		case hasErr:
			return &LaunchError{Stream: "stderr", Line: errLine}
		case c.stdout.Closed():
			return &LaunchError{Exited: true}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-c.stdout.Ready():
		case <-ticker.C:
		}
	}
}

// AwaitResult implements WorkerChannel.
func (c *ProcessWorkerChannel) AwaitResult(ctx context.Context, timeout time.Duration) (string, error) {
	if c.state != m.ChannelReady {
		return "", fmt.Errorf("%w: await in state %s", ErrChannelNotReady, c.state)
	}

	started := time.Now()

	ticker := time.NewTicker(c.resultPoll)
	defer ticker.Stop()

	for {
		out, hasOut := c.stdout.TakeIfReady()
		errLine, hasErr := c.stderr.TakeIfReady()
		c.debugOutput(out, hasOut, errLine, hasErr)

		if hasOut {
			return out, nil
		}

		if time.Since(started) > timeout {
			return "", ErrResultTimeout
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-c.stdout.Ready():
		case <-ticker.C:
		}
	}
}

// Kill implements WorkerChannel.
func (c *ProcessWorkerChannel) Kill() error {
	if c.cmd == nil {
		c.state = m.ChannelDead
		return nil
	}

	cmd := c.cmd
	c.cmd = nil
	c.state = m.ChannelDead

	var killErr error
	if err := cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		slog.Error("Failed to kill worker", "pid", cmd.Process.Pid, "error", err)
		killErr = fmt.Errorf("failed to kill worker: %w", err)
	}

	// Wait reaps the process and closes both pipes, which ends the readers.
	if err := cmd.Wait(); err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			slog.Debug("Worker wait returned error", "error", err)
		}
	}

	if err := c.readers.Wait(); err != nil && !errors.Is(err, io.EOF) {
		slog.Debug("Worker stream reader failed", "error", err)
	}

	slog.Debug("Killed worker", "pid", cmd.Process.Pid)

	return killErr
}

func (c *ProcessWorkerChannel) debugOutput(out string, hasOut bool, errLine string, hasErr bool) {
	if !c.verbose {
		return
	}

	if hasErr {
		slog.Debug("Child.err->" + errLine)
	}

	if hasOut {
		slog.Debug("Child.out->" + out)
	}
}
