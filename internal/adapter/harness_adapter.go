package adapter

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	m "gooze.dev/pkg/jumble/internal/model"
)

// DefaultQueryTimeout bounds a single harness or count query.
const DefaultQueryTimeout = 10 * time.Minute

// ErrQueryFailed is returned when the worker cannot answer a query.
var ErrQueryFailed = errors.New("worker query failed")

// TestHarnessAdapter runs the unmutated test suite.
type TestHarnessAdapter interface {
	// Resolve returns the test classes that could not be loaded.
	Resolve(ctx context.Context, testClassNames []string) ([]string, error)
	// RunBaseline runs the suite against the unmutated class and reports
	// success, timing and the ordering data for the worker.
	RunBaseline(ctx context.Context, className string, testClassNames []string, ordered bool) (m.BaselineResult, error)
}

// MutationCounter reports how many mutation points a class has.
type MutationCounter interface {
	// CountMutationPoints returns m.NotApplicableCount for classes that
	// cannot be mutated.
	CountMutationPoints(ctx context.Context, className string, cfg m.RunConfiguration) (int, error)
}

// WorkerQueryAdapter answers harness and count queries by running the worker
// executable in one-shot query mode.
type WorkerQueryAdapter struct {
	command WorkerCommand
	timeout time.Duration
}

// NewWorkerQueryAdapter constructs a WorkerQueryAdapter. A non-positive
// timeout selects DefaultQueryTimeout.
func NewWorkerQueryAdapter(command WorkerCommand, timeout time.Duration) *WorkerQueryAdapter {
	if timeout <= 0 {
		timeout = DefaultQueryTimeout
	}

	return &WorkerQueryAdapter{command: command, timeout: timeout}
}

type resolveReport struct {
	Unresolved []string `yaml:"unresolved"`
}

// Resolve implements TestHarnessAdapter.
func (a *WorkerQueryAdapter) Resolve(ctx context.Context, testClassNames []string) ([]string, error) {
	args := append([]string{"--resolve"}, testClassNames...)

	out, err := a.query(ctx, args)
	if err != nil {
		return nil, err
	}

	var report resolveReport
	if err := yaml.Unmarshal(out, &report); err != nil {
		slog.Error("Failed to decode resolve report", "error", err)
		return nil, fmt.Errorf("%w: decode resolve report: %w", ErrQueryFailed, err)
	}

	return report.Unresolved, nil
}

// RunBaseline implements TestHarnessAdapter.
func (a *WorkerQueryAdapter) RunBaseline(ctx context.Context, className string, testClassNames []string, ordered bool) (m.BaselineResult, error) {
	args := []string{"--baseline", className}
	if ordered {
		args = append(args, "-o")
	}

	args = append(args, testClassNames...)

	out, err := a.query(ctx, args)
	if err != nil {
		return m.BaselineResult{}, err
	}

	var result m.BaselineResult
	if err := yaml.Unmarshal(out, &result); err != nil {
		slog.Error("Failed to decode baseline report", "className", className, "error", err)
		return m.BaselineResult{}, fmt.Errorf("%w: decode baseline report: %w", ErrQueryFailed, err)
	}

	return result, nil
}

// CountMutationPoints implements MutationCounter.
func (a *WorkerQueryAdapter) CountMutationPoints(ctx context.Context, className string, cfg m.RunConfiguration) (int, error) {
	args := append([]string{"--count", className}, mutationArgs(cfg)...)

	out, err := a.query(ctx, args)
	if err != nil {
		return 0, err
	}

	count, err := strconv.Atoi(strings.TrimSpace(string(out)))
	if err != nil || count < m.NotApplicableCount {
		slog.Error("Unexpected mutation count", "className", className, "output", string(out))
		return 0, fmt.Errorf("%w: unexpected mutation count %q", ErrQueryFailed, strings.TrimSpace(string(out)))
	}

	return count, nil
}

func (a *WorkerQueryAdapter) query(ctx context.Context, queryArgs []string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	args := append(append([]string{}, a.command.Args...), queryArgs...)
	cmd := exec.CommandContext(ctx, a.command.Path, args...)
	cmd.Env = append(os.Environ(), a.command.Env...)

	var stdout, stderr bytes.Buffer

	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		slog.Error("Worker query failed", "args", args, "stderr", stderr.String(), "error", err)
		return nil, fmt.Errorf("%w: %s: %w", ErrQueryFailed, strings.TrimSpace(stderr.String()), err)
	}

	slog.Debug("Worker query completed", "args", args, "bytes", stdout.Len())

	return stdout.Bytes(), nil
}
