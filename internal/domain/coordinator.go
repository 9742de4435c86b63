package domain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gooze.dev/pkg/jumble/internal/adapter"
	m "gooze.dev/pkg/jumble/internal/model"
)

// RunArgs names the class under test and its test classes.
type RunArgs struct {
	ClassName      string
	TestClassNames []string
	Config         m.RunConfiguration
}

// Coordinator runs every mutation point of one class through worker
// processes and collects the outcomes.
type Coordinator interface {
	Run(ctx context.Context, args RunArgs) (m.JumbleOutcome, error)
}

// ChannelFactory creates a fresh, absent worker channel.
type ChannelFactory func(cfg m.RunConfiguration) adapter.WorkerChannel

// CoordinatorOption customizes a coordinator.
type CoordinatorOption func(*coordinator)

// WithCachePath overrides the location of the persistent cache.
func WithCachePath(path m.Path) CoordinatorOption {
	return func(c *coordinator) {
		c.cachePath = path
	}
}

// WithClock overrides the clock used to name run artifacts.
func WithClock(now func() time.Time) CoordinatorOption {
	return func(c *coordinator) {
		c.now = now
	}
}

// WithProgress registers a callback invoked after each recorded outcome.
func WithProgress(fn func(outcome m.MutationOutcome, total int)) CoordinatorOption {
	return func(c *coordinator) {
		c.progress = fn
	}
}

type coordinator struct {
	harness    adapter.TestHarnessAdapter
	counter    adapter.MutationCounter
	cacheStore adapter.CacheStore
	artifacts  adapter.ArtifactStore
	newChannel ChannelFactory

	cachePath m.Path
	now       func() time.Time
	progress  func(outcome m.MutationOutcome, total int)
}

// NewCoordinator constructs a Coordinator from its collaborators.
func NewCoordinator(
	harness adapter.TestHarnessAdapter,
	counter adapter.MutationCounter,
	cacheStore adapter.CacheStore,
	artifacts adapter.ArtifactStore,
	newChannel ChannelFactory,
	opts ...CoordinatorOption,
) Coordinator {
	c := &coordinator{
		harness:    harness,
		counter:    counter,
		cacheStore: cacheStore,
		artifacts:  artifacts,
		newChannel: newChannel,
		cachePath:  adapter.DefaultCacheFileName,
		now:        time.Now,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// run is the state of one invocation. Nothing in it outlives Run.
type run struct {
	args      RunArgs
	baseline  m.BaselineResult
	count     int
	timeoutMs int64
	paths     adapter.RunArtifacts
	cache     *m.MutationCache
	channel   adapter.WorkerChannel
	outcomes  []m.MutationOutcome
	spawns    int
}

func (c *coordinator) Run(ctx context.Context, args RunArgs) (m.JumbleOutcome, error) {
	r := &run{args: args}
	if r.args.Config.ExcludedMethods == nil {
		r.args.Config.ExcludedMethods = m.MethodSet{}
	}

	unresolved, err := c.harness.Resolve(ctx, args.TestClassNames)
	if err != nil {
		return nil, fmt.Errorf("resolve test classes: %w", err)
	}

	if len(unresolved) > 0 {
		slog.Info("Test classes could not be resolved", "className", args.ClassName, "unresolved", unresolved)
		return BuildInitialTestsFailed(args.ClassName, args.TestClassNames, nil), nil
	}

	slog.Debug("Starting initial run without mutating", "className", args.ClassName)

	r.baseline, err = c.harness.RunBaseline(ctx, args.ClassName, args.TestClassNames, args.Config.OrderByRuntime)
	if err != nil {
		return nil, fmt.Errorf("baseline test run: %w", err)
	}

	if !r.baseline.Successful {
		slog.Info("Initial tests failed", "className", args.ClassName, "failures", len(r.baseline.Failures))
		baseline := r.baseline

		return BuildInitialTestsFailed(args.ClassName, args.TestClassNames, &baseline), nil
	}

	r.count, err = c.counter.CountMutationPoints(ctx, args.ClassName, r.args.Config)
	if err != nil {
		return nil, fmt.Errorf("count mutation points: %w", err)
	}

	if r.count == m.NotApplicableCount {
		slog.Info("Class cannot be mutated", "className", args.ClassName)
		return BuildNotApplicable(args.ClassName), nil
	}

	r.timeoutMs = ComputeTimeout(r.baseline.RuntimeMs)
	slog.Info("Mutating class", "className", args.ClassName, "mutations", r.count, "timeoutMs", r.timeoutMs)

	if err := c.prepareArtifacts(r); err != nil {
		return nil, err
	}

	loopErr := c.mutate(ctx, r)
	c.teardown(r)

	if loopErr != nil {
		return nil, loopErr
	}

	return BuildCompleted(args.ClassName, args.TestClassNames, r.baseline, r.outcomes, r.timeoutMs), nil
}

func (c *coordinator) prepareArtifacts(r *run) error {
	r.paths = c.artifacts.NewRunArtifacts(c.now())

	if err := c.artifacts.WriteTestOrder(r.paths.TestOrder, r.baseline.Order); err != nil {
		slog.Error("Failed to store test order", "path", r.paths.TestOrder, "error", err)
		return fmt.Errorf("store test order: %w", err)
	}

	if !r.args.Config.UseCache {
		return nil
	}

	if r.args.Config.LoadCache {
		r.cache = c.cacheStore.Load(c.cachePath)
	} else {
		r.cache = m.NewMutationCache()
	}

	return nil
}

func (c *coordinator) mutate(ctx context.Context, r *run) error {
	r.outcomes = make([]m.MutationOutcome, 0, r.count)
	timeout := time.Duration(r.timeoutMs) * time.Millisecond

	for point := 0; point < r.count; point++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		if r.channel == nil || !r.channel.State().Live() {
			if err := c.startChannel(ctx, r, point); err != nil {
				return err
			}
		}

		line, err := r.channel.AwaitResult(ctx, timeout)

		switch {
		case errors.Is(err, adapter.ErrResultTimeout):
			slog.Info("Mutation timed out", "className", r.args.ClassName, "point", point, "timeoutMs", r.timeoutMs)
			c.record(r, TimeoutOutcome(point))
			c.killChannel(r)
		case err != nil:
			return fmt.Errorf("await mutation %d: %w", point, err)
		default:
			outcome := ParseRecord(point, line)
			c.record(r, outcome)

			if r.args.Config.UseCache && outcome.Status == m.Survived {
				c.updateCache(r, outcome)
			}
		}
	}

	return nil
}

// startChannel spawns a worker positioned at point and waits for its
// handshake. A failed handshake aborts the whole run.
func (c *coordinator) startChannel(ctx context.Context, r *run, point int) error {
	var cachePath m.Path

	if r.args.Config.UseCache {
		if err := c.cacheStore.Save(r.paths.Cache, r.cache); err != nil {
			slog.Warn("Starting worker without cache snapshot", "path", r.paths.Cache, "error", err)
		} else {
			cachePath = r.paths.Cache
		}
	}

	r.channel = c.newChannel(r.args.Config)
	r.spawns++

	argv := adapter.WorkerArgs(point, r.args.ClassName, r.paths.TestOrder, cachePath, r.args.Config)
	if err := r.channel.Spawn(ctx, argv); err != nil {
		slog.Error("Failed to spawn worker", "className", r.args.ClassName, "point", point, "error", err)
		return fmt.Errorf("spawn worker at mutation %d: %w", point, err)
	}

	if err := r.channel.Handshake(ctx); err != nil {
		slog.Error("Worker handshake failed", "className", r.args.ClassName, "point", point, "error", err)
		return fmt.Errorf("worker handshake at mutation %d: %w", point, err)
	}

	slog.Debug("Worker ready", "className", r.args.ClassName, "point", point, "spawns", r.spawns)

	return nil
}

func (c *coordinator) record(r *run, outcome m.MutationOutcome) {
	r.outcomes = append(r.outcomes, outcome)
	slog.Debug("Recorded mutation outcome", "point", outcome.Point, "status", outcome.Status.String(), "record", outcome.Record)

	if c.progress != nil {
		c.progress(outcome, r.count)
	}
}

// updateCache stores the observation carried by a survived record.
func (c *coordinator) updateCache(r *run, outcome m.MutationOutcome) {
	obs, err := ParseObservation(outcome.Record)
	if err != nil {
		slog.Warn("Skipping cache update", "point", outcome.Point, "record", outcome.Record, "error", err)
		return
	}

	if obs.ClassName != r.args.ClassName {
		slog.Debug("Record names a different class", "want", r.args.ClassName, "got", obs.ClassName)
	}

	r.cache.RecordObservation(obs.ClassName, obs.MethodName, obs.MutationPoint, obs.TestName)
}

func (c *coordinator) killChannel(r *run) {
	if r.channel == nil {
		return
	}

	if err := r.channel.Kill(); err != nil {
		slog.Error("Failed to kill worker", "className", r.args.ClassName, "error", err)
	}
}

func (c *coordinator) teardown(r *run) {
	if r.channel != nil && r.channel.State() != m.ChannelDead {
		c.killChannel(r)
	}

	r.channel = nil

	if err := c.artifacts.Remove(r.paths.TestOrder); err != nil {
		slog.Error("Could not delete temporary test order file", "path", r.paths.TestOrder, "error", err)
	}

	if !r.args.Config.UseCache {
		return
	}

	if r.spawns > 0 {
		if err := c.artifacts.Remove(r.paths.Cache); err != nil {
			slog.Error("Could not delete temporary cache file", "path", r.paths.Cache, "error", err)
		}
	}

	if r.args.Config.SaveCache {
		if err := c.cacheStore.Save(c.cachePath, r.cache); err != nil {
			slog.Error("Could not save cache", "path", c.cachePath, "error", err)
		}
	}
}
