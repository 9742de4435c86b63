package domain

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"gooze.dev/pkg/jumble/internal/adapter"
	adaptermocks "gooze.dev/pkg/jumble/internal/adapter/mocks"
	m "gooze.dev/pkg/jumble/internal/model"
)

// step is one scripted answer of a fake worker to AwaitResult.
type step struct {
	line    string
	timeout bool
}

type fakeWorker struct {
	spawnErr     error
	handshakeErr error
	steps        []step
}

// fakeChannels hands out scripted channels, one fakeWorker per spawn, and
// records every call in order.
type fakeChannels struct {
	t        *testing.T
	workers  []fakeWorker
	spawned  int
	events   []string
	argvs    [][]string
	timeouts []time.Duration
	onSpawn  func(argv []string)
}

func (f *fakeChannels) factory(_ m.RunConfiguration) adapter.WorkerChannel {
	f.spawned++
	if f.spawned > len(f.workers) {
		f.t.Fatalf("unexpected spawn #%d", f.spawned)
	}

	return &fakeChannel{parent: f, id: f.spawned, worker: f.workers[f.spawned-1], state: m.ChannelAbsent}
}

type fakeChannel struct {
	parent *fakeChannels
	id     int
	worker fakeWorker
	state  m.ChannelState
}

func (c *fakeChannel) event(name string) {
	c.parent.events = append(c.parent.events, fmt.Sprintf("%s#%d", name, c.id))
}

func (c *fakeChannel) Spawn(_ context.Context, argv []string) error {
	c.event("spawn")
	c.parent.argvs = append(c.parent.argvs, argv)

	if c.parent.onSpawn != nil {
		c.parent.onSpawn(argv)
	}

	if c.worker.spawnErr != nil {
		c.state = m.ChannelDead
		return c.worker.spawnErr
	}

	c.state = m.ChannelAwaitingHandshake

	return nil
}

func (c *fakeChannel) Handshake(_ context.Context) error {
	c.event("handshake")

	if c.worker.handshakeErr != nil {
		return c.worker.handshakeErr
	}

	c.state = m.ChannelReady

	return nil
}

func (c *fakeChannel) AwaitResult(_ context.Context, timeout time.Duration) (string, error) {
	c.event("await")
	c.parent.timeouts = append(c.parent.timeouts, timeout)

	require.Equal(c.parent.t, m.ChannelReady, c.state, "await on a channel that is not ready")

	if len(c.worker.steps) == 0 {
		c.parent.t.Fatalf("worker #%d has no scripted result left", c.id)
	}

	next := c.worker.steps[0]
	c.worker.steps = c.worker.steps[1:]

	if next.timeout {
		return "", adapter.ErrResultTimeout
	}

	return next.line, nil
}

func (c *fakeChannel) Kill() error {
	c.event("kill")
	c.state = m.ChannelDead

	return nil
}

func (c *fakeChannel) State() m.ChannelState {
	return c.state
}

type coordinatorFixture struct {
	harness   *adaptermocks.MockTestHarnessAdapter
	counter   *adaptermocks.MockMutationCounter
	channels  *fakeChannels
	dir       string
	cachePath m.Path
	store     *adapter.LocalCacheStore
}

func newCoordinatorFixture(t *testing.T, workers ...fakeWorker) *coordinatorFixture {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "run"), 0o750))

	return &coordinatorFixture{
		harness:   adaptermocks.NewMockTestHarnessAdapter(t),
		counter:   adaptermocks.NewMockMutationCounter(t),
		channels:  &fakeChannels{t: t, workers: workers},
		dir:       dir,
		cachePath: m.Path(filepath.Join(dir, adapter.DefaultCacheFileName)),
		store:     adapter.NewLocalCacheStore(),
	}
}

func (f *coordinatorFixture) coordinator() Coordinator {
	return NewCoordinator(
		f.harness,
		f.counter,
		f.store,
		adapter.NewLocalArtifactStore(filepath.Join(f.dir, "run")),
		f.channels.factory,
		WithCachePath(f.cachePath),
	)
}

func (f *coordinatorFixture) expectBaseline(runtimeMs int64, count int) {
	f.harness.On("Resolve", mock.Anything, []string{"ATest"}).Return(nil, nil).Once()
	f.harness.On("RunBaseline", mock.Anything, "A", []string{"ATest"}, mock.Anything).
		Return(m.BaselineResult{Successful: true, RuntimeMs: runtimeMs, Order: m.TestOrder{Tests: []string{"ATest.testOne"}}}, nil).Once()
	f.counter.On("CountMutationPoints", mock.Anything, "A", mock.Anything).Return(count, nil).Once()
}

// runDirEntries lists what is left of the run artifacts directory.
func (f *coordinatorFixture) runDirEntries(t *testing.T) []string {
	entries, err := os.ReadDir(filepath.Join(f.dir, "run"))
	require.NoError(t, err)

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name())
	}

	return names
}

func noCacheConfig() m.RunConfiguration {
	cfg := m.DefaultRunConfiguration()
	cfg.UseCache = false

	return cfg
}

func runArgs(cfg m.RunConfiguration) RunArgs {
	return RunArgs{ClassName: "A", TestClassNames: []string{"ATest"}, Config: cfg}
}

func TestCoordinator_TimeoutRespawnsWorker(t *testing.T) {
	f := newCoordinatorFixture(t,
		fakeWorker{steps: []step{{line: "KILLED:A:m:0:t1"}, {timeout: true}}},
		fakeWorker{steps: []step{{line: "KILLED:A:m:2:t3"}}},
	)
	f.expectBaseline(0, 3)

	outcome, err := f.coordinator().Run(context.Background(), runArgs(noCacheConfig()))
	require.NoError(t, err)

	completed, ok := outcome.(m.Completed)
	require.True(t, ok, "got %T", outcome)

	want := []m.MutationOutcome{
		{Point: 0, Status: m.Killed, TestName: "t1", Record: "KILLED:A:m:0:t1"},
		{Point: 1, Status: m.Timeout, Record: TimeoutRecord},
		{Point: 2, Status: m.Killed, TestName: "t3", Record: "KILLED:A:m:2:t3"},
	}
	if diff := cmp.Diff(want, completed.Outcomes); diff != "" {
		t.Errorf("outcomes mismatch (-want +got):\n%s", diff)
	}

	assert.Equal(t, int64(2000), completed.TimeoutMs)
	assert.Equal(t, 2, f.channels.spawned, "exactly one respawn")
	assert.Equal(t, []string{
		"spawn#1", "handshake#1", "await#1", "await#1", "kill#1",
		"spawn#2", "handshake#2", "await#2", "kill#2",
	}, f.channels.events)

	require.Len(t, f.channels.argvs, 2)
	assert.Equal(t, []string{"-s", "0", "A"}, f.channels.argvs[0][:3])
	assert.Equal(t, []string{"-s", "2", "A"}, f.channels.argvs[1][:3])

	assert.Empty(t, f.runDirEntries(t), "run artifacts must be deleted")
}

func TestCoordinator_OutcomeCountMatchesMutationCount(t *testing.T) {
	for _, count := range []int{0, 1, 5} {
		t.Run(fmt.Sprintf("%d mutations", count), func(t *testing.T) {
			var steps []step
			for i := range count {
				steps = append(steps, step{line: fmt.Sprintf("KILLED:A:m:%d:t%d", i, i)})
			}

			var workers []fakeWorker
			if count > 0 {
				workers = append(workers, fakeWorker{steps: steps})
			}

			f := newCoordinatorFixture(t, workers...)
			f.expectBaseline(10, count)

			outcome, err := f.coordinator().Run(context.Background(), runArgs(noCacheConfig()))
			require.NoError(t, err)

			completed, ok := outcome.(m.Completed)
			require.True(t, ok)
			require.Len(t, completed.Outcomes, count)

			for i, o := range completed.Outcomes {
				assert.Equal(t, i, o.Point)
				assert.Equal(t, m.Killed, o.Status)
			}

			assert.Equal(t, len(workers), f.channels.spawned, "one worker serves every point")
		})
	}
}

func TestCoordinator_NotApplicable(t *testing.T) {
	f := newCoordinatorFixture(t)
	f.expectBaseline(10, m.NotApplicableCount)

	outcome, err := f.coordinator().Run(context.Background(), runArgs(m.DefaultRunConfiguration()))
	require.NoError(t, err)

	assert.Equal(t, m.NotApplicable{Class: "A"}, outcome)
	assert.Zero(t, f.channels.spawned)
	assert.NoFileExists(t, string(f.cachePath))
}

func TestCoordinator_BaselineFailure(t *testing.T) {
	f := newCoordinatorFixture(t)
	baseline := m.BaselineResult{
		Successful: false,
		RuntimeMs:  40,
		Failures:   []m.TestFailure{{Test: "ATest.testOne", Message: "boom"}},
	}
	f.harness.On("Resolve", mock.Anything, []string{"ATest"}).Return(nil, nil).Once()
	f.harness.On("RunBaseline", mock.Anything, "A", []string{"ATest"}, true).Return(baseline, nil).Once()

	outcome, err := f.coordinator().Run(context.Background(), runArgs(m.DefaultRunConfiguration()))
	require.NoError(t, err)

	failed, ok := outcome.(m.InitialTestsFailed)
	require.True(t, ok)
	require.NotNil(t, failed.Baseline)
	assert.Equal(t, baseline, *failed.Baseline)
	assert.Equal(t, []string{"ATest"}, failed.TestClassNames)
	assert.Zero(t, f.channels.spawned)
	f.counter.AssertNotCalled(t, "CountMutationPoints", mock.Anything, mock.Anything, mock.Anything)
}

func TestCoordinator_UnresolvedTestClass(t *testing.T) {
	f := newCoordinatorFixture(t)
	f.harness.On("Resolve", mock.Anything, []string{"ATest"}).Return([]string{"ATest"}, nil).Once()

	outcome, err := f.coordinator().Run(context.Background(), runArgs(m.DefaultRunConfiguration()))
	require.NoError(t, err)

	failed, ok := outcome.(m.InitialTestsFailed)
	require.True(t, ok)
	assert.Nil(t, failed.Baseline)
	assert.Zero(t, f.channels.spawned)
	f.harness.AssertNotCalled(t, "RunBaseline", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCoordinator_HarnessErrorsAreReturned(t *testing.T) {
	f := newCoordinatorFixture(t)
	f.harness.On("Resolve", mock.Anything, []string{"ATest"}).Return(nil, adapter.ErrQueryFailed).Once()

	_, err := f.coordinator().Run(context.Background(), runArgs(m.DefaultRunConfiguration()))
	require.ErrorIs(t, err, adapter.ErrQueryFailed)
}

func TestCoordinator_TimeoutBudget(t *testing.T) {
	f := newCoordinatorFixture(t, fakeWorker{steps: []step{{line: "KILLED:A:m:0:t"}, {line: "KILLED:A:m:1:t"}}})
	f.expectBaseline(500, 2)

	outcome, err := f.coordinator().Run(context.Background(), runArgs(noCacheConfig()))
	require.NoError(t, err)

	assert.Equal(t, int64(7000), outcome.(m.Completed).TimeoutMs)
	assert.Equal(t, []time.Duration{7 * time.Second, 7 * time.Second}, f.channels.timeouts, "fresh deadline per mutation")
}

func TestCoordinator_LaunchDefectAbortsRun(t *testing.T) {
	launchErr := &adapter.LaunchError{Stream: "stderr", Line: "NoClassDefFoundError"}
	f := newCoordinatorFixture(t, fakeWorker{handshakeErr: launchErr})
	f.expectBaseline(0, 3)

	outcome, err := f.coordinator().Run(context.Background(), runArgs(m.DefaultRunConfiguration()))
	require.Error(t, err)
	assert.Nil(t, outcome)
	assert.ErrorIs(t, err, adapter.ErrLaunchDefect)

	var got *adapter.LaunchError
	require.True(t, errors.As(err, &got))
	assert.Equal(t, "NoClassDefFoundError", got.Line)

	assert.Equal(t, []string{"spawn#1", "handshake#1", "kill#1"}, f.channels.events)
	assert.Empty(t, f.runDirEntries(t), "artifacts are cleaned even when the run aborts")
}

func TestCoordinator_SpawnFailureAbortsRun(t *testing.T) {
	f := newCoordinatorFixture(t, fakeWorker{spawnErr: errors.New("exec format error")})
	f.expectBaseline(0, 1)

	_, err := f.coordinator().Run(context.Background(), runArgs(noCacheConfig()))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exec format error")
}

func TestCoordinator_CacheRecordsSurvivedMutants(t *testing.T) {
	f := newCoordinatorFixture(t, fakeWorker{steps: []step{
		{line: "PASS: A:m:0:ATest.testOne"},
		{line: "KILLED:A:m:1:ATest.testTwo"},
		{line: "PASS: A:n:2:ATest.testThree"},
		{line: "PASS: garbage"},
	}})

	seed := m.NewMutationCache()
	seed.RecordObservation("A", "m", 0, "ATest.seeded")
	require.NoError(t, f.store.Save(f.cachePath, seed))

	var snapshot *m.MutationCache

	f.channels.onSpawn = func(argv []string) {
		require.Len(t, argv, 8, "argv carries the cache snapshot path")
		snapshot = f.store.Load(m.Path(argv[4]))
	}

	f.expectBaseline(0, 4)

	outcome, err := f.coordinator().Run(context.Background(), runArgs(m.DefaultRunConfiguration()))
	require.NoError(t, err)

	completed := outcome.(m.Completed)
	assert.Equal(t, m.Survived, completed.Outcomes[3].Status, "malformed survived records still count")

	require.NotNil(t, snapshot)
	assert.Equal(t, []string{"ATest.seeded"}, snapshot.Tests(m.CacheKey{ClassName: "A", MethodName: "m", MutationPoint: 0}))

	saved := f.store.Load(f.cachePath)
	assert.Equal(t, 2, saved.Len())
	assert.Equal(t, []string{"ATest.seeded", "ATest.testOne"}, saved.Tests(m.CacheKey{ClassName: "A", MethodName: "m", MutationPoint: 0}))
	assert.Equal(t, []string{"ATest.testThree"}, saved.Tests(m.CacheKey{ClassName: "A", MethodName: "n", MutationPoint: 2}))
	assert.Empty(t, saved.Tests(m.CacheKey{ClassName: "A", MethodName: "m", MutationPoint: 1}), "killed mutants are not cached")

	assert.Empty(t, f.runDirEntries(t), "temporary cache and test order are deleted")
}

func TestCoordinator_CacheWithoutLoadOrSave(t *testing.T) {
	f := newCoordinatorFixture(t, fakeWorker{steps: []step{{line: "PASS: A:m:0:t"}}})

	seed := m.NewMutationCache()
	seed.RecordObservation("Z", "z", 9, "old")
	require.NoError(t, f.store.Save(f.cachePath, seed))

	var snapshot *m.MutationCache

	f.channels.onSpawn = func(argv []string) {
		snapshot = f.store.Load(m.Path(argv[4]))
	}

	cfg := m.DefaultRunConfiguration()
	cfg.LoadCache = false
	cfg.SaveCache = false

	f.expectBaseline(0, 1)

	_, err := f.coordinator().Run(context.Background(), runArgs(cfg))
	require.NoError(t, err)

	require.NotNil(t, snapshot)
	assert.Equal(t, 0, snapshot.Len(), "cache starts empty without load")

	persisted := f.store.Load(f.cachePath)
	assert.Equal(t, []string{"old"}, persisted.Tests(m.CacheKey{ClassName: "Z", MethodName: "z", MutationPoint: 9}), "persistent cache untouched without save")
	assert.Equal(t, 1, persisted.Len())
}

func TestCoordinator_NoCacheOmitsCacheArgument(t *testing.T) {
	f := newCoordinatorFixture(t, fakeWorker{steps: []step{{line: "PASS: A:m:0:t"}}})
	f.expectBaseline(0, 1)

	cfg := noCacheConfig()
	cfg.InlineConstants = false
	cfg.ReturnValues = false
	cfg.Increments = false

	_, err := f.coordinator().Run(context.Background(), runArgs(cfg))
	require.NoError(t, err)

	require.Len(t, f.channels.argvs, 1)
	assert.Len(t, f.channels.argvs[0], 4)
	assert.NoFileExists(t, string(f.cachePath))
}

func TestCoordinator_ContextCancelled(t *testing.T) {
	f := newCoordinatorFixture(t, fakeWorker{steps: []step{{line: "KILLED:A:m:0:t"}}})
	f.expectBaseline(0, 3)

	ctx, cancel := context.WithCancel(context.Background())

	coordinator := NewCoordinator(
		f.harness,
		f.counter,
		f.store,
		adapter.NewLocalArtifactStore(f.dir),
		f.channels.factory,
		WithCachePath(f.cachePath),
		WithProgress(func(outcome m.MutationOutcome, total int) {
			assert.Equal(t, 3, total)

			if outcome.Point == 0 {
				cancel()
			}
		}),
	)

	_, err := coordinator.Run(ctx, runArgs(noCacheConfig()))
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, []string{"spawn#1", "handshake#1", "await#1", "kill#1"}, f.channels.events)
}
