package adapter

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"

	m "gooze.dev/pkg/jumble/internal/model"
	"gooze.dev/pkg/jumble/pkg"
)

const (
	testOrderArtifactKind    = "jumble-test-order"
	testOrderArtifactVersion = 1
)

var testOrderArtifact = pkg.NewArtifact[m.TestOrder](testOrderArtifactKind, testOrderArtifactVersion)

// RunArtifacts are the per-run files handed to the worker.
type RunArtifacts struct {
	TestOrder m.Path
	Cache     m.Path
}

// ArtifactStore abstracts the temporary files a run shares with its workers.
type ArtifactStore interface {
	// NewRunArtifacts returns run-unique artifact paths. Nothing is created.
	NewRunArtifacts(now time.Time) RunArtifacts
	// WriteTestOrder stores the harness ordering data at path.
	WriteTestOrder(path m.Path, order m.TestOrder) error
	// ReadTestOrder loads ordering data written by WriteTestOrder.
	ReadTestOrder(path m.Path) (m.TestOrder, error)
	// Remove deletes an artifact. Removing a missing file is an error.
	Remove(path m.Path) error
}

// LocalArtifactStore keeps run artifacts in a directory on disk.
type LocalArtifactStore struct {
	dir string
}

// NewLocalArtifactStore constructs a store rooted at dir. An empty dir means
// the current working directory.
func NewLocalArtifactStore(dir string) *LocalArtifactStore {
	return &LocalArtifactStore{dir: dir}
}

// NewRunArtifacts implements ArtifactStore.
func (s *LocalArtifactStore) NewRunArtifacts(now time.Time) RunArtifacts {
	// The timestamp keeps names readable; the suffix keeps concurrent runs
	// started in the same millisecond apart.
	stamp := strconv.FormatInt(now.UnixMilli(), 10) + "-" + uuid.NewString()[:8]

	return RunArtifacts{
		TestOrder: m.Path(filepath.Join(s.dir, "testSuite"+stamp+".dat")),
		Cache:     m.Path(filepath.Join(s.dir, "cache"+stamp+".dat")),
	}
}

// WriteTestOrder implements ArtifactStore.
func (s *LocalArtifactStore) WriteTestOrder(path m.Path, order m.TestOrder) error {
	if err := testOrderArtifact.WriteFile(string(path), order); err != nil {
		return fmt.Errorf("failed to write test order: %w", err)
	}

	return nil
}

// ReadTestOrder implements ArtifactStore.
func (s *LocalArtifactStore) ReadTestOrder(path m.Path) (m.TestOrder, error) {
	return testOrderArtifact.ReadFile(string(path))
}

// Remove implements ArtifactStore.
func (s *LocalArtifactStore) Remove(path m.Path) error {
	if err := os.Remove(string(path)); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("artifact %s does not exist: %w", path, err)
		}

		return fmt.Errorf("failed to remove artifact %s: %w", path, err)
	}

	return nil
}
