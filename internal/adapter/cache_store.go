package adapter

import (
	"errors"
	"log/slog"
	"os"

	m "gooze.dev/pkg/jumble/internal/model"
	"gooze.dev/pkg/jumble/pkg"
)

// DefaultCacheFileName is the well-known location of the persistent cache.
const DefaultCacheFileName = "jumble-cache.dat"

const (
	cacheArtifactKind    = "jumble-cache"
	cacheArtifactVersion = 1
)

var cacheArtifact = pkg.NewArtifact[[]m.CacheRecord](cacheArtifactKind, cacheArtifactVersion)

// CacheStore persists mutation caches.
type CacheStore interface {
	// Load reads the cache at path. Missing or unreadable files yield an
	// empty cache; the cache is an optimization and never fails a run.
	Load(path m.Path) *m.MutationCache
	// Save writes the cache to path, replacing any existing file.
	Save(path m.Path, cache *m.MutationCache) error
}

// LocalCacheStore stores caches as versioned artifact files.
type LocalCacheStore struct{}

// NewLocalCacheStore constructs a LocalCacheStore.
func NewLocalCacheStore() *LocalCacheStore {
	return &LocalCacheStore{}
}

// Load implements CacheStore.
func (s *LocalCacheStore) Load(path m.Path) *m.MutationCache {
	records, err := cacheArtifact.ReadFile(string(path))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			slog.Debug("No cache file, starting empty", "path", path)
		} else {
			slog.Warn("Ignoring unreadable cache file", "path", path, "error", err)
		}

		return m.NewMutationCache()
	}

	cache := m.MutationCacheFromRecords(records)
	slog.Debug("Loaded cache", "path", path, "keys", cache.Len())

	return cache
}

// Save implements CacheStore.
func (s *LocalCacheStore) Save(path m.Path, cache *m.MutationCache) error {
	if cache == nil {
		cache = m.NewMutationCache()
	}

	return cacheArtifact.WriteFile(string(path), cache.Records())
}
