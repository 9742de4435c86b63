package model

import "sort"

// CacheKey identifies one mutation point of one method.
type CacheKey struct {
	ClassName     string
	MethodName    string
	MutationPoint int
}

// CacheRecord is the serialized form of one cache entry.
type CacheRecord struct {
	Key   CacheKey
	Tests []string
}

// MutationCache maps a mutation point to the set of test names observed for
// it. It is carried across runs and handed to workers as a snapshot.
type MutationCache struct {
	entries map[CacheKey]map[string]struct{}
}

// NewMutationCache returns an empty cache.
func NewMutationCache() *MutationCache {
	return &MutationCache{entries: map[CacheKey]map[string]struct{}{}}
}

// RecordObservation adds testName to the set stored under the key, creating
// the key if needed. Repeated calls are no-ops.
func (c *MutationCache) RecordObservation(className, methodName string, mutationPoint int, testName string) {
	key := CacheKey{ClassName: className, MethodName: methodName, MutationPoint: mutationPoint}

	tests, ok := c.entries[key]
	if !ok {
		tests = map[string]struct{}{}
		c.entries[key] = tests
	}

	tests[testName] = struct{}{}
}

// Tests returns the sorted test names recorded under key.
func (c *MutationCache) Tests(key CacheKey) []string {
	tests := c.entries[key]

	names := make([]string, 0, len(tests))
	for name := range tests {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// Len returns the number of keys.
func (c *MutationCache) Len() int {
	return len(c.entries)
}

// Keys returns every key ordered by class, method and mutation point.
func (c *MutationCache) Keys() []CacheKey {
	keys := make([]CacheKey, 0, len(c.entries))
	for key := range c.entries {
		keys = append(keys, key)
	}

	sort.Slice(keys, func(i, j int) bool {
		a, b := keys[i], keys[j]
		if a.ClassName != b.ClassName {
			return a.ClassName < b.ClassName
		}

		if a.MethodName != b.MethodName {
			return a.MethodName < b.MethodName
		}

		return a.MutationPoint < b.MutationPoint
	})

	return keys
}

// Records flattens the cache into a deterministic, serializable slice.
func (c *MutationCache) Records() []CacheRecord {
	keys := c.Keys()

	records := make([]CacheRecord, 0, len(keys))
	for _, key := range keys {
		records = append(records, CacheRecord{Key: key, Tests: c.Tests(key)})
	}

	return records
}

// MutationCacheFromRecords rebuilds a cache from its serialized form.
func MutationCacheFromRecords(records []CacheRecord) *MutationCache {
	cache := NewMutationCache()
	for _, record := range records {
		if len(record.Tests) == 0 {
			cache.entries[record.Key] = map[string]struct{}{}
			continue
		}

		for _, test := range record.Tests {
			cache.RecordObservation(record.Key.ClassName, record.Key.MethodName, record.Key.MutationPoint, test)
		}
	}

	return cache
}
