package domain

import "time"

// ComputeTimeout returns the per-mutation budget in milliseconds for a suite
// whose unmutated run took runtimeMs: ten times the runtime plus two seconds
// of process startup slack.
func ComputeTimeout(runtimeMs int64) int64 {
	return runtimeMs*10 + 2000
}

// TimeoutDuration is ComputeTimeout as a time.Duration.
func TimeoutDuration(runtimeMs int64) time.Duration {
	return time.Duration(ComputeTimeout(runtimeMs)) * time.Millisecond
}
