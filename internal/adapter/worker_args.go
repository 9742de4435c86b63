package adapter

import (
	"strconv"
	"strings"

	m "gooze.dev/pkg/jumble/internal/model"
)

// WorkerArgs builds the argument vector that starts a worker at mutation
// point index:
//
//	-s <index> <class> <testOrder> [<cache>] [-x <methods>] [-k] [-r] [-i] [-v]
//
// An empty cachePath leaves the cache argument out.
func WorkerArgs(index int, className string, testOrderPath, cachePath m.Path, cfg m.RunConfiguration) []string {
	args := []string{"-s", strconv.Itoa(index), className, string(testOrderPath)}

	if cachePath != "" {
		args = append(args, string(cachePath))
	}

	args = append(args, mutationArgs(cfg)...)

	if cfg.Verbose {
		args = append(args, "-v")
	}

	return args
}

// mutationArgs returns the excluded-method and category flags shared by
// worker launches and count queries.
func mutationArgs(cfg m.RunConfiguration) []string {
	var args []string

	if len(cfg.ExcludedMethods) > 0 {
		args = append(args, "-x", strings.Join(cfg.ExcludedMethods.Sorted(), ","))
	}

	if cfg.InlineConstants {
		args = append(args, "-k")
	}

	if cfg.ReturnValues {
		args = append(args, "-r")
	}

	if cfg.Increments {
		args = append(args, "-i")
	}

	return args
}
