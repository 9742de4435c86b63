// Package domain contains the jumble coordination logic.
package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	m "gooze.dev/pkg/jumble/internal/model"
)

// SurvivedPrefix starts every record of a mutant that no test detected.
const SurvivedPrefix = "PASS:"

// TimeoutRecord is the record stored for mutants that ran out of time. The
// worker never prints it.
const TimeoutRecord = "TIMEOUT"

// ErrMalformedRecord is returned when a survived record lacks its fields.
var ErrMalformedRecord = errors.New("malformed outcome record")

// Observation is the cache data carried by a survived record.
type Observation struct {
	ClassName     string
	MethodName    string
	MutationPoint int
	TestName      string
}

// ParseRecord classifies one worker line for mutation point.
func ParseRecord(point int, line string) m.MutationOutcome {
	if strings.HasPrefix(line, SurvivedPrefix+" ") {
		return m.MutationOutcome{Point: point, Status: m.Survived, Record: line}
	}

	return m.MutationOutcome{Point: point, Status: m.Killed, TestName: killingTest(line), Record: line}
}

// TimeoutOutcome is the locally synthesized outcome of a timed out mutant.
func TimeoutOutcome(point int) m.MutationOutcome {
	return m.MutationOutcome{Point: point, Status: m.Timeout, Record: TimeoutRecord}
}

// killingTest returns the last colon separated field of a record.
func killingTest(line string) string {
	line = strings.TrimSpace(line)
	if i := strings.LastIndex(line, ":"); i >= 0 {
		return strings.TrimSpace(line[i+1:])
	}

	return line
}

// ParseObservation extracts class:method:point:test from a survived record.
func ParseObservation(record string) (Observation, error) {
	body, ok := strings.CutPrefix(record, SurvivedPrefix+" ")
	if !ok {
		return Observation{}, fmt.Errorf("%w: missing %q prefix", ErrMalformedRecord, SurvivedPrefix)
	}

	fields := strings.SplitN(body, ":", 4)
	if len(fields) != 4 {
		return Observation{}, fmt.Errorf("%w: want 4 fields, got %d", ErrMalformedRecord, len(fields))
	}

	point, err := strconv.Atoi(fields[2])
	if err != nil {
		return Observation{}, fmt.Errorf("%w: mutation point %q: %w", ErrMalformedRecord, fields[2], err)
	}

	return Observation{
		ClassName:     fields[0],
		MethodName:    fields[1],
		MutationPoint: point,
		TestName:      fields[3],
	}, nil
}
