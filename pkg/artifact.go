// Package pkg provides utilities shared by jumble and the worker programs it drives.
package pkg

import (
	"encoding/gob"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
)

// ErrArtifactFormat is returned when an artifact does not match the expected
// kind or version, or cannot be decoded at all.
var ErrArtifactFormat = errors.New("artifact format mismatch")

// Artifact describes a versioned file format exchanged with the worker.
type Artifact[T any] struct {
	Kind    string
	Version int
}

type envelope[T any] struct {
	Kind    string
	Version int
	Payload T
}

// NewArtifact creates a codec for payloads of type T.
func NewArtifact[T any](kind string, version int) Artifact[T] {
	return Artifact[T]{Kind: kind, Version: version}
}

// Encode writes the payload wrapped in a kind/version envelope.
func (a Artifact[T]) Encode(w io.Writer, payload T) error {
	env := envelope[T]{Kind: a.Kind, Version: a.Version, Payload: payload}
	if err := gob.NewEncoder(w).Encode(env); err != nil {
		return fmt.Errorf("failed to encode %s artifact: %w", a.Kind, err)
	}

	return nil
}

// Decode reads an envelope and returns its payload.
func (a Artifact[T]) Decode(r io.Reader) (T, error) {
	var (
		zero T
		env  envelope[T]
	)

	if err := gob.NewDecoder(r).Decode(&env); err != nil {
		return zero, fmt.Errorf("%w: decode %s: %w", ErrArtifactFormat, a.Kind, err)
	}

	if env.Kind != a.Kind || env.Version != a.Version {
		return zero, fmt.Errorf("%w: got %s/v%d, want %s/v%d", ErrArtifactFormat, env.Kind, env.Version, a.Kind, a.Version)
	}

	return env.Payload, nil
}

// WriteFile encodes the payload to path, replacing any existing file.
func (a Artifact[T]) WriteFile(path string, payload T) error {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
	if err != nil {
		slog.Error("failed to create artifact", "path", path, "kind", a.Kind, "error", err)
		return fmt.Errorf("failed to create artifact: %w", err)
	}

	if err := a.Encode(file, payload); err != nil {
		_ = file.Close()
		slog.Error("failed to write artifact", "path", path, "kind", a.Kind, "error", err)

		return err
	}

	if err := file.Close(); err != nil {
		slog.Error("failed to close artifact", "path", path, "error", err)
		return fmt.Errorf("failed to close artifact: %w", err)
	}

	slog.Debug("wrote artifact", "path", path, "kind", a.Kind, "version", a.Version)

	return nil
}

// ReadFile decodes the payload stored at path.
func (a Artifact[T]) ReadFile(path string) (T, error) {
	var zero T

	file, err := os.Open(path)
	if err != nil {
		return zero, fmt.Errorf("failed to open artifact: %w", err)
	}

	defer func() {
		if err := file.Close(); err != nil {
			slog.Error("failed to close artifact", "path", path, "error", err)
		}
	}()

	return a.Decode(file)
}
