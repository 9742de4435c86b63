// Package adapter contains the process, filesystem and query adapters used by
// the jumble coordinator.
package adapter

import (
	"bufio"
	"context"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"sync"
)

// ErrReaderDrained is returned by TakeBlocking once the end-of-stream marker
// has already been delivered.
var ErrReaderDrained = errors.New("line reader drained")

const maxLineSize = 1024 * 1024

// LineReader drains one stream into an unbounded queue of complete lines.
// A single producer (Run) and a single consumer may use it concurrently.
type LineReader struct {
	name   string
	source io.Reader

	mu        sync.Mutex
	lines     []string
	closed    bool
	delivered bool

	ready chan struct{}
}

// NewLineReader attaches a reader to source. Nothing is read until Run is called.
func NewLineReader(name string, source io.Reader) *LineReader {
	return &LineReader{
		name:   name,
		source: source,
		ready:  make(chan struct{}, 1),
	}
}

// Run reads lines until the stream ends. It is meant to be started on its own
// goroutine. Closing the underlying pipe counts as end of stream.
func (r *LineReader) Run() error {
	scanner := bufio.NewScanner(r.source)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	for scanner.Scan() {
		r.push(scanner.Text())
	}

	err := scanner.Err()
	r.close()

	if err != nil && !errors.Is(err, fs.ErrClosed) && !errors.Is(err, os.ErrClosed) {
		slog.Debug("line reader stopped with error", "stream", r.name, "error", err)
		return err
	}

	slog.Debug("line reader reached end of stream", "stream", r.name)

	return nil
}

func (r *LineReader) push(line string) {
	r.mu.Lock()
	r.lines = append(r.lines, line)
	r.mu.Unlock()
	r.signal()
}

func (r *LineReader) close() {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()
	r.signal()
}

func (r *LineReader) signal() {
	select {
	case r.ready <- struct{}{}:
	default:
	}
}

// Ready returns a channel that receives a value whenever a line is queued or
// the stream ends. It may fire spuriously; callers re-check with TakeIfReady.
func (r *LineReader) Ready() <-chan struct{} {
	return r.ready
}

// TakeIfReady returns the next queued line without blocking.
func (r *LineReader) TakeIfReady() (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.lines) == 0 {
		return "", false
	}

	line := r.lines[0]
	r.lines[0] = ""
	r.lines = r.lines[1:]

	return line, true
}

// Closed reports whether the stream has ended and every line was consumed.
func (r *LineReader) Closed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.closed && len(r.lines) == 0
}

// TakeBlocking waits for the next line. After the last line it returns io.EOF
// exactly once, then ErrReaderDrained.
func (r *LineReader) TakeBlocking(ctx context.Context) (string, error) {
	for {
		if line, ok := r.TakeIfReady(); ok {
			return line, nil
		}

		r.mu.Lock()
		if r.closed && len(r.lines) == 0 {
			defer r.mu.Unlock()

			if r.delivered {
				return "", ErrReaderDrained
			}

			r.delivered = true

			return "", io.EOF
		}
		r.mu.Unlock()

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-r.ready:
		}
	}
}
