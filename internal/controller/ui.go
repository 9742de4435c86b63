// Package controller provides output adapters for displaying jumble results.
package controller

import (
	"context"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	m "gooze.dev/pkg/jumble/internal/model"
)

// UI defines how run progress and results are presented.
type UI interface {
	DisplayMutationCount(ctx context.Context, className string, count int)
	DisplayProgress(ctx context.Context, outcome m.MutationOutcome, total int)
	DisplayOutcome(ctx context.Context, outcome m.JumbleOutcome) error
	DisplayCache(ctx context.Context, cache *m.MutationCache) error
}

// NewUI returns the UI for cmd's output. Styling is only applied on terminals.
func NewUI(cmd *cobra.Command, tty bool) UI {
	return NewSimpleUI(cmd, tty)
}

// IsTTY reports whether f is attached to a terminal.
func IsTTY(f *os.File) bool {
	if f == nil {
		return false
	}

	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
