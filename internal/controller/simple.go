package controller

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"gooze.dev/pkg/jumble/internal/domain"
	m "gooze.dev/pkg/jumble/internal/model"
)

var (
	killedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	survivedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	timeoutStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	headerStyle   = lipgloss.NewStyle().Bold(true)
)

// SimpleUI prints to the cobra command's output.
type SimpleUI struct {
	cmd    *cobra.Command
	styled bool
}

// NewSimpleUI creates a new SimpleUI.
func NewSimpleUI(cmd *cobra.Command, styled bool) *SimpleUI {
	return &SimpleUI{cmd: cmd, styled: styled}
}

// DisplayMutationCount prints the number of mutation points of a class.
func (s *SimpleUI) DisplayMutationCount(ctx context.Context, className string, count int) {
	if err := ctx.Err(); err != nil {
		return
	}

	if count == m.NotApplicableCount {
		s.printf("%s: not applicable\n", className)
		return
	}

	s.printf("%s: %d mutation points\n", className, count)
}

// DisplayProgress prints one character per finished mutation, as a
// progress line: '.' killed, 'M' survived, 'T' timed out.
func (s *SimpleUI) DisplayProgress(ctx context.Context, outcome m.MutationOutcome, total int) {
	if err := ctx.Err(); err != nil {
		return
	}

	s.printf("%s", s.style(outcome.Status, progressMark(outcome.Status)))

	if outcome.Point == total-1 {
		s.printf("\n")
	}
}

func progressMark(status m.OutcomeStatus) string {
	switch status {
	case m.Killed:
		return "."
	case m.Survived:
		return "M"
	case m.Timeout:
		return "T"
	default:
		return "?"
	}
}

// DisplayOutcome prints the final result of a run.
func (s *SimpleUI) DisplayOutcome(ctx context.Context, outcome m.JumbleOutcome) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	switch result := outcome.(type) {
	case m.NotApplicable:
		s.printf("%s is an interface or has no mutation points\n", result.Class)
	case m.InitialTestsFailed:
		s.displayInitialTestsFailed(result)
	case m.Completed:
		s.displayCompleted(result)
	default:
		return fmt.Errorf("unknown outcome type %T", outcome)
	}

	return nil
}

func (s *SimpleUI) displayInitialTestsFailed(result m.InitialTestsFailed) {
	s.printf("Mutating %s\n", result.Class)
	s.printf("Tests: %s\n", strings.Join(result.TestClassNames, " "))

	if result.Baseline == nil {
		s.printf("Score: 0%% (test class not found)\n")
		return
	}

	s.printf("Score: 0%% (initial tests did not pass)\n")

	for _, failure := range result.Baseline.Failures {
		s.printf("  %s: %s\n", failure.Test, failure.Message)
	}
}

func (s *SimpleUI) displayCompleted(result m.Completed) {
	s.printf("Mutating %s\n", s.header(result.Class))
	s.printf("Tests: %s\n", strings.Join(result.TestClassNames, " "))
	s.printf("Mutation points = %d, unit test time limit %.2fs\n", len(result.Outcomes), float64(result.TimeoutMs)/1000)

	var tableBuffer bytes.Buffer

	table := tablewriter.NewWriter(&tableBuffer)
	table.SetHeader([]string{"Point", "Status", "Detail"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetAutoWrapText(false)
	table.SetColumnAlignment([]int{tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_LEFT, tablewriter.ALIGN_LEFT})

	for _, outcome := range result.Outcomes {
		if outcome.Status == m.Killed {
			continue
		}

		table.Append([]string{
			fmt.Sprintf("%d", outcome.Point),
			s.style(outcome.Status, outcome.Status.String()),
			outcome.Record,
		})
	}

	tally := domain.TallyOutcomes(result.Outcomes)
	table.SetFooter([]string{
		fmt.Sprintf("Killed %d", tally.Killed),
		fmt.Sprintf("Survived %d", tally.Survived),
		fmt.Sprintf("Timeout %d", tally.Timeout),
	})
	table.Render()

	s.printf("\n%s", tableBuffer.String())
	s.printf("Score: %.0f%%\n", domain.MutationScore(result.Outcomes)*100)
}

// DisplayCache prints every cache entry.
func (s *SimpleUI) DisplayCache(ctx context.Context, cache *m.MutationCache) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if cache == nil || cache.Len() == 0 {
		s.printf("Cache is empty\n")
		return nil
	}

	var tableBuffer bytes.Buffer

	table := tablewriter.NewWriter(&tableBuffer)
	table.SetHeader([]string{"Class", "Method", "Point", "Tests"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetAutoWrapText(false)

	for _, key := range cache.Keys() {
		table.Append([]string{
			key.ClassName,
			key.MethodName,
			fmt.Sprintf("%d", key.MutationPoint),
			strings.Join(cache.Tests(key), ", "),
		})
	}

	table.SetFooter([]string{"", "", "Total", fmt.Sprintf("%d", cache.Len())})
	table.Render()

	s.printf("\n%s", tableBuffer.String())

	return nil
}

func (s *SimpleUI) style(status m.OutcomeStatus, text string) string {
	if !s.styled {
		return text
	}

	switch status {
	case m.Killed:
		return killedStyle.Render(text)
	case m.Survived:
		return survivedStyle.Render(text)
	case m.Timeout:
		return timeoutStyle.Render(text)
	default:
		return text
	}
}

func (s *SimpleUI) header(text string) string {
	if !s.styled {
		return text
	}

	return headerStyle.Render(text)
}

func (s *SimpleUI) printf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(s.cmd.OutOrStdout(), format, args...)
}
