package cmd

import (
	"github.com/spf13/cobra"
)

// countCmd represents the count command.
var countCmd = newCountCmd()

func newCountCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "count <class>",
		Short: "Show the number of mutation points of a class",
		Long: `Ask the worker how many mutation points <class> has under the configured
mutation categories and excluded methods. No tests are run.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			counter, err := newCounter()
			if err != nil {
				return err
			}

			count, err := counter.CountMutationPoints(cmd.Context(), args[0], runConfiguration())
			if err != nil {
				return err
			}

			ui.DisplayMutationCount(cmd.Context(), args[0], count)

			return nil
		},
	}
}

func init() {
	rootCmd.AddCommand(countCmd)
}
