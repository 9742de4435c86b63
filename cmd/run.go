package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"gooze.dev/pkg/jumble/internal/domain"
	m "gooze.dev/pkg/jumble/internal/model"
)

// runCmd represents the run command.
var runCmd = newRunCmd()

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <class> <testClass>...",
		Short: "Run mutation testing for one class",
		Long:  runLongDescription,
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			coordinator, err := newCoordinator(domain.WithProgress(func(outcome m.MutationOutcome, total int) {
				ui.DisplayProgress(ctx, outcome, total)
			}))
			if err != nil {
				return err
			}

			outcome, err := coordinator.Run(ctx, domain.RunArgs{
				ClassName:      args[0],
				TestClassNames: args[1:],
				Config:         runConfiguration(),
			})
			if err != nil {
				return fmt.Errorf("mutating %s: %w", args[0], err)
			}

			return ui.DisplayOutcome(ctx, outcome)
		},
	}

	configureRunFlags(cmd)

	return cmd
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func configureRunFlags(cmd *cobra.Command) {
	cmd.Flags().Bool(inlineConstantsFlagName, viper.GetBool(inlineConstantsKey), "mutate inline constants")
	bindFlagToConfig(cmd.Flags().Lookup(inlineConstantsFlagName), inlineConstantsKey)

	cmd.Flags().Bool(returnValuesFlagName, viper.GetBool(returnValuesKey), "mutate return values")
	bindFlagToConfig(cmd.Flags().Lookup(returnValuesFlagName), returnValuesKey)

	cmd.Flags().Bool(incrementsFlagName, viper.GetBool(incrementsKey), "mutate increments")
	bindFlagToConfig(cmd.Flags().Lookup(incrementsFlagName), incrementsKey)

	cmd.Flags().Bool(orderedFlagName, viper.GetBool(orderedKey), "order tests by baseline runtime")
	bindFlagToConfig(cmd.Flags().Lookup(orderedFlagName), orderedKey)

	cmd.Flags().Bool(useCacheFlagName, viper.GetBool(cacheEnabledKey), "use the mutation cache")
	bindFlagToConfig(cmd.Flags().Lookup(useCacheFlagName), cacheEnabledKey)

	cmd.Flags().Bool(loadCacheFlagName, viper.GetBool(cacheLoadKey), "load the persisted cache before the run")
	bindFlagToConfig(cmd.Flags().Lookup(loadCacheFlagName), cacheLoadKey)

	cmd.Flags().Bool(saveCacheFlagName, viper.GetBool(cacheSaveKey), "persist the cache after the run")
	bindFlagToConfig(cmd.Flags().Lookup(saveCacheFlagName), cacheSaveKey)

	cmd.Flags().StringArrayP(excludeFlagName, "x", viper.GetStringSlice(excludeConfigKey), "exclude methods from mutation, comma separated (can be repeated)")
	bindFlagToConfig(cmd.Flags().Lookup(excludeFlagName), excludeConfigKey)
}
