package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	m "gooze.dev/pkg/jumble/internal/model"
)

// cacheCmd represents the cache command.
var cacheCmd = newCacheCmd()

func newCacheCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cache",
		Short: "Show the persisted mutation cache",
		Long:  "List every mutation point stored in the cache file with the tests recorded for it.",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			cache := cacheStore.Load(m.Path(viper.GetString(cachePathKey)))
			return ui.DisplayCache(cmd.Context(), cache)
		},
	}
}

func init() {
	rootCmd.AddCommand(cacheCmd)
}
