// Package cmd provides the root command and CLI setup for jumble.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"gooze.dev/pkg/jumble/internal/adapter"
	"gooze.dev/pkg/jumble/internal/controller"
	"gooze.dev/pkg/jumble/internal/domain"
	m "gooze.dev/pkg/jumble/internal/model"
)

var cacheStore adapter.CacheStore
var ui controller.UI

// newCoordinator and newCounter are replaced in tests.
var newCoordinator = defaultCoordinator
var newCounter = defaultCounter

// verboseFlag enables debug logging and relays worker output to the log.
var verboseFlag bool

// logFileFlag overrides the log file location.
var logFileFlag string

func init() {
	configureRootFlags(rootCmd)

	// Initialize shared dependencies.
	ui = controller.NewUI(rootCmd, controller.IsTTY(os.Stdout))
	cacheStore = adapter.NewLocalCacheStore()
}

const rootLongDescription = `Jumble is a mutation tester for compiled classes. It checks that the unit
tests of a class fail when the class is changed in small ways.

Every mutation runs in an external worker process. When a mutation makes
the worker hang, the worker is killed and a fresh one resumes at the next
mutation point.`

const runLongDescription = `Mutate <class> and run <testClass>... against every mutation.

The unmutated tests must pass first. Mutation points whose tests survive
are stored in the cache so later runs try the most useful tests first.`

// rootCmd represents the base command when called without any subcommands.
var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "jumble",
		Short: "Mutation testing coordinator",
		Long:  rootLongDescription,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			configureLogger(logFileFlag, viper.GetBool(logVerboseKey))
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
}

func configureRootFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().BoolVarP(&verboseFlag, verboseFlagName, "v", viper.GetBool(logVerboseKey), "log at debug level and relay worker output")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(verboseFlagName), logVerboseKey)

	cmd.PersistentFlags().StringVar(&logFileFlag, logFileFlagName, "", "log file (default from log.filename)")

	cmd.PersistentFlags().String(workerFlagName, viper.GetString(workerCommandKey), "worker executable")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(workerFlagName), workerCommandKey)

	cmd.PersistentFlags().StringArray(workerArgFlagName, viper.GetStringSlice(workerArgsKey), "argument passed to the worker before its own arguments (can be repeated)")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(workerArgFlagName), workerArgsKey)

	cmd.PersistentFlags().String(cacheFileFlagName, viper.GetString(cachePathKey), "persistent cache file")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(cacheFileFlagName), cachePathKey)
}

// bindFlagToConfig wires a Cobra flag to a Viper key so config/env values feed the flag.
func bindFlagToConfig(flag *pflag.Flag, key string) {
	if flag == nil {
		cobra.CheckErr(fmt.Errorf("flag for config key %q not found", key))
		return
	}

	cobra.CheckErr(viper.BindPFlag(key, flag))
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
// Interrupting the process cancels the run and kills the current worker.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		stop()
		os.Exit(1)
	}
}

// workerCommand builds the worker invocation from configuration.
func workerCommand() (adapter.WorkerCommand, error) {
	path := strings.TrimSpace(viper.GetString(workerCommandKey))
	if path == "" {
		return adapter.WorkerCommand{}, fmt.Errorf("no worker configured: set --%s or %s", workerFlagName, workerCommandKey)
	}

	return adapter.WorkerCommand{
		Path: path,
		Args: viper.GetStringSlice(workerArgsKey),
	}, nil
}

func defaultCoordinator(opts ...domain.CoordinatorOption) (domain.Coordinator, error) {
	command, err := workerCommand()
	if err != nil {
		return nil, err
	}

	queries := adapter.NewWorkerQueryAdapter(command, viper.GetDuration(workerQueryTimeoutKey))
	channels := func(cfg m.RunConfiguration) adapter.WorkerChannel {
		return adapter.NewProcessWorkerChannel(command, cfg.Verbose)
	}

	opts = append([]domain.CoordinatorOption{
		domain.WithCachePath(m.Path(viper.GetString(cachePathKey))),
	}, opts...)

	return domain.NewCoordinator(
		queries,
		queries,
		cacheStore,
		adapter.NewLocalArtifactStore(viper.GetString(artifactDirKey)),
		channels,
		opts...,
	), nil
}

func defaultCounter() (adapter.MutationCounter, error) {
	command, err := workerCommand()
	if err != nil {
		return nil, err
	}

	return adapter.NewWorkerQueryAdapter(command, viper.GetDuration(workerQueryTimeoutKey)), nil
}

// runConfiguration maps the configured keys onto a RunConfiguration.
func runConfiguration() m.RunConfiguration {
	return m.RunConfiguration{
		InlineConstants: viper.GetBool(inlineConstantsKey),
		ReturnValues:    viper.GetBool(returnValuesKey),
		Increments:      viper.GetBool(incrementsKey),
		OrderByRuntime:  viper.GetBool(orderedKey),
		Verbose:         viper.GetBool(logVerboseKey),
		LoadCache:       viper.GetBool(cacheLoadKey),
		SaveCache:       viper.GetBool(cacheSaveKey),
		UseCache:        viper.GetBool(cacheEnabledKey),
		ExcludedMethods: m.NewMethodSet(splitMethods(viper.GetStringSlice(excludeConfigKey))...),
	}
}

// splitMethods accepts both repeated values and comma separated lists.
func splitMethods(values []string) []string {
	var names []string
	for _, value := range values {
		names = append(names, strings.Split(value, ",")...)
	}

	return names
}
