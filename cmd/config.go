package cmd

import (
	"errors"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"

	"gooze.dev/pkg/jumble/internal/adapter"
	m "gooze.dev/pkg/jumble/internal/model"
)

const (
	configVersionKey     = "version"
	currentConfigVersion = 1

	configBaseName   = "jumble"
	configFileName   = configBaseName + ".yaml"
	configFolderPath = "."

	verboseFlagName         = "verbose"
	logFileFlagName         = "log-file"
	workerFlagName          = "worker"
	workerArgFlagName       = "worker-arg"
	inlineConstantsFlagName = "inline-constants"
	returnValuesFlagName    = "return-values"
	incrementsFlagName      = "increments"
	orderedFlagName         = "ordered"
	loadCacheFlagName       = "load-cache"
	saveCacheFlagName       = "save-cache"
	useCacheFlagName        = "cache"
	cacheFileFlagName       = "cache-file"
	excludeFlagName         = "exclude"

	inlineConstantsKey    = "mutate.inline_constants"
	returnValuesKey       = "mutate.return_values"
	incrementsKey         = "mutate.increments"
	orderedKey            = "tests.ordered"
	cacheLoadKey          = "cache.load"
	cacheSaveKey          = "cache.save"
	cacheEnabledKey       = "cache.enabled"
	cachePathKey          = "cache.path"
	artifactDirKey        = "cache.artifact_dir"
	workerCommandKey      = "worker.command"
	workerArgsKey         = "worker.args"
	workerQueryTimeoutKey = "worker.query_timeout"
	excludeConfigKey      = "exclude.methods"

	defaultArtifactDir = "."

	envPrefix = "JUMBLE"

	logFilenameKey   = "log.filename"
	logLevelKey      = "log.level"
	logVerboseKey    = "log.verbose"
	logMaxSizeKey    = "log.max_size"
	logMaxBackupsKey = "log.max_backups"
	logMaxAgeKey     = "log.max_age"
	logCompressKey   = "log.compress"

	defaultLogFilename   = ".jumble.log"
	defaultLogLevel      = int(slog.LevelInfo)
	defaultLogVerbose    = false
	defaultLogMaxSize    = 10
	defaultLogMaxBackups = 3
	defaultLogMaxAge     = 28
	defaultLogCompress   = true
)

var globalLogger *slog.Logger

func init() {
	viper.SetConfigName(configBaseName)
	viper.SetConfigType("yaml")
	viper.AddConfigPath(configFolderPath)
	viper.SetConfigFile(filepath.Join(configFolderPath, configFileName))
	viper.AutomaticEnv()
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))

	viper.SetDefault(configVersionKey, currentConfigVersion)

	defaults := m.DefaultRunConfiguration()
	viper.SetDefault(inlineConstantsKey, defaults.InlineConstants)
	viper.SetDefault(returnValuesKey, defaults.ReturnValues)
	viper.SetDefault(incrementsKey, defaults.Increments)
	viper.SetDefault(orderedKey, defaults.OrderByRuntime)
	viper.SetDefault(cacheLoadKey, defaults.LoadCache)
	viper.SetDefault(cacheSaveKey, defaults.SaveCache)
	viper.SetDefault(cacheEnabledKey, defaults.UseCache)
	viper.SetDefault(cachePathKey, adapter.DefaultCacheFileName)
	viper.SetDefault(artifactDirKey, defaultArtifactDir)
	viper.SetDefault(workerCommandKey, "")
	viper.SetDefault(workerArgsKey, []string{})
	viper.SetDefault(workerQueryTimeoutKey, adapter.DefaultQueryTimeout.String())
	viper.SetDefault(excludeConfigKey, []string{})

	// Logging defaults (used by config/env and as fallbacks for flags).
	viper.SetDefault(logFilenameKey, defaultLogFilename)
	viper.SetDefault(logLevelKey, defaultLogLevel)
	viper.SetDefault(logVerboseKey, defaultLogVerbose)
	viper.SetDefault(logMaxSizeKey, defaultLogMaxSize)
	viper.SetDefault(logMaxBackupsKey, defaultLogMaxBackups)
	viper.SetDefault(logMaxAgeKey, defaultLogMaxAge)
	viper.SetDefault(logCompressKey, defaultLogCompress)

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return
		}

		return
	}
}

func parseSlogLevel(value string, defaultLevel slog.Level) slog.Level {
	level := strings.ToLower(strings.TrimSpace(value))
	if level == "" {
		return defaultLevel
	}

	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}

	// Allow numeric slog levels as well (e.g. -4 for debug).
	if n, err := strconv.Atoi(level); err == nil {
		return slog.Level(n)
	}

	return defaultLevel
}

// configureLogger configures the global slog logger.
//
// By default it logs at Info; if verbose is true it logs at Debug.
func configureLogger(logPath string, verbose bool) {
	if strings.TrimSpace(logPath) == "" {
		logPath = viper.GetString(logFilenameKey)
	}

	if strings.TrimSpace(logPath) == "" {
		logPath = defaultLogFilename
	}

	var logLevel slog.Level
	if verbose {
		logLevel = slog.LevelDebug
	} else {
		logLevel = parseSlogLevel(viper.GetString(logLevelKey), slog.LevelInfo)
	}

	logWriter := &lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    viper.GetInt(logMaxSizeKey),
		MaxBackups: viper.GetInt(logMaxBackupsKey),
		MaxAge:     viper.GetInt(logMaxAgeKey),
		Compress:   viper.GetBool(logCompressKey),
	}

	handler := slog.NewTextHandler(logWriter, &slog.HandlerOptions{
		AddSource: true,
		Level:     logLevel,
	})

	globalLogger = slog.New(handler)
	slog.SetDefault(globalLogger)
}
