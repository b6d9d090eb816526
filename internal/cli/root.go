package cli

import (
	"errors"
	"io"
	"os"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// version is set at build time via ldflags.
var version = "dev"

const envPrefix = "DEBMATRIX"

// logTimeFormat is the timestamp prefix of every emitted log line, on
// the terminal and in the log file alike.
const logTimeFormat = "2006-01-02 15:04:05"

type RootConfig struct {
	ConfigFile string
	LogLevel   string
}

func Execute() {
	root := newRootCommand()
	if err := root.Execute(); err != nil {
		os.Exit(exitCodeForError(err))
	}
}

func newRootCommand() *cobra.Command {
	cfg := RootConfig{}
	cmd := &cobra.Command{
		Use:     "debmatrix",
		Short:   "Build, sign, and publish deb packages across a distribution matrix",
		Version: version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := initConfig(cfg.ConfigFile); err != nil {
				return err
			}
			setupLogging(viper.GetString("log_level"), viper.GetString("log_file"))
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			printConfigSummary(cmd.OutOrStdout())
			return cmd.Help()
		},
	}
	cmd.PersistentFlags().StringVar(&cfg.ConfigFile, "config", "", "Config file path")
	cmd.PersistentFlags().StringVar(&cfg.LogLevel, "log-level", "info", "Log level")
	_ = viper.BindPFlag("log_level", cmd.PersistentFlags().Lookup("log-level"))

	cmd.AddCommand(newUpdateCommand())
	cmd.AddCommand(newDownloadCommand())
	cmd.AddCommand(newGitCommand())
	cmd.AddCommand(newBuildCommand())
	cmd.AddCommand(newSyncCommand())
	return cmd
}

func initConfig(configFile string) error {
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("work_root", "work")
	viper.SetDefault("results_root", "results")
	viper.SetDefault("base_image_root", "base-images")
	viper.SetDefault("apt_cache_root", "apt-cache")
	viper.SetDefault("architectures", []string{"amd64", "i386"})
	viper.SetDefault("interactive_timeout", "5m")

	if configFile != "" {
		viper.SetConfigFile(configFile)
		if err := viper.ReadInConfig(); err != nil {
			return errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg("failed to read config file").
				WithCause(err)
		}
		return nil
	}

	viper.SetConfigName("debmatrix")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("$HOME/.config/debmatrix")
	if err := viper.ReadInConfig(); err != nil {
		return nil
	}
	return nil
}

func setupLogging(level string, logFile string) {
	setupLoggingTo(os.Stdout, level, logFile)
}

func setupLoggingTo(console io.Writer, level string, logFile string) {
	writers := []io.Writer{
		zerolog.ConsoleWriter{Out: console, TimeFormat: logTimeFormat, NoColor: true},
	}
	var fileErr error
	if logFile != "" {
		file, err := os.OpenFile(logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			fileErr = err
		} else {
			writers = append(writers, zerolog.ConsoleWriter{Out: file, TimeFormat: logTimeFormat, NoColor: true})
		}
	}
	log.Logger = log.Output(zerolog.MultiLevelWriter(writers...))
	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
	if fileErr != nil {
		log.Warn().Err(fileErr).Str("path", logFile).Msg("log file could not be opened, continuing with console logging only")
	}
}

func exitCodeForError(err error) int {
	code := errbuilder.CodeOf(err)
	message := errorMessage(err)
	switch code {
	case errbuilder.CodeInvalidArgument, errbuilder.CodeAlreadyExists:
		return 2
	case errbuilder.CodeFailedPrecondition:
		if strings.HasPrefix(message, "build sanity check failed") {
			return 4
		}
		if strings.HasPrefix(message, "remote skipped inclusion") {
			return 3
		}
		return 4
	case errbuilder.CodeDeadlineExceeded:
		return 4
	case errbuilder.CodePermissionDenied:
		return 3
	case errbuilder.CodeNotFound, errbuilder.CodeInternal:
		return 5
	default:
		return 1
	}
}

func errorMessage(err error) string {
	var builder *errbuilder.ErrBuilder
	if errors.As(err, &builder) && strings.TrimSpace(builder.Msg) != "" {
		return builder.Msg
	}
	return err.Error()
}
