// Package cli provides the command-line interface of eventweave.
package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	log "github.com/inconshreveable/log15"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/tebeka/atexit"
)

// Version is set at link time.
var Version = "dev"

const envPrefix = "EVENTWEAVE_"

// NewRootCommand creates the eventweave command with all its subcommands.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use: "eventweave",
		Short: "eventweave merges event streams into a timeline of " +
			"non-overlapping segments.",
		Long: `eventweave reads events from CSV, JSON and YAML files, merges ` +
			`them into a gapless timeline, and tells which events are active ` +
			`in every segment. Flags can also be set through EVENTWEAVE_* ` +
			`environment variables or a .env file.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			envFile, _ := cmd.Flags().GetString("env-file")

			err := loadEnvFile(envFile)
			if err != nil {
				return err
			}

			err = applyEnv(cmd.Flags())
			if err != nil {
				return err
			}

			level, _ := cmd.Flags().GetString("log-level")

			return setupLogging(level)
		},
	}

	rootCmd.PersistentFlags().String("log-level", "warn",
		"Log level: debug, info, warn, error or crit.")
	rootCmd.PersistentFlags().String("env-file", ".env",
		"File with EVENTWEAVE_* variables. A missing file is ignored.")

	rootCmd.AddCommand(
		newWeaveCommand(),
		newServeCommand(),
		newHistoryCommand(),
		newVersionCommand(),
	)

	return rootCmd
}

// Execute runs the root command and exits. Registered exit handlers, such as
// database flushes, run before the process ends.
func Execute() {
	err := NewRootCommand().ExecuteContext(context.Background())
	if err != nil {
		atexit.Exit(1)
	}

	atexit.Exit(0)
}

func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}

	_, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil
	}

	err = godotenv.Load(path)
	if err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}

	return nil
}

// applyEnv sets every flag that was not given on the command line from its
// EVENTWEAVE_* variable, if there is one.
func applyEnv(flags *pflag.FlagSet) error {
	var firstErr error

	flags.VisitAll(func(f *pflag.Flag) {
		if f.Changed || firstErr != nil {
			return
		}

		value, ok := os.LookupEnv(envName(f.Name))
		if !ok {
			return
		}

		err := flags.Set(f.Name, value)
		if err != nil {
			firstErr = fmt.Errorf("%s: %w", envName(f.Name), err)
		}
	})

	return firstErr
}

func envName(flag string) string {
	return envPrefix + strings.ToUpper(strings.ReplaceAll(flag, "-", "_"))
}

func setupLogging(level string) error {
	lvl, err := log.LvlFromString(level)
	if err != nil {
		return fmt.Errorf("log level: %w", err)
	}

	h := log.CallerFileHandler(log.StderrHandler)
	log.Root().SetHandler(log.LvlFilterHandler(lvl, h))

	return nil
}
