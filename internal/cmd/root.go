// Package cmd provides the root command and command registration
// functionality for the wsidx CLI application. It handles global flags,
// logging configuration, and command initialization.
package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/wsidx/wsidx/internal/config"
	"github.com/wsidx/wsidx/internal/logger"
	"github.com/wsidx/wsidx/version"
)

var (
	// logLevel stores the logging level flag value.
	logLevel string

	// logFormat stores the logging format flag value (text or json).
	logFormat string

	// logOutput stores the log output destination flag value (stdout or filename).
	logOutput string

	// verbose stores the count of -v flags (0, 1, or 2).
	verbose int

	// quiet stores the quiet mode flag value.
	quiet bool

	// logFile stores the opened log file handle when logging to a file.
	logFile *os.File

	// configPath stores the --config flag value, a YAML file layered
	// between internal/config's defaults and the environment.
	configPath string

	// cfg is the loaded configuration, populated in PersistentPreRunE and
	// consulted by every subcommand via Config().
	cfg *config.Config
)

// rootCmd is the root command for the wsidx CLI application. It provides
// the main entry point and handles global configuration.
var rootCmd = &cobra.Command{
	Use:   "wsidx",
	Short: "wsidx - incremental content-addressed workspace indexer",
	Long: `wsidx determines which files in a workspace must be (re-)indexed, which
cached artifacts should be re-tagged rather than recomputed, and which
tagged artifacts should be retired, by diffing a content-addressed Merkle
tree of the workspace against the tree persisted from its last sync.`,
	Example: `  # Sync a workspace tag and print the four classification streams
  wsidx sync /my/project main openai

  # Print the root hash of a directory's Merkle tree
  wsidx tree /my/project

  # Diff a directory against a previously persisted tree file
  wsidx diff /my/project /my/project/.continue-tree

  # List every tag ever synced for a provider
  wsidx tags list openai`,
	Version: version.VERSION,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := logLevel
		if quiet {
			level = "error"
		} else if verbose > 0 {
			if verbose >= 2 {
				level = "debug"
			} else {
				level = "info"
			}
		} else if level == "" {
			level = "warn"
		}

		var output io.Writer
		if logOutput == "" || logOutput == "stdout" {
			output = os.Stdout
		} else {
			cleanPath := filepath.Clean(logOutput)
			absPath, err := filepath.Abs(cleanPath)
			if err != nil {
				return fmt.Errorf("error resolving log file path %s: %w", logOutput, err)
			}
			if filepath.Clean(absPath) != absPath {
				return fmt.Errorf("invalid log file path: %s", logOutput)
			}

			logFile, err = os.OpenFile(absPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
			if err != nil {
				return fmt.Errorf("error opening log file %s: %w", logOutput, err)
			}
			output = logFile
		}

		loaded, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = loaded

		if !quiet && verbose == 0 && logLevel == "" && cfg.Log.Level != "" {
			// Only fall back to the configured level (defaults, file, env)
			// when the user gave us no level flag at all; flags always win.
			level = cfg.Log.Level
		}
		if !cmd.Flags().Changed("log-format") && cfg.Log.Format != "" {
			logFormat = cfg.Log.Format
		}

		logger.Init(level, logFormat, output)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logFile != nil {
			if err := logFile.Close(); err != nil {
				fmt.Fprintf(os.Stderr, "Error closing log file: %v\n", err)
			}
			logFile = nil
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

// Register adds a subcommand to the root command. Subcommand packages
// call this from their own init() functions to register themselves.
func Register(cmd *cobra.Command) {
	rootCmd.AddCommand(cmd)
}

// GetRootCmd returns the root command instance, primarily for tests.
func GetRootCmd() *cobra.Command {
	return rootCmd
}

// Config returns the configuration loaded by the root command's
// PersistentPreRunE. Subcommands must only call this from within their own
// RunE, after the root command's pre-run has executed.
func Config() *config.Config {
	return cfg
}

// Execute executes the root command and handles errors. It is the main
// entry point for the application and should be called from main. On
// failure, it exits with code 1; Cobra already prints error messages, so
// this only handles the exit code.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.SilenceUsage = true
	rootCmd.SilenceErrors = true

	rootCmd.SetVersionTemplate(fmt.Sprintf("wsidx %s (%s) %s\n", version.VERSION, version.COMMIT, version.DATE))

	rootCmd.SetHelpTemplate(`{{with (or .Long .Short)}}{{. | trimTrailingWhitespaces}}
{{end}}{{if or .Runnable .HasSubCommands}}{{if .Runnable}}
Usage:
{{.UseLine}}{{end}}{{if .HasAvailableSubCommands}}

Available Commands:{{range .Commands}}{{if (or .IsAvailableCommand (eq .Name "help"))}}
  {{rpad .Name .NamePadding }} {{.Short}}{{end}}{{end}}{{end}}{{end}}{{if .HasAvailableLocalFlags}}

Flags:
{{.LocalFlags.FlagUsages | trimTrailingWhitespaces}}{{end}}{{if .HasAvailableInheritedFlags}}

Global Flags:
{{.InheritedFlags.FlagUsages | trimTrailingWhitespaces}}{{end}}{{if .HasExample}}

Examples:
{{.Example}}{{end}}{{if .HasAvailableSubCommands}}

Use "{{.CommandPath}} [command] --help" for more information about a command.{{end}}
`)

	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Set the logging level (debug, info, warn, error). Default: the configured level (info unless set by --config or WSIDX_LOG_LEVEL)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "Set the logging format (text, json). Default: text")
	rootCmd.PersistentFlags().StringVar(&logOutput, "log-output", "stdout", "Set the log output destination (stdout or a filename). Default: stdout")
	rootCmd.PersistentFlags().CountVarP(&verbose, "verbose", "v", "Enable verbose output: -v for info level, -vv for debug level")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress non-error output (equivalent to --log-level=error)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a wsidx YAML config file (overrides built-in defaults; overridden by WSIDX_* env vars)")
}
