package cli

import (
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/scriptplay/internal/config"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigPath string
	LogFile    string

	// Settings and Logger are filled in by the root command before any
	// subcommand runs. Subcommands built on their own (tests) fall back to
	// config.Defaults and a discarding logger.
	Settings *config.Settings
	Logger   *slog.Logger

	logCloser io.Closer
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the scriptplay CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "scriptplay",
		Short: "scriptplay - branching dialogue engine",
		Long: `Plays tabular dialogue scripts: one row per line of dialogue, with speaker,
stage, audio and an optional command chain per row.

Scripts can be played headless, fast-forwarded to any line, saved to and
loaded from SQLite slots, and checked against YAML scenarios.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			return opts.setup(cmd.ErrOrStderr())
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return opts.close()
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "settings file (.yaml, .yml or .cue)")
	cmd.PersistentFlags().StringVar(&opts.LogFile, "log-file", "", "also write JSON logs to this rotated file")

	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewPlayCommand(opts))
	cmd.AddCommand(NewStateCommand(opts))
	cmd.AddCommand(NewReplayCommand(opts))
	cmd.AddCommand(NewSaveCommand(opts))
	cmd.AddCommand(NewLoadCommand(opts))
	cmd.AddCommand(NewSlotsCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))

	return cmd
}

// setup loads settings and builds the logger.
func (o *RootOptions) setup(stderr io.Writer) error {
	s, err := config.Load(o.ConfigPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load settings", err)
	}
	if o.LogFile != "" {
		s.Logging.File = o.LogFile
	}
	o.Settings = &s
	o.Logger, o.logCloser = newLogger(s.Logging, o.Verbose, stderr)
	slog.SetDefault(o.Logger)
	o.Logger.Debug("settings loaded", "config", o.ConfigPath, "database", s.Database, "script_dir", s.ScriptDir)
	return nil
}

func (o *RootOptions) close() error {
	if o.logCloser == nil {
		return nil
	}
	err := o.logCloser.Close()
	o.logCloser = nil
	return err
}

// settings returns the loaded settings, or the defaults.
func (o *RootOptions) settings() config.Settings {
	if o.Settings != nil {
		return *o.Settings
	}
	return config.Defaults()
}

// logger returns the configured logger, or one that discards.
func (o *RootOptions) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.New(slog.DiscardHandler)
}

// formatter returns an OutputFormatter bound to cmd's writers.
func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   o.Verbose,
	}
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}
