package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/scriptplay/internal/command"
	"github.com/roach88/scriptplay/internal/engine"
)

// maxIdleTicks bounds how long play waits for a line to change before it
// gives up.
const maxIdleTicks = 10000

// PlayOptions holds flags for the play command.
type PlayOptions struct {
	*RootOptions
	Start    string
	Choices  []int
	Auto     bool
	MaxLines int
	Save     string
	Database string
}

// PlayResult is the outcome of a headless run.
type PlayResult struct {
	Script   string                `json:"script"`
	Lines    []engine.HistoryEntry `json:"lines"`
	Pointer  int                   `json:"pointer"`
	Mode     string                `json:"mode"`
	Finished bool                  `json:"finished"`
	Pending  []string              `json:"pending_choices,omitempty"`
	Snapshot string                `json:"snapshot,omitempty"`
}

// NewPlayCommand creates the play command.
func NewPlayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PlayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "play <script>",
		Short: "Play a script headless and print the transcript",
		Long: `Play a script without a presenter and print every line of dialogue.

Play runs in skip mode by default, or in auto-play mode with --auto. Time is
simulated in frame-interval ticks, so waits and reveals cost no wall-clock
time. Each pending choice consumes the next --choose value; play stops at a
choice when none are left.

Examples:
  scriptplay play story.csv
  scriptplay play story.csv --start chapter2 --choose 1 --choose 0
  scriptplay play story.csv --choose 0 --save quick --db saves.db`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlay(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Start, "start", "", "line id to start from")
	cmd.Flags().IntSliceVar(&opts.Choices, "choose", nil, "choice indices to pick, in order")
	cmd.Flags().BoolVar(&opts.Auto, "auto", false, "use auto-play instead of skip")
	cmd.Flags().IntVar(&opts.MaxLines, "max-lines", 1000, "stop after this many lines")
	cmd.Flags().StringVar(&opts.Save, "save", "", "save the session to this slot when play stops")
	cmd.Flags().StringVar(&opts.Database, "db", "", "save database (default from settings)")

	return cmd
}

func runPlay(opts *PlayOptions, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	if opts.MaxLines <= 0 {
		return NewExitError(ExitCommandError, "--max-lines must be positive")
	}

	ld, err := LoadScript(path)
	if err != nil {
		_ = formatter.Error(CodeScriptUnavailable, err.Error(), nil)
		return loadExitError(err)
	}

	db := ""
	if opts.Save != "" {
		db = opts.Database
		if db == "" {
			db = opts.settings().Database
		}
	}
	s, err := scriptSession(opts.RootOptions, ld, db, opts.Start)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := drive(s.engine, opts); err != nil {
		return err
	}

	e := s.engine
	result := PlayResult{
		Script:   ld.Name,
		Lines:    e.History(),
		Pointer:  e.Pointer(),
		Mode:     e.Mode().String(),
		Finished: e.Finished(),
		Pending:  optionTexts(e.Choices()),
	}

	if opts.Save != "" {
		snap, err := e.SaveSlot(cmd.Context(), opts.Save)
		if err != nil {
			_ = formatter.Error(CodeSlot, err.Error(), nil)
			return WrapExitError(ExitCommandError, "failed to save", err)
		}
		result.Snapshot = snap.ID
		opts.logger().Info("saved", "slot", opts.Save, "snapshot", snap.ID)
	}

	if formatter.JSON() {
		return formatter.Success(result)
	}
	printTranscript(formatter, result)
	formatter.VerboseLog("presenter calls: %d", len(s.recorder.Trace()))
	return nil
}

// drive ticks the engine until the script finishes, MaxLines is reached,
// a choice has no --choose value left, or nothing changes for
// maxIdleTicks ticks.
func drive(e *engine.Engine, opts *PlayOptions) error {
	frame := opts.settings().FrameInterval
	e.SetAuto(opts.Auto)
	e.SetSkip(!opts.Auto)

	choices := opts.Choices
	last := e.LinesPlayed()
	idle := 0
	for !e.Finished() && e.LinesPlayed() < opts.MaxLines {
		if e.Mode() == engine.ModeChoicePending {
			if len(choices) == 0 {
				return nil
			}
			if err := e.Choose(choices[0]); err != nil {
				return WrapExitError(ExitCommandError, fmt.Sprintf("cannot pick choice %d", choices[0]), err)
			}
			choices = choices[1:]
			continue
		}

		e.Tick(frame)
		if n := e.LinesPlayed(); n != last {
			last, idle = n, 0
			continue
		}
		if idle++; idle >= maxIdleTicks {
			return nil
		}
	}
	return nil
}

func optionTexts(opts []command.Option) []string {
	if len(opts) == 0 {
		return nil
	}
	out := make([]string, len(opts))
	for i, o := range opts {
		out[i] = o.Text
	}
	return out
}

func printTranscript(f *OutputFormatter, r PlayResult) {
	for _, ln := range r.Lines {
		switch {
		case ln.Speaker != "":
			f.Printf("%s: %s\n", ln.Speaker, ln.Text)
		default:
			f.Printf("%s\n", ln.Text)
		}
	}
	switch {
	case len(r.Pending) > 0:
		f.Printf("\n-- choice pending at line %d --\n", r.Pointer)
		for i, t := range r.Pending {
			f.Printf("  [%d] %s\n", i, t)
		}
	case r.Finished:
		f.Printf("\n-- end of script (%d lines) --\n", len(r.Lines))
	default:
		f.Printf("\n-- stopped at line %d (%s) --\n", r.Pointer, r.Mode)
	}
	if r.Snapshot != "" {
		f.Printf("saved snapshot %s\n", r.Snapshot)
	}
}
