package cli

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/scriptplay/internal/canon"
	"github.com/roach88/scriptplay/internal/command"
	"github.com/roach88/scriptplay/internal/engine"
	"github.com/roach88/scriptplay/internal/script"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	Through int // last line to check; -1 for as far as the script stays linear
}

// ReplayMismatch is one line where fast-forward and live play disagree.
type ReplayMismatch struct {
	Line     int    `json:"line"`
	LineID   string `json:"line_id,omitempty"`
	Live     string `json:"live"`
	Replayed string `json:"replayed"`
}

// ReplayResult holds the overall replay result.
type ReplayResult struct {
	Script     string           `json:"script"`
	Checked    int              `json:"checked"`
	StopLine   int              `json:"stop_line"`
	StopReason string           `json:"stop_reason"`
	Equivalent bool             `json:"equivalent"`
	Mismatches []ReplayMismatch `json:"mismatches,omitempty"`
}

// Reasons the check range ends.
const (
	stopEnd     = "end of script"
	stopChoice  = "choice"
	stopJump    = "jump"
	stopThrough = "--through"
)

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay <script>",
		Short: "Verify fast-forward against live play",
		Long: `Verify that fast-forwarding to each line yields the same state as
playing up to it.

The script is played live from line 0 and, for every line k, a second
engine fast-forwards to k. The stage state and flags of both are compared
by digest once line k has settled. Checking stops at the first line that
offers a choice or jumps, since play beyond it is no longer linear.

Exit codes:
  0 - Every checked line matched
  1 - One or more lines differ
  2 - Command error (unreadable script, etc.)

Examples:
  scriptplay replay story.csv
  scriptplay replay story.csv --through 20 --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(opts, args[0], cmd)
		},
	}

	cmd.Flags().IntVar(&opts.Through, "through", -1, "last line index to check")

	return cmd
}

func runReplay(opts *ReplayOptions, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	ld, err := LoadScript(path)
	if err != nil {
		_ = formatter.Error(CodeScriptUnavailable, err.Error(), nil)
		return loadExitError(err)
	}
	if ld.Store.Len() == 0 {
		return NewExitError(ExitCommandError, fmt.Sprintf("%s has no lines", path))
	}

	stop, reason := linearRange(ld.Store, newRegistry(opts.logger()))
	if opts.Through >= 0 && opts.Through < stop {
		stop, reason = opts.Through, stopThrough
	}

	live, err := scriptSession(opts.RootOptions, ld, "", "")
	if err != nil {
		return err
	}
	defer live.Close()
	ff, err := scriptSession(opts.RootOptions, ld, "", "")
	if err != nil {
		return err
	}
	defer ff.Close()

	result := ReplayResult{Script: ld.Name, StopLine: stop, StopReason: reason}
	for k := 0; k <= stop; k++ {
		if k > 0 && !stepLine(live.engine) {
			break
		}
		live.settle()
		want, err := sessionDigest(live.engine)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to digest state", err)
		}

		if err := ff.engine.JumpToLine(k); err != nil {
			return WrapExitError(ExitCommandError, fmt.Sprintf("cannot fast-forward to line %d", k), err)
		}
		ff.settle()
		got, err := sessionDigest(ff.engine)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to digest state", err)
		}

		result.Checked++
		if want != got {
			ln, _ := ld.Store.Line(k)
			result.Mismatches = append(result.Mismatches, ReplayMismatch{
				Line: k, LineID: ln.ID, Live: want, Replayed: got,
			})
		}
		formatter.VerboseLog("line %d: live %s replayed %s", k, short(want), short(got))
	}
	result.Equivalent = len(result.Mismatches) == 0

	if formatter.JSON() {
		if result.Equivalent {
			return formatter.Success(result)
		}
		_ = formatter.Error(CodeReplayMismatch, fmt.Sprintf("%d line(s) differ", len(result.Mismatches)), result)
		return NewExitError(ExitFailure, fmt.Sprintf("%d line(s) differ", len(result.Mismatches)))
	}

	formatter.Printf("Checked %d line(s) of %s, stopped at line %d (%s)\n",
		result.Checked, result.Script, result.StopLine, result.StopReason)
	if result.Equivalent {
		formatter.Printf("✓ fast-forward matches live play\n")
		return nil
	}
	for _, m := range result.Mismatches {
		formatter.Printf("✗ line %d", m.Line)
		if m.LineID != "" {
			formatter.Printf(" [%s]", m.LineID)
		}
		formatter.Printf(": live %s, replayed %s\n", short(m.Live), short(m.Replayed))
	}
	return NewExitError(ExitFailure, fmt.Sprintf("%d line(s) differ", len(result.Mismatches)))
}

// linearRange returns the last line index up to which live play follows
// the script order, and why the range ends there.
func linearRange(st *script.Store, reg *command.Registry) (int, string) {
	for i, ln := range st.Lines() {
		if !ln.HasCommand() {
			continue
		}
		instrs, _ := command.ParseChain(ln.Command)
		if slices.ContainsFunc(instrs, reg.IsInteractive) {
			return i, stopChoice
		}
		if slices.ContainsFunc(instrs, func(in command.Instruction) bool {
			return strings.EqualFold(in.Name, "jump")
		}) {
			return i, stopJump
		}
	}
	return st.Len() - 1, stopEnd
}

// stepLine advances until the next line plays.
func stepLine(e *engine.Engine) bool {
	for range maxSettleAdvances {
		if e.Advance() {
			return true
		}
		if e.Finished() || e.Mode() == engine.ModeChoicePending {
			return false
		}
	}
	return false
}

// sessionDigest hashes the stage state and flags together.
func sessionDigest(e *engine.Engine) (string, error) {
	return canon.Digest(canon.DomainState, struct {
		Stage any `json:"stage"`
		Flags any `json:"flags"`
	}{e.State(), e.Flags()})
}

func short(digest string) string {
	if len(digest) > 12 {
		return digest[:12]
	}
	return digest
}
