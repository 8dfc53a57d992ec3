package cli

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/scriptplay/internal/canon"
	"github.com/roach88/scriptplay/internal/flags"
	"github.com/roach88/scriptplay/internal/stage"
)

// StateOptions holds flags for the state command.
type StateOptions struct {
	*RootOptions
	Line int
	ID   string
}

// StateReport describes the engine after fast-forwarding to a line.
type StateReport struct {
	Script  string       `json:"script"`
	Pointer int          `json:"pointer"`
	LineID  string       `json:"line_id,omitempty"`
	Mode    string       `json:"mode"`
	Speaker string       `json:"speaker,omitempty"`
	Text    string       `json:"text,omitempty"`
	Choices []string     `json:"choices,omitempty"`
	Stage   *stage.State `json:"stage"`
	Flags   *flags.Set   `json:"flags"`
	Digest  string       `json:"digest"`
}

// NewStateCommand creates the state command.
func NewStateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &StateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "state <script>",
		Short: "Show the state at a line",
		Long: `Fast-forward a script to a line and print the resulting state.

The target is --id or --line (a 0-based index); with neither the first
line is shown. Fast-forward stops early at a line that offers a choice,
which then becomes the current line.

Examples:
  scriptplay state story.csv --id chapter2
  scriptplay state story.csv --line 40 --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runState(opts, args[0], cmd)
		},
	}

	cmd.Flags().IntVar(&opts.Line, "line", -1, "0-based line index")
	cmd.Flags().StringVar(&opts.ID, "id", "", "line id")
	cmd.MarkFlagsMutuallyExclusive("line", "id")

	return cmd
}

func runState(opts *StateOptions, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	ld, err := LoadScript(path)
	if err != nil {
		_ = formatter.Error(CodeScriptUnavailable, err.Error(), nil)
		return loadExitError(err)
	}
	if ld.Store.Len() == 0 {
		return NewExitError(ExitCommandError, fmt.Sprintf("%s has no lines", path))
	}

	s, err := scriptSession(opts.RootOptions, ld, "", "")
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.position(opts.ID, opts.Line); err != nil {
		_ = formatter.Error(CodeUnresolvedID, err.Error(), nil)
		return err
	}
	s.settle()

	report, err := buildStateReport(s, ld.Name)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to digest state", err)
	}

	if formatter.JSON() {
		return formatter.Success(report)
	}
	printState(formatter, report)
	return nil
}

func buildStateReport(s *session, name string) (StateReport, error) {
	e := s.engine
	st := e.State()
	digest, err := canon.Digest(canon.DomainState, st)
	if err != nil {
		return StateReport{}, err
	}
	speaker, text := e.Dialogue()
	lineID := ""
	if ln, ok := e.Script().Line(e.Pointer()); ok {
		lineID = ln.ID
	}
	return StateReport{
		Script:  name,
		Pointer: e.Pointer(),
		LineID:  lineID,
		Mode:    e.Mode().String(),
		Speaker: speaker,
		Text:    text,
		Choices: optionTexts(e.Choices()),
		Stage:   st,
		Flags:   e.Flags().Clone(),
		Digest:  digest,
	}, nil
}

func printState(f *OutputFormatter, r StateReport) {
	f.Printf("line %d", r.Pointer)
	if r.LineID != "" {
		f.Printf(" [%s]", r.LineID)
	}
	f.Printf(" (%s)\n", r.Mode)
	if r.Speaker != "" || r.Text != "" {
		f.Printf("  %s: %s\n", r.Speaker, r.Text)
	}
	for i, c := range r.Choices {
		f.Printf("  [%d] %s\n", i, c)
	}

	st := r.Stage
	f.Printf("background: %s\n", orNone(st.Background))
	bgm := orNone(st.BGM)
	if st.BGMPaused {
		bgm += " (paused)"
	}
	f.Printf("bgm:        %s\n", bgm)
	for _, pos := range stage.Positions {
		c, ok := st.Characters[pos]
		if !ok {
			continue
		}
		f.Printf("%-11s %s (facing %d)\n", pos.String()+":", c.Cell(), st.Facing(pos))
	}
	if len(st.Effects) > 0 {
		f.Printf("effects:    %v\n", st.Effects)
	}
	if !st.VoiceEnabled {
		f.Printf("voice:      off\n")
	}

	fl := r.Flags
	for _, k := range sortedKeys(fl.Bools) {
		f.Printf("flag %s = %t\n", k, fl.Bools[k])
	}
	for _, k := range sortedKeys(fl.Ints) {
		f.Printf("flag %s = %d\n", k, fl.Ints[k])
	}
	for _, k := range sortedKeys(fl.Strings) {
		f.Printf("flag %s = %q\n", k, fl.Strings[k])
	}
	f.Printf("digest: %s\n", r.Digest)
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
