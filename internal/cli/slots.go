package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/scriptplay/internal/script"
	"github.com/roach88/scriptplay/internal/store"
)

// SlotOptions holds flags shared by save, load and slots.
type SlotOptions struct {
	*RootOptions
	Database  string
	Line      int
	ID        string
	ScriptDir string
	Delete    string
}

// database returns --db, or the configured database.
func (o *SlotOptions) database() string {
	if o.Database != "" {
		return o.Database
	}
	return o.settings().Database
}

// SaveResult reports a written slot.
type SaveResult struct {
	Slot     string `json:"slot"`
	Snapshot string `json:"snapshot"`
	Script   string `json:"script"`
	LineID   string `json:"line_id,omitempty"`
	Offset   int    `json:"offset"`
}

// NewSaveCommand creates the save command.
func NewSaveCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SlotOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "save <script> <slot>",
		Short: "Save the session at a line to a slot",
		Long: `Fast-forward a script to a line and save the session to a slot.

The slot is overwritten if it exists. The snapshot refers to the script by
its file name; load resolves it against --script-dir.

Examples:
  scriptplay save story.csv quick --id chapter2
  scriptplay save story.csv slot1 --line 12 --db saves.db`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSave(opts, args[0], args[1], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "save database (default from settings)")
	cmd.Flags().IntVar(&opts.Line, "line", -1, "0-based line index")
	cmd.Flags().StringVar(&opts.ID, "id", "", "line id")
	cmd.MarkFlagsMutuallyExclusive("line", "id")

	return cmd
}

func runSave(opts *SlotOptions, path, slot string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	ld, err := LoadScript(path)
	if err != nil {
		_ = formatter.Error(CodeScriptUnavailable, err.Error(), nil)
		return loadExitError(err)
	}
	if ld.Store.Len() == 0 {
		return NewExitError(ExitCommandError, fmt.Sprintf("%s has no lines", path))
	}

	s, err := scriptSession(opts.RootOptions, ld, opts.database(), "")
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.position(opts.ID, opts.Line); err != nil {
		_ = formatter.Error(CodeUnresolvedID, err.Error(), nil)
		return err
	}
	s.settle()

	snap, err := s.engine.SaveSlot(cmd.Context(), slot)
	if err != nil {
		_ = formatter.Error(CodeSlot, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to save", err)
	}

	result := SaveResult{
		Slot:     slot,
		Snapshot: snap.ID,
		Script:   snap.Script,
		LineID:   snap.ResumeLineID,
		Offset:   snap.ResumeOffset,
	}
	if formatter.JSON() {
		return formatter.Success(result)
	}
	formatter.Printf("✓ saved %s at %s to slot %q (snapshot %s)\n",
		result.Script, resumeLabel(result.LineID, result.Offset), slot, result.Snapshot)
	return nil
}

// NewLoadCommand creates the load command.
func NewLoadCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SlotOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "load <slot>",
		Short: "Load a slot and show the restored state",
		Long: `Load a saved slot and print the state it restores to.

The snapshot's script is read again from --script-dir and replayed up to the
resume line. When replay cannot reproduce the saved state, because the
session went through a choice or a jump, the saved state is used.

Examples:
  scriptplay load quick
  scriptplay load slot1 --db saves.db --script-dir ./scripts --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLoad(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "save database (default from settings)")
	cmd.Flags().StringVar(&opts.ScriptDir, "script-dir", "", "directory scripts are read from (default from settings)")

	return cmd
}

func runLoad(opts *SlotOptions, slot string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	dir := opts.ScriptDir
	if dir == "" {
		dir = opts.settings().ScriptDir
	}
	s, err := newSession(sessionConfig{
		settings: opts.settings(),
		logger:   opts.logger(),
		source:   script.DirSource{Dir: dir},
		database: opts.database(),
	})
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.engine.LoadSlot(cmd.Context(), slot); err != nil {
		code := CodeSlot
		if errors.Is(err, script.ErrScriptNotFound) {
			code = CodeScriptUnavailable
		}
		_ = formatter.Error(code, err.Error(), nil)
		if errors.Is(err, store.ErrSlotNotFound) {
			return WrapExitError(ExitFailure, "slot not found", err)
		}
		return WrapExitError(ExitCommandError, "failed to load", err)
	}

	report, err := buildStateReport(s, s.engine.Script().Name())
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to digest state", err)
	}
	if formatter.JSON() {
		return formatter.Success(report)
	}
	formatter.Printf("✓ loaded slot %q (%s)\n", slot, report.Script)
	printState(formatter, report)
	return nil
}

// NewSlotsCommand creates the slots command.
func NewSlotsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SlotOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "slots",
		Short: "List or delete save slots",
		Long: `List save slots, most recently written first, or delete one with --delete.

Examples:
  scriptplay slots
  scriptplay slots --db saves.db --delete quick`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSlots(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "save database (default from settings)")
	cmd.Flags().StringVar(&opts.Delete, "delete", "", "slot to delete")

	return cmd
}

func runSlots(opts *SlotOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	st, err := store.Open(opts.database())
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	ctx := cmd.Context()
	if opts.Delete != "" {
		if err := st.DeleteSlot(ctx, opts.Delete); err != nil {
			_ = formatter.Error(CodeSlot, err.Error(), nil)
			if errors.Is(err, store.ErrSlotNotFound) {
				return WrapExitError(ExitFailure, "slot not found", err)
			}
			return WrapExitError(ExitCommandError, "failed to delete slot", err)
		}
		opts.logger().Info("slot deleted", "slot", opts.Delete)
		if formatter.JSON() {
			return formatter.Success(map[string]string{"deleted": opts.Delete})
		}
		formatter.Printf("✓ deleted slot %q\n", opts.Delete)
		return nil
	}

	slots, err := st.ListSlots(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to list slots", err)
	}
	if formatter.JSON() {
		return formatter.Success(slots)
	}
	if len(slots) == 0 {
		formatter.Printf("No slots.\n")
		return nil
	}
	for _, sl := range slots {
		formatter.Printf("%-12s %-20s %-16s %s\n",
			sl.Name, sl.Script, resumeLabel(sl.LineID, -1),
			time.UnixMilli(sl.SavedAt).UTC().Format(time.RFC3339))
	}
	return nil
}

// resumeLabel renders a resume anchor; a negative offset is left out.
func resumeLabel(id string, offset int) string {
	switch {
	case id == "" && offset < 0:
		return "(start)"
	case id == "":
		return fmt.Sprintf("line %d", offset)
	case offset <= 0:
		return id
	default:
		return fmt.Sprintf("%s+%d", id, offset)
	}
}
