package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid  bool    `json:"valid"`
	Lines  int     `json:"lines"`
	Issues []Issue `json:"issues,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <script>",
		Short: "Check a script without playing it",
		Long: `Check a CSV or TSV script without playing it.

Reports rows that were skipped while parsing, duplicate line IDs, command
chains that do not parse, unknown command names and jump targets that do
not resolve.

Exit codes:
  0 - No issues
  1 - One or more issues
  2 - Script could not be read`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	ld, err := LoadScript(path)
	if err != nil {
		_ = formatter.Error(CodeScriptUnavailable, err.Error(), nil)
		return loadExitError(err)
	}
	formatter.VerboseLog("Loaded %s: %d lines", path, ld.Store.Len())

	issues := CheckScript(ld, newRegistry(opts.logger()))
	result := ValidationResult{
		Valid:  len(issues) == 0,
		Lines:  ld.Store.Len(),
		Issues: issues,
	}

	if formatter.JSON() {
		if result.Valid {
			return formatter.Success(result)
		}
		_ = formatter.Error(CodeScriptInvalid, fmt.Sprintf("%d issue(s) found", len(issues)), result)
		return NewExitError(ExitFailure, fmt.Sprintf("%d issue(s) found", len(issues)))
	}

	if result.Valid {
		formatter.Printf("✓ %s: %d lines, no issues\n", path, result.Lines)
		return nil
	}
	formatter.Printf("✗ %s: %d issue(s)\n", path, len(issues))
	for _, is := range issues {
		formatter.Printf("  %s\n", is)
	}
	return NewExitError(ExitFailure, fmt.Sprintf("%d issue(s) found", len(issues)))
}
