package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

const scriptHeader = "ID,Speaker,HeadProfile,CharLeft,CharMid,CharRight,Text,Background,BGM,Voice,Command,Note\n"

// linearScript has no choice and no jump.
const linearScript = scriptHeader +
	"start,Alice,,,Alice_happy,,Hello,hall,theme,,,\n" +
	",,,Bob,,,Hi Alice,,,,setboolflag(met),\n" +
	",Bob,,,,,Nice day,garden,,,wait(1),\n" +
	"mid,,,,,,Indeed,,,,\"addintflag(days, 1)\",\n" +
	",,,,,,Goodbye,,,,,\n"

// branchScript offers a choice on its first line.
const branchScript = scriptHeader +
	",Alice,,,,,Pick one,,,,\"choice(Left|jump(L), Right|jump(R))\",\n" +
	"L,,,,,,Went left,,,,jump(END),\n" +
	"R,,,,,,Went right,,,,,\n" +
	"END,,,,,,The end,,,,,\n"

// badScript has one problem of every kind validate reports.
const badScript = scriptHeader +
	"a,Alice,,,,,Hi,,,,dance(),\n" +
	"a,,,,,,Again,,,,jump(nowhere),\n" +
	",,,,,,x,,,,\n" +
	",,,,,,y,,,,wait(1,\n"

// writeScript writes content to dir/name and returns the path.
func writeScript(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// execute runs cmd with args and returns stdout and the error.
func execute(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}
