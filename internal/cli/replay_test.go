package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReplay_LinearScriptIsEquivalent(t *testing.T) {
	path := writeScript(t, t.TempDir(), "story.csv", linearScript)

	out, err := execute(t, NewReplayCommand(&RootOptions{Format: "text"}), path)
	require.NoError(t, err)
	assert.Contains(t, out, "Checked 5 line(s) of story.csv, stopped at line 4 (end of script)")
	assert.Contains(t, out, "✓ fast-forward matches live play")
}

func TestReplay_StopsAtChoice(t *testing.T) {
	src := scriptHeader +
		",Alice,,,,,One,hall,,,,\n" +
		",,,,,,Two,,,,setboolflag(x),\n" +
		",,,,,,Pick,,,,\"choice(A|, B|)\",\n" +
		",,,,,,After,,,,,\n"
	path := writeScript(t, t.TempDir(), "c.csv", src)

	out, err := execute(t, NewReplayCommand(&RootOptions{Format: "json"}), path)
	require.NoError(t, err)

	var resp struct {
		Status string       `json:"status"`
		Data   ReplayResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, resp.Data.Equivalent)
	assert.Equal(t, 3, resp.Data.Checked)
	assert.Equal(t, 2, resp.Data.StopLine)
	assert.Equal(t, stopChoice, resp.Data.StopReason)
}

func TestReplay_StopsAtJumpAndThrough(t *testing.T) {
	path := writeScript(t, t.TempDir(), "branch.csv", scriptHeader+
		",,,,,,A,,,,,\n"+
		",,,,,,B,,,,jump(Z),\n"+
		"Z,,,,,,C,,,,,\n")

	out, err := execute(t, NewReplayCommand(&RootOptions{Format: "text"}), path)
	require.NoError(t, err)
	assert.Contains(t, out, "stopped at line 1 (jump)")

	out, err = execute(t, NewReplayCommand(&RootOptions{Format: "text"}), path, "--through", "0")
	require.NoError(t, err)
	assert.Contains(t, out, "Checked 1 line(s)")
	assert.Contains(t, out, "(--through)")
}

func TestReplay_MissingScript(t *testing.T) {
	_, err := execute(t, NewReplayCommand(&RootOptions{Format: "text"}), "/nonexistent/story.csv")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
