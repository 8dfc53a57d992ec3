package cli

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/scriptplay/internal/store"
)

func TestSaveLoad_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := writeScript(t, dir, "story.csv", linearScript)
	db := filepath.Join(dir, "saves.db")

	out, err := execute(t, NewSaveCommand(&RootOptions{Format: "json"}), path, "quick", "--id", "mid", "--db", db)
	require.NoError(t, err)
	var saved struct {
		Data SaveResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &saved))
	assert.Equal(t, "quick", saved.Data.Slot)
	assert.Equal(t, "story.csv", saved.Data.Script)
	assert.Equal(t, "mid", saved.Data.LineID)
	assert.Equal(t, 0, saved.Data.Offset)
	assert.NotEmpty(t, saved.Data.Snapshot)

	want, err := execute(t, NewStateCommand(&RootOptions{Format: "json"}), path, "--id", "mid")
	require.NoError(t, err)

	out, err = execute(t, NewLoadCommand(&RootOptions{Format: "json"}), "quick", "--db", db, "--script-dir", dir)
	require.NoError(t, err)
	loaded := decodeState(t, out)
	assert.Equal(t, 3, loaded.Pointer)
	assert.Equal(t, "Indeed", loaded.Text)
	assert.Equal(t, decodeState(t, want).Digest, loaded.Digest)
}

func TestSave_OffsetFromAnchor(t *testing.T) {
	dir := t.TempDir()
	path := writeScript(t, dir, "story.csv", linearScript)
	db := filepath.Join(dir, "saves.db")

	out, err := execute(t, NewSaveCommand(&RootOptions{Format: "text"}), path, "s1", "--line", "2", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, `saved story.csv at start+2 to slot "s1"`)
}

func TestLoad_MissingSlot(t *testing.T) {
	db := filepath.Join(t.TempDir(), "saves.db")

	_, err := execute(t, NewLoadCommand(&RootOptions{Format: "text"}), "none", "--db", db)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.ErrorIs(t, err, store.ErrSlotNotFound)
}

func TestLoad_MissingScript(t *testing.T) {
	dir := t.TempDir()
	path := writeScript(t, dir, "story.csv", linearScript)
	db := filepath.Join(dir, "saves.db")

	_, err := execute(t, NewSaveCommand(&RootOptions{Format: "text"}), path, "quick", "--db", db)
	require.NoError(t, err)

	out, err := execute(t, NewLoadCommand(&RootOptions{Format: "text"}), "quick", "--db", db, "--script-dir", t.TempDir())
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, CodeScriptUnavailable)
}

func TestSlots_ListAndDelete(t *testing.T) {
	dir := t.TempDir()
	path := writeScript(t, dir, "story.csv", linearScript)
	db := filepath.Join(dir, "saves.db")

	out, err := execute(t, NewSlotsCommand(&RootOptions{Format: "text"}), "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "No slots.")

	for _, slot := range []string{"a", "b"} {
		_, err := execute(t, NewSaveCommand(&RootOptions{Format: "text"}), path, slot, "--id", "mid", "--db", db)
		require.NoError(t, err)
	}

	out, err = execute(t, NewSlotsCommand(&RootOptions{Format: "json"}), "--db", db)
	require.NoError(t, err)
	var listed struct {
		Data []store.Slot `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &listed))
	require.Len(t, listed.Data, 2)
	assert.Equal(t, "b", listed.Data[0].Name)
	assert.Equal(t, "mid", listed.Data[0].LineID)

	out, err = execute(t, NewSlotsCommand(&RootOptions{Format: "text"}), "--db", db, "--delete", "a")
	require.NoError(t, err)
	assert.Contains(t, out, `deleted slot "a"`)

	_, err = execute(t, NewSlotsCommand(&RootOptions{Format: "text"}), "--db", db, "--delete", "a")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
}

func TestResumeLabel(t *testing.T) {
	assert.Equal(t, "(start)", resumeLabel("", -1))
	assert.Equal(t, "line 4", resumeLabel("", 4))
	assert.Equal(t, "mid", resumeLabel("mid", 0))
	assert.Equal(t, "mid+2", resumeLabel("mid", 2))
}
