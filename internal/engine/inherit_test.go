package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/scriptplay/internal/script"
	"github.com/roach88/scriptplay/internal/stage"
)

func TestResolve_SpeakerAndTextInheritNearestValue(t *testing.T) {
	lines := []script.Line{
		{Text: "before anyone"},
		{Speaker: "Alice", Text: "hi"},
		{Text: "again"},
		{Speaker: "Bob"},
		{},
	}
	want := [][2]string{
		{"", "before anyone"},
		{"Alice", "hi"},
		{"Alice", "again"},
		{"Bob", "again"},
		{"Bob", "again"},
	}

	st := stage.NewState()
	for i, ln := range lines {
		r := resolve(ln, st, "voice/")
		apply(st, r)
		assert.Equal(t, want[i][0], r.Speaker, "line %d speaker", i)
		assert.Equal(t, want[i][1], r.Text, "line %d text", i)
	}
}

func TestResolve_HeadProfileHideIsRemembered(t *testing.T) {
	st := stage.NewState()
	var got []string
	for _, hp := range []string{"alice", "", "hide", "", "", "bob"} {
		r := resolve(script.Line{HeadProfile: hp}, st, "")
		got = append(got, r.HeadProfile)
	}
	assert.Equal(t, []string{"alice", "alice", "hide", "hide", "hide", "bob"}, got)
}

func TestResolve_StageFieldsReadLiveState(t *testing.T) {
	st := stage.NewState()
	apply(st, resolve(script.Line{Background: "bg1", CharMid: "Alice_happy"}, st, ""))

	// A command hid Alice after the line played; inheritance must not
	// bring her back.
	st.HideAt(stage.Mid)

	r := resolve(script.Line{}, st, "")
	apply(st, r)
	assert.Equal(t, "bg1", r.Background)
	assert.Equal(t, "", r.CharMid)
	_, shown := st.CharacterAt(stage.Mid)
	assert.False(t, shown)
}

func TestApply_Characters(t *testing.T) {
	st := stage.NewState()
	apply(st, resolve(script.Line{CharLeft: "Bob_sad", CharRight: "old_man_angry"}, st, ""))

	c, ok := st.CharacterAt(stage.Left)
	require.True(t, ok)
	assert.Equal(t, stage.Character{ID: "Bob", Emotion: "sad"}, c)
	c, ok = st.CharacterAt(stage.Right)
	require.True(t, ok)
	assert.Equal(t, stage.Character{ID: "old_man", Emotion: "angry"}, c)

	st.Flip(stage.Left)
	apply(st, resolve(script.Line{CharLeft: "hide"}, st, ""))
	_, ok = st.CharacterAt(stage.Left)
	assert.False(t, ok)
	assert.Equal(t, -1, st.Facing(stage.Left), "orientation survives a hide")

	apply(st, resolve(script.Line{}, st, ""))
	_, ok = st.CharacterAt(stage.Right)
	assert.True(t, ok, "empty cell keeps what is shown")
}

func TestResolve_Voice(t *testing.T) {
	tests := []struct {
		name        string
		enabled     bool
		line        script.Line
		wantVoice   string
		wantEnabled bool
	}{
		{"derived from id", true, script.Line{ID: "L1"}, "voice/L1", true},
		{"no id stays silent", true, script.Line{}, "", true},
		{"disabled stays silent", false, script.Line{ID: "L1"}, "", false},
		{"false disables", true, script.Line{ID: "L1", Voice: "false"}, "", false},
		{"FALSE disables", true, script.Line{ID: "L1", Voice: "FALSE"}, "", false},
		{"true is a literal like any other", false, script.Line{ID: "L2", Voice: "true"}, "true", true},
		{"literal enables", false, script.Line{Voice: "custom/a.ogg"}, "custom/a.ogg", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := stage.NewState()
			st.VoiceEnabled = tt.enabled
			r := resolve(tt.line, st, "voice/")
			assert.Equal(t, tt.wantVoice, r.Voice)
			assert.Equal(t, tt.wantEnabled, st.VoiceEnabled)
		})
	}
}

func TestApply_BGM(t *testing.T) {
	st := stage.NewState()
	apply(st, resolve(script.Line{BGM: "theme"}, st, ""))
	assert.Equal(t, "theme", st.BGM)

	st.BGMPaused = true
	apply(st, resolve(script.Line{}, st, ""))
	assert.Equal(t, "theme", st.BGM)
	assert.True(t, st.BGMPaused, "inherited BGM stays paused")

	apply(st, resolve(script.Line{BGM: "theme"}, st, ""))
	assert.False(t, st.BGMPaused, "naming the track restarts it")

	apply(st, resolve(script.Line{BGM: "stop"}, st, ""))
	assert.Equal(t, "stop", st.BGM, "a track may be named stop")
	assert.False(t, st.BGMPaused)
}
