package stage

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePosition(t *testing.T) {
	tests := []struct {
		in   string
		want Position
		ok   bool
	}{
		{"L", Left, true},
		{"left", Left, true},
		{" Left ", Left, true},
		{"M", Mid, true},
		{"Middle", Mid, true},
		{"center", Mid, true},
		{"R", Right, true},
		{"RIGHT", Right, true},
		{"top", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParsePosition(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseCharacter(t *testing.T) {
	assert.Equal(t, Character{ID: "Alice", Emotion: "happy"}, ParseCharacter("Alice_happy"))
	assert.Equal(t, Character{ID: "old_man", Emotion: "angry"}, ParseCharacter("old_man_angry"))
	assert.Equal(t, Character{ID: "Bob"}, ParseCharacter("Bob"))
	assert.Equal(t, Character{ID: "Bob_"}, ParseCharacter("Bob_"))
	assert.Equal(t, "Alice_happy", ParseCharacter("Alice_happy").Cell())
}

func TestState_CloneIsDeep(t *testing.T) {
	s := NewState()
	s.Show(Left, Character{ID: "Alice"})
	s.AddEffect("rain")

	c := s.Clone()
	c.Show(Right, Character{ID: "Bob"})
	c.AddEffect("snow")
	c.Flip(Left)

	assert.Len(t, s.Characters, 1)
	assert.Equal(t, []string{"rain"}, s.Effects)
	assert.Equal(t, 1, s.Facing(Left))
	assert.Equal(t, -1, c.Facing(Left))
}

func TestState_HideKeepsOrientation(t *testing.T) {
	s := NewState()
	s.Show(Mid, Character{ID: "Alice"})
	d, ok := s.Flip(Mid)
	require.True(t, ok)
	assert.Equal(t, -1, d)

	assert.True(t, s.HideAt(Mid))
	assert.False(t, s.HideAt(Mid))
	_, shown := s.CharacterAt(Mid)
	assert.False(t, shown)
	assert.Equal(t, -1, s.Facing(Mid), "orientation survives a hide")

	_, ok = s.Flip(Mid)
	assert.False(t, ok, "cannot flip an empty slot")
}

func TestState_EffectsSortedUnique(t *testing.T) {
	s := NewState()
	assert.True(t, s.AddEffect("snow"))
	assert.True(t, s.AddEffect("rain"))
	assert.False(t, s.AddEffect("rain"))
	assert.Equal(t, []string{"rain", "snow"}, s.Effects)
	assert.True(t, s.HasEffect("snow"))
	assert.True(t, s.RemoveEffect("snow"))
	assert.False(t, s.RemoveEffect("snow"))
	s.SetEffects([]string{"b", "a", "b"})
	assert.Equal(t, []string{"a", "b"}, s.Effects)
}

func TestState_JSONRoundTrip(t *testing.T) {
	s := NewState()
	s.Background = "bg1"
	s.Show(Left, Character{ID: "Alice", Emotion: "sad"})
	s.Flip(Left)
	s.AddEffect("rain")

	data, err := json.Marshal(s)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"left":{"id":"Alice","emotion":"sad"}`)

	var back State
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, s, &back)
}

func TestRecorder_AnimateTargets(t *testing.T) {
	r := NewRecorder()

	_, err := r.Animate("left", "alpha", 0, 1, time.Second)
	assert.ErrorIs(t, err, ErrMissingTarget)

	r.ShowCharacter(Left, "Alice", "")
	h, err := r.Animate("left", "alpha", 0, 1, time.Second)
	require.NoError(t, err)
	require.NoError(t, h.Set(0.5))
	assert.InDelta(t, 0.5, r.Screen.Props["left.alpha"], 1e-9)

	r.HideCharacter(Left)
	assert.ErrorIs(t, h.Set(0.75), ErrTargetGone)
	assert.ErrorIs(t, h.Finish(), ErrTargetGone)
}

func TestRecorder_FinishIdempotent(t *testing.T) {
	r := NewRecorder()
	h, err := r.Animate(TargetBackground, "alpha", 0, 1, time.Second)
	require.NoError(t, err)
	require.NoError(t, h.Finish())
	require.NoError(t, h.Finish())
	assert.Equal(t, 1, r.Count("animate.finish"))
	assert.Equal(t, 1.0, r.Screen.Props["background.alpha"])
}

func TestRecorder_AssetPolls(t *testing.T) {
	r := NewRecorder()
	r.AssetPolls["slow"] = 2
	r.AssetPolls["never"] = -1

	a := r.RequestAudio("slow")
	ready, err := a.Ready()
	require.NoError(t, err)
	assert.False(t, ready)
	ready, _ = a.Ready()
	assert.False(t, ready)
	ready, _ = a.Ready()
	assert.True(t, ready)

	ready, _ = r.RequestAudio("never").Ready()
	assert.False(t, ready)
	ready, _ = r.RequestAudio("fast").Ready()
	assert.True(t, ready)
}
