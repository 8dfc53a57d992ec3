package stage

import (
	"maps"
	"slices"
)

// TextStyle is a per-line dialogue override. It never inherits.
type TextStyle struct {
	Color string  `json:"color,omitempty"`
	Size  float64 `json:"size,omitempty"`
}

// IsZero reports whether no override is active.
func (s TextStyle) IsZero() bool { return s == TextStyle{} }

// State is the derived presentation state.
//
// INVARIANTS:
//   - Characters holds entries only for positions currently shown
//   - Orientation may outlive a hide so that a re-show keeps its facing;
//     a missing entry means facing +1
//   - Effects is sorted and duplicate-free
type State struct {
	Background   string                 `json:"background,omitempty"`
	BGM          string                 `json:"bgm,omitempty"`
	BGMPaused    bool                   `json:"bgm_paused,omitempty"`
	Characters   map[Position]Character `json:"characters"`
	Orientation  map[Position]int       `json:"orientation"`
	VoiceEnabled bool                   `json:"voice_enabled"`

	// Inheritance memory for the dialogue fields.
	LastSpeaker     string `json:"last_speaker,omitempty"`
	LastText        string `json:"last_text,omitempty"`
	LastHeadProfile string `json:"last_head_profile,omitempty"`

	Effects   []string  `json:"effects"`
	TextStyle TextStyle `json:"text_style,omitzero"`
}

// NewState returns empty defaults: nothing shown, voice enabled.
func NewState() *State {
	s := &State{}
	s.Reset()
	return s
}

// Reset restores empty defaults in place.
func (s *State) Reset() {
	*s = State{
		Characters:   make(map[Position]Character),
		Orientation:  make(map[Position]int),
		VoiceEnabled: true,
		Effects:      []string{},
	}
}

// Clone returns a deep copy.
func (s *State) Clone() *State {
	c := *s
	c.Characters = maps.Clone(s.Characters)
	if c.Characters == nil {
		c.Characters = make(map[Position]Character)
	}
	c.Orientation = maps.Clone(s.Orientation)
	if c.Orientation == nil {
		c.Orientation = make(map[Position]int)
	}
	c.Effects = slices.Clone(s.Effects)
	if c.Effects == nil {
		c.Effects = []string{}
	}
	return &c
}

// Show places a character at pos.
func (s *State) Show(pos Position, c Character) {
	s.Characters[pos] = c
}

// HideAt removes the character at pos. Orientation is kept.
// Returns false when nothing was shown there.
func (s *State) HideAt(pos Position) bool {
	if _, ok := s.Characters[pos]; !ok {
		return false
	}
	delete(s.Characters, pos)
	return true
}

// CharacterAt returns the character shown at pos.
func (s *State) CharacterAt(pos Position) (Character, bool) {
	c, ok := s.Characters[pos]
	return c, ok
}

// Facing returns the orientation at pos (+1 when never flipped).
func (s *State) Facing(pos Position) int {
	if d, ok := s.Orientation[pos]; ok && d != 0 {
		return d
	}
	return 1
}

// Flip inverts the orientation of the character at pos.
// Returns false (and changes nothing) when no character is shown there.
func (s *State) Flip(pos Position) (int, bool) {
	if _, ok := s.Characters[pos]; !ok {
		return 0, false
	}
	d := -s.Facing(pos)
	s.Orientation[pos] = d
	return d, true
}

// AddEffect inserts name into the active effect set.
func (s *State) AddEffect(name string) bool {
	i, found := slices.BinarySearch(s.Effects, name)
	if found {
		return false
	}
	s.Effects = slices.Insert(s.Effects, i, name)
	return true
}

// RemoveEffect deletes name from the active effect set.
func (s *State) RemoveEffect(name string) bool {
	i, found := slices.BinarySearch(s.Effects, name)
	if !found {
		return false
	}
	s.Effects = slices.Delete(s.Effects, i, i+1)
	return true
}

// ClearEffects empties the active effect set.
func (s *State) ClearEffects() {
	s.Effects = []string{}
}

// SetEffects replaces the active effect set.
func (s *State) SetEffects(effects []string) {
	s.Effects = []string{}
	for _, e := range effects {
		s.AddEffect(e)
	}
}

// HasEffect reports whether name is active.
func (s *State) HasEffect(name string) bool {
	_, found := slices.BinarySearch(s.Effects, name)
	return found
}
