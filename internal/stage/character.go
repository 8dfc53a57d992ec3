package stage

import "strings"

// Special cell values understood by the engine.
const (
	// Hide removes a character, hides the head profile or hides the background.
	Hide = "hide"
	// Black is a background value meaning a blank black screen.
	Black = "black"
)

// Character is a shown character: an identifier and an optional emotion.
type Character struct {
	ID      string `json:"id"`
	Emotion string `json:"emotion,omitempty"`
}

// ParseCharacter splits a script cell "Alice_happy" into ID "Alice" and
// emotion "happy". The split happens at the LAST underscore so that IDs
// may contain underscores themselves ("old_man_angry").
func ParseCharacter(cell string) Character {
	cell = strings.TrimSpace(cell)
	i := strings.LastIndexByte(cell, '_')
	if i <= 0 || i == len(cell)-1 {
		return Character{ID: cell}
	}
	return Character{ID: cell[:i], Emotion: cell[i+1:]}
}

// Cell renders the character back into script cell form.
func (c Character) Cell() string {
	if c.Emotion == "" {
		return c.ID
	}
	return c.ID + "_" + c.Emotion
}

// IsZero reports whether nothing is shown.
func (c Character) IsZero() bool {
	return c.ID == ""
}
