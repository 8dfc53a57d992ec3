package script

import "strings"

// Column order of the tabular source.
const (
	ColID = iota
	ColSpeaker
	ColHeadProfile
	ColCharLeft
	ColCharMid
	ColCharRight
	ColText
	ColBackground
	ColBGM
	ColVoice
	ColCommand
	ColNote

	// ColumnCount is the exact number of fields a row must carry.
	ColumnCount
)

// Header is the canonical header row.
var Header = []string{
	"ID", "Speaker", "HeadProfile", "CharLeft", "CharMid", "CharRight",
	"Text", "Background", "BGM", "Voice", "Command", "Note",
}

// Line is one row of the script. Every field besides ID may be empty;
// emptiness means "inherit" to the engine.
type Line struct {
	ID          string `json:"id,omitempty"`
	Speaker     string `json:"speaker,omitempty"`
	HeadProfile string `json:"head_profile,omitempty"`
	CharLeft    string `json:"char_left,omitempty"`
	CharMid     string `json:"char_mid,omitempty"`
	CharRight   string `json:"char_right,omitempty"`
	Text        string `json:"text,omitempty"`
	Background  string `json:"background,omitempty"`
	BGM         string `json:"bgm,omitempty"`
	Voice       string `json:"voice,omitempty"`
	Command     string `json:"command,omitempty"`
	Note        string `json:"note,omitempty"`

	// Row is the 1-based row number in the source (header is row 1).
	Row int `json:"row"`
}

// HasCommand reports whether the line carries an instruction chain.
func (l Line) HasCommand() bool {
	return strings.TrimSpace(l.Command) != ""
}

// lineFromRecord maps a record with ColumnCount fields to a Line.
func lineFromRecord(rec []string, row int) Line {
	f := func(i int) string { return strings.TrimSpace(rec[i]) }
	return Line{
		ID:          f(ColID),
		Speaker:     f(ColSpeaker),
		HeadProfile: f(ColHeadProfile),
		CharLeft:    f(ColCharLeft),
		CharMid:     f(ColCharMid),
		CharRight:   f(ColCharRight),
		Text:        rec[ColText],
		Background:  f(ColBackground),
		BGM:         f(ColBGM),
		Voice:       f(ColVoice),
		Command:     f(ColCommand),
		Note:        rec[ColNote],
		Row:         row,
	}
}

// Record returns the line as a row in column order.
func (l Line) Record() []string {
	return []string{
		l.ID, l.Speaker, l.HeadProfile, l.CharLeft, l.CharMid, l.CharRight,
		l.Text, l.Background, l.BGM, l.Voice, l.Command, l.Note,
	}
}
