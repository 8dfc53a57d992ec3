package engine

import (
	"strings"

	"github.com/roach88/scriptplay/internal/script"
	"github.com/roach88/scriptplay/internal/stage"
)

// voiceOff disables voice from the line it appears on.
const voiceOff = "false"

// resolvedLine is a line after inheritance. Character cells and Background
// hold what should be on stage; Voice holds the asset to play, if any.
type resolvedLine struct {
	script.Line

	// newBGM is set when the line itself names a track, which restarts a
	// paused BGM.
	newBGM bool
}

func (r resolvedLine) cell(pos stage.Position) string {
	switch pos {
	case stage.Left:
		return r.CharLeft
	case stage.Mid:
		return r.CharMid
	case stage.Right:
		return r.CharRight
	}
	return ""
}

// resolve fills the empty fields of ln.
//
// Speaker, Text and HeadProfile inherit from the memory in st, and a
// non-empty value becomes the new memory ("hide" included). Background,
// characters and BGM inherit from what st currently shows. Voice follows
// its own rules and may flip st.VoiceEnabled.
func resolve(ln script.Line, st *stage.State, voicePrefix string) resolvedLine {
	r := resolvedLine{Line: ln}

	r.Speaker = remember(ln.Speaker, &st.LastSpeaker)
	r.Text = remember(ln.Text, &st.LastText)
	r.HeadProfile = remember(ln.HeadProfile, &st.LastHeadProfile)

	if r.Background == "" {
		r.Background = st.Background
	}
	r.CharLeft = liveCell(ln.CharLeft, st, stage.Left)
	r.CharMid = liveCell(ln.CharMid, st, stage.Mid)
	r.CharRight = liveCell(ln.CharRight, st, stage.Right)

	if r.BGM == "" {
		r.BGM = st.BGM
	} else {
		r.newBGM = true
	}

	r.Voice = resolveVoice(ln, st, voicePrefix)
	return r
}

func remember(v string, memory *string) string {
	if v == "" {
		return *memory
	}
	*memory = v
	return v
}

func liveCell(v string, st *stage.State, pos stage.Position) string {
	if v != "" {
		return v
	}
	if c, ok := st.CharacterAt(pos); ok {
		return c.Cell()
	}
	return ""
}

func resolveVoice(ln script.Line, st *stage.State, prefix string) string {
	switch {
	case ln.Voice == "":
		if st.VoiceEnabled && ln.ID != "" {
			return prefix + ln.ID
		}
		return ""
	case strings.EqualFold(ln.Voice, voiceOff):
		st.VoiceEnabled = false
		return ""
	default:
		st.VoiceEnabled = true
		return ln.Voice
	}
}

// apply writes the stage fields of a resolved line into st.
func apply(st *stage.State, r resolvedLine) {
	st.Background = r.Background

	for _, pos := range stage.Positions {
		switch cell := r.cell(pos); {
		case cell == "":
		case strings.EqualFold(cell, stage.Hide):
			st.HideAt(pos)
		default:
			st.Show(pos, stage.ParseCharacter(cell))
		}
	}

	if r.newBGM {
		st.BGM = r.BGM
		st.BGMPaused = false
	}
}
