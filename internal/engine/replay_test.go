package engine

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/scriptplay/internal/script"
	"github.com/roach88/scriptplay/internal/stage"
)

// linearScript exercises every data-bearing command without branching.
func linearScript() []script.Line {
	return []script.Line{
		{ID: "L1", Speaker: "Alice", HeadProfile: "alice", CharLeft: "Alice_happy", Text: "Hello", Background: "park", BGM: "theme"},
		{Text: "Flags", Command: "setboolflag(met)&setintflag(score,2)&addintflag(score,3)&setstringflag(name,Al)"},
		{Speaker: "Bob", CharRight: "Bob_sad", Text: "Fade", Command: "fadebg(night,2)&effect(rain)"},
		{HeadProfile: "hide", Text: "Flip", Command: "flip(left)&textstyle(blue,18)"},
		{Text: "Quiet", Voice: "false", Command: "pausebgm()&effect(snow)"},
		{ID: "L6", CharMid: "Carl", Text: "Hide", Command: "hidechar(right)&cleareffect(rain)&wait(1)"},
		{Text: "Shake", Command: "shake(screen,1)&playsfx(boom)"},
		{Background: "black", BGM: "battle", Voice: "custom.ogg", Text: "Last"},
	}
}

func TestFastForward_MatchesInteractivePlay(t *testing.T) {
	lines := linearScript()
	for k := range lines {
		t.Run(fmt.Sprintf("k=%d", k), func(t *testing.T) {
			live, _ := newTestEngine(t, lines)
			live.PlayCurrentLine()
			for range k {
				step(t, live)
			}
			settle(t, live)

			ff, _ := newTestEngine(t, lines)
			require.Equal(t, k, ff.FastForward(k))
			ff.PlayCurrentLine()
			settle(t, ff)

			assert.Equal(t, k, ff.Pointer())
			assert.Equal(t, stateDigest(t, live.State()), stateDigest(t, ff.State()))
			assert.Equal(t, live.Flags(), ff.Flags())
			ls, lt := live.Dialogue()
			fs, ft := ff.Dialogue()
			assert.Equal(t, [2]string{ls, lt}, [2]string{fs, ft})
		})
	}
}

func TestFastForward_MaterializesOnce(t *testing.T) {
	var lines []script.Line
	for i := range 50 {
		lines = append(lines, script.Line{
			Background: fmt.Sprintf("bg%d", i),
			CharMid:    fmt.Sprintf("Extra_%d", i),
			BGM:        fmt.Sprintf("track%d", i%3),
			Command:    "effect(e" + fmt.Sprint(i%4) + ")",
		})
	}
	e, rec := newTestEngine(t, lines)
	e.FastForward(50)

	assert.Equal(t, 1, rec.Count("background"))
	assert.Equal(t, 1, rec.Count("bgm.play"))
	assert.Equal(t, 1, rec.Count("show"))
	assert.Equal(t, 1, rec.Count("effects"))
	assert.Zero(t, rec.Count("dialogue"))
	assert.Zero(t, rec.Count("animate.finish"))

	assert.Equal(t, "bg49", rec.Screen.Background)
	assert.Equal(t, "track1", rec.Screen.BGM)
	assert.Equal(t, []string{"e0", "e1", "e2", "e3"}, rec.Screen.Effects)
	assert.Equal(t, 50, e.Pointer())
}

func TestFastForward_HaltsAtChoice(t *testing.T) {
	lines := []script.Line{
		{Speaker: "Alice", Text: "start", Background: "bg1"},
		{CharLeft: "Bob", Text: "pick", Voice: "false", Command: "setboolflag(seen)&choice(Left|jump(L4), Right|)&effect(glow)"},
		{Background: "bg2", Text: "never replayed", Command: "setboolflag(late)"},
		{Text: "three"},
		{ID: "L4", Text: "four"},
	}
	e, rec := newTestEngine(t, lines)

	assert.Equal(t, 1, e.FastForward(4))
	assert.Equal(t, 1, e.Pointer())
	assert.Equal(t, ModeChoicePending, e.Mode())

	st := e.State()
	assert.Equal(t, "bg1", st.Background)
	assert.Equal(t, "Bob", st.Characters[stage.Left].ID)
	assert.False(t, st.VoiceEnabled)
	assert.Equal(t, []string{"glow"}, st.Effects, "non-choice instructions after the choice still simulate")
	assert.True(t, e.Flags().GetBool("seen"))
	assert.False(t, e.Flags().GetBool("late"))

	speaker, text := e.Dialogue()
	assert.Equal(t, "Alice", speaker)
	assert.Equal(t, "pick", text)
	assert.Equal(t, "pick", rec.Screen.Text)
	assert.Equal(t, []string{"Left", "Right"}, rec.Screen.Choices)
	assert.Equal(t, 1, rec.Count("choices.show"))

	require.NoError(t, e.Choose(0))
	assert.Equal(t, 4, e.Pointer())
}

func TestFastForward_NoHaltBeforeChoiceLine(t *testing.T) {
	e, _ := newTestEngine(t, []script.Line{
		{Text: "a"},
		{Text: "pick", Command: "choice(A|, B|)"},
	})
	assert.Equal(t, 1, e.FastForward(1), "the choice line itself is not replayed")
	assert.Equal(t, ModeAwaitingInput, e.Mode())

	e.PlayCurrentLine()
	assert.Equal(t, ModeChoicePending, e.Mode())
}

func TestFastForward_ResetsBeforeReplay(t *testing.T) {
	e, _ := newTestEngine(t, linearScript())
	e.PlayCurrentLine()
	for range 4 {
		step(t, e)
	}
	require.True(t, e.Flags().GetBool("met"))

	e.FastForward(1)
	assert.False(t, e.Flags().GetBool("met"))
	assert.Equal(t, "park", e.State().Background)
	assert.Empty(t, e.State().Effects)
}

func TestFastForward_DoesNotRunLiveCommands(t *testing.T) {
	e, rec := newTestEngine(t, linearScript())
	e.FastForward(len(linearScript()))

	assert.Zero(t, rec.Count("sfx"))
	assert.Zero(t, rec.Count("audio.request"))
	assert.Zero(t, rec.Count("voice.play"))
	assert.Empty(t, e.Registry().Running())
}

func TestJumpTo(t *testing.T) {
	e, rec := newTestEngine(t, linearScript())
	e.PlayCurrentLine()

	assert.True(t, e.JumpTo("L6"))
	assert.Equal(t, 5, e.Pointer())
	_, text := e.Dialogue()
	assert.Equal(t, "Hide", text)
	assert.Equal(t, "Carl", rec.Screen.Characters[stage.Mid].ID)

	assert.False(t, e.JumpTo("missing"))
	assert.Equal(t, 0, e.Pointer())
	_, text = e.Dialogue()
	assert.Equal(t, "Hello", text)
}

func TestJumpToLine(t *testing.T) {
	e, _ := newTestEngine(t, linearScript())
	require.NoError(t, e.JumpToLine(3))
	assert.Equal(t, 3, e.Pointer())
	assert.Error(t, e.JumpToLine(-1))
	assert.Error(t, e.JumpToLine(100))
}

const introCSV = "ID,Speaker,HeadProfile,CharLeft,CharMid,CharRight,Text,Background,BGM,Voice,Command,Note\n" +
	"S1,Alice,,,Alice,,Welcome,hall,,,,\n" +
	",,,,,,\"Come in, please\",,,,setboolflag(entered),\n" +
	"bad,row\n" +
	"S3,Bob,,,,,Hello,,,,,\n"

func TestStart(t *testing.T) {
	src := script.MapSource{"intro": introCSV}

	t.Run("from the first line", func(t *testing.T) {
		e, _ := newTestEngine(t, nil, WithSource(src))
		require.NoError(t, e.Start("intro", ""))
		assert.Equal(t, "intro", e.Script().Name())
		assert.Equal(t, 3, e.Script().Len(), "malformed row skipped")
		assert.Equal(t, 0, e.Pointer())
		_, text := e.Dialogue()
		assert.Equal(t, "Welcome", text)
	})

	t.Run("from an id", func(t *testing.T) {
		e, _ := newTestEngine(t, nil, WithSource(src))
		require.NoError(t, e.Start("intro", "S3"))
		assert.Equal(t, 2, e.Pointer())
		assert.True(t, e.Flags().GetBool("entered"))
		assert.Equal(t, "hall", e.State().Background)
	})

	t.Run("unknown start id falls back to zero", func(t *testing.T) {
		e, _ := newTestEngine(t, nil, WithSource(src))
		require.NoError(t, e.Start("intro", "nope"))
		assert.Equal(t, 0, e.Pointer())
	})

	t.Run("missing script keeps the current one", func(t *testing.T) {
		e, _ := newTestEngine(t, linearScript(), WithSource(src))
		e.PlayCurrentLine()
		err := e.Start("missing", "")
		require.Error(t, err)
		assert.True(t, IsScriptUnavailable(err))
		assert.Equal(t, "test", e.Script().Name())
		assert.Equal(t, 0, e.Pointer())
	})

	t.Run("no source", func(t *testing.T) {
		e, _ := newTestEngine(t, nil)
		assert.True(t, IsScriptUnavailable(e.Start("intro", "")))
	})
}
