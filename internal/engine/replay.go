package engine

import (
	"fmt"
	"slices"

	"github.com/roach88/scriptplay/internal/command"
	"github.com/roach88/scriptplay/internal/script"
	"github.com/roach88/scriptplay/internal/stage"
)

// FastForward rebuilds the state as if lines [0,k) had been played, without
// live side effects, then pushes the result to the Presenter once.
//
// Replay stops at the first line j < k whose Command offers a choice. That
// line's own fields and non-interactive instructions are still applied; it
// becomes the current line, its dialogue is shown and its choice offered
// live. FastForward returns the index the pointer ends on: k, or j after a
// halt. When it returns k the line at k has not been played yet.
func (e *Engine) FastForward(k int) int {
	if e.script == nil {
		return 0
	}
	k = max(0, min(k, e.script.Len()))
	e.hideChoices()

	stop, halted := e.replay(k)
	e.materialize()

	e.pointer = stop
	e.finished = false
	if halted {
		e.presentResume(stop)
	} else {
		e.pending = true
	}
	e.logger.Debug("fast-forward", "target", k, "stop", stop, "halted", halted)
	return stop
}

// replay simulates lines [0,k) from empty state and flags. It reports the
// line it stopped at and whether that was a choice halt.
func (e *Engine) replay(k int) (int, bool) {
	e.stopCommands()
	e.cancelAuto()
	e.replaying = true
	defer func() { e.replaying = false }()

	e.state.Reset()
	e.flags.Clear()
	env := simEnv{state: e.state, flags: e.flags, logger: e.logger}

	for i := range k {
		ln, _ := e.script.Line(i)
		e.state.TextStyle = stage.TextStyle{}
		apply(e.state, resolve(ln, e.state, e.settings.VoicePrefix))
		if !ln.HasCommand() {
			continue
		}
		instrs, _ := command.ParseChain(ln.Command)
		e.registry.Simulate(env, instrs, e.registry.IsInteractive)
		if slices.ContainsFunc(instrs, e.registry.IsInteractive) {
			return i, true
		}
	}
	return k, false
}

// materialize pushes the whole replayed state to the Presenter.
func (e *Engine) materialize() {
	st := e.state
	p := e.presenter

	e.playVoice("")
	p.ChangeBackground(backgroundName(st.Background))
	if st.BGM == "" {
		p.StopBGM()
	} else {
		p.PlayBGM(st.BGM)
		if st.BGMPaused {
			p.PauseBGM()
		}
	}
	for _, pos := range stage.Positions {
		if c, ok := st.Characters[pos]; ok {
			p.ShowCharacter(pos, c.ID, c.Emotion)
			p.SetOrientation(pos, st.Facing(pos))
		} else {
			p.HideCharacter(pos)
		}
	}
	p.SetEffects(slices.Clone(st.Effects))
	p.SetTextStyle(st.TextStyle)
}

// presentResume shows line j as already played: its dialogue fully
// revealed and its choice, if any, offered.
func (e *Engine) presentResume(j int) {
	st := e.state
	e.pending = false
	e.presenter.SetHeadProfile(st.LastHeadProfile)
	e.presenter.UpdateDialogue(st.LastSpeaker, st.LastText)
	e.startReveal(st.LastText)
	e.finishReveal()

	ln, _ := e.script.Line(j)
	if !ln.HasCommand() {
		return
	}
	instrs, _ := command.ParseChain(ln.Command)
	e.registry.Execute(liveEnv{e}, instrs, func(in command.Instruction) bool {
		return !e.registry.IsInteractive(in)
	})
}

// playFrom fast-forwards to idx and plays it, unless replay halted first.
func (e *Engine) playFrom(idx int) {
	if e.FastForward(idx) == idx {
		e.play()
	}
}

// JumpTo fast-forwards to the line with id and plays it. Unknown ids fall
// back to line 0 with a warning; the result reports whether id resolved.
func (e *Engine) JumpTo(id string) bool {
	e.resetCascade()
	if e.script == nil {
		return false
	}
	idx, ok := e.resolveID(id)
	e.playFrom(idx)
	return ok
}

// JumpToLine fast-forwards to line index k and plays it.
func (e *Engine) JumpToLine(k int) error {
	e.resetCascade()
	if e.script == nil {
		return ErrNoScript
	}
	if k < 0 || k >= e.script.Len() {
		return fmt.Errorf("line %d out of range [0,%d)", k, e.script.Len())
	}
	e.playFrom(k)
	return nil
}

// Start loads the named script and plays it from startID (or the first
// line when startID is empty). When the script cannot be loaded the engine
// keeps its current script and a SCRIPT_UNAVAILABLE error is returned.
func (e *Engine) Start(name, startID string) error {
	e.resetCascade()
	st, err := e.loadScript(name)
	if err != nil {
		return err
	}
	e.SetScript(st)
	e.history = nil
	e.clock = NewClock()

	idx := 0
	if startID != "" {
		idx, _ = e.resolveID(startID)
	}
	e.logger.Info("script started", "script", name, "lines", st.Len(), "start", idx)
	e.playFrom(idx)
	return nil
}

func (e *Engine) loadScript(name string) (*script.Store, error) {
	if e.source == nil {
		return nil, NewScriptUnavailableError(name, fmt.Errorf("no script source"))
	}
	res, err := script.Load(e.source, name)
	if err != nil {
		e.logger.Error("script unavailable", "code", ErrCodeScriptUnavailable, "script", name, "error", err)
		return nil, NewScriptUnavailableError(name, err)
	}
	for _, pe := range res.Errors {
		e.logger.Warn("row skipped", "code", ErrCodeParse, "script", name, "error", pe)
	}
	return res.Store, nil
}
