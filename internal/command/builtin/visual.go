package builtin

import (
	"strconv"
	"time"

	"github.com/roach88/scriptplay/internal/command"
	"github.com/roach88/scriptplay/internal/stage"
)

// animate returns a Timed task driving h over d.
func animate(h stage.AnimationHandle, d time.Duration) *command.Timed {
	return command.NewTimed(d, h.Set, h.Finish)
}

// FadeBG is fadebg(name[, seconds]). The background changes at once and
// fades in from alpha 0; Interrupt lands on alpha 1.
type FadeBG struct{ inflight }

func (c *FadeBG) Name() string { return "fadebg" }

func (c *FadeBG) Execute(env command.Env, args command.Args) bool {
	if !c.change(env, args) {
		return false
	}
	env.Presenter().ChangeBackground(args.At(0))
	return true
}

func (c *FadeBG) ExecuteAsync(env command.Env, args command.Args) command.Task {
	if !c.Execute(env, args) {
		return command.Completed(false)
	}
	h, err := env.Presenter().Animate(stage.TargetBackground, "alpha", 0, 1, args.Seconds(1, time.Second))
	if err != nil {
		env.Logger().Debug("fade skipped", "command", c.Name(), "error", err)
		return command.Completed(true)
	}
	return c.start(animate(h, args.Seconds(1, time.Second)))
}

func (c *FadeBG) Simulate(env command.SimEnv, args command.Args) { c.change(env, args) }

func (c *FadeBG) change(env command.SimEnv, args command.Args) bool {
	if args.At(0) == "" {
		badArgs(env, c.Name(), args)
		return false
	}
	env.Stage().Background = args.At(0)
	return true
}

// Shake is shake(target[, seconds]); target is a position or one of
// background, dialogue, screen. It has no data effect.
type Shake struct{ inflight }

func (c *Shake) Name() string { return "shake" }

func (c *Shake) Execute(env command.Env, args command.Args) bool {
	t := c.ExecuteAsync(env, args)
	t.Interrupt()
	return t.OK()
}

func (c *Shake) ExecuteAsync(env command.Env, args command.Args) command.Task {
	target, ok := c.target(env, args)
	if !ok {
		return command.Completed(false)
	}
	d := args.Seconds(1, 500*time.Millisecond)
	h, err := env.Presenter().Animate(target, "shake", 1, 0, d)
	if err != nil {
		missingTarget(env, c.Name(), target)
		return command.Failed(err)
	}
	return c.start(animate(h, d))
}

func (c *Shake) Simulate(command.SimEnv, command.Args) {}

func (c *Shake) target(env command.SimEnv, args command.Args) (string, bool) {
	switch t := args.At(0); t {
	case "", stage.TargetScreen:
		return stage.TargetScreen, true
	case stage.TargetBackground, stage.TargetDialogue:
		return t, true
	}
	pos, ok := position(env, c.Name(), args, 0)
	if !ok {
		return "", false
	}
	if _, shown := env.Stage().CharacterAt(pos); !shown {
		missingTarget(env, c.Name(), pos.String())
		return "", false
	}
	return pos.String(), true
}

// Effect is effect(name): adds a named screen effect to the active set.
type Effect struct{ instant }

func (c *Effect) Name() string { return "effect" }

func (c *Effect) Execute(env command.Env, args command.Args) bool {
	if !c.apply(env, args) {
		return false
	}
	env.Presenter().SetEffects(env.Stage().Effects)
	return true
}

func (c *Effect) ExecuteAsync(env command.Env, args command.Args) command.Task {
	return command.Once(c, env, args)
}

func (c *Effect) Simulate(env command.SimEnv, args command.Args) { c.apply(env, args) }

func (c *Effect) apply(env command.SimEnv, args command.Args) bool {
	if args.At(0) == "" {
		badArgs(env, c.Name(), args)
		return false
	}
	env.Stage().AddEffect(args.At(0))
	return true
}

// ClearEffect is cleareffect(name) or cleareffect(*). Clearing an effect
// that is not active fails without changing anything.
type ClearEffect struct{ instant }

func (c *ClearEffect) Name() string { return "cleareffect" }

func (c *ClearEffect) Execute(env command.Env, args command.Args) bool {
	if !c.apply(env, args) {
		return false
	}
	env.Presenter().SetEffects(env.Stage().Effects)
	return true
}

func (c *ClearEffect) ExecuteAsync(env command.Env, args command.Args) command.Task {
	return command.Once(c, env, args)
}

func (c *ClearEffect) Simulate(env command.SimEnv, args command.Args) { c.apply(env, args) }

func (c *ClearEffect) apply(env command.SimEnv, args command.Args) bool {
	switch name := args.At(0); name {
	case "", "*":
		env.Stage().ClearEffects()
		return true
	default:
		if !env.Stage().RemoveEffect(name) {
			missingTarget(env, c.Name(), name)
			return false
		}
		return true
	}
}

// Flip is flip(position): mirrors the character shown there.
type Flip struct{ instant }

func (c *Flip) Name() string { return "flip" }

func (c *Flip) Execute(env command.Env, args command.Args) bool {
	pos, facing, ok := c.apply(env, args)
	if !ok {
		return false
	}
	env.Presenter().SetOrientation(pos, facing)
	return true
}

func (c *Flip) ExecuteAsync(env command.Env, args command.Args) command.Task {
	return command.Once(c, env, args)
}

func (c *Flip) Simulate(env command.SimEnv, args command.Args) { c.apply(env, args) }

func (c *Flip) apply(env command.SimEnv, args command.Args) (stage.Position, int, bool) {
	pos, ok := position(env, c.Name(), args, 0)
	if !ok {
		return 0, 0, false
	}
	facing, ok := env.Stage().Flip(pos)
	if !ok {
		missingTarget(env, c.Name(), pos.String())
		return 0, 0, false
	}
	return pos, facing, true
}

// HideChar is hidechar(position). Orientation is kept for a re-show.
type HideChar struct{ instant }

func (c *HideChar) Name() string { return "hidechar" }

func (c *HideChar) Execute(env command.Env, args command.Args) bool {
	pos, ok := c.apply(env, args)
	if !ok {
		return false
	}
	env.Presenter().HideCharacter(pos)
	return true
}

func (c *HideChar) ExecuteAsync(env command.Env, args command.Args) command.Task {
	return command.Once(c, env, args)
}

func (c *HideChar) Simulate(env command.SimEnv, args command.Args) { c.apply(env, args) }

func (c *HideChar) apply(env command.SimEnv, args command.Args) (stage.Position, bool) {
	pos, ok := position(env, c.Name(), args, 0)
	if !ok {
		return 0, false
	}
	if !env.Stage().HideAt(pos) {
		missingTarget(env, c.Name(), pos.String())
		return 0, false
	}
	return pos, true
}

// TextStyle is textstyle(color[, size]). It lasts for the current line
// only; the engine reverts it when the next line plays.
type TextStyle struct{ instant }

func (c *TextStyle) Name() string { return "textstyle" }

func (c *TextStyle) Execute(env command.Env, args command.Args) bool {
	if !c.apply(env, args) {
		return false
	}
	env.Presenter().SetTextStyle(env.Stage().TextStyle)
	return true
}

func (c *TextStyle) ExecuteAsync(env command.Env, args command.Args) command.Task {
	return command.Once(c, env, args)
}

func (c *TextStyle) Simulate(env command.SimEnv, args command.Args) { c.apply(env, args) }

func (c *TextStyle) apply(env command.SimEnv, args command.Args) bool {
	style := stage.TextStyle{Color: args.At(0)}
	if s := args.At(1); s != "" {
		size, err := strconv.ParseFloat(s, 64)
		if err != nil || size <= 0 {
			badArgs(env, c.Name(), args)
			return false
		}
		style.Size = size
	}
	if style.IsZero() {
		badArgs(env, c.Name(), args)
		return false
	}
	env.Stage().TextStyle = style
	return true
}
