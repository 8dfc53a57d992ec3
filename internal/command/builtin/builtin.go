// Package builtin holds the stock command catalog.
//
// Each command is a small type behind command.Command. Commands keep no
// state between lines except the task they started last, which Interrupt
// forwards to.
package builtin

import (
	"log/slog"

	"github.com/roach88/scriptplay/internal/command"
	"github.com/roach88/scriptplay/internal/stage"
)

// All returns fresh instances of every built-in command.
func All() []command.Command {
	return []command.Command{
		&SetBoolFlag{},
		&SetIntFlag{},
		&AddIntFlag{},
		&SetStringFlag{},
		&Jump{},
		&Choice{},
		&Wait{},
		&FadeBG{},
		&Shake{},
		&PlaySFX{},
		&Effect{},
		&ClearEffect{},
		&Flip{},
		&HideChar{},
		&StopBGM{},
		&PauseBGM{},
		&TextStyle{},
	}
}

// Register adds the whole catalog to reg.
func Register(reg *command.Registry) {
	reg.Register(All()...)
}

// NewRegistry returns a registry preloaded with the catalog. A nil logger
// uses slog.Default().
func NewRegistry(logger *slog.Logger) *command.Registry {
	reg := command.NewRegistry(logger)
	Register(reg)
	return reg
}

// inflight remembers the last started task so Interrupt can reach it.
type inflight struct {
	task command.Task
}

func (f *inflight) start(t command.Task) command.Task {
	f.task = t
	return t
}

// Interrupt implements command.Command.
func (f *inflight) Interrupt() {
	if f.task != nil {
		f.task.Interrupt()
	}
}

// instant is embedded by commands without a timed effect.
type instant struct{}

// Interrupt implements command.Command.
func (instant) Interrupt() {}

func missingTarget(env command.SimEnv, cmd, target string) {
	env.Logger().Warn("command target missing",
		"code", "MISSING_TARGET",
		"command", cmd,
		"target", target,
	)
}

func badArgs(env command.SimEnv, cmd string, args command.Args) {
	env.Logger().Warn("invalid command arguments",
		"command", cmd,
		"args", []string(args),
	)
}

// position parses argument i as a stage position.
func position(env command.SimEnv, cmd string, args command.Args, i int) (stage.Position, bool) {
	pos, ok := stage.ParsePosition(args.At(i))
	if !ok {
		missingTarget(env, cmd, args.At(i))
	}
	return pos, ok
}
