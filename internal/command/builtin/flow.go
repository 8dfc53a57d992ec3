package builtin

import (
	"strings"
	"time"

	"github.com/roach88/scriptplay/internal/command"
)

// Jump is jump(id). An unknown id lands on line 0 (the engine warns);
// Execute reports false in that case.
//
// Replay never follows jumps: the replayed range is linear.
type Jump struct{ instant }

func (c *Jump) Name() string { return "jump" }

func (c *Jump) Execute(env command.Env, args command.Args) bool {
	if args.At(0) == "" {
		badArgs(env, c.Name(), args)
		return false
	}
	return env.JumpTo(args.At(0))
}

func (c *Jump) ExecuteAsync(env command.Env, args command.Args) command.Task {
	return command.Once(c, env, args)
}

func (c *Jump) Simulate(command.SimEnv, command.Args) {}

// Choice is choice(text|resume, ...). Each argument is one option; the
// part after the first '|' is the instruction chain run when the option
// is picked and may be empty.
type Choice struct{ instant }

func (c *Choice) Name() string { return "choice" }

// Interactive marks choice as needing a user decision.
func (c *Choice) Interactive() bool { return true }

func (c *Choice) Execute(env command.Env, args command.Args) bool {
	opts := ParseOptions(args)
	if len(opts) == 0 {
		badArgs(env, c.Name(), args)
		return false
	}
	env.OfferChoices(opts)
	return true
}

func (c *Choice) ExecuteAsync(env command.Env, args command.Args) command.Task {
	return command.Once(c, env, args)
}

// Simulate is never reached: replay halts on interactive lines.
func (c *Choice) Simulate(command.SimEnv, command.Args) {}

// ParseOptions splits choice arguments into options. Arguments with empty
// display text are dropped.
func ParseOptions(args command.Args) []command.Option {
	var out []command.Option
	for _, a := range args {
		text, resume, _ := strings.Cut(a, "|")
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		out = append(out, command.Option{Text: text, Resume: strings.TrimSpace(resume)})
	}
	return out
}

// Wait is wait(seconds). Interrupt ends the wait at once.
type Wait struct{ inflight }

func (c *Wait) Name() string { return "wait" }

// Execute has nothing to wait on synchronously.
func (c *Wait) Execute(command.Env, command.Args) bool { return true }

func (c *Wait) ExecuteAsync(_ command.Env, args command.Args) command.Task {
	return c.start(command.NewTimed(args.Seconds(0, time.Second), nil, nil))
}

func (c *Wait) Simulate(command.SimEnv, command.Args) {}
