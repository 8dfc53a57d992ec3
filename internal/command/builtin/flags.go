package builtin

import (
	"github.com/roach88/scriptplay/internal/command"
)

// SetBoolFlag is setboolflag(name[, value]); value defaults to true.
type SetBoolFlag struct{ instant }

func (c *SetBoolFlag) Name() string { return "setboolflag" }

func (c *SetBoolFlag) Execute(env command.Env, args command.Args) bool {
	return c.apply(env, args)
}

func (c *SetBoolFlag) ExecuteAsync(env command.Env, args command.Args) command.Task {
	return command.Once(c, env, args)
}

func (c *SetBoolFlag) Simulate(env command.SimEnv, args command.Args) { c.apply(env, args) }

func (c *SetBoolFlag) apply(env command.SimEnv, args command.Args) bool {
	name := args.At(0)
	if name == "" {
		badArgs(env, c.Name(), args)
		return false
	}
	env.Flags().SetBool(name, args.Bool(1, true))
	return true
}

// SetIntFlag is setintflag(name, n).
type SetIntFlag struct{ instant }

func (c *SetIntFlag) Name() string { return "setintflag" }

func (c *SetIntFlag) Execute(env command.Env, args command.Args) bool {
	return c.apply(env, args)
}

func (c *SetIntFlag) ExecuteAsync(env command.Env, args command.Args) command.Task {
	return command.Once(c, env, args)
}

func (c *SetIntFlag) Simulate(env command.SimEnv, args command.Args) { c.apply(env, args) }

func (c *SetIntFlag) apply(env command.SimEnv, args command.Args) bool {
	n, ok := args.Int(1)
	if args.At(0) == "" || !ok {
		badArgs(env, c.Name(), args)
		return false
	}
	env.Flags().SetInt(args.At(0), n)
	return true
}

// AddIntFlag is addintflag(name, delta).
type AddIntFlag struct{ instant }

func (c *AddIntFlag) Name() string { return "addintflag" }

func (c *AddIntFlag) Execute(env command.Env, args command.Args) bool {
	return c.apply(env, args)
}

func (c *AddIntFlag) ExecuteAsync(env command.Env, args command.Args) command.Task {
	return command.Once(c, env, args)
}

func (c *AddIntFlag) Simulate(env command.SimEnv, args command.Args) { c.apply(env, args) }

func (c *AddIntFlag) apply(env command.SimEnv, args command.Args) bool {
	d, ok := args.Int(1)
	if args.At(0) == "" || !ok {
		badArgs(env, c.Name(), args)
		return false
	}
	env.Flags().AddInt(args.At(0), d)
	return true
}

// SetStringFlag is setstringflag(name, value).
type SetStringFlag struct{ instant }

func (c *SetStringFlag) Name() string { return "setstringflag" }

func (c *SetStringFlag) Execute(env command.Env, args command.Args) bool {
	return c.apply(env, args)
}

func (c *SetStringFlag) ExecuteAsync(env command.Env, args command.Args) command.Task {
	return command.Once(c, env, args)
}

func (c *SetStringFlag) Simulate(env command.SimEnv, args command.Args) { c.apply(env, args) }

func (c *SetStringFlag) apply(env command.SimEnv, args command.Args) bool {
	if args.At(0) == "" {
		badArgs(env, c.Name(), args)
		return false
	}
	env.Flags().SetString(args.At(0), args.At(1))
	return true
}
