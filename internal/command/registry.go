package command

import (
	"log/slog"
	"slices"
	"sort"

	"golang.org/x/text/cases"
)

// Registry maps case-folded names to command instances and tracks the
// set of commands currently running asynchronously.
//
// INVARIANTS:
//   - a command instance appears in the running set at most once
//   - membership is added when its task starts and removed when the task
//     finishes or InterruptAll runs
//
// Not safe for concurrent use; the engine drives it from one goroutine.
type Registry struct {
	commands map[string]Command
	running  []Command
	fold     cases.Caser
	logger   *slog.Logger
}

// NewRegistry returns an empty registry. A nil logger uses slog.Default().
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		commands: make(map[string]Command),
		fold:     cases.Fold(),
		logger:   logger.With("component", "command"),
	}
}

func (r *Registry) key(name string) string {
	return r.fold.String(name)
}

// Register adds commands, replacing any previous command with the same name.
func (r *Registry) Register(cmds ...Command) {
	for _, c := range cmds {
		r.commands[r.key(c.Name())] = c
	}
}

// Lookup finds a command by name, ignoring case.
func (r *Registry) Lookup(name string) (Command, bool) {
	c, ok := r.commands[r.key(name)]
	return c, ok
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	out := make([]string, 0, len(r.commands))
	for _, c := range r.commands {
		out = append(out, c.Name())
	}
	sort.Strings(out)
	return out
}

// IsInteractive reports whether the instruction names an Interactive command.
func (r *Registry) IsInteractive(in Instruction) bool {
	c, ok := r.Lookup(in.Name)
	if !ok {
		return false
	}
	ic, ok := c.(Interactive)
	return ok && ic.Interactive()
}

// Start parses raw and returns a Chain ready to be stepped. Syntax errors
// are logged and the offending instruction is dropped.
func (r *Registry) Start(env Env, raw string) *Chain {
	instrs, errs := ParseChain(raw)
	for _, err := range errs {
		r.logger.Warn("skipping malformed instruction", "error", err)
	}
	return newChain(r, env, instrs)
}

// Execute runs instrs synchronously through Execute and returns the
// outcomes in order. skip, when non-nil, filters out instructions that must
// not run.
func (r *Registry) Execute(env Env, instrs []Instruction, skip func(Instruction) bool) []Outcome {
	out := make([]Outcome, 0, len(instrs))
	for _, in := range instrs {
		if skip != nil && skip(in) {
			continue
		}
		c, ok := r.Lookup(in.Name)
		if !ok {
			r.logUnknown(in)
			out = append(out, Outcome{Instruction: in, Unknown: true})
			continue
		}
		out = append(out, Outcome{Instruction: in, OK: c.Execute(env, in.Args)})
	}
	return out
}

// Simulate runs the data-only variant of each instruction in order. skip,
// when non-nil, filters out instructions that must not run.
func (r *Registry) Simulate(env SimEnv, instrs []Instruction, skip func(Instruction) bool) {
	for _, in := range instrs {
		if skip != nil && skip(in) {
			continue
		}
		c, ok := r.Lookup(in.Name)
		if !ok {
			r.logger.Debug("unknown command during replay", "command", in.Name)
			continue
		}
		c.Simulate(env, in.Args)
	}
}

// InterruptAll interrupts every running command and clears the running
// set. It walks a snapshot in reverse start order so that an Interrupt
// handler touching shared state cannot disturb the iteration.
func (r *Registry) InterruptAll() {
	if len(r.running) == 0 {
		return
	}
	snapshot := slices.Clone(r.running)
	r.running = r.running[:0]
	for i := len(snapshot) - 1; i >= 0; i-- {
		r.logger.Debug("interrupting command", "command", snapshot[i].Name())
		snapshot[i].Interrupt()
	}
}

// Running returns the names of the running commands in start order.
func (r *Registry) Running() []string {
	out := make([]string, len(r.running))
	for i, c := range r.running {
		out[i] = c.Name()
	}
	return out
}

// IsRunning reports whether any command is running.
func (r *Registry) IsRunning() bool {
	return len(r.running) > 0
}

func (r *Registry) track(c Command) {
	if slices.Contains(r.running, c) {
		return
	}
	r.running = append(r.running, c)
}

func (r *Registry) untrack(c Command) {
	if i := slices.Index(r.running, c); i >= 0 {
		r.running = slices.Delete(r.running, i, i+1)
	}
}

func (r *Registry) logUnknown(in Instruction) {
	r.logger.Warn("unknown command, skipping",
		"code", "UNKNOWN_COMMAND",
		"command", in.Name,
		"instruction", in.Raw,
	)
}
