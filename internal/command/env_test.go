package command

import (
	"log/slog"
	"time"

	"github.com/roach88/scriptplay/internal/flags"
	"github.com/roach88/scriptplay/internal/stage"
)

type testEnv struct {
	flags   *flags.Set
	state   *stage.State
	rec     *stage.Recorder
	jumps   []string
	choices [][]Option
}

func newTestEnv() *testEnv {
	return &testEnv{flags: flags.New(), state: stage.NewState(), rec: stage.NewRecorder()}
}

func (e *testEnv) Flags() *flags.Set             { return e.flags }
func (e *testEnv) Stage() *stage.State           { return e.state }
func (e *testEnv) Logger() *slog.Logger          { return slog.Default() }
func (e *testEnv) Presenter() stage.Presenter    { return e.rec }
func (e *testEnv) AssetGuard() time.Duration     { return time.Second }
func (e *testEnv) OfferChoices(options []Option) { e.choices = append(e.choices, options) }
func (e *testEnv) JumpTo(id string) bool         { e.jumps = append(e.jumps, id); return true }

// logCmd appends its name and args to a shared log.
type logCmd struct {
	name string
	log  *[]string
	ok   bool
}

func (c *logCmd) Name() string { return c.name }
func (c *logCmd) Execute(_ Env, args Args) bool {
	*c.log = append(*c.log, c.name+":"+args.At(0))
	return c.ok
}
func (c *logCmd) ExecuteAsync(env Env, args Args) Task { return Once(c, env, args) }
func (c *logCmd) Interrupt()                           {}
func (c *logCmd) Simulate(_ SimEnv, args Args) {
	*c.log = append(*c.log, "sim:"+c.name+":"+args.At(0))
}

// timedCmd runs for its first argument in seconds and logs start, finish
// and interrupt events.
type timedCmd struct {
	name        string
	log         *[]string
	task        *Timed
	interactive bool
}

func (c *timedCmd) Name() string           { return c.name }
func (c *timedCmd) Interactive() bool      { return c.interactive }
func (c *timedCmd) Execute(Env, Args) bool { return true }
func (c *timedCmd) Simulate(SimEnv, Args)  {}
func (c *timedCmd) ExecuteAsync(_ Env, args Args) Task {
	*c.log = append(*c.log, "start:"+c.name)
	c.task = NewTimed(args.Seconds(0, time.Second), nil, func() error {
		*c.log = append(*c.log, "finish:"+c.name)
		return nil
	})
	return c.task
}
func (c *timedCmd) Interrupt() {
	*c.log = append(*c.log, "interrupt:"+c.name)
	if c.task != nil {
		c.task.Interrupt()
	}
}
