package command

import (
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/roach88/scriptplay/internal/flags"
	"github.com/roach88/scriptplay/internal/stage"
)

// SimEnv is what a command may touch while simulating: data only.
type SimEnv interface {
	Flags() *flags.Set
	Stage() *stage.State
	Logger() *slog.Logger
}

// Env is the live execution environment handed to commands by the engine.
type Env interface {
	SimEnv

	Presenter() stage.Presenter

	// JumpTo moves the line pointer to the line with id. Unknown ids fall
	// back to line 0 with a warning; the return value reports whether the
	// id resolved.
	JumpTo(id string) bool

	// OfferChoices presents options and puts the engine into ChoicePending.
	OfferChoices(options []Option)

	// AssetGuard bounds how long a command waits on an external asset.
	AssetGuard() time.Duration
}

// Option is one entry of an interactive choice.
type Option struct {
	Text   string
	Resume string // instruction chain run when the option is picked
}

// Command is the capability interface every instruction implements.
type Command interface {
	// Name is the registry key (matched case-insensitively).
	Name() string

	// Execute applies the command immediately and reports success.
	Execute(env Env, args Args) bool

	// ExecuteAsync starts the command and returns its Task. Commands
	// without a timed effect return Once(...).
	ExecuteAsync(env Env, args Args) Task

	// Interrupt forces the in-flight task, if any, to its terminal state.
	// It must be idempotent and must not fail when the animated target
	// has gone away.
	Interrupt()

	// Simulate applies only the data effect of the command. It never
	// touches a presenter, loads assets or starts audio.
	Simulate(env SimEnv, args Args)
}

// Interactive is implemented by commands that need a real user decision.
// Replay stops at the first line that contains one.
type Interactive interface {
	Interactive() bool
}

// Args are the comma-separated arguments of one instruction.
type Args []string

// At returns argument i, or "" when absent.
func (a Args) At(i int) string {
	if i < 0 || i >= len(a) {
		return ""
	}
	return a[i]
}

// Float parses argument i, returning def when absent or malformed.
func (a Args) Float(i int, def float64) float64 {
	s := a.At(i)
	if s == "" {
		return def
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return def
	}
	return f
}

// Int parses argument i as an integer.
func (a Args) Int(i int) (int, bool) {
	n, err := strconv.Atoi(a.At(i))
	if err != nil {
		return 0, false
	}
	return n, true
}

// Bool parses argument i, returning def when absent.
// Accepts true/false/1/0/yes/no/on/off.
func (a Args) Bool(i int, def bool) bool {
	switch strings.ToLower(a.At(i)) {
	case "":
		return def
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	}
	return def
}

// Seconds parses argument i as seconds, returning def when absent.
func (a Args) Seconds(i int, def time.Duration) time.Duration {
	f := a.Float(i, -1)
	if f < 0 {
		return def
	}
	return time.Duration(f * float64(time.Second))
}
