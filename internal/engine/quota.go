package engine

import "fmt"

// JumpGuard counts jump-triggered line replays that happen without any
// input or elapsed time in between, and enforces a limit.
//
// A line whose command jumps synchronously makes PlayCurrentLine run again
// at once. A script such as "L1: jump(L1)" would never return; the guard
// turns that into a logged JUMP_LIMIT error.
//
// The counter resets on every external entry point (Advance, Choose, Tick,
// JumpTo, Start, Load, PlayCurrentLine).
type JumpGuard struct {
	limit   int
	current int
}

// NewJumpGuard creates a guard allowing limit consecutive jumps.
func NewJumpGuard(limit int) *JumpGuard {
	return &JumpGuard{limit: limit}
}

// Check counts one jump and reports JumpLimitError once the limit is passed.
func (g *JumpGuard) Check(target string) error {
	g.current++
	if g.current > g.limit {
		return &JumpLimitError{
			Target: target,
			Jumps:  g.current,
			Limit:  g.limit,
		}
	}
	return nil
}

// Reset sets the counter back to 0.
func (g *JumpGuard) Reset() {
	g.current = 0
}

// Current returns the number of jumps counted since the last reset.
func (g *JumpGuard) Current() int {
	return g.current
}

// Limit returns the configured limit.
func (g *JumpGuard) Limit() int {
	return g.limit
}

// JumpLimitError is returned when a jump cascade exceeds the limit.
type JumpLimitError struct {
	Target string // line the last jump landed on
	Jumps  int
	Limit  int
}

// Error implements the error interface.
func (e *JumpLimitError) Error() string {
	return fmt.Sprintf("jump to %q exceeded jump chain limit: %d jumps > %d limit",
		e.Target, e.Jumps, e.Limit)
}
