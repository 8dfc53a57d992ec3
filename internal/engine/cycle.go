package engine

import (
	"strconv"
	"strings"
)

// CycleDetector tracks the lines played during one synchronous jump
// cascade, so that a cascade returning to a line it already played is cut
// at once instead of running into the JumpGuard limit.
//
// Example cycle:
//
//	L1 plays → jump(L5) → L5 plays → jump(L1) → L1 would play again ← CYCLE
//
// No command branches on flags, so a revisit within one cascade would
// repeat forever. Across input or elapsed time a revisit is a normal loop;
// the detector is cleared at every entry point.
type CycleDetector struct {
	seen map[int]bool
	path []string
}

// NewCycleDetector creates an empty detector.
func NewCycleDetector() *CycleDetector {
	return &CycleDetector{seen: make(map[int]bool)}
}

// WouldCycle reports whether line was already played in this cascade.
func (c *CycleDetector) WouldCycle(line int) bool {
	return c.seen[line]
}

// Record marks line as played. id labels it in Path; lines without an ID
// are shown by index.
func (c *CycleDetector) Record(line int, id string) {
	c.seen[line] = true
	if id == "" {
		id = "#" + strconv.Itoa(line)
	}
	c.path = append(c.path, id)
}

// Clear forgets the cascade.
func (c *CycleDetector) Clear() {
	clear(c.seen)
	c.path = c.path[:0]
}

// Path renders the cascade in play order, e.g. "L1 -> L5".
func (c *CycleDetector) Path() string {
	return strings.Join(c.path, " -> ")
}

// Len returns the number of lines recorded.
func (c *CycleDetector) Len() int {
	return len(c.path)
}
