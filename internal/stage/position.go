package stage

import (
	"fmt"
	"strings"
)

// Position is a closed set of stage slots.
type Position int

const (
	Left Position = iota + 1
	Mid
	Right
)

// Positions lists every slot in display order.
var Positions = []Position{Left, Mid, Right}

// String returns the canonical name.
func (p Position) String() string {
	switch p {
	case Left:
		return "left"
	case Mid:
		return "mid"
	case Right:
		return "right"
	default:
		return fmt.Sprintf("position(%d)", int(p))
	}
}

// MarshalText implements encoding.TextMarshaler so positions can key JSON maps.
func (p Position) MarshalText() ([]byte, error) {
	if !p.Valid() {
		return nil, fmt.Errorf("invalid position %d", int(p))
	}
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Position) UnmarshalText(b []byte) error {
	pos, ok := ParsePosition(string(b))
	if !ok {
		return fmt.Errorf("unknown position %q", string(b))
	}
	*p = pos
	return nil
}

// Valid reports whether p is one of the three slots.
func (p Position) Valid() bool {
	return p >= Left && p <= Right
}

// ParsePosition normalizes the free-form aliases used in scripts
// (L/Left/left, M/Mid/Middle/C/Center, R/Right) into a Position.
func ParsePosition(s string) (Position, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "l", "left":
		return Left, true
	case "m", "mid", "middle", "c", "center", "centre":
		return Mid, true
	case "r", "right":
		return Right, true
	}
	return 0, false
}
