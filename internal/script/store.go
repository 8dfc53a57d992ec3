package script

import "log/slog"

// Store is an ordered sequence of lines plus an ID index.
//
// INVARIANTS:
//   - indices are stable for the lifetime of the Store
//   - ids maps each non-empty ID to the index of its FIRST occurrence
//
// A Store is immutable after construction; the engine resolves inherited
// fields into copies rather than rewriting lines in place.
type Store struct {
	name  string
	lines []Line
	ids   map[string]int
}

// NewStore builds a Store from lines in order. Duplicate IDs keep their
// first occurrence and are logged; they are a data-quality issue, not an error.
func NewStore(name string, lines []Line) *Store {
	s := &Store{
		name:  name,
		lines: make([]Line, len(lines)),
		ids:   make(map[string]int, len(lines)),
	}
	copy(s.lines, lines)

	for i, l := range s.lines {
		if l.ID == "" {
			continue
		}
		if first, dup := s.ids[l.ID]; dup {
			slog.Warn("duplicate line id, keeping first occurrence",
				"script", name,
				"id", l.ID,
				"first_index", first,
				"duplicate_index", i,
			)
			continue
		}
		s.ids[l.ID] = i
	}
	return s
}

// Name returns the script name the store was loaded under.
func (s *Store) Name() string { return s.name }

// Len returns the number of lines.
func (s *Store) Len() int { return len(s.lines) }

// Line returns the line at index i. ok is false when i is out of range.
func (s *Store) Line(i int) (Line, bool) {
	if i < 0 || i >= len(s.lines) {
		return Line{}, false
	}
	return s.lines[i], true
}

// Index resolves a line ID to its index.
func (s *Store) Index(id string) (int, bool) {
	if id == "" {
		return 0, false
	}
	i, ok := s.ids[id]
	return i, ok
}

// Lines returns a copy of all lines.
func (s *Store) Lines() []Line {
	out := make([]Line, len(s.lines))
	copy(out, s.lines)
	return out
}

// Anchor returns the nearest line at or before index i that has an ID,
// and the distance from it to i. ok is false when no such line exists.
func (s *Store) Anchor(i int) (id string, offset int, ok bool) {
	if i >= len(s.lines) {
		i = len(s.lines) - 1
	}
	for j := i; j >= 0; j-- {
		if s.lines[j].ID != "" {
			if idx, _ := s.ids[s.lines[j].ID]; idx == j {
				return s.lines[j].ID, i - j, true
			}
		}
	}
	return "", 0, false
}
