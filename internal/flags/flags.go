// Package flags stores the named boolean, integer and string variables
// that scripts set through commands and that hosts read back.
package flags

import "maps"

// Set holds the three flag maps. The zero value is not usable; call New.
type Set struct {
	Bools   map[string]bool   `json:"bools"`
	Ints    map[string]int    `json:"ints"`
	Strings map[string]string `json:"strings"`
}

// New returns an empty Set.
func New() *Set {
	return &Set{
		Bools:   make(map[string]bool),
		Ints:    make(map[string]int),
		Strings: make(map[string]string),
	}
}

// GetBool returns the named flag; unset flags are false.
func (s *Set) GetBool(name string) bool { return s.Bools[name] }

// SetBool sets the named flag.
func (s *Set) SetBool(name string, v bool) { s.Bools[name] = v }

// GetInt returns the named flag; unset flags are 0.
func (s *Set) GetInt(name string) int { return s.Ints[name] }

// SetInt sets the named flag.
func (s *Set) SetInt(name string, v int) { s.Ints[name] = v }

// AddInt adds delta to the named flag and returns the new value.
func (s *Set) AddInt(name string, delta int) int {
	s.Ints[name] += delta
	return s.Ints[name]
}

// GetString returns the named flag; unset flags are "".
func (s *Set) GetString(name string) string { return s.Strings[name] }

// SetString sets the named flag.
func (s *Set) SetString(name, v string) { s.Strings[name] = v }

// Clear removes every flag.
func (s *Set) Clear() {
	clear(s.Bools)
	clear(s.Ints)
	clear(s.Strings)
}

// Clone returns a deep copy.
func (s *Set) Clone() *Set {
	c := New()
	maps.Copy(c.Bools, s.Bools)
	maps.Copy(c.Ints, s.Ints)
	maps.Copy(c.Strings, s.Strings)
	return c
}

// Restore overwrites s with the contents of other.
func (s *Set) Restore(other *Set) {
	s.Clear()
	if other == nil {
		return
	}
	maps.Copy(s.Bools, other.Bools)
	maps.Copy(s.Ints, other.Ints)
	maps.Copy(s.Strings, other.Strings)
}
