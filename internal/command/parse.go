package command

import (
	"fmt"
	"strings"
)

// Instruction is one parsed "name(args)" invocation.
type Instruction struct {
	Name string
	Args Args
	Raw  string
}

// String renders the instruction in script form.
func (in Instruction) String() string {
	return in.Name + "(" + strings.Join(in.Args, ", ") + ")"
}

// SyntaxError reports an instruction that could not be parsed.
type SyntaxError struct {
	Raw    string
	Reason string
}

// Error implements the error interface.
func (e *SyntaxError) Error() string {
	return fmt.Sprintf("instruction %q: %s", e.Raw, e.Reason)
}

// SplitChain splits a command cell on '&' at parenthesis depth 0, so that
// an ampersand inside an argument (a choice's resume chain) stays intact.
// Empty segments are dropped.
func SplitChain(raw string) []string {
	var out []string
	depth := 0
	start := 0
	for i, r := range raw {
		switch r {
		case '(':
			depth++
		case ')':
			if depth > 0 {
				depth--
			}
		case '&':
			if depth == 0 {
				if seg := strings.TrimSpace(raw[start:i]); seg != "" {
					out = append(out, seg)
				}
				start = i + 1
			}
		}
	}
	if seg := strings.TrimSpace(raw[start:]); seg != "" {
		out = append(out, seg)
	}
	return out
}

// Parse parses a single instruction. "name" without parentheses is an
// instruction with no arguments.
func Parse(raw string) (Instruction, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Instruction{}, &SyntaxError{Raw: raw, Reason: "empty instruction"}
	}

	open := strings.IndexByte(s, '(')
	if open < 0 {
		if strings.ContainsAny(s, ")&, ") {
			return Instruction{}, &SyntaxError{Raw: raw, Reason: "malformed name"}
		}
		return Instruction{Name: s, Raw: s}, nil
	}
	if !strings.HasSuffix(s, ")") {
		return Instruction{}, &SyntaxError{Raw: raw, Reason: "missing closing parenthesis"}
	}

	name := strings.TrimSpace(s[:open])
	if name == "" || strings.ContainsAny(name, " ,&)") {
		return Instruction{}, &SyntaxError{Raw: raw, Reason: "malformed name"}
	}

	body := s[open+1 : len(s)-1]
	args, err := splitArgs(body)
	if err != nil {
		return Instruction{}, &SyntaxError{Raw: raw, Reason: err.Error()}
	}
	return Instruction{Name: name, Args: args, Raw: s}, nil
}

// ParseChain splits and parses a whole command cell. Instructions that fail
// to parse are reported in errs and left out; the rest keep their order.
func ParseChain(raw string) (instrs []Instruction, errs []error) {
	for _, seg := range SplitChain(raw) {
		in, err := Parse(seg)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		instrs = append(instrs, in)
	}
	return instrs, errs
}

// splitArgs splits on ',' at depth 0 and trims each argument.
func splitArgs(body string) (Args, error) {
	if strings.TrimSpace(body) == "" {
		return nil, nil
	}
	var args Args
	depth := 0
	start := 0
	for i, r := range body {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
			if depth < 0 {
				return nil, fmt.Errorf("unbalanced parenthesis at %d", i)
			}
		case ',':
			if depth == 0 {
				args = append(args, strings.TrimSpace(body[start:i]))
				start = i + 1
			}
		}
	}
	if depth != 0 {
		return nil, fmt.Errorf("unbalanced parenthesis")
	}
	args = append(args, strings.TrimSpace(body[start:]))
	return args, nil
}
