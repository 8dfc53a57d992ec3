package harness

import (
	"encoding/json"
	"fmt"
	"reflect"
	"slices"
	"strings"

	"github.com/roach88/scriptplay/internal/canon"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string   // Assertion type for categorization
	Expected string   // Human-readable expected outcome
	Actual   string   // Human-readable actual outcome
	Trace    []string // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Trace) > 0 {
		fmt.Fprintf(&buf, "\nFull trace:\n")
		for i, call := range e.Trace {
			fmt.Fprintf(&buf, "  [%d] %s\n", i+1, call)
		}
	}
	return buf.String()
}

// EvaluateAssertions checks every assertion against result and returns the
// failure messages.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errs []string
	for i, a := range assertions {
		var err error
		switch a.Type {
		case AssertTraceContains:
			err = assertTraceContains(result.Trace, a)
		case AssertTraceOrder:
			err = assertTraceOrder(result.Trace, a)
		case AssertTraceCount:
			err = assertTraceCount(result.Trace, a)
		case AssertFinalState:
			err = assertFinalState(result.State, a)
		default:
			err = fmt.Errorf("unknown assertion type %q", a.Type)
		}
		if err != nil {
			errs = append(errs, fmt.Sprintf("assertions[%d]: %v", i, err))
		}
	}
	return errs
}

// matchCall reports whether a rendered call matches pattern: the whole
// line, or its leading space-separated words.
func matchCall(call, pattern string) bool {
	return call == pattern || strings.HasPrefix(call, pattern+" ")
}

func assertTraceContains(trace []string, a Assertion) error {
	if slices.ContainsFunc(trace, func(c string) bool { return matchCall(c, a.Call) }) {
		return nil
	}
	return &AssertionError{
		Type:     AssertTraceContains,
		Expected: fmt.Sprintf("call %q", a.Call),
		Actual:   "not found in trace",
		Trace:    trace,
	}
}

// assertTraceOrder checks that calls appear in order. Calls don't need to
// be consecutive; each match must come after the previous one.
func assertTraceOrder(trace []string, a Assertion) error {
	pos := 0
	for _, want := range a.Calls {
		found := -1
		for i := pos; i < len(trace); i++ {
			if matchCall(trace[i], want) {
				found = i
				break
			}
		}
		if found < 0 {
			return &AssertionError{
				Type:     AssertTraceOrder,
				Expected: fmt.Sprintf("calls in order: %q", a.Calls),
				Actual:   fmt.Sprintf("%q not found after position %d", want, pos),
				Trace:    trace,
			}
		}
		pos = found + 1
	}
	return nil
}

func assertTraceCount(trace []string, a Assertion) error {
	count := 0
	for _, c := range trace {
		op, _, _ := strings.Cut(c, " ")
		if op == a.Op {
			count++
		}
	}
	if count != a.Count {
		return &AssertionError{
			Type:     AssertTraceCount,
			Expected: fmt.Sprintf("%d occurrences of %s", a.Count, a.Op),
			Actual:   fmt.Sprintf("%d occurrences", count),
			Trace:    trace,
		}
	}
	return nil
}

// assertFinalState checks that every expected key matches the final state,
// with subset semantics for nested maps.
func assertFinalState(state map[string]any, a Assertion) error {
	actual, err := normalize(state)
	if err != nil {
		return fmt.Errorf("normalize state: %w", err)
	}
	expected, err := normalize(a.Expect)
	if err != nil {
		return fmt.Errorf("normalize expect: %w", err)
	}

	if path, ok := matchSubset(actual, expected, ""); !ok {
		got, _ := json.Marshal(lookup(actual, path))
		want, _ := json.Marshal(lookup(expected, path))
		return &AssertionError{
			Type:     AssertFinalState,
			Expected: fmt.Sprintf("%s = %s", path, want),
			Actual:   fmt.Sprintf("%s = %s", path, got),
		}
	}
	return nil
}

// normalize turns Go and YAML values into the JSON data model so that
// YAML ints and Go ints compare equal.
func normalize(v any) (any, error) {
	data, err := canon.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// matchSubset reports whether expected is contained in actual. On mismatch
// it returns the dotted path of the first differing key.
func matchSubset(actual, expected any, path string) (string, bool) {
	em, ok := expected.(map[string]any)
	if !ok {
		return path, reflect.DeepEqual(actual, expected)
	}
	am, ok := actual.(map[string]any)
	if !ok {
		return path, false
	}
	keys := make([]string, 0, len(em))
	for k := range em {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		sub := k
		if path != "" {
			sub = path + "." + k
		}
		if p, ok := matchSubset(am[k], em[k], sub); !ok {
			return p, false
		}
	}
	return path, true
}

func lookup(v any, path string) any {
	if path == "" {
		return v
	}
	for _, k := range strings.Split(path, ".") {
		m, ok := v.(map[string]any)
		if !ok {
			return nil
		}
		v = m[k]
	}
	return v
}
