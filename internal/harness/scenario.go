package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Scenario is one scripted play session with its expectations.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Script is the CSV source inline. Exactly one of Script and
	// ScriptFile is set.
	Script string `yaml:"script,omitempty"`

	// ScriptFile is a CSV/TSV path relative to the scenario file.
	ScriptFile string `yaml:"script_file,omitempty"`

	// Start is an optional line ID to start from.
	Start string `yaml:"start,omitempty"`

	// Settings overlays config.Settings. Text reveal defaults to instant.
	Settings yaml.Node `yaml:"settings,omitempty"`

	// Steps are the inputs fed to the engine after it starts.
	Steps []Step `yaml:"steps"`

	// Assertions validate the final trace and state.
	Assertions []Assertion `yaml:"assertions"`

	// dir is the directory ScriptFile resolves against.
	dir string
}

// Step is one input. Exactly one action field is set.
type Step struct {
	Advance *int   `yaml:"advance,omitempty"`
	Next    *int   `yaml:"next,omitempty"`
	Choose  *int   `yaml:"choose,omitempty"`
	Tick    string `yaml:"tick,omitempty"`
	Jump    string `yaml:"jump,omitempty"`
	Save    string `yaml:"save,omitempty"`
	Load    string `yaml:"load,omitempty"`
	Auto    *bool  `yaml:"auto,omitempty"`
	Skip    *bool  `yaml:"skip,omitempty"`

	// Repeat runs the action this many times; zero means once.
	Repeat int `yaml:"repeat,omitempty"`

	// ExpectError makes an action error the expected outcome.
	ExpectError bool `yaml:"expect_error,omitempty"`
}

// Action returns the name of the action this step sets, or "" when none is.
// With more than one set the names are joined with "+".
func (s Step) Action() string {
	var set []string
	if s.Advance != nil {
		set = append(set, "advance")
	}
	if s.Next != nil {
		set = append(set, "next")
	}
	if s.Choose != nil {
		set = append(set, "choose")
	}
	if s.Tick != "" {
		set = append(set, "tick")
	}
	if s.Jump != "" {
		set = append(set, "jump")
	}
	if s.Save != "" {
		set = append(set, "save")
	}
	if s.Load != "" {
		set = append(set, "load")
	}
	if s.Auto != nil {
		set = append(set, "auto")
	}
	if s.Skip != nil {
		set = append(set, "skip")
	}
	return strings.Join(set, "+")
}

// Assertion validates the trace or the final state.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// Call matches a rendered presenter call: either the whole line or its
	// leading words (trace_contains).
	Call string `yaml:"call,omitempty"`

	// Calls are matched in order (trace_order).
	Calls []string `yaml:"calls,omitempty"`

	// Op is a presenter operation name (trace_count).
	Op string `yaml:"op,omitempty"`

	// Count is the expected number of Op calls (trace_count).
	Count int `yaml:"count,omitempty"`

	// Expect is a subset of the final state (final_state).
	Expect map[string]any `yaml:"expect,omitempty"`
}

// Assertion type constants.
const (
	AssertTraceContains = "trace_contains"
	AssertTraceOrder    = "trace_order"
	AssertTraceCount    = "trace_count"
	AssertFinalState    = "final_state"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	var s Scenario
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("failed to parse scenario YAML: %w", err)
	}
	s.dir = filepath.Dir(path)

	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("scenario %s: %w", path, err)
	}
	return &s, nil
}

// LoadDir loads every *.yaml and *.yml scenario directly under dir, in
// file name order.
func LoadDir(dir string) ([]*Scenario, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read scenario dir: %w", err)
	}
	var names []string
	for _, e := range entries {
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if !e.IsDir() && (ext == ".yaml" || ext == ".yml") {
			names = append(names, e.Name())
		}
	}
	slices.Sort(names)

	out := make([]*Scenario, 0, len(names))
	for _, name := range names {
		s, err := LoadScenario(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// Validate checks required fields and step/assertion shapes.
func (s *Scenario) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if (s.Script == "") == (s.ScriptFile == "") {
		return fmt.Errorf("exactly one of script and script_file is required")
	}
	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i, step := range s.Steps {
		if err := validateStep(i, step); err != nil {
			return err
		}
	}
	for i, a := range s.Assertions {
		if err := validateAssertion(i, a); err != nil {
			return err
		}
	}
	return nil
}

func validateStep(index int, s Step) error {
	action := s.Action()
	switch {
	case action == "":
		return fmt.Errorf("steps[%d]: an action is required", index)
	case strings.Contains(action, "+"):
		return fmt.Errorf("steps[%d]: only one action allowed, got %s", index, action)
	case s.Repeat < 0:
		return fmt.Errorf("steps[%d]: repeat must be non-negative", index)
	}
	if s.Tick != "" {
		d, err := time.ParseDuration(s.Tick)
		if err != nil {
			return fmt.Errorf("steps[%d]: tick: %w", index, err)
		}
		if d < 0 {
			return fmt.Errorf("steps[%d]: tick must be non-negative", index)
		}
	}
	for name, n := range map[string]*int{"advance": s.Advance, "next": s.Next, "choose": s.Choose} {
		if n != nil && *n < 0 {
			return fmt.Errorf("steps[%d]: %s must be non-negative", index, name)
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertTraceContains:
		if a.Call == "" {
			return fmt.Errorf("assertions[%d]: call is required for trace_contains", index)
		}
	case AssertTraceOrder:
		if len(a.Calls) == 0 {
			return fmt.Errorf("assertions[%d]: calls list is required for trace_order", index)
		}
	case AssertTraceCount:
		if a.Op == "" {
			return fmt.Errorf("assertions[%d]: op is required for trace_count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for trace_count", index)
		}
	case AssertFinalState:
		if len(a.Expect) == 0 {
			return fmt.Errorf("assertions[%d]: expect is required for final_state", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
