// Package harness runs scripted play sessions against the real engine and
// checks what the presenter saw and where the session ended up.
//
// # Scenario Format
//
// Scenarios are YAML files:
//
//	name: branch_left
//	description: "Choosing Left jumps past the right-hand branch"
//	script: |                # inline CSV, or script_file: intro.csv
//	  ID,Speaker,HeadProfile,CharLeft,CharMid,CharRight,Text,Background,BGM,Voice,Command,Note
//	  ,Alice,,,,,Pick one,hall,,,"choice(Left|jump(L), Right|)",
//	  ...
//	start: ""                # optional start line ID
//	settings:                # optional overrides of config.Settings
//	  text_speed: 0
//	steps:
//	  - choose: 0
//	  - next: 2
//	  - tick: 16ms
//	    repeat: 10
//	  - save: quick
//	  - load: quick
//	assertions:
//	  - type: trace_contains
//	    call: background hall
//	  - type: final_state
//	    expect:
//	      pointer: 3
//	      flags: {bool: {left: true}}
//
// # Steps
//
// Each step names exactly one action:
//
//   - advance: n   raw Advance requests
//   - next: n      advance until a new line plays, n times
//   - choose: i    pick option i
//   - tick: d      one Tick of duration d
//   - jump: id     JumpTo(id)
//   - save: slot / load: slot
//   - auto: bool / skip: bool
//
// repeat runs the action that many times. A step whose action returns an
// error fails the scenario unless it sets expect_error.
//
// # Assertion Types
//
//   - trace_contains: a presenter call matching call appears
//   - trace_order: calls appear in this order (gaps allowed)
//   - trace_count: op was called exactly count times
//   - final_state: expect is a subset of the final state map
//
// # Deterministic Testing
//
// Every scenario runs with a fresh in-memory SQLite store, a Recorder
// presenter, a ManualClock for timestamps and sequential snapshot IDs, so
// the same scenario always yields the same trace. RunWithGolden compares it
// against testdata/golden/<name>.golden.
package harness
