package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sampleTrace = []string{
	"background hall",
	"show mid Alice_happy",
	`dialogue "Alice" "Hello"`,
	"background night",
	`dialogue "Alice" "Bye"`,
}

func TestAssertTraceContains(t *testing.T) {
	assert.NoError(t, assertTraceContains(sampleTrace, Assertion{Call: "background night"}))
	assert.NoError(t, assertTraceContains(sampleTrace, Assertion{Call: "show mid"}), "leading words match")
	assert.Error(t, assertTraceContains(sampleTrace, Assertion{Call: "background nig"}), "partial word does not match")

	err := assertTraceContains(sampleTrace, Assertion{Call: "sfx boom"})
	var ae *AssertionError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, AssertTraceContains, ae.Type)
	assert.Contains(t, err.Error(), "[2] show mid Alice_happy")
}

func TestAssertTraceOrder(t *testing.T) {
	assert.NoError(t, assertTraceOrder(sampleTrace, Assertion{Calls: []string{"background hall", "background night"}}))
	assert.NoError(t, assertTraceOrder(sampleTrace, Assertion{Calls: []string{"background", "background"}}),
		"repeated patterns match successive calls")
	assert.Error(t, assertTraceOrder(sampleTrace, Assertion{Calls: []string{"background night", "show mid"}}))
	assert.Error(t, assertTraceOrder(sampleTrace, Assertion{Calls: []string{"background", "background", "background"}}))
}

func TestAssertTraceCount(t *testing.T) {
	assert.NoError(t, assertTraceCount(sampleTrace, Assertion{Op: "background", Count: 2}))
	assert.NoError(t, assertTraceCount(sampleTrace, Assertion{Op: "sfx", Count: 0}))
	assert.Error(t, assertTraceCount(sampleTrace, Assertion{Op: "dialogue", Count: 1}))
}

func TestAssertFinalState(t *testing.T) {
	state := map[string]any{
		"pointer":    3,
		"background": "hall",
		"effects":    []string{"rain"},
		"characters": map[string]any{"left": "Bob", "mid": "Alice"},
		"flags": map[string]any{
			"bool": map[string]bool{"met": true},
			"int":  map[string]int{"score": 5},
		},
	}

	ok := []map[string]any{
		{"pointer": 3},
		{"effects": []any{"rain"}},
		{"characters": map[string]any{"left": "Bob"}},
		{"flags": map[string]any{"int": map[string]any{"score": 5}}},
	}
	for _, expect := range ok {
		assert.NoError(t, assertFinalState(state, Assertion{Expect: expect}), "%v", expect)
	}

	err := assertFinalState(state, Assertion{Expect: map[string]any{
		"flags": map[string]any{"int": map[string]any{"score": 6}},
	}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "flags.int.score = 6")
	assert.Contains(t, err.Error(), "flags.int.score = 5")

	assert.Error(t, assertFinalState(state, Assertion{Expect: map[string]any{"effects": []any{}}}))
	assert.Error(t, assertFinalState(state, Assertion{Expect: map[string]any{"missing": "x"}}))
	assert.Error(t, assertFinalState(state, Assertion{Expect: map[string]any{"pointer": map[string]any{"x": 1}}}))
}

func TestEvaluateAssertions(t *testing.T) {
	result := NewResult()
	result.Trace = sampleTrace
	result.State = map[string]any{"pointer": 1}

	errs := EvaluateAssertions(result, []Assertion{
		{Type: AssertTraceCount, Op: "background", Count: 2},
		{Type: AssertFinalState, Expect: map[string]any{"pointer": 2}},
		{Type: "nope"},
	})
	require.Len(t, errs, 2)
	assert.Contains(t, errs[0], "assertions[1]")
	assert.Contains(t, errs[1], "assertions[2]")
}
