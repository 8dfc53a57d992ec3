package command

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_LookupIgnoresCase(t *testing.T) {
	var log []string
	reg := NewRegistry(nil)
	reg.Register(&logCmd{name: "SetBoolFlag", log: &log, ok: true})

	_, ok := reg.Lookup("setboolflag")
	assert.True(t, ok)
	_, ok = reg.Lookup("SETBOOLFLAG")
	assert.True(t, ok)
	_, ok = reg.Lookup("nope")
	assert.False(t, ok)
	assert.Equal(t, []string{"SetBoolFlag"}, reg.Names())
}

func TestRegistry_ExecuteSkipsUnknown(t *testing.T) {
	var log []string
	reg := NewRegistry(nil)
	reg.Register(&logCmd{name: "a", log: &log, ok: true}, &logCmd{name: "b", log: &log, ok: false})

	instrs, _ := ParseChain("a(1) & missing(2) & b(3)")
	out := reg.Execute(newTestEnv(), instrs, nil)

	assert.Equal(t, []string{"a:1", "b:3"}, log)
	require.Len(t, out, 3)
	assert.True(t, out[0].OK)
	assert.True(t, out[1].Unknown)
	assert.False(t, out[2].OK)
}

func TestRegistry_ExecuteWithSkip(t *testing.T) {
	var log []string
	reg := NewRegistry(nil)
	reg.Register(&logCmd{name: "a", log: &log, ok: true}, &logCmd{name: "choice", log: &log, ok: true})

	instrs, _ := ParseChain("a(1)&choice(x|y)&a(2)")
	out := reg.Execute(newTestEnv(), instrs, func(in Instruction) bool { return in.Name != "choice" })

	assert.Equal(t, []string{"choice:x|y"}, log)
	require.Len(t, out, 1)
	assert.Equal(t, "choice", out[0].Instruction.Name)
}

func TestRegistry_SimulateWithSkip(t *testing.T) {
	var log []string
	reg := NewRegistry(nil)
	reg.Register(&logCmd{name: "a", log: &log}, &logCmd{name: "choice", log: &log})

	instrs, _ := ParseChain("a(1)&choice(x|y)&a(2)&unknown()")
	reg.Simulate(newTestEnv(), instrs, func(in Instruction) bool { return in.Name == "choice" })

	assert.Equal(t, []string{"sim:a:1", "sim:a:2"}, log)
}

func TestRegistry_IsInteractive(t *testing.T) {
	var log []string
	reg := NewRegistry(nil)
	reg.Register(&timedCmd{name: "pick", log: &log, interactive: true}, &timedCmd{name: "wait", log: &log})

	assert.True(t, reg.IsInteractive(Instruction{Name: "PICK"}))
	assert.False(t, reg.IsInteractive(Instruction{Name: "wait"}))
	assert.False(t, reg.IsInteractive(Instruction{Name: "nope"}))
}

func TestRegistry_InterruptAllReverseOrderAndClears(t *testing.T) {
	var log []string
	reg := NewRegistry(nil)
	a := &timedCmd{name: "a", log: &log}
	b := &timedCmd{name: "b", log: &log}
	reg.Register(a, b)
	env := newTestEnv()

	ca := reg.Start(env, "a(5)")
	cb := reg.Start(env, "b(5)")
	assert.False(t, ca.Step(0))
	assert.False(t, cb.Step(0))
	assert.Equal(t, []string{"a", "b"}, reg.Running())

	log = log[:0]
	reg.InterruptAll()

	assert.Equal(t, []string{"interrupt:b", "finish:b", "interrupt:a", "finish:a"}, log)
	assert.False(t, reg.IsRunning())

	// Chains observe the terminal state on their next step.
	assert.True(t, ca.Step(time.Millisecond))
	assert.True(t, cb.Step(time.Millisecond))

	// A second round is a no-op.
	log = log[:0]
	reg.InterruptAll()
	assert.Empty(t, log)
}
