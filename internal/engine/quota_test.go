package engine

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJumpGuard_AllowsUpToLimit(t *testing.T) {
	g := NewJumpGuard(3)
	for i := 1; i <= 3; i++ {
		require.NoError(t, g.Check("L1"), "jump %d", i)
	}
	assert.Equal(t, 3, g.Current())

	err := g.Check("L1")
	require.Error(t, err)

	var je *JumpLimitError
	require.True(t, errors.As(err, &je))
	assert.Equal(t, "L1", je.Target)
	assert.Equal(t, 4, je.Jumps)
	assert.Equal(t, 3, je.Limit)
	assert.Contains(t, err.Error(), `"L1"`)
}

func TestJumpGuard_Reset(t *testing.T) {
	g := NewJumpGuard(1)
	require.NoError(t, g.Check("a"))
	require.Error(t, g.Check("a"))

	g.Reset()
	assert.Equal(t, 0, g.Current())
	assert.NoError(t, g.Check("a"))
	assert.Equal(t, 1, g.Limit())
}

func TestJumpGuard_ZeroLimitRejectsFirstJump(t *testing.T) {
	g := NewJumpGuard(0)
	assert.Error(t, g.Check("x"))
}

func TestIsJumpLimitError(t *testing.T) {
	g := NewJumpGuard(0)
	raw := g.Check("L2")

	assert.True(t, IsJumpLimitError(raw))
	assert.True(t, IsJumpLimitError(fmt.Errorf("wrapped: %w", raw)))
	assert.True(t, IsJumpLimitError(NewJumpLimitError(4, "L2", raw)))
	assert.False(t, IsJumpLimitError(errors.New("other")))
	assert.False(t, IsJumpLimitError(nil))
}
