package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCycleDetector(t *testing.T) {
	c := NewCycleDetector()
	assert.False(t, c.WouldCycle(0))

	c.Record(0, "L1")
	c.Record(4, "")
	assert.True(t, c.WouldCycle(0))
	assert.True(t, c.WouldCycle(4))
	assert.False(t, c.WouldCycle(2))
	assert.Equal(t, "L1 -> #4", c.Path())
	assert.Equal(t, 2, c.Len())

	c.Clear()
	assert.False(t, c.WouldCycle(0))
	assert.Empty(t, c.Path())
	assert.Zero(t, c.Len())
}
