package retry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBudgetConsumesAttempts(t *testing.T) {
	b := NewBudget(50*time.Millisecond, 3)

	for i := 1; i <= 3; i++ {
		delay, ok := b.Next()
		require.True(t, ok, "attempt %d should be granted", i)
		assert.Equal(t, 50*time.Millisecond, delay)
		assert.Equal(t, i, b.Used())
	}

	_, ok := b.Next()
	assert.False(t, ok, "budget must be exhausted after max attempts")
	assert.Equal(t, 3, b.Used(), "denied attempt must not consume budget")
	assert.Equal(t, 0, b.Remaining())
}

func TestBudgetReset(t *testing.T) {
	b := NewBudget(time.Second, 1)

	_, ok := b.Next()
	require.True(t, ok)
	_, ok = b.Next()
	require.False(t, ok)

	b.Reset()
	assert.Equal(t, 0, b.Used())
	_, ok = b.Next()
	assert.True(t, ok, "reset must replenish the budget")
}

func TestZeroBudgetNeverGrants(t *testing.T) {
	b := NewBudget(time.Second, 0)
	_, ok := b.Next()
	assert.False(t, ok)
}

func TestDefaultsClampBadInputs(t *testing.T) {
	b := NewBudget(0, -5)
	assert.Equal(t, 3*time.Second, b.Interval())
	_, ok := b.Next()
	assert.False(t, ok)
}
