package billing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCompute(t *testing.T) {
	start := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	t.Run("whole hours", func(t *testing.T) {
		cost, err := Compute(start, start.Add(2*time.Hour), 10)
		require.NoError(t, err)
		require.Equal(t, 20.0, cost)
	})

	t.Run("fractional hours", func(t *testing.T) {
		cost, err := Compute(start, start.Add(90*time.Minute), 10)
		require.NoError(t, err)
		require.Equal(t, 15.0, cost)
	})

	t.Run("rounds to two decimals", func(t *testing.T) {
		cost, err := Compute(start, start.Add(20*time.Minute), 10)
		require.NoError(t, err)
		require.Equal(t, 3.33, cost)
	})

	t.Run("zero duration", func(t *testing.T) {
		cost, err := Compute(start, start, 10)
		require.NoError(t, err)
		require.Equal(t, 0.0, cost)
	})

	t.Run("exit before entry", func(t *testing.T) {
		_, err := Compute(start, start.Add(-time.Minute), 10)
		require.ErrorIs(t, err, ErrNegativeDuration)
	})
}

func TestRound2(t *testing.T) {
	require.Equal(t, 1.23, Round2(1.234))
	require.Equal(t, 1.24, Round2(1.236))
	require.Equal(t, 0.0, Round2(0))
	require.Equal(t, 100.0, Round2(99.999))
}
