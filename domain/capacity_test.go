package domain_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/yojahny55/gta-6-launch-date-sub001/domain"
)

func TestLevelForRatio(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	cases := []struct {
		ratio    float64
		expected domain.CapacityLevel
	}{
		{0, domain.LevelNormal},
		{0.5, domain.LevelNormal},
		{0.7999, domain.LevelNormal},
		{0.80, domain.LevelElevated},
		{0.85, domain.LevelElevated},
		{0.90, domain.LevelHigh},
		{0.94, domain.LevelHigh},
		{0.95, domain.LevelCritical},
		{0.99, domain.LevelCritical},
		{1.00, domain.LevelExceeded},
		{1.5, domain.LevelExceeded},
	}
	for _, c := range cases {
		require.EqualValues(c.expected, domain.LevelForRatio(c.ratio), "ratio %v", c.ratio)
	}
}

// a boundary ratio always maps to the higher level
func TestLevelForRatioBoundary(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	require.EqualValues(domain.LevelHigh, domain.LevelForRatio(0.90))
	require.NotEqualValues(domain.LevelElevated, domain.LevelForRatio(0.90))
}

func TestFlagsForLevelTable(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	normal := domain.FlagsForLevel(domain.LevelNormal)
	require.True(normal.SubmissionsEnabled)
	require.True(normal.ChartEnabled)
	require.True(normal.StatsLiveEnabled)
	require.EqualValues(1, normal.CacheTtlMultiplier)

	require.EqualValues(normal, domain.FlagsForLevel(domain.LevelElevated))

	high := domain.FlagsForLevel(domain.LevelHigh)
	require.True(high.SubmissionsEnabled)
	require.False(high.ChartEnabled)
	require.True(high.StatsLiveEnabled)
	require.EqualValues(3, high.CacheTtlMultiplier)

	critical := domain.FlagsForLevel(domain.LevelCritical)
	require.False(critical.SubmissionsEnabled)
	require.False(critical.ChartEnabled)
	require.False(critical.StatsLiveEnabled)
	require.EqualValues(3, critical.CacheTtlMultiplier)

	require.EqualValues(critical, domain.FlagsForLevel(domain.LevelExceeded))
}

// once a feature is restricted at some level it stays restricted at
// every higher level
func TestFlagsForLevelMonotonic(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	levels := []domain.CapacityLevel{
		domain.LevelNormal,
		domain.LevelElevated,
		domain.LevelHigh,
		domain.LevelCritical,
		domain.LevelExceeded,
	}
	prev := domain.FlagsForLevel(levels[0])
	for _, level := range levels[1:] {
		next := domain.FlagsForLevel(level)
		require.False(!prev.SubmissionsEnabled && next.SubmissionsEnabled, "level %s", level)
		require.False(!prev.ChartEnabled && next.ChartEnabled, "level %s", level)
		require.False(!prev.StatsLiveEnabled && next.StatsLiveEnabled, "level %s", level)
		require.GreaterOrEqual(next.CacheTtlMultiplier, prev.CacheTtlMultiplier, "level %s", level)
		prev = next
	}
}
