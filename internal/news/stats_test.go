package news

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewVoteStats_ZeroTotal(t *testing.T) {
	t.Parallel()

	stats := NewVoteStats(0, 0)

	require.Equal(t, VoteStats{}, stats)
}

func TestNewVoteStats_PercentagesSumToHundred(t *testing.T) {
	t.Parallel()

	stats := NewVoteStats(3, 1)

	require.Equal(t, 3, stats.Biased)
	require.Equal(t, 1, stats.NotBiased)
	require.InDelta(t, 75.0, stats.BiasedPercentage, 0.001)
	require.InDelta(t, 25.0, stats.NotBiasedPercentage, 0.001)
	require.InDelta(t, 100.0, stats.BiasedPercentage+stats.NotBiasedPercentage, 0.001)
}

func TestBiasRatio_RoundsToOneDecimal(t *testing.T) {
	t.Parallel()

	require.InDelta(t, 33.3, BiasRatio(1, 3), 0.001)
	require.InDelta(t, 66.7, BiasRatio(2, 3), 0.001)
	require.Zero(t, BiasRatio(5, 0))
}

func TestNewPagination_CeilsTotalPages(t *testing.T) {
	t.Parallel()

	p := NewPagination(1, 2, 5)

	require.Equal(t, 5, p.TotalItems)
	require.Equal(t, 3, p.TotalPages)

	require.Equal(t, 0, NewPagination(1, 2, 0).TotalPages)
	require.Equal(t, 1, NewPagination(1, 20, 20).TotalPages)
}
