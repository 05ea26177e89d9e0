package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTierConfig() TierConfig {
	return TierConfig{TopPick: 80, StrongLean: 70, Watchlist: 60}
}

func TestClassifyTier(t *testing.T) {
	cfg := testTierConfig()
	assert.Equal(t, TierTopPick, ClassifyTier(cfg, 85))
	assert.Equal(t, TierTopPick, ClassifyTier(cfg, 80))
	assert.Equal(t, TierStrongLean, ClassifyTier(cfg, 79))
	assert.Equal(t, TierWatchlist, ClassifyTier(cfg, 60))
	assert.Equal(t, TierNone, ClassifyTier(cfg, 59))
}

func TestAssignTiers_AtMostOneTopPick(t *testing.T) {
	cands := []Candidate{
		{EventID: "a", Score: 82},
		{EventID: "b", Score: 90},
		{EventID: "c", Score: 85},
		{EventID: "d", Score: 65},
	}

	out := AssignTiers(testTierConfig(), cands, false)
	require.Len(t, out, 4)

	// Orden descendente de score: el más alto se queda con el top_pick,
	// los demás que alcanzan el corte bajan a strong_lean.
	assert.Equal(t, "b", out[0].EventID)
	assert.Equal(t, TierTopPick, out[0].Tier)
	assert.Equal(t, TierStrongLean, out[1].Tier)
	assert.Equal(t, TierStrongLean, out[2].Tier)
	assert.Equal(t, TierWatchlist, out[3].Tier)
}

func TestAssignTiers_TopPickAlreadyTaken(t *testing.T) {
	cands := []Candidate{{EventID: "a", Score: 95}}

	out := AssignTiers(testTierConfig(), cands, true)
	assert.Equal(t, TierStrongLean, out[0].Tier)
}

func TestAssignTiers_DoesNotMutateInput(t *testing.T) {
	cands := []Candidate{
		{EventID: "a", Score: 60},
		{EventID: "b", Score: 90},
	}

	AssignTiers(testTierConfig(), cands, false)
	assert.Equal(t, "a", cands[0].EventID)
	assert.Equal(t, TierNone, cands[0].Tier)
}
