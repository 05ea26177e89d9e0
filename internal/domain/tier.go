package domain

import "sort"

// Tier es el bucket de prioridad de un pick.
type Tier string

const (
	TierTopPick    Tier = "top_pick"
	TierStrongLean Tier = "strong_lean"
	TierWatchlist  Tier = "watchlist"
	TierNone       Tier = "" // por debajo del corte de watchlist
)

// TierConfig son los tres cortes de score, monotónicamente decrecientes.
type TierConfig struct {
	TopPick    int
	StrongLean int
	Watchlist  int
}

// ClassifyTier mapea un score a su tier según los cortes fijos.
func ClassifyTier(cfg TierConfig, score int) Tier {
	switch {
	case score >= cfg.TopPick:
		return TierTopPick
	case score >= cfg.StrongLean:
		return TierStrongLean
	case score >= cfg.Watchlist:
		return TierWatchlist
	}
	return TierNone
}

// AssignTiers clasifica los candidatos aplicando la regla del top pick
// diario: como máximo UN top_pick por run_date. topPickTaken indica si una
// corrida anterior ya escribió el top pick del día.
//
// Procesa en orden de score descendente para que la democión sea
// determinista: el candidato de mayor score se queda con el top_pick y
// cualquier otro que alcance el corte baja a strong_lean.
func AssignTiers(cfg TierConfig, candidates []Candidate, topPickTaken bool) []Candidate {
	out := make([]Candidate, len(candidates))
	copy(out, candidates)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})

	taken := topPickTaken
	for i := range out {
		tier := ClassifyTier(cfg, out[i].Score)
		if tier == TierTopPick {
			if taken {
				tier = TierStrongLean
			}
			taken = true
		}
		out[i].Tier = tier
	}
	return out
}
