package domain

// performance.go — rollup read-only de resultados liquidados.
// Sin estado propio: debe equivaler a una agregación SQL directa de las
// filas subyacentes.

import (
	"sort"
	"time"
)

// GroupStats son los contadores de un grupo (sport, mercado o tier).
type GroupStats struct {
	Key    string
	Wins   int
	Losses int
	Pushes int
	WinPct float64 // wins / (wins+losses) × 100; los push no cuentan
	Units  float64 // suma de units con signo
}

// PerformanceReport agrupa los resultados liquidados de un rango temporal.
type PerformanceReport struct {
	From     time.Time
	To       time.Time
	Source   SourceTag
	Overall  GroupStats
	BySport  []GroupStats
	ByMarket []GroupStats
	ByTier   []GroupStats
}

// BuildPerformance agrega filas liquidadas por sport, mercado y tier.
// Las filas ya vienen filtradas por rango y source desde el store.
func BuildPerformance(rows []GradedResult, from, to time.Time, source SourceTag) PerformanceReport {
	rep := PerformanceReport{From: from, To: to, Source: source}

	bySport := map[string]*GroupStats{}
	byMarket := map[string]*GroupStats{}
	byTier := map[string]*GroupStats{}

	for _, r := range rows {
		tally(&rep.Overall, r)
		tally(groupFor(bySport, r.Sport), r)
		tally(groupFor(byMarket, string(r.Market)), r)
		tally(groupFor(byTier, string(r.Tier)), r)
	}

	finalize(&rep.Overall)
	rep.Overall.Key = "overall"
	rep.BySport = collect(bySport)
	rep.ByMarket = collect(byMarket)
	rep.ByTier = collect(byTier)
	return rep
}

func groupFor(m map[string]*GroupStats, key string) *GroupStats {
	g, ok := m[key]
	if !ok {
		g = &GroupStats{Key: key}
		m[key] = g
	}
	return g
}

func tally(g *GroupStats, r GradedResult) {
	switch r.Result {
	case OutcomeWin:
		g.Wins++
	case OutcomeLoss:
		g.Losses++
	case OutcomePush:
		g.Pushes++
	}
	g.Units += r.Units
}

func finalize(g *GroupStats) {
	if decided := g.Wins + g.Losses; decided > 0 {
		g.WinPct = float64(g.Wins) / float64(decided) * 100
	}
}

// collect ordena los grupos por key para que el reporte sea determinista.
func collect(m map[string]*GroupStats) []GroupStats {
	out := make([]GroupStats, 0, len(m))
	for _, g := range m {
		finalize(g)
		out = append(out, *g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}
