package domain

// scoring.go — Heuristic Scorer.
//
// Convierte el consenso de mercado en un score 0-100 y una decisión
// pick/no_bet con rationale legible. Funciones puras: toda la política
// (umbrales, bonos) entra por ScoreConfig, nunca por estado ambiental.
//
// Política de scoring, por lado:
//   base 50
//   ± 10  acuerdo entre casas (dispersión de la línea baja/alta)
//   +8/+5/-8  calidad del precio (plus-money / juice justo / juice pesado)
//   + 7   line shopping (el mejor precio/línea mejora el consenso)
//   - N   señal externa de disponibilidad del equipo
//   clamp [0,100]

import (
	"fmt"
	"math"
)

// ScoreConfig son las constantes de política del scorer.
type ScoreConfig struct {
	PickThreshold    int     // score mínimo para emitir pick
	ConfidenceHigh   int     // corte de la banda high
	ConfidenceMedium int     // corte de la banda medium
	MLTightVariance  float64 // dispersión de precio (cents) considerada "acuerdo"
	MLWideVariance   float64 // dispersión de precio considerada "desacuerdo"
	PtTightVariance  float64 // dispersión de puntos considerada "acuerdo"
	PtWideVariance   float64 // dispersión de puntos considerada "desacuerdo"
	MinPriceEdge     float64 // mejora mínima (cents) del best vs media para bonus
	MinPointEdge     float64 // mejora mínima (puntos) del best vs media para bonus
}

const (
	baseScore        = 50.0
	agreementBonus   = 10.0
	priceQualityHigh = 8.0 // plus-money
	priceQualityFair = 5.0 // juice cercano a even-money
	lineShoppingEdge = 7.0
	maxRationale     = 5

	// Cortes de calidad de precio (media del lado, odds americanas).
	fairJuiceFloor = -115 // -115 o mejor ≈ juice estándar o más barato
	heavyJuiceCap  = -140 // -140 o peor castiga el valor esperado
)

// ScoreEvent puntúa los tres mercados de un evento y devuelve una Call por
// cada uno. penalties mapea nombre de equipo → puntos de penalización por
// disponibilidad (lesiones, descansos); puede ser nil.
func ScoreEvent(cfg ScoreConfig, ev Event, penalties map[string]float64) []Call {
	snapshot := SnapshotOdds(ev)
	calls := make([]Call, 0, 3)
	for _, kind := range []MarketKind{MarketMoneyline, MarketSpread, MarketTotal} {
		calls = append(calls, scoreMarket(cfg, ev, kind, snapshot, penalties))
	}
	return calls
}

// scoreMarket puntúa ambos lados de un mercado y decide pick o no_bet.
// Emite SIEMPRE como máximo un lado: el de mayor score, con el mejor
// precio como desempate (y el primer lado como desempate final).
func scoreMarket(cfg ScoreConfig, ev Event, kind MarketKind, snapshot OddsSnapshot, penalties map[string]float64) Call {
	cons := BuildConsensus(ev, kind)
	if !cons.Available {
		return Call{EventID: ev.ID, Market: kind, Status: StatusNoBet, Reason: "Market unavailable"}
	}

	type sideResult struct {
		side      SideConsensus
		opp       SideConsensus
		score     int
		rationale []string
	}

	best := sideResult{score: -1}
	for i := range cons.Sides {
		own := cons.Sides[i]
		opp := cons.Sides[1-i]
		score, rationale := scoreSide(cfg, kind, own, teamPenalty(kind, own.Label, penalties))
		better := score > best.score ||
			(score == best.score && own.BestPrice > best.side.BestPrice)
		if better {
			best = sideResult{side: own, opp: opp, score: score, rationale: rationale}
		}
	}

	if best.score < cfg.PickThreshold {
		return Call{
			EventID: ev.ID,
			Market:  kind,
			Status:  StatusNoBet,
			Reason:  fmt.Sprintf("Score %d below threshold (%d)", best.score, cfg.PickThreshold),
			Score:   best.score,
		}
	}

	confidence, calibrated := calibratedProb(best.side, best.opp)
	rationale := best.rationale
	if !calibrated {
		confidence = float64(best.score) / 100.0
		rationale = append(rationale, "Confidence approximated from score (no market prob)")
	}

	cand := Candidate{
		EventID:         ev.ID,
		Sport:           ev.Sport,
		League:          ev.League,
		StartTime:       ev.StartTime,
		Market:          kind,
		Side:            selectionText(kind, best.side),
		SelectionTeam:   selectionTeam(kind, best.side.Label),
		HomeTeam:        ev.HomeTeam,
		AwayTeam:        ev.AwayTeam,
		Score:           best.score,
		Confidence:      confidence,
		ConfidenceLabel: ConfidenceFor(cfg, best.score),
		Rationale:       capRationale(rationale),
		Odds:            snapshot,
	}
	return Call{EventID: ev.ID, Market: kind, Status: StatusPick, Score: best.score, Candidate: cand}
}

// scoreSide aplica la política de scoring a un lado del mercado.
func scoreSide(cfg ScoreConfig, kind MarketKind, own SideConsensus, penalty float64) (int, []string) {
	score := baseScore
	var rationale []string

	// 1. Acuerdo entre casas sobre la línea. Con una sola casa no hay
	// dispersión que medir: ni bonus ni penalty.
	lineSpread, tight, wide := own.PriceSpread, cfg.MLTightVariance, cfg.MLWideVariance
	if kind != MarketMoneyline {
		lineSpread, tight, wide = own.PointSpread, cfg.PtTightVariance, cfg.PtWideVariance
	}
	if own.Books >= 2 {
		switch {
		case lineSpread <= tight:
			score += agreementBonus
			rationale = append(rationale, fmt.Sprintf("Books agree on the line (spread %.1f)", lineSpread))
		case lineSpread >= wide:
			score -= agreementBonus
			rationale = append(rationale, fmt.Sprintf("Books disagree on the line (spread %.1f)", lineSpread))
		}
	} else {
		rationale = append(rationale, "Single book quoting")
	}

	// 2. Calidad del precio medio.
	switch mean := own.MeanPrice; {
	case mean >= 100:
		score += priceQualityHigh
		rationale = append(rationale, fmt.Sprintf("Plus-money value (avg %+.0f)", mean))
	case mean >= fairJuiceFloor:
		score += priceQualityFair
		rationale = append(rationale, fmt.Sprintf("Fair juice (avg %.0f)", mean))
	case mean <= heavyJuiceCap:
		score -= priceQualityHigh
		rationale = append(rationale, fmt.Sprintf("Heavy juice (avg %.0f)", mean))
	}

	// 3. Line shopping: el mejor precio/línea disponible mejora el consenso.
	if kind == MarketMoneyline {
		if own.PriceEdge >= cfg.MinPriceEdge {
			score += lineShoppingEdge
			rationale = append(rationale, fmt.Sprintf("Best price beats consensus by %.0f", own.PriceEdge))
		}
	} else if own.PointEdge >= cfg.MinPointEdge {
		score += lineShoppingEdge
		rationale = append(rationale, fmt.Sprintf("Best line beats consensus by %.1f pts", own.PointEdge))
	}

	// 4. Señal externa de disponibilidad del equipo.
	if penalty > 0 {
		score -= penalty
		rationale = append(rationale, fmt.Sprintf("Availability concern: %s (-%.0f)", own.Label, penalty))
	}

	return clampScore(score), rationale
}

// calibratedProb devuelve la probabilidad de-vigged del lado propio contra
// el opuesto usando las medias de consenso. El bool indica si el valor es
// calibrado (precios presentes) o si el caller debe caer a score/100.
func calibratedProb(own, opp SideConsensus) (float64, bool) {
	if !own.Available || !opp.Available {
		return 0, false
	}
	p := NoVigProb(int(math.Round(own.MeanPrice)), int(math.Round(opp.MeanPrice)))
	if p <= 0 {
		return 0, false
	}
	return p, true
}

// ConfidenceFor mapea un score a su banda de confianza discreta.
func ConfidenceFor(cfg ScoreConfig, score int) Confidence {
	switch {
	case score >= cfg.ConfidenceHigh:
		return ConfidenceHigh
	case score >= cfg.ConfidenceMedium:
		return ConfidenceMedium
	}
	return ConfidenceLow
}

// selectionText construye el texto humano de la selección.
func selectionText(kind MarketKind, side SideConsensus) string {
	switch kind {
	case MarketMoneyline:
		return side.Label + " ML"
	case MarketSpread:
		return fmt.Sprintf("%s %+.1f", side.Label, side.BestPoint)
	case MarketTotal:
		return fmt.Sprintf("%s %.1f", side.Label, side.BestPoint)
	}
	return side.Label
}

// selectionTeam devuelve el equipo seleccionado; los totales no tienen equipo.
func selectionTeam(kind MarketKind, label string) string {
	if kind == MarketTotal {
		return ""
	}
	return label
}

// teamPenalty busca la penalización de disponibilidad del lado. Los totales
// no llevan señal de equipo.
func teamPenalty(kind MarketKind, label string, penalties map[string]float64) float64 {
	if kind == MarketTotal || penalties == nil {
		return 0
	}
	return penalties[label]
}

func clampScore(s float64) int {
	return int(math.Round(math.Max(0, math.Min(100, s))))
}

func capRationale(r []string) []string {
	if len(r) > maxRationale {
		return r[:maxRationale]
	}
	return r
}
