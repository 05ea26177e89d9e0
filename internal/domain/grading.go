package domain

// grading.go — resolución win/loss/push y units de un pick liquidado.
//
// Los nombres de equipo grabados al lockear pueden no coincidir exactamente
// con los del feed de scores (el provider no garantiza consistencia entre
// snapshots). El match es en dos niveles — exacto, luego substring
// case-insensitive — y la estrategia usada queda registrada para que un
// desacuerdo sea debuggeable en vez de adivinado en silencio.

import (
	"errors"
	"strings"
)

// Condiciones de skip en la liquidación. No son fallos del run: el settle
// stage las cuenta como skipped y sigue con el resto.
var (
	ErrUnsupportedMarket = errors.New("grading: market not supported by this engine")
	ErrTeamUnresolved    = errors.New("grading: selection team matches neither side")
	ErrMissingLockedOdds = errors.New("grading: locked odds missing for selection")
)

// Estrategias de match de equipo registradas en el resultado.
const (
	MatchExact     = "exact"
	MatchSubstring = "substring"
)

// GradeOutcome es el veredicto de liquidar un LockedPick.
type GradeOutcome struct {
	Result        Outcome
	Units         float64
	MatchStrategy string
}

// Grade liquida un pick contra el marcador final. Determinista y puro:
// invocarlo dos veces con los mismos inputs produce el mismo outcome.
// Usa SIEMPRE los precios congelados al lock, nunca precios vivos.
func Grade(pick LockedPick, res GameResult) (GradeOutcome, error) {
	switch pick.Market {
	case MarketMoneyline:
		return gradeMoneyline(pick, res)
	case MarketSpread:
		return gradeSpread(pick, res)
	}
	// Totales: explícitamente sin soporte en esta versión del engine.
	return GradeOutcome{}, ErrUnsupportedMarket
}

func gradeMoneyline(pick LockedPick, res GameResult) (GradeOutcome, error) {
	isHome, strategy, err := matchTeam(pick.SelectionTeam, res.HomeTeam, res.AwayTeam)
	if err != nil {
		return GradeOutcome{}, err
	}

	price := pick.Odds.MLAway
	if isHome {
		price = pick.Odds.MLHome
	}
	if price == nil {
		return GradeOutcome{}, ErrMissingLockedOdds
	}

	// Push solo en empate exacto del marcador final.
	if res.HomeScore == res.AwayScore {
		return GradeOutcome{Result: OutcomePush, Units: 0, MatchStrategy: strategy}, nil
	}

	homeWon := res.HomeScore > res.AwayScore
	if homeWon == isHome {
		return GradeOutcome{Result: OutcomeWin, Units: AmericanProfit(*price), MatchStrategy: strategy}, nil
	}
	return GradeOutcome{Result: OutcomeLoss, Units: -1, MatchStrategy: strategy}, nil
}

func gradeSpread(pick LockedPick, res GameResult) (GradeOutcome, error) {
	isHome, strategy, err := matchTeam(pick.SelectionTeam, res.HomeTeam, res.AwayTeam)
	if err != nil {
		return GradeOutcome{}, err
	}

	point, price := pick.Odds.SpreadPointAway, pick.Odds.SpreadPriceAway
	margin := float64(res.AwayScore - res.HomeScore)
	if isHome {
		point, price = pick.Odds.SpreadPointHome, pick.Odds.SpreadPriceHome
		margin = float64(res.HomeScore - res.AwayScore)
	}
	if point == nil || price == nil {
		return GradeOutcome{}, ErrMissingLockedOdds
	}

	adjusted := margin + *point
	switch {
	case adjusted > 0:
		return GradeOutcome{Result: OutcomeWin, Units: AmericanProfit(*price), MatchStrategy: strategy}, nil
	case adjusted < 0:
		return GradeOutcome{Result: OutcomeLoss, Units: -1, MatchStrategy: strategy}, nil
	}
	return GradeOutcome{Result: OutcomePush, Units: 0, MatchStrategy: strategy}, nil
}

// matchTeam resuelve a qué lado del marcador corresponde el equipo
// seleccionado: primero match exacto, después substring case-insensitive
// en ambas direcciones.
func matchTeam(selection, home, away string) (isHome bool, strategy string, err error) {
	if selection == "" {
		return false, "", ErrTeamUnresolved
	}
	if selection == home {
		return true, MatchExact, nil
	}
	if selection == away {
		return false, MatchExact, nil
	}

	sel := strings.ToLower(selection)
	h := strings.ToLower(home)
	a := strings.ToLower(away)
	if h != "" && (strings.Contains(h, sel) || strings.Contains(sel, h)) {
		return true, MatchSubstring, nil
	}
	if a != "" && (strings.Contains(a, sel) || strings.Contains(sel, a)) {
		return false, MatchSubstring, nil
	}
	return false, "", ErrTeamUnresolved
}
