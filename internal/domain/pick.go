package domain

import (
	"strings"
	"time"
)

// SourceTag distingue corridas reales de replays históricos.
type SourceTag string

const (
	SourceLive     SourceTag = "live"
	SourceBacktest SourceTag = "backtest"
)

// OddsSnapshot son los mejores precios disponibles en un instante.
// Todos los campos son nullable: si un mercado no cotizaba en el momento
// del lock, su campo queda nil y NUNCA se rellena después — es un snapshot
// point-in-time o nada.
type OddsSnapshot struct {
	MLHome *int
	MLAway *int

	SpreadPointHome *float64
	SpreadPriceHome *int
	SpreadPointAway *float64
	SpreadPriceAway *int
}

// SnapshotOdds congela los mejores precios actuales de un evento a partir
// del consenso más fresco de moneyline y spread.
func SnapshotOdds(ev Event) OddsSnapshot {
	var snap OddsSnapshot

	if ml := BuildConsensus(ev, MarketMoneyline); ml.Available {
		home, away := ml.Sides[0].BestPrice, ml.Sides[1].BestPrice
		snap.MLHome, snap.MLAway = &home, &away
	}

	if sp := BuildConsensus(ev, MarketSpread); sp.Available {
		hp, ap := sp.Sides[0].BestPoint, sp.Sides[1].BestPoint
		hpr, apr := sp.Sides[0].BestPrice, sp.Sides[1].BestPrice
		snap.SpreadPointHome, snap.SpreadPointAway = &hp, &ap
		snap.SpreadPriceHome, snap.SpreadPriceAway = &hpr, &apr
	}

	return snap
}

// NaturalKey identifica un (event_id, market) dentro de un run_date.
// Es la restricción de unicidad de negocio de locked_picks.
type NaturalKey struct {
	EventID string
	Market  MarketKind
}

// LockedPick es el registro durable e inmutable de una decisión.
// Clave natural: (run_date, event_id, market). Lo escribe únicamente el
// lock stage dentro de la ventana pre-evento; después solo se marca
// graded_at al liquidarse.
type LockedPick struct {
	ID      string // uuid de fila; la unicidad de negocio es la clave natural
	RunDate string // YYYY-MM-DD
	EventID string
	Sport   string
	League  string
	Market  MarketKind

	Side          string
	Tier          Tier
	Score         int
	Confidence    float64 // probabilidad calibrada [0,1]
	SelectionTeam string
	HomeTeam      string
	AwayTeam      string

	GameStartTime time.Time
	LockedAt      time.Time

	Odds OddsSnapshot

	Source   SourceTag
	GradedAt *time.Time
}

// GameResult es el hecho externo con el marcador final de un evento.
// Llega asíncronamente y puede faltar o estar incompleto.
type GameResult struct {
	EventID   string
	Sport     string
	HomeTeam  string
	AwayTeam  string
	HomeScore int
	AwayScore int
	Completed bool
	FetchedAt time.Time
}

// Outcome es el resultado de un pick liquidado.
type Outcome string

const (
	OutcomeWin  Outcome = "win"
	OutcomeLoss Outcome = "loss"
	OutcomePush Outcome = "push"
)

// GradedResult deriva de exactamente un LockedPick más un GameResult.
// Unicidad: cero o un GradedResult por LockedPick.
type GradedResult struct {
	ID           string
	LockedPickID string
	EventID      string
	Sport        string
	Market       MarketKind
	Tier         Tier
	Confidence   float64

	Result Outcome
	Units  float64 // P&L con 1 unidad apostada, SIEMPRE al precio locked

	HomeTeam      string
	AwayTeam      string
	SelectionTeam string

	StartTime     time.Time
	RunDate       string
	Source        SourceTag
	MatchStrategy string // exact | substring — cómo se resolvió el equipo
	GradedAt      time.Time
}

// ResolveSelectionTeam extrae best-effort el equipo desde el texto de la
// selección ("Boston Celtics ML", "LA Lakers +6.5"). Devuelve "" para
// totales o si ningún equipo aparece en el texto.
func ResolveSelectionTeam(side, home, away string) string {
	s := strings.ToLower(strings.TrimSpace(side))
	if s == "" || strings.HasPrefix(s, "over") || strings.HasPrefix(s, "under") {
		return ""
	}
	if home != "" && strings.Contains(s, strings.ToLower(home)) {
		return home
	}
	if away != "" && strings.Contains(s, strings.ToLower(away)) {
		return away
	}
	return ""
}
