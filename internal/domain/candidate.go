package domain

import "time"

// Confidence es la etiqueta discreta derivada de las bandas de score.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// CallStatus es la decisión del scorer para un (evento, mercado).
type CallStatus string

const (
	StatusPick  CallStatus = "pick"
	StatusNoBet CallStatus = "no_bet"
)

// Candidate es una oportunidad puntuada, efímera y nunca persistida tal cual.
// Se recalcula en cada ciclo; solo el lock stage la convierte en LockedPick.
type Candidate struct {
	EventID   string
	Sport     string
	League    string
	StartTime time.Time
	Market    MarketKind

	Side          string // texto de la selección, ej. "Boston Celtics ML", "Over 224.5"
	SelectionTeam string // vacío para totales
	HomeTeam      string
	AwayTeam      string

	Score           int        // 0-100
	Confidence      float64    // probabilidad calibrada en [0,1]
	ConfidenceLabel Confidence // bandas fijas sobre el score
	Rationale       []string   // máximo 5 strings cortos

	Tier Tier // asignado por el clasificador, no por el scorer

	Odds OddsSnapshot // mejores precios del evento al momento del scoring
}

// Call es el resultado del scorer para un (evento, mercado): un pick con
// su Candidate, o un no_bet con su razón.
type Call struct {
	EventID   string
	Market    MarketKind
	Status    CallStatus
	Reason    string // no vacío cuando Status == no_bet
	Score     int
	Candidate Candidate // válido solo cuando Status == pick
}

// IsPick devuelve true si la call emitió un candidato apostable.
func (c Call) IsPick() bool {
	return c.Status == StatusPick
}
