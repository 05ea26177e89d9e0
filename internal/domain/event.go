package domain

import "time"

// MarketKind identifica el tipo de mercado de un evento.
type MarketKind string

const (
	MarketMoneyline MarketKind = "moneyline"
	MarketSpread    MarketKind = "spread"
	MarketTotal     MarketKind = "total"
)

// Valid devuelve true si el kind es uno de los tres mercados soportados.
func (k MarketKind) Valid() bool {
	switch k {
	case MarketMoneyline, MarketSpread, MarketTotal:
		return true
	}
	return false
}

// Event representa un evento deportivo con las quotes de cada bookmaker.
type Event struct {
	ID        string
	Sport     string // sport key del provider, ej. "basketball_nba"
	League    string
	HomeTeam  string
	AwayTeam  string
	StartTime time.Time
	Books     []BookmakerOdds
}

// Started devuelve true si el evento ya comenzó relativo a now.
func (e Event) Started(now time.Time) bool {
	return !e.StartTime.After(now)
}

// BookmakerOdds son las quotes de un bookmaker para un evento.
// Cualquier mercado puede faltar — un nil significa que esa casa no lo cotiza.
type BookmakerOdds struct {
	Bookmaker string
	Moneyline *MoneylineQuote
	Spread    *SpreadQuote
	Total     *TotalQuote
}

// MoneylineQuote son los precios americanos de cada lado.
type MoneylineQuote struct {
	Home int
	Away int
}

// SpreadQuote son los puntos y precios del spread para cada lado.
type SpreadQuote struct {
	Home PointPrice
	Away PointPrice
}

// TotalQuote son los puntos y precios del total (over/under).
type TotalQuote struct {
	Over  PointPrice
	Under PointPrice
}

// PointPrice es un par línea/precio americano.
type PointPrice struct {
	Point float64
	Price int
}
