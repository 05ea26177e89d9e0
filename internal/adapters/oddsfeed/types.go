package oddsfeed

// types.go — DTOs del wire format del provider. Se validan y convierten a
// tipos del dominio en mapping.go; nada fuera de este adapter ve estos structs.

// eventDTO es un evento con las quotes de cada bookmaker.
type eventDTO struct {
	ID           string         `json:"id"`
	SportKey     string         `json:"sport_key"`
	SportTitle   string         `json:"sport_title"`
	CommenceTime string         `json:"commence_time"`
	HomeTeam     string         `json:"home_team"`
	AwayTeam     string         `json:"away_team"`
	Bookmakers   []bookmakerDTO `json:"bookmakers"`
}

type bookmakerDTO struct {
	Key        string      `json:"key"`
	Title      string      `json:"title"`
	LastUpdate string      `json:"last_update"`
	Markets    []marketDTO `json:"markets"`
}

type marketDTO struct {
	Key      string       `json:"key"` // h2h | spreads | totals
	Outcomes []outcomeDTO `json:"outcomes"`
}

type outcomeDTO struct {
	Name  string   `json:"name"`  // nombre de equipo, "Over" o "Under"
	Price int      `json:"price"` // odds americanas
	Point *float64 `json:"point"` // solo spreads/totals
}

// scoreDTO es el marcador (posiblemente parcial) de un evento.
type scoreDTO struct {
	ID           string         `json:"id"`
	SportKey     string         `json:"sport_key"`
	CommenceTime string         `json:"commence_time"`
	Completed    bool           `json:"completed"`
	HomeTeam     string         `json:"home_team"`
	AwayTeam     string         `json:"away_team"`
	Scores       []teamScoreDTO `json:"scores"` // null hasta que el juego empieza
}

type teamScoreDTO struct {
	Name  string `json:"name"`
	Score string `json:"score"` // el provider lo envía como string
}
