package teamstate

// Provider estático de señales de disponibilidad: las penalizaciones se
// cargan desde config (un scraper de lesiones puede reemplazarlo detrás
// del mismo port sin tocar el scorer).

import "context"

// Static implementa ports.TeamStateProvider con un mapa fijo equipo → puntos.
type Static struct {
	penalties map[string]float64
}

// NewStatic crea el provider con las penalizaciones dadas (puede ser nil).
func NewStatic(penalties map[string]float64) *Static {
	return &Static{penalties: penalties}
}

// Penalties devuelve las penalizaciones de los equipos pedidos. Equipos sin
// señal no aparecen en el resultado.
func (s *Static) Penalties(_ context.Context, teams []string) (map[string]float64, error) {
	out := make(map[string]float64, len(teams))
	for _, t := range teams {
		if p, ok := s.penalties[t]; ok && p > 0 {
			out[t] = p
		}
	}
	return out, nil
}

// Null es el provider vacío: ningún equipo tiene señal. Útil en tests y en
// deployments sin fuente de lesiones configurada.
type Null struct{}

// Penalties devuelve siempre un mapa vacío.
func (Null) Penalties(_ context.Context, _ []string) (map[string]float64, error) {
	return map[string]float64{}, nil
}
