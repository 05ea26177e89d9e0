package ports

import "context"

// TeamStateProvider expone la señal externa de disponibilidad de equipos
// (lesiones, descansos). El scorer resta la penalización del score y la
// atribuye en el rationale.
type TeamStateProvider interface {
	// Penalties devuelve puntos de penalización por equipo. Equipos sin
	// señal simplemente no aparecen en el mapa.
	Penalties(ctx context.Context, teams []string) (map[string]float64, error)
}
