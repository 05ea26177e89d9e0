package ports

import (
	"context"

	"github.com/alejandrodnm/picklock/internal/domain"
)

// OddsProvider obtiene eventos con quotes por bookmaker y marcadores finales.
// Es una fuente read-only con datos ocasionalmente ausentes; el pipeline
// nunca escribe contra ella.
type OddsProvider interface {
	// FetchEvents devuelve los eventos próximos de un deporte con las
	// quotes de moneyline, spread y total de cada bookmaker disponible.
	FetchEvents(ctx context.Context, sport string) ([]domain.Event, error)

	// FetchScores devuelve los marcadores de eventos recientes del deporte,
	// mirando hacia atrás daysFrom días. Incluye eventos aún sin terminar
	// (Completed == false).
	FetchScores(ctx context.Context, sport string, daysFrom int) ([]domain.GameResult, error)
}
