package ports

import (
	"context"
	"time"

	"github.com/alejandrodnm/picklock/internal/domain"
)

// Store es el almacén relacional del pipeline. Toda la coordinación entre
// invocaciones vive aquí: la clave natural (run_date, event_id, market) y
// las escrituras insert-or-ignore hacen seguras las corridas solapadas.
type Store interface {
	// UpsertEvents refresca la tabla de referencia de eventos, usada para
	// el backfill de nombres de equipo.
	UpsertEvents(ctx context.Context, events []domain.Event) error

	// InsertLockedPicks escribe picks con semántica first-writer-wins
	// sobre la clave natural. Devuelve cuántos se insertaron realmente;
	// los duplicados se ignoran sin error.
	InsertLockedPicks(ctx context.Context, picks []domain.LockedPick) (int, error)

	// LockedMarkets devuelve las claves (event_id, market) ya lockeadas
	// para un run_date.
	LockedMarkets(ctx context.Context, runDate string) (map[domain.NaturalKey]bool, error)

	// HasTopPick indica si ya existe un pick tier=top_pick para la fecha.
	HasTopPick(ctx context.Context, runDate string) (bool, error)

	// BackfillTeams rellena best-effort home/away/selection_team de picks
	// que quedaron sin nombres, usando la tabla de eventos. Nunca toca
	// los campos de odds. Devuelve cuántas filas actualizó.
	BackfillTeams(ctx context.Context) (int, error)

	// UpsertGameResults guarda marcadores finales (última versión gana;
	// los marcadores son hechos externos, no decisiones).
	UpsertGameResults(ctx context.Context, results []domain.GameResult) error

	// GameResult busca el marcador de un evento. ok=false si no llegó aún.
	GameResult(ctx context.Context, eventID string) (domain.GameResult, bool, error)

	// UngradedPicks devuelve picks sin graded_at cuyo inicio ya pasó.
	UngradedPicks(ctx context.Context, before time.Time, source domain.SourceTag) ([]domain.LockedPick, error)

	// InsertGradedResult escribe un resultado idempotente sobre
	// locked_pick_id. Devuelve false si ya existía (sin error).
	InsertGradedResult(ctx context.Context, result domain.GradedResult) (bool, error)

	// MarkGraded marca graded_at en el pick origen.
	MarkGraded(ctx context.Context, pickID string, at time.Time) error

	// GradedResults devuelve resultados liquidados por rango de inicio de
	// juego y source tag, para el reporte de performance.
	GradedResults(ctx context.Context, from, to time.Time, source domain.SourceTag) ([]domain.GradedResult, error)

	// Close cierra la conexión a la base de datos limpiamente.
	Close() error
}
