package ports

import (
	"context"

	"github.com/alejandrodnm/picklock/internal/domain"
)

// Notifier presenta los resultados de cada stage al operador.
type Notifier interface {
	// NotifyCandidates muestra las calls del scoring ordenadas por score.
	NotifyCandidates(ctx context.Context, calls []domain.Call) error

	// NotifyLocked muestra los picks lockeados (o los que se lockearían,
	// en dry-run).
	NotifyLocked(ctx context.Context, picks []domain.LockedPick, dryRun bool) error

	// NotifyReport imprime el rollup de performance como tabla.
	NotifyReport(ctx context.Context, report domain.PerformanceReport) error
}
