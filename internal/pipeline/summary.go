package pipeline

import (
	"time"

	"github.com/alejandrodnm/picklock/internal/domain"
)

// RunSummary es el resultado estructurado de una invocación de stage.
// Es el único surface de monitoreo del pipeline: suficiente para alertar
// sin inspeccionar el store.
type RunSummary struct {
	Stage   string
	RunDate string
	Source  domain.SourceTag
	DryRun  bool

	EventsSeen    int
	Candidates    int // picks emitidos por el scorer
	NoBets        int
	Eligible      int // candidatos dentro de la ventana de lock
	Locked        int
	AlreadyLocked int
	Graded        int
	AlreadyGraded int
	Pending       int // sin marcador final todavía (no es error)
	Skipped       int // no liquidable: totales, equipo sin resolver, odds faltantes
	Backfilled    int

	Errors   []string
	Duration time.Duration
}

func (s *RunSummary) addError(err error) {
	s.Errors = append(s.Errors, err.Error())
}

// LogFields devuelve los campos del summary como pares para slog.
func (s RunSummary) LogFields() []any {
	return []any{
		"stage", s.Stage,
		"run_date", s.RunDate,
		"source", s.Source,
		"dry_run", s.DryRun,
		"events", s.EventsSeen,
		"candidates", s.Candidates,
		"no_bets", s.NoBets,
		"eligible", s.Eligible,
		"locked", s.Locked,
		"already_locked", s.AlreadyLocked,
		"graded", s.Graded,
		"already_graded", s.AlreadyGraded,
		"pending", s.Pending,
		"skipped", s.Skipped,
		"backfilled", s.Backfilled,
		"errors", len(s.Errors),
		"duration", s.Duration.Round(time.Millisecond),
	}
}
