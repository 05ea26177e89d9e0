package pipeline

// Orquestación de los cuatro stages: score, lock, settle, report.
//
// Ningún stage es un proceso long-running: un scheduler externo invoca cada
// uno a su cadencia (score/lock en ciclos cortos cerca del kickoff, settle
// más lento cuando los juegos plausiblemente terminaron). Toda coordinación
// entre invocaciones vive en el store; las corridas solapadas son seguras
// por las escrituras insert-or-ignore sobre claves naturales.

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/alejandrodnm/picklock/internal/domain"
	"github.com/alejandrodnm/picklock/internal/ports"
)

// Config contiene toda la política de los stages. Valores explícitos,
// inyectados desde config — los stages no leen estado ambiental.
type Config struct {
	Sports         []string
	Score          domain.ScoreConfig
	Tiers          domain.TierConfig
	Lead           time.Duration // borde exterior de la ventana de lock
	Grace          time.Duration // borde interior de la ventana de lock
	ScoresDaysFrom int
	Source         domain.SourceTag
	DryRun         bool

	// Now es inyectable para que los tests controlen la ventana de lock.
	Now func() time.Time
}

// Pipeline agrupa las dependencias de los stages.
type Pipeline struct {
	cfg      Config
	odds     ports.OddsProvider
	state    ports.TeamStateProvider
	store    ports.Store
	notifier ports.Notifier
}

// New crea un Pipeline con todas las dependencias inyectadas.
func New(
	cfg Config,
	odds ports.OddsProvider,
	state ports.TeamStateProvider,
	store ports.Store,
	notifier ports.Notifier,
) *Pipeline {
	if cfg.Now == nil {
		cfg.Now = func() time.Time { return time.Now().UTC() }
	}
	return &Pipeline{
		cfg:      cfg,
		odds:     odds,
		state:    state,
		store:    store,
		notifier: notifier,
	}
}

// resolveRunDate normaliza el target date; vacío significa hoy (UTC).
func (p *Pipeline) resolveRunDate(runDate string) string {
	if runDate != "" {
		return runDate
	}
	return p.cfg.Now().Format("2006-01-02")
}

// fetchAllEvents hace fan-out de FetchEvents por deporte. Un deporte que
// falla se registra en el summary y no bloquea a los demás; si TODOS
// fallan el stage falla.
func (p *Pipeline) fetchAllEvents(ctx context.Context, summary *RunSummary) ([]domain.Event, error) {
	type result struct {
		sport  string
		events []domain.Event
		err    error
	}

	resultCh := make(chan result, len(p.cfg.Sports))
	var wg sync.WaitGroup
	for _, sport := range p.cfg.Sports {
		sport := sport
		wg.Add(1)
		go func() {
			defer wg.Done()
			events, err := p.odds.FetchEvents(ctx, sport)
			resultCh <- result{sport: sport, events: events, err: err}
		}()
	}

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	var all []domain.Event
	failures := 0
	for r := range resultCh {
		if r.err != nil {
			failures++
			summary.addError(fmt.Errorf("fetch events %s: %w", r.sport, r.err))
			slog.Warn("events fetch failed", "sport", r.sport, "err", r.err)
			continue
		}
		all = append(all, r.events...)
	}

	if failures == len(p.cfg.Sports) {
		return nil, fmt.Errorf("pipeline: events fetch failed for all %d sports", len(p.cfg.Sports))
	}
	return all, nil
}

// scoreEvents puntúa todos los eventos y devuelve las calls de cada
// (evento, mercado). La señal de team-state es opcional: si el provider
// falla se loguea y se puntúa sin penalizaciones.
func (p *Pipeline) scoreEvents(ctx context.Context, events []domain.Event, summary *RunSummary) []domain.Call {
	penalties := map[string]float64{}
	if p.state != nil {
		teams := make([]string, 0, len(events)*2)
		for _, ev := range events {
			teams = append(teams, ev.HomeTeam, ev.AwayTeam)
		}
		got, err := p.state.Penalties(ctx, teams)
		if err != nil {
			slog.Warn("team state lookup failed, scoring without signal", "err", err)
		} else {
			penalties = got
		}
	}

	var calls []domain.Call
	for _, ev := range events {
		calls = append(calls, domain.ScoreEvent(p.cfg.Score, ev, penalties)...)
	}

	summary.EventsSeen = len(events)
	for _, c := range calls {
		if c.IsPick() {
			summary.Candidates++
		} else {
			summary.NoBets++
		}
	}
	return calls
}
