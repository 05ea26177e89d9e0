package pipeline

// settle.go — Settlement Engine.
//
// Liquida picks cuyo juego ya empezó contra los marcadores finales del
// provider. Idempotente a nivel de pick: la escritura es insert-or-ignore
// sobre locked_pick_id, y graded_at se marca solo después de persistir el
// resultado. Los data gaps (marcador ausente o juego sin terminar) son
// outcomes pending, no errores.

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/alejandrodnm/picklock/internal/domain"
	"github.com/google/uuid"
)

// Settle ejecuta un ciclo de liquidación: fetch de scores, persistencia de
// marcadores, grading de picks sin liquidar.
func (p *Pipeline) Settle(ctx context.Context) (RunSummary, error) {
	start := p.cfg.Now()
	summary := RunSummary{Stage: "settle", Source: p.cfg.Source, DryRun: p.cfg.DryRun}
	summary.RunDate = p.resolveRunDate("")

	results := p.fetchAllScores(ctx, &summary)

	byEvent := make(map[string]domain.GameResult, len(results))
	for _, r := range results {
		byEvent[r.EventID] = r
	}

	if !p.cfg.DryRun && len(results) > 0 {
		if err := p.store.UpsertGameResults(ctx, results); err != nil {
			return summary, err
		}
	}

	now := p.cfg.Now()
	picks, err := p.store.UngradedPicks(ctx, now, p.cfg.Source)
	if err != nil {
		return summary, err
	}

	for _, pick := range picks {
		res, ok := byEvent[pick.EventID]
		if !ok {
			// El fetch de este ciclo no lo trajo; probar marcadores
			// persistidos en ciclos anteriores.
			res, ok, err = p.store.GameResult(ctx, pick.EventID)
			if err != nil {
				summary.addError(fmt.Errorf("game result %s: %w", pick.EventID, err))
				continue
			}
		}
		if !ok || !res.Completed {
			summary.Pending++
			continue
		}

		outcome, err := domain.Grade(pick, res)
		if err != nil {
			// Skip conditions del engine: el pick queda sin graded_at y
			// se reintenta (o se inspecciona) en ciclos posteriores.
			if errors.Is(err, domain.ErrUnsupportedMarket) ||
				errors.Is(err, domain.ErrTeamUnresolved) ||
				errors.Is(err, domain.ErrMissingLockedOdds) {
				slog.Warn("pick not gradable",
					"pick_id", pick.ID,
					"event_id", pick.EventID,
					"market", pick.Market,
					"reason", err)
				summary.Skipped++
				continue
			}
			summary.addError(fmt.Errorf("grade pick %s: %w", pick.ID, err))
			continue
		}

		graded := domain.GradedResult{
			ID:            uuid.NewString(),
			LockedPickID:  pick.ID,
			EventID:       pick.EventID,
			Sport:         pick.Sport,
			Market:        pick.Market,
			Tier:          pick.Tier,
			Confidence:    pick.Confidence,
			Result:        outcome.Result,
			Units:         outcome.Units,
			HomeTeam:      pick.HomeTeam,
			AwayTeam:      pick.AwayTeam,
			SelectionTeam: pick.SelectionTeam,
			StartTime:     pick.GameStartTime,
			RunDate:       pick.RunDate,
			Source:        pick.Source,
			MatchStrategy: outcome.MatchStrategy,
			GradedAt:      now,
		}

		if p.cfg.DryRun {
			slog.Info("would grade pick",
				"pick_id", pick.ID,
				"event_id", pick.EventID,
				"result", graded.Result,
				"units", graded.Units)
			summary.Graded++
			continue
		}

		inserted, err := p.store.InsertGradedResult(ctx, graded)
		if err != nil {
			summary.addError(fmt.Errorf("insert graded result %s: %w", pick.ID, err))
			continue
		}
		if !inserted {
			// Otra corrida lo liquidó entre nuestro read y write.
			summary.AlreadyGraded++
		} else {
			summary.Graded++
		}
		if err := p.store.MarkGraded(ctx, pick.ID, now); err != nil {
			summary.addError(fmt.Errorf("mark graded %s: %w", pick.ID, err))
		}
	}

	summary.Duration = p.cfg.Now().Sub(start)
	slog.Info("settle stage complete", summary.LogFields()...)
	return summary, nil
}

// fetchAllScores hace fan-out de FetchScores por deporte. A diferencia del
// fetch de eventos, que todos fallen no tumba el stage: los marcadores ya
// persistidos siguen permitiendo liquidar.
func (p *Pipeline) fetchAllScores(ctx context.Context, summary *RunSummary) []domain.GameResult {
	type result struct {
		sport   string
		results []domain.GameResult
		err     error
	}

	resultCh := make(chan result, len(p.cfg.Sports))
	var wg sync.WaitGroup
	for _, sport := range p.cfg.Sports {
		sport := sport
		wg.Add(1)
		go func() {
			defer wg.Done()
			results, err := p.odds.FetchScores(ctx, sport, p.cfg.ScoresDaysFrom)
			resultCh <- result{sport: sport, results: results, err: err}
		}()
	}

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	var all []domain.GameResult
	for r := range resultCh {
		if r.err != nil {
			summary.addError(fmt.Errorf("fetch scores %s: %w", r.sport, r.err))
			slog.Warn("scores fetch failed", "sport", r.sport, "err", r.err)
			continue
		}
		all = append(all, r.results...)
	}
	return all
}
