package pipeline

// lock.go — Lock Window State Machine.
//
// Estados por (evento, mercado): unscored → scored/no_bet → eligible → locked.
// La transición eligible → locked ocurre solo si:
//   1. el inicio del evento cae dentro de [now+grace, now+lead],
//   2. el inicio NO pasó todavía (guard duro contra clock skew y reads stale),
//   3. la clave natural no está lockeada ya.
// Al transicionar se congela el mejor precio del consenso más fresco; si no
// hay odds en ese instante los campos quedan null para siempre (el backfill
// posterior rellena solo nombres de equipo, nunca odds).

import (
	"context"
	"log/slog"
	"time"

	"github.com/alejandrodnm/picklock/internal/domain"
	"github.com/google/uuid"
)

// Lock ejecuta un ciclo del lock stage para el run_date dado. Encontrar
// cero candidatos elegibles es un no-op exitoso, no un error.
func (p *Pipeline) Lock(ctx context.Context, runDate string) (RunSummary, error) {
	start := p.cfg.Now()
	summary := RunSummary{Stage: "lock", RunDate: p.resolveRunDate(runDate), Source: p.cfg.Source, DryRun: p.cfg.DryRun}

	events, err := p.fetchAllEvents(ctx, &summary)
	if err != nil {
		return summary, err
	}

	// Refrescar la tabla de referencia para el backfill de nombres.
	if !p.cfg.DryRun {
		if err := p.store.UpsertEvents(ctx, events); err != nil {
			return summary, err
		}
	}

	calls := p.scoreEvents(ctx, events, &summary)

	locked, err := p.store.LockedMarkets(ctx, summary.RunDate)
	if err != nil {
		return summary, err
	}
	hasTop, err := p.store.HasTopPick(ctx, summary.RunDate)
	if err != nil {
		return summary, err
	}

	now := p.cfg.Now()
	var eligible []domain.Candidate
	for _, call := range calls {
		if !call.IsPick() {
			continue
		}
		cand := call.Candidate

		key := domain.NaturalKey{EventID: cand.EventID, Market: cand.Market}
		if locked[key] {
			summary.AlreadyLocked++
			continue
		}
		if !inLockWindow(cand.StartTime, now, p.cfg.Lead, p.cfg.Grace) {
			continue
		}
		eligible = append(eligible, cand)
	}
	summary.Eligible = len(eligible)

	if len(eligible) == 0 {
		summary.Duration = p.cfg.Now().Sub(start)
		slog.Info("lock stage complete", summary.LogFields()...)
		return summary, nil
	}

	// Tiers con la regla del top pick diario: orden descendente de score,
	// un solo top_pick por fecha contando corridas anteriores. HasTopPick
	// es solo la primera línea: el índice parcial del store garantiza el
	// límite aunque dos corridas solapadas lean false a la vez.
	tiered := domain.AssignTiers(p.cfg.Tiers, eligible, hasTop)

	picks := make([]domain.LockedPick, 0, len(tiered))
	for _, cand := range tiered {
		if cand.Tier == domain.TierNone {
			summary.Skipped++
			continue
		}
		picks = append(picks, buildLockedPick(cand, summary.RunDate, p.cfg.Source, now))
	}

	if p.cfg.DryRun {
		summary.Locked = len(picks)
		if err := p.notifier.NotifyLocked(ctx, picks, true); err != nil {
			slog.Warn("notifier error", "err", err)
		}
		summary.Duration = p.cfg.Now().Sub(start)
		slog.Info("lock stage complete", summary.LogFields()...)
		return summary, nil
	}

	inserted, err := p.store.InsertLockedPicks(ctx, picks)
	if err != nil {
		return summary, err
	}
	summary.Locked = inserted
	// Una corrida solapada pudo ganarnos la escritura: no es error.
	summary.AlreadyLocked += len(picks) - inserted

	backfilled, err := p.store.BackfillTeams(ctx)
	if err != nil {
		slog.Warn("team backfill failed", "err", err)
		summary.addError(err)
	}
	summary.Backfilled = backfilled

	if err := p.notifier.NotifyLocked(ctx, picks, false); err != nil {
		slog.Warn("notifier error", "err", err)
	}

	summary.Duration = p.cfg.Now().Sub(start)
	slog.Info("lock stage complete", summary.LogFields()...)
	return summary, nil
}

// inLockWindow decide si un evento está dentro de la ventana de lock:
// now+grace ≤ start ≤ now+lead, con el guard duro start > now.
func inLockWindow(start, now time.Time, lead, grace time.Duration) bool {
	if !start.After(now) {
		return false // nunca lockear un juego ya empezado
	}
	if start.After(now.Add(lead)) {
		return false // demasiado lejos: todavía no entra en ventana
	}
	if start.Before(now.Add(grace)) {
		return false // demasiado cerca: ya pasó el borde interior
	}
	return true
}

// buildLockedPick materializa un candidato como registro inmutable.
func buildLockedPick(cand domain.Candidate, runDate string, source domain.SourceTag, now time.Time) domain.LockedPick {
	selection := cand.SelectionTeam
	if selection == "" {
		selection = domain.ResolveSelectionTeam(cand.Side, cand.HomeTeam, cand.AwayTeam)
	}
	return domain.LockedPick{
		ID:            uuid.NewString(),
		RunDate:       runDate,
		EventID:       cand.EventID,
		Sport:         cand.Sport,
		League:        cand.League,
		Market:        cand.Market,
		Side:          cand.Side,
		Tier:          cand.Tier,
		Score:         cand.Score,
		Confidence:    cand.Confidence,
		SelectionTeam: selection,
		HomeTeam:      cand.HomeTeam,
		AwayTeam:      cand.AwayTeam,
		GameStartTime: cand.StartTime,
		LockedAt:      now,
		Odds:          cand.Odds,
		Source:        source,
	}
}

// classifyCalls asigna tiers informativos a las calls pick (para el score
// stage); las no_bet pasan intactas.
func classifyCalls(cfg domain.TierConfig, calls []domain.Call, topPickTaken bool) []domain.Call {
	var cands []domain.Candidate
	for _, c := range calls {
		if c.IsPick() {
			cands = append(cands, c.Candidate)
		}
	}
	tiered := domain.AssignTiers(cfg, cands, topPickTaken)

	tiers := make(map[domain.NaturalKey]domain.Tier, len(tiered))
	for _, c := range tiered {
		tiers[domain.NaturalKey{EventID: c.EventID, Market: c.Market}] = c.Tier
	}

	out := make([]domain.Call, len(calls))
	copy(out, calls)
	for i := range out {
		if out[i].IsPick() {
			out[i].Candidate.Tier = tiers[domain.NaturalKey{EventID: out[i].EventID, Market: out[i].Market}]
		}
	}
	return out
}
