package pipeline

// score.go — stage de observabilidad: fetch → aggregate → score → classify,
// sin escrituras. Muestra lo que el lock stage haría con las quotes actuales.

import (
	"context"
	"log/slog"
)

// Score ejecuta un ciclo de scoring y presenta las calls. Read-only.
func (p *Pipeline) Score(ctx context.Context, runDate string) (RunSummary, error) {
	start := p.cfg.Now()
	summary := RunSummary{Stage: "score", RunDate: p.resolveRunDate(runDate), Source: p.cfg.Source, DryRun: true}

	events, err := p.fetchAllEvents(ctx, &summary)
	if err != nil {
		return summary, err
	}

	calls := p.scoreEvents(ctx, events, &summary)

	// Clasificación informativa: respeta el top pick ya persistido del día
	// para que el output coincida con lo que lockearía el lock stage.
	hasTop, err := p.store.HasTopPick(ctx, summary.RunDate)
	if err != nil {
		return summary, err
	}
	calls = classifyCalls(p.cfg.Tiers, calls, hasTop)

	if err := p.notifier.NotifyCandidates(ctx, calls); err != nil {
		slog.Warn("notifier error", "err", err)
	}

	summary.Duration = p.cfg.Now().Sub(start)
	slog.Info("score stage complete", summary.LogFields()...)
	return summary, nil
}
