package pipeline

// report.go — Performance Aggregator. Rollup read-only sobre resultados
// liquidados; no escribe nada.

import (
	"context"
	"log/slog"
	"time"

	"github.com/alejandrodnm/picklock/internal/domain"
)

// Report agrega los resultados liquidados del rango [from, to] y los
// presenta por el notifier.
func (p *Pipeline) Report(ctx context.Context, from, to time.Time) (domain.PerformanceReport, error) {
	rows, err := p.store.GradedResults(ctx, from, to, p.cfg.Source)
	if err != nil {
		return domain.PerformanceReport{}, err
	}

	report := domain.BuildPerformance(rows, from, to, p.cfg.Source)

	if err := p.notifier.NotifyReport(ctx, report); err != nil {
		slog.Warn("notifier error", "err", err)
	}

	slog.Info("report stage complete",
		"from", from.Format("2006-01-02"),
		"to", to.Format("2006-01-02"),
		"source", p.cfg.Source,
		"results", len(rows),
		"wins", report.Overall.Wins,
		"losses", report.Overall.Losses,
		"pushes", report.Overall.Pushes,
		"units", report.Overall.Units)
	return report, nil
}
