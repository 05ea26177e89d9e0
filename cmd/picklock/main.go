package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alejandrodnm/picklock/config"
	"github.com/alejandrodnm/picklock/internal/adapters/notify"
	"github.com/alejandrodnm/picklock/internal/adapters/oddsfeed"
	"github.com/alejandrodnm/picklock/internal/adapters/storage"
	"github.com/alejandrodnm/picklock/internal/adapters/teamstate"
	"github.com/alejandrodnm/picklock/internal/domain"
	"github.com/alejandrodnm/picklock/internal/pipeline"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	stage := flag.String("stage", "score", "stage to run: score|lock|settle|report")
	runDate := flag.String("date", "", "target run date YYYY-MM-DD (default: today UTC)")
	dryRun := flag.Bool("dry-run", false, "report intended actions without writing")
	lead := flag.Int("lead", 0, "lock window outer edge in minutes (overrides config)")
	grace := flag.Int("grace", 0, "lock window inner edge in minutes (overrides config)")
	source := flag.String("source", "", "source tag: live|backtest (overrides config)")
	from := flag.String("from", "", "report range start YYYY-MM-DD (default: 30 days ago)")
	to := flag.String("to", "", "report range end YYYY-MM-DD (default: today)")
	verbose := flag.Bool("verbose", false, "set log level to debug")
	logFormat := flag.String("format", "", "log format: text|json (overrides config)")
	table := flag.Bool("table", false, "print full candidate table (default: compact 1-line)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err, "path", *configPath)
		os.Exit(1)
	}

	if *verbose {
		cfg.Log.Level = "debug"
	}
	if *logFormat != "" {
		cfg.Log.Format = *logFormat
	}
	setupLogger(cfg.Log)

	if *lead > 0 {
		cfg.Pipeline.LeadMinutes = *lead
	}
	if *grace > 0 {
		cfg.Pipeline.GraceMinutes = *grace
	}
	if *source != "" {
		cfg.Pipeline.Source = *source
	}

	slog.Info("picklock starting",
		"config", *configPath,
		"stage", *stage,
		"sports", cfg.Pipeline.Sports,
		"source", cfg.Pipeline.Source,
		"dry_run", *dryRun,
	)

	client := oddsfeed.NewClient(cfg.API.BaseURL, cfg.API.Key)

	store, err := storage.NewSQLiteStore(cfg.Storage.DSN)
	if err != nil {
		slog.Error("failed to open storage", "err", err, "dsn", cfg.Storage.DSN)
		os.Exit(1)
	}
	defer store.Close()

	notifier := notify.NewConsole(*table)
	state := teamstate.NewStatic(cfg.TeamState.Penalties)

	p := pipeline.New(pipeline.Config{
		Sports: cfg.Pipeline.Sports,
		Score: domain.ScoreConfig{
			PickThreshold:    cfg.Scoring.PickThreshold,
			ConfidenceHigh:   cfg.Scoring.ConfidenceHigh,
			ConfidenceMedium: cfg.Scoring.ConfidenceMedium,
			MLTightVariance:  cfg.Scoring.MLTightVariance,
			MLWideVariance:   cfg.Scoring.MLWideVariance,
			PtTightVariance:  cfg.Scoring.PtTightVariance,
			PtWideVariance:   cfg.Scoring.PtWideVariance,
			MinPriceEdge:     cfg.Scoring.MinPriceEdge,
			MinPointEdge:     cfg.Scoring.MinPointEdge,
		},
		Tiers: domain.TierConfig{
			TopPick:    cfg.Tiers.TopPick,
			StrongLean: cfg.Tiers.StrongLean,
			Watchlist:  cfg.Tiers.Watchlist,
		},
		Lead:           cfg.LeadWindow(),
		Grace:          cfg.GraceWindow(),
		ScoresDaysFrom: cfg.Pipeline.ScoresDaysFrom,
		Source:         domain.SourceTag(cfg.Pipeline.Source),
		DryRun:         *dryRun,
	}, client, state, store, notifier)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := runStage(ctx, p, *stage, *runDate, *from, *to); err != nil {
		slog.Error("stage exited with error", "stage", *stage, "err", err)
		os.Exit(1)
	}

	slog.Info("picklock finished cleanly")
}

func runStage(ctx context.Context, p *pipeline.Pipeline, stage, runDate, from, to string) error {
	switch stage {
	case "score":
		_, err := p.Score(ctx, runDate)
		return err
	case "lock":
		_, err := p.Lock(ctx, runDate)
		return err
	case "settle":
		_, err := p.Settle(ctx)
		return err
	case "report":
		fromT, toT, err := reportRange(from, to)
		if err != nil {
			return err
		}
		_, err = p.Report(ctx, fromT, toT)
		return err
	}
	return flagError(stage)
}

// reportRange parsea el rango del reporte; default: últimos 30 días.
func reportRange(from, to string) (time.Time, time.Time, error) {
	now := time.Now().UTC()
	fromT := now.AddDate(0, 0, -30)
	toT := now

	var err error
	if from != "" {
		fromT, err = time.Parse("2006-01-02", from)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	}
	if to != "" {
		toT, err = time.Parse("2006-01-02", to)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		// Incluir el día completo del borde superior.
		toT = toT.Add(24*time.Hour - time.Nanosecond)
	}
	return fromT, toT, nil
}

type flagError string

func (e flagError) Error() string {
	return "unknown stage " + string(e) + " (want score|lock|settle|report)"
}

func setupLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}
