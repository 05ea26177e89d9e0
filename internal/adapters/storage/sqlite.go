package storage

// sqlite.go — almacén del pipeline sobre SQLite (pure Go, sin CGo).
//
// Semántica de escritura por tabla:
//   - locked_picks:  INSERT ... ON CONFLICT DO NOTHING sobre la clave
//     natural (run_date, event_id, market). First-writer-wins: un pick
//     lockeado jamás se sobreescribe, dos invocaciones solapadas producen
//     exactamente una fila.
//   - pick_results:  ON CONFLICT(locked_pick_id) DO NOTHING. Re-liquidar
//     un pick ya liquidado es un no-op.
//   - game_results / events: upsert (hechos externos, la última versión gana).

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/alejandrodnm/picklock/internal/domain"
	_ "modernc.org/sqlite"
)

const schema = `
-- Picks congelados. Clave natural: (run_date, event_id, market).
CREATE TABLE IF NOT EXISTS locked_picks (
    id                       TEXT PRIMARY KEY,
    run_date                 TEXT    NOT NULL,
    event_id                 TEXT    NOT NULL,
    sport                    TEXT    NOT NULL,
    league                   TEXT,
    market                   TEXT    NOT NULL,
    side                     TEXT    NOT NULL,
    tier                     TEXT    NOT NULL,
    score                    INTEGER NOT NULL,
    confidence               REAL    NOT NULL,
    selection_team           TEXT,
    home_team                TEXT,
    away_team                TEXT,
    game_start_time          DATETIME NOT NULL,
    locked_at                DATETIME NOT NULL,
    locked_ml_home           INTEGER,
    locked_ml_away           INTEGER,
    locked_spread_point_home REAL,
    locked_spread_price_home INTEGER,
    locked_spread_point_away REAL,
    locked_spread_price_away INTEGER,
    source                   TEXT    NOT NULL DEFAULT 'live',
    graded_at                DATETIME,
    UNIQUE (run_date, event_id, market)
);

-- Resultados liquidados: cero o uno por locked_pick.
CREATE TABLE IF NOT EXISTS pick_results (
    id             TEXT PRIMARY KEY,
    locked_pick_id TEXT    NOT NULL UNIQUE,
    event_id       TEXT    NOT NULL,
    sport          TEXT    NOT NULL,
    market         TEXT    NOT NULL,
    tier           TEXT    NOT NULL,
    confidence     REAL    NOT NULL,
    result         TEXT    NOT NULL,
    units          REAL    NOT NULL,
    home_team      TEXT,
    away_team      TEXT,
    selection_team TEXT,
    start_time     DATETIME,
    run_date       TEXT    NOT NULL,
    source         TEXT    NOT NULL DEFAULT 'live',
    match_strategy TEXT,
    graded_at      DATETIME NOT NULL
);

-- Marcadores finales del provider (hecho externo, puede llegar tarde).
CREATE TABLE IF NOT EXISTS game_results (
    event_id   TEXT PRIMARY KEY,
    sport      TEXT,
    home_team  TEXT,
    away_team  TEXT,
    home_score INTEGER NOT NULL DEFAULT 0,
    away_score INTEGER NOT NULL DEFAULT 0,
    completed  INTEGER NOT NULL DEFAULT 0,
    fetched_at DATETIME NOT NULL
);

-- Tabla de referencia de eventos, usada para backfill de nombres.
CREATE TABLE IF NOT EXISTS events (
    event_id   TEXT PRIMARY KEY,
    sport      TEXT,
    league     TEXT,
    home_team  TEXT,
    away_team  TEXT,
    start_time DATETIME,
    updated_at DATETIME NOT NULL
);

-- A lo sumo un top_pick por run_date, garantizado en el schema: dos corridas
-- solapadas no pueden persistir dos top picks aunque ambas hayan leído
-- HasTopPick=false antes de escribir.
CREATE UNIQUE INDEX IF NOT EXISTS idx_one_top_pick ON locked_picks(run_date) WHERE tier = 'top_pick';

CREATE INDEX IF NOT EXISTS idx_locked_start    ON locked_picks(game_start_time);
CREATE INDEX IF NOT EXISTS idx_locked_run_tier ON locked_picks(run_date, tier);
CREATE INDEX IF NOT EXISTS idx_results_start   ON pick_results(start_time);
`

// SQLiteStore implementa ports.Store usando SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore abre (o crea) la base de datos en la ruta dada y aplica
// el schema.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("storage.NewSQLiteStore: open %q: %w", path, err)
	}
	db.SetMaxOpenConns(1) // SQLite es single-writer
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage.NewSQLiteStore: apply schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// UpsertEvents refresca la tabla de referencia de eventos.
func (s *SQLiteStore) UpsertEvents(ctx context.Context, events []domain.Event) error {
	if len(events) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("storage.UpsertEvents: begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO events (event_id, sport, league, home_team, away_team, start_time, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(event_id) DO UPDATE SET
			sport      = excluded.sport,
			league     = excluded.league,
			home_team  = excluded.home_team,
			away_team  = excluded.away_team,
			start_time = excluded.start_time,
			updated_at = excluded.updated_at
	`)
	if err != nil {
		return fmt.Errorf("storage.UpsertEvents: prepare: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for _, ev := range events {
		if _, err := stmt.ExecContext(ctx,
			ev.ID, ev.Sport, ev.League, ev.HomeTeam, ev.AwayTeam, ev.StartTime.UTC(), now,
		); err != nil {
			return fmt.Errorf("storage.UpsertEvents: upsert %s: %w", ev.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage.UpsertEvents: commit: %w", err)
	}
	return nil
}

// InsertLockedPicks escribe picks con ON CONFLICT DO NOTHING sobre la clave
// natural. Devuelve cuántas filas se insertaron realmente.
//
// Si el índice parcial de top_pick rechaza la fila (otra corrida ya lockeó
// el top pick del día sobre otro evento), el pick se degrada a strong_lean
// y se reintenta una vez.
func (s *SQLiteStore) InsertLockedPicks(ctx context.Context, picks []domain.LockedPick) (int, error) {
	if len(picks) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("storage.InsertLockedPicks: begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO locked_picks
			(id, run_date, event_id, sport, league, market, side, tier, score,
			 confidence, selection_team, home_team, away_team, game_start_time,
			 locked_at, locked_ml_home, locked_ml_away,
			 locked_spread_point_home, locked_spread_price_home,
			 locked_spread_point_away, locked_spread_price_away, source)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_date, event_id, market) DO NOTHING
	`)
	if err != nil {
		return 0, fmt.Errorf("storage.InsertLockedPicks: prepare: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	for _, p := range picks {
		exec := func(tier domain.Tier) (sql.Result, error) {
			return stmt.ExecContext(ctx,
				p.ID, p.RunDate, p.EventID, p.Sport, p.League, string(p.Market),
				p.Side, string(tier), p.Score, p.Confidence,
				nullStr(p.SelectionTeam), nullStr(p.HomeTeam), nullStr(p.AwayTeam),
				p.GameStartTime.UTC(), p.LockedAt.UTC(),
				p.Odds.MLHome, p.Odds.MLAway,
				p.Odds.SpreadPointHome, p.Odds.SpreadPriceHome,
				p.Odds.SpreadPointAway, p.Odds.SpreadPriceAway,
				string(p.Source),
			)
		}

		res, err := exec(p.Tier)
		if err != nil && p.Tier == domain.TierTopPick && isTopPickConflict(err) {
			res, err = exec(domain.TierStrongLean)
		}
		if err != nil {
			return 0, fmt.Errorf("storage.InsertLockedPicks: insert %s/%s: %w", p.EventID, p.Market, err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			inserted++
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("storage.InsertLockedPicks: commit: %w", err)
	}
	return inserted, nil
}

// LockedMarkets devuelve las claves (event_id, market) lockeadas en la fecha.
func (s *SQLiteStore) LockedMarkets(ctx context.Context, runDate string) (map[domain.NaturalKey]bool, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT event_id, market FROM locked_picks WHERE run_date = ?`, runDate)
	if err != nil {
		return nil, fmt.Errorf("storage.LockedMarkets: query: %w", err)
	}
	defer rows.Close()

	locked := make(map[domain.NaturalKey]bool)
	for rows.Next() {
		var eventID, market string
		if err := rows.Scan(&eventID, &market); err != nil {
			return nil, fmt.Errorf("storage.LockedMarkets: scan: %w", err)
		}
		locked[domain.NaturalKey{EventID: eventID, Market: domain.MarketKind(market)}] = true
	}
	return locked, rows.Err()
}

// HasTopPick indica si ya existe un top_pick para la fecha.
func (s *SQLiteStore) HasTopPick(ctx context.Context, runDate string) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM locked_picks WHERE run_date = ? AND tier = ?`,
		runDate, string(domain.TierTopPick),
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("storage.HasTopPick: query: %w", err)
	}
	return count > 0, nil
}

// BackfillTeams rellena nombres de equipo faltantes desde la tabla events.
// Solo toca home_team/away_team/selection_team — los campos de odds son un
// snapshot point-in-time y quedan como estén.
func (s *SQLiteStore) BackfillTeams(ctx context.Context) (int, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT p.id, p.side, e.home_team, e.away_team
		FROM locked_picks p
		JOIN events e ON e.event_id = p.event_id
		WHERE p.home_team IS NULL OR p.home_team = ''
		   OR p.away_team IS NULL OR p.away_team = ''
	`)
	if err != nil {
		return 0, fmt.Errorf("storage.BackfillTeams: query: %w", err)
	}
	defer rows.Close()

	type fill struct {
		id, side, home, away string
	}
	var fills []fill
	for rows.Next() {
		var f fill
		if err := rows.Scan(&f.id, &f.side, &f.home, &f.away); err != nil {
			return 0, fmt.Errorf("storage.BackfillTeams: scan: %w", err)
		}
		fills = append(fills, f)
	}
	if err := rows.Err(); err != nil {
		return 0, err
	}

	updated := 0
	for _, f := range fills {
		selection := domain.ResolveSelectionTeam(f.side, f.home, f.away)
		res, err := s.db.ExecContext(ctx, `
			UPDATE locked_picks
			SET home_team = ?, away_team = ?,
			    selection_team = COALESCE(NULLIF(selection_team, ''), NULLIF(?, ''))
			WHERE id = ?
		`, f.home, f.away, selection, f.id)
		if err != nil {
			return updated, fmt.Errorf("storage.BackfillTeams: update %s: %w", f.id, err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			updated++
		}
	}
	return updated, nil
}

// UpsertGameResults guarda marcadores; la última versión del hecho gana.
func (s *SQLiteStore) UpsertGameResults(ctx context.Context, results []domain.GameResult) error {
	if len(results) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("storage.UpsertGameResults: begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO game_results
			(event_id, sport, home_team, away_team, home_score, away_score, completed, fetched_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(event_id) DO UPDATE SET
			sport      = excluded.sport,
			home_team  = excluded.home_team,
			away_team  = excluded.away_team,
			home_score = excluded.home_score,
			away_score = excluded.away_score,
			completed  = excluded.completed,
			fetched_at = excluded.fetched_at
	`)
	if err != nil {
		return fmt.Errorf("storage.UpsertGameResults: prepare: %w", err)
	}
	defer stmt.Close()

	for _, r := range results {
		completed := 0
		if r.Completed {
			completed = 1
		}
		if _, err := stmt.ExecContext(ctx,
			r.EventID, r.Sport, r.HomeTeam, r.AwayTeam,
			r.HomeScore, r.AwayScore, completed, r.FetchedAt.UTC(),
		); err != nil {
			return fmt.Errorf("storage.UpsertGameResults: upsert %s: %w", r.EventID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage.UpsertGameResults: commit: %w", err)
	}
	return nil
}

// GameResult busca el marcador de un evento. ok=false si todavía no llegó.
func (s *SQLiteStore) GameResult(ctx context.Context, eventID string) (domain.GameResult, bool, error) {
	var r domain.GameResult
	var completed int
	err := s.db.QueryRowContext(ctx, `
		SELECT event_id, sport, home_team, away_team, home_score, away_score, completed, fetched_at
		FROM game_results WHERE event_id = ?
	`, eventID).Scan(
		&r.EventID, &r.Sport, &r.HomeTeam, &r.AwayTeam,
		&r.HomeScore, &r.AwayScore, &completed, &r.FetchedAt,
	)
	if err == sql.ErrNoRows {
		return domain.GameResult{}, false, nil
	}
	if err != nil {
		return domain.GameResult{}, false, fmt.Errorf("storage.GameResult: query %s: %w", eventID, err)
	}
	r.Completed = completed == 1
	return r, true, nil
}

// UngradedPicks devuelve picks sin liquidar cuyo inicio ya pasó.
func (s *SQLiteStore) UngradedPicks(ctx context.Context, before time.Time, source domain.SourceTag) ([]domain.LockedPick, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, run_date, event_id, sport, COALESCE(league, ''), market, side, tier,
		       score, confidence, COALESCE(selection_team, ''), COALESCE(home_team, ''),
		       COALESCE(away_team, ''), game_start_time, locked_at,
		       locked_ml_home, locked_ml_away,
		       locked_spread_point_home, locked_spread_price_home,
		       locked_spread_point_away, locked_spread_price_away, source
		FROM locked_picks
		WHERE graded_at IS NULL AND game_start_time < ? AND source = ?
		ORDER BY game_start_time ASC
	`, before.UTC(), string(source))
	if err != nil {
		return nil, fmt.Errorf("storage.UngradedPicks: query: %w", err)
	}
	defer rows.Close()

	var picks []domain.LockedPick
	for rows.Next() {
		var p domain.LockedPick
		var market, tier, src string
		if err := rows.Scan(
			&p.ID, &p.RunDate, &p.EventID, &p.Sport, &p.League, &market, &p.Side, &tier,
			&p.Score, &p.Confidence, &p.SelectionTeam, &p.HomeTeam, &p.AwayTeam,
			&p.GameStartTime, &p.LockedAt,
			&p.Odds.MLHome, &p.Odds.MLAway,
			&p.Odds.SpreadPointHome, &p.Odds.SpreadPriceHome,
			&p.Odds.SpreadPointAway, &p.Odds.SpreadPriceAway,
			&src,
		); err != nil {
			return nil, fmt.Errorf("storage.UngradedPicks: scan: %w", err)
		}
		p.Market = domain.MarketKind(market)
		p.Tier = domain.Tier(tier)
		p.Source = domain.SourceTag(src)
		picks = append(picks, p)
	}
	return picks, rows.Err()
}

// InsertGradedResult escribe el resultado con ON CONFLICT(locked_pick_id)
// DO NOTHING. Devuelve false si el pick ya estaba liquidado.
func (s *SQLiteStore) InsertGradedResult(ctx context.Context, r domain.GradedResult) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO pick_results
			(id, locked_pick_id, event_id, sport, market, tier, confidence,
			 result, units, home_team, away_team, selection_team, start_time,
			 run_date, source, match_strategy, graded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(locked_pick_id) DO NOTHING
	`,
		r.ID, r.LockedPickID, r.EventID, r.Sport, string(r.Market), string(r.Tier),
		r.Confidence, string(r.Result), r.Units,
		nullStr(r.HomeTeam), nullStr(r.AwayTeam), nullStr(r.SelectionTeam),
		r.StartTime.UTC(), r.RunDate, string(r.Source), r.MatchStrategy, r.GradedAt.UTC(),
	)
	if err != nil {
		return false, fmt.Errorf("storage.InsertGradedResult: insert %s: %w", r.LockedPickID, err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// MarkGraded marca graded_at en el pick origen (única mutación permitida
// sobre locked_picks).
func (s *SQLiteStore) MarkGraded(ctx context.Context, pickID string, at time.Time) error {
	if _, err := s.db.ExecContext(ctx,
		`UPDATE locked_picks SET graded_at = ? WHERE id = ? AND graded_at IS NULL`,
		at.UTC(), pickID,
	); err != nil {
		return fmt.Errorf("storage.MarkGraded: update %s: %w", pickID, err)
	}
	return nil
}

// GradedResults devuelve resultados liquidados por rango de inicio y source.
func (s *SQLiteStore) GradedResults(ctx context.Context, from, to time.Time, source domain.SourceTag) ([]domain.GradedResult, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, locked_pick_id, event_id, sport, market, tier, confidence,
		       result, units, COALESCE(home_team, ''), COALESCE(away_team, ''),
		       COALESCE(selection_team, ''), start_time, run_date, source,
		       COALESCE(match_strategy, ''), graded_at
		FROM pick_results
		WHERE start_time BETWEEN ? AND ? AND source = ?
		ORDER BY start_time ASC
	`, from.UTC(), to.UTC(), string(source))
	if err != nil {
		return nil, fmt.Errorf("storage.GradedResults: query: %w", err)
	}
	defer rows.Close()

	var results []domain.GradedResult
	for rows.Next() {
		var r domain.GradedResult
		var market, tier, outcome, src string
		if err := rows.Scan(
			&r.ID, &r.LockedPickID, &r.EventID, &r.Sport, &market, &tier, &r.Confidence,
			&outcome, &r.Units, &r.HomeTeam, &r.AwayTeam, &r.SelectionTeam,
			&r.StartTime, &r.RunDate, &src, &r.MatchStrategy, &r.GradedAt,
		); err != nil {
			return nil, fmt.Errorf("storage.GradedResults: scan: %w", err)
		}
		r.Market = domain.MarketKind(market)
		r.Tier = domain.Tier(tier)
		r.Result = domain.Outcome(outcome)
		r.Source = domain.SourceTag(src)
		results = append(results, r)
	}
	return results, rows.Err()
}

// Close cierra la conexión a la base de datos.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// isTopPickConflict detecta la violación del índice parcial idx_one_top_pick.
func isTopPickConflict(err error) bool {
	return err != nil && strings.Contains(err.Error(), "idx_one_top_pick")
}

// nullStr convierte "" a NULL para que el backfill pueda detectarlo.
func nullStr(s string) any {
	if s == "" {
		return nil
	}
	return s
}
