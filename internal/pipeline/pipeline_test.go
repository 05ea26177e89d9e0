package pipeline_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alejandrodnm/picklock/internal/domain"
	"github.com/alejandrodnm/picklock/internal/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockOdds struct {
	events    map[string][]domain.Event
	eventsErr map[string]error
	scores    map[string][]domain.GameResult
	scoresErr map[string]error
}

func (m *mockOdds) FetchEvents(_ context.Context, sport string) ([]domain.Event, error) {
	if err := m.eventsErr[sport]; err != nil {
		return nil, err
	}
	return m.events[sport], nil
}

func (m *mockOdds) FetchScores(_ context.Context, sport string, _ int) ([]domain.GameResult, error) {
	if err := m.scoresErr[sport]; err != nil {
		return nil, err
	}
	return m.scores[sport], nil
}

type mockState struct {
	penalties map[string]float64
	err       error
}

func (m *mockState) Penalties(_ context.Context, _ []string) (map[string]float64, error) {
	return m.penalties, m.err
}

type mockStore struct {
	upserted []domain.Event
	picks    []domain.LockedPick
	results  map[string]domain.GameResult
	graded   map[string]domain.GradedResult // locked_pick_id → result
}

func newMockStore() *mockStore {
	return &mockStore{
		results: map[string]domain.GameResult{},
		graded:  map[string]domain.GradedResult{},
	}
}

func (m *mockStore) UpsertEvents(_ context.Context, events []domain.Event) error {
	m.upserted = append(m.upserted, events...)
	return nil
}

func (m *mockStore) InsertLockedPicks(_ context.Context, picks []domain.LockedPick) (int, error) {
	inserted := 0
	for _, p := range picks {
		if m.hasPick(p.RunDate, p.EventID, p.Market) {
			continue
		}
		m.picks = append(m.picks, p)
		inserted++
	}
	return inserted, nil
}

func (m *mockStore) hasPick(runDate, eventID string, market domain.MarketKind) bool {
	for _, p := range m.picks {
		if p.RunDate == runDate && p.EventID == eventID && p.Market == market {
			return true
		}
	}
	return false
}

func (m *mockStore) LockedMarkets(_ context.Context, runDate string) (map[domain.NaturalKey]bool, error) {
	locked := map[domain.NaturalKey]bool{}
	for _, p := range m.picks {
		if p.RunDate == runDate {
			locked[domain.NaturalKey{EventID: p.EventID, Market: p.Market}] = true
		}
	}
	return locked, nil
}

func (m *mockStore) HasTopPick(_ context.Context, runDate string) (bool, error) {
	for _, p := range m.picks {
		if p.RunDate == runDate && p.Tier == domain.TierTopPick {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockStore) BackfillTeams(_ context.Context) (int, error) { return 0, nil }

func (m *mockStore) UpsertGameResults(_ context.Context, results []domain.GameResult) error {
	for _, r := range results {
		m.results[r.EventID] = r
	}
	return nil
}

func (m *mockStore) GameResult(_ context.Context, eventID string) (domain.GameResult, bool, error) {
	r, ok := m.results[eventID]
	return r, ok, nil
}

func (m *mockStore) UngradedPicks(_ context.Context, before time.Time, source domain.SourceTag) ([]domain.LockedPick, error) {
	var out []domain.LockedPick
	for _, p := range m.picks {
		if p.GradedAt == nil && p.GameStartTime.Before(before) && p.Source == source {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *mockStore) InsertGradedResult(_ context.Context, r domain.GradedResult) (bool, error) {
	if _, ok := m.graded[r.LockedPickID]; ok {
		return false, nil
	}
	m.graded[r.LockedPickID] = r
	return true, nil
}

func (m *mockStore) MarkGraded(_ context.Context, pickID string, at time.Time) error {
	for i := range m.picks {
		if m.picks[i].ID == pickID && m.picks[i].GradedAt == nil {
			t := at
			m.picks[i].GradedAt = &t
		}
	}
	return nil
}

func (m *mockStore) GradedResults(_ context.Context, from, to time.Time, source domain.SourceTag) ([]domain.GradedResult, error) {
	var out []domain.GradedResult
	for _, r := range m.graded {
		if r.Source == source && !r.StartTime.Before(from) && !r.StartTime.After(to) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *mockStore) Close() error { return nil }

type mockNotifier struct {
	calls        []domain.Call
	locked       []domain.LockedPick
	lockedDryRun bool
	report       *domain.PerformanceReport
}

func (m *mockNotifier) NotifyCandidates(_ context.Context, calls []domain.Call) error {
	m.calls = calls
	return nil
}

func (m *mockNotifier) NotifyLocked(_ context.Context, picks []domain.LockedPick, dryRun bool) error {
	m.locked = picks
	m.lockedDryRun = dryRun
	return nil
}

func (m *mockNotifier) NotifyReport(_ context.Context, report domain.PerformanceReport) error {
	m.report = &report
	return nil
}

// --- helpers ---

var testNow = time.Date(2025, 11, 2, 18, 45, 0, 0, time.UTC)

func testConfig(sports ...string) pipeline.Config {
	if len(sports) == 0 {
		sports = []string{"basketball_nba"}
	}
	return pipeline.Config{
		Sports: sports,
		Score: domain.ScoreConfig{
			PickThreshold:    60,
			ConfidenceHigh:   75,
			ConfidenceMedium: 60,
			MLTightVariance:  25,
			MLWideVariance:   60,
			PtTightVariance:  0.5,
			PtWideVariance:   1.5,
			MinPriceEdge:     8,
			MinPointEdge:     0.5,
		},
		Tiers:          domain.TierConfig{TopPick: 80, StrongLean: 70, Watchlist: 60},
		Lead:           20 * time.Minute,
		Grace:          10 * time.Minute,
		ScoresDaysFrom: 3,
		Source:         domain.SourceLive,
		Now:            func() time.Time { return testNow },
	}
}

// pickableEvent produce un evento cuyo moneyline away puntúa 68 (pick,
// tier watchlist). Spread y total quedan como no_bet por falta de quotes.
func pickableEvent(id, home, away string, start time.Time) domain.Event {
	book := func(name string, h, a int) domain.BookmakerOdds {
		return domain.BookmakerOdds{Bookmaker: name, Moneyline: &domain.MoneylineQuote{Home: h, Away: a}}
	}
	return domain.Event{
		ID:        id,
		Sport:     "basketball_nba",
		League:    "NBA",
		HomeTeam:  home,
		AwayTeam:  away,
		StartTime: start,
		Books: []domain.BookmakerOdds{
			book("a", -110, 100),
			book("b", -112, 102),
			book("c", -108, 98),
		},
	}
}

// --- fetch fan-out ---

func TestScore_PartialFetchFailureContinues(t *testing.T) {
	odds := &mockOdds{
		events: map[string][]domain.Event{
			"basketball_nba": {pickableEvent("ev1", "Boston Celtics", "LA Lakers", testNow.Add(15*time.Minute))},
		},
		eventsErr: map[string]error{"americanfootball_nfl": errors.New("503")},
	}
	notifier := &mockNotifier{}
	p := pipeline.New(testConfig("basketball_nba", "americanfootball_nfl"), odds, nil, newMockStore(), notifier)

	summary, err := p.Score(context.Background(), "")
	require.NoError(t, err)

	assert.Equal(t, 1, summary.EventsSeen)
	assert.Len(t, summary.Errors, 1)
	assert.Equal(t, 1, summary.Candidates)
	assert.Equal(t, 2, summary.NoBets) // spread y total sin quotes
	assert.Len(t, notifier.calls, 3)
}

func TestScore_AllFetchesFailedIsError(t *testing.T) {
	odds := &mockOdds{eventsErr: map[string]error{"basketball_nba": errors.New("timeout")}}
	p := pipeline.New(testConfig(), odds, nil, newMockStore(), &mockNotifier{})

	_, err := p.Score(context.Background(), "")
	assert.Error(t, err)
}

func TestScore_ResolvesRunDateFromNow(t *testing.T) {
	odds := &mockOdds{events: map[string][]domain.Event{}}
	odds.events["basketball_nba"] = nil
	p := pipeline.New(testConfig(), odds, nil, newMockStore(), &mockNotifier{})

	summary, err := p.Score(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "2025-11-02", summary.RunDate)

	summary, err = p.Score(context.Background(), "2025-10-31")
	require.NoError(t, err)
	assert.Equal(t, "2025-10-31", summary.RunDate)
}

func TestScore_TeamStateFailureScoresWithoutSignal(t *testing.T) {
	odds := &mockOdds{
		events: map[string][]domain.Event{
			"basketball_nba": {pickableEvent("ev1", "Boston Celtics", "LA Lakers", testNow.Add(15*time.Minute))},
		},
	}
	state := &mockState{err: errors.New("provider down")}
	p := pipeline.New(testConfig(), odds, state, newMockStore(), &mockNotifier{})

	summary, err := p.Score(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Candidates)
}
