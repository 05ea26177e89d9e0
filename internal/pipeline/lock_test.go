package pipeline_test

import (
	"context"
	"testing"
	"time"

	"github.com/alejandrodnm/picklock/internal/domain"
	"github.com/alejandrodnm/picklock/internal/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLock_WindowBoundaries(t *testing.T) {
	// Ventana con lead 20m / grace 10m desde now=18:45: [18:55, 19:05].
	cases := []struct {
		name     string
		start    time.Time
		eligible bool
	}{
		{"inside window", testNow.Add(15 * time.Minute), true},
		{"outer edge", testNow.Add(20 * time.Minute), true},
		{"inner edge", testNow.Add(10 * time.Minute), true},
		{"too far out", testNow.Add(21 * time.Minute), false},
		{"too close", testNow.Add(9 * time.Minute), false},
		{"already started", testNow.Add(-5 * time.Minute), false},
		{"starts exactly now", testNow, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			odds := &mockOdds{events: map[string][]domain.Event{
				"basketball_nba": {pickableEvent("ev1", "Boston Celtics", "LA Lakers", tc.start)},
			}}
			store := newMockStore()
			p := pipeline.New(testConfig(), odds, nil, store, &mockNotifier{})

			summary, err := p.Lock(context.Background(), "")
			require.NoError(t, err)

			if tc.eligible {
				assert.Equal(t, 1, summary.Eligible)
				assert.Equal(t, 1, summary.Locked)
				require.Len(t, store.picks, 1)
			} else {
				assert.Equal(t, 0, summary.Eligible)
				assert.Empty(t, store.picks)
			}
		})
	}
}

func TestLock_PickFieldsAreFrozen(t *testing.T) {
	start := testNow.Add(15 * time.Minute)
	odds := &mockOdds{events: map[string][]domain.Event{
		"basketball_nba": {pickableEvent("ev1", "Boston Celtics", "LA Lakers", start)},
	}}
	store := newMockStore()
	notifier := &mockNotifier{}
	p := pipeline.New(testConfig(), odds, nil, store, notifier)

	_, err := p.Lock(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, store.picks, 1)

	pick := store.picks[0]
	assert.NotEmpty(t, pick.ID)
	assert.Equal(t, "2025-11-02", pick.RunDate)
	assert.Equal(t, "ev1", pick.EventID)
	assert.Equal(t, domain.MarketMoneyline, pick.Market)
	assert.Equal(t, "LA Lakers ML", pick.Side)
	assert.Equal(t, "LA Lakers", pick.SelectionTeam)
	assert.Equal(t, domain.TierWatchlist, pick.Tier)
	assert.Equal(t, 68, pick.Score)
	assert.Equal(t, start, pick.GameStartTime)
	assert.Equal(t, testNow, pick.LockedAt)
	assert.Equal(t, domain.SourceLive, pick.Source)

	// Snapshot del mejor precio del consenso
	require.NotNil(t, pick.Odds.MLAway)
	assert.Equal(t, 102, *pick.Odds.MLAway)

	assert.False(t, notifier.lockedDryRun)
	assert.Len(t, notifier.locked, 1)

	// Los eventos del ciclo alimentan la tabla de referencia
	require.Len(t, store.upserted, 1)
	assert.Equal(t, "ev1", store.upserted[0].ID)
}

func TestLock_SecondRunIsIdempotent(t *testing.T) {
	odds := &mockOdds{events: map[string][]domain.Event{
		"basketball_nba": {pickableEvent("ev1", "Boston Celtics", "LA Lakers", testNow.Add(15*time.Minute))},
	}}
	store := newMockStore()
	p := pipeline.New(testConfig(), odds, nil, store, &mockNotifier{})

	summary, err := p.Lock(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Locked)

	// Segunda invocación dentro de la misma ventana: clave ya lockeada.
	summary, err = p.Lock(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Locked)
	assert.Equal(t, 1, summary.AlreadyLocked)
	assert.Len(t, store.picks, 1)
}

func TestLock_DryRunWritesNothing(t *testing.T) {
	odds := &mockOdds{events: map[string][]domain.Event{
		"basketball_nba": {pickableEvent("ev1", "Boston Celtics", "LA Lakers", testNow.Add(15*time.Minute))},
	}}
	store := newMockStore()
	notifier := &mockNotifier{}
	cfg := testConfig()
	cfg.DryRun = true
	p := pipeline.New(cfg, odds, nil, store, notifier)

	summary, err := p.Lock(context.Background(), "")
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Locked)
	assert.Empty(t, store.picks)
	assert.Empty(t, store.upserted)
	assert.True(t, notifier.lockedDryRun)
	assert.Len(t, notifier.locked, 1)
}

func TestLock_TopPickDemotionAcrossRuns(t *testing.T) {
	// Un top_pick ya persistido para la fecha: cualquier candidato nuevo
	// que alcance el corte baja a strong_lean.
	store := newMockStore()
	store.picks = append(store.picks, domain.LockedPick{
		ID: "prev", RunDate: "2025-11-02", EventID: "ev0",
		Market: domain.MarketMoneyline, Tier: domain.TierTopPick,
		GameStartTime: testNow.Add(-2 * time.Hour), Source: domain.SourceLive,
	})

	// Evento con señal máxima: acuerdo +10, plus-money +8, line shopping +7
	// → score 75. Bajamos el corte de top_pick para que lo alcance.
	ev := pickableEvent("ev1", "Boston Celtics", "LA Lakers", testNow.Add(15*time.Minute))
	ev.Books = append(ev.Books, domain.BookmakerOdds{
		Bookmaker: "d", Moneyline: &domain.MoneylineQuote{Home: -115, Away: 120},
	})
	odds := &mockOdds{events: map[string][]domain.Event{"basketball_nba": {ev}}}
	cfg := testConfig()
	cfg.Tiers = domain.TierConfig{TopPick: 75, StrongLean: 65, Watchlist: 60}
	p := pipeline.New(cfg, odds, nil, store, &mockNotifier{})

	_, err := p.Lock(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, store.picks, 2)

	got := store.picks[1]
	require.GreaterOrEqual(t, got.Score, 75, "test setup must reach the top_pick cut")
	assert.Equal(t, domain.TierStrongLean, got.Tier)
}

func TestLock_BelowWatchlistIsSkipped(t *testing.T) {
	// Una sola casa, juice pesado: el mejor lado queda bajo el umbral de
	// pick, así que ni siquiera llega al clasificador.
	ev := domain.Event{
		ID: "ev1", Sport: "basketball_nba",
		HomeTeam: "Boston Celtics", AwayTeam: "LA Lakers",
		StartTime: testNow.Add(15 * time.Minute),
		Books: []domain.BookmakerOdds{
			{Bookmaker: "a", Moneyline: &domain.MoneylineQuote{Home: -150, Away: 130}},
		},
	}
	odds := &mockOdds{events: map[string][]domain.Event{"basketball_nba": {ev}}}
	store := newMockStore()
	p := pipeline.New(testConfig(), odds, nil, store, &mockNotifier{})

	summary, err := p.Lock(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Eligible)
	assert.Empty(t, store.picks)
}
