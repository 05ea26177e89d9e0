package notify

import (
	"bytes"
	"context"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/alejandrodnm/picklock/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pickCall(eventID string, score int, side string) domain.Call {
	return domain.Call{
		EventID: eventID,
		Market:  domain.MarketMoneyline,
		Status:  domain.StatusPick,
		Score:   score,
		Candidate: domain.Candidate{
			EventID:         eventID,
			Sport:           "basketball_nba",
			Market:          domain.MarketMoneyline,
			Side:            side,
			Score:           score,
			Confidence:      0.55,
			ConfidenceLabel: domain.ConfidenceMedium,
			Rationale:       []string{"Books agree on the line (spread 4.0)"},
			Tier:            domain.TierWatchlist,
			StartTime:       time.Date(2025, 11, 2, 19, 0, 0, 0, time.UTC),
		},
	}
}

func TestConsole_NotifyCandidatesCompact(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsoleWriter(&buf, false)

	calls := []domain.Call{
		pickCall("ev1", 65, "Boston Celtics ML"),
		pickCall("ev2", 72, "LA Lakers ML"),
		{EventID: "ev3", Market: domain.MarketTotal, Status: domain.StatusNoBet, Reason: "Market unavailable"},
	}
	require.NoError(t, c.NotifyCandidates(context.Background(), calls))

	out := buf.String()
	assert.Contains(t, out, "2 picks / 1 no_bet")
	// Orden por score descendente: el 72 se muestra primero
	assert.Less(t,
		bytes.Index(buf.Bytes(), []byte("LA Lakers")),
		bytes.Index(buf.Bytes(), []byte("Boston Celtics")))
}

func TestConsole_NotifyCandidatesEmpty(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsoleWriter(&buf, false)

	require.NoError(t, c.NotifyCandidates(context.Background(), nil))
	assert.Contains(t, buf.String(), "no markets scored")
}

func TestConsole_NotifyCandidatesTable(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsoleWriter(&buf, true)

	require.NoError(t, c.NotifyCandidates(context.Background(), []domain.Call{
		pickCall("ev1", 65, "Boston Celtics ML"),
	}))

	out := buf.String()
	assert.Contains(t, out, "1 picks")
	assert.Contains(t, out, "Boston Celtics ML")
	assert.Contains(t, out, "watchlist")
	assert.Contains(t, out, "Books agree")
}

func TestConsole_NotifyLockedDryRun(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsoleWriter(&buf, false)

	ml := -150
	picks := []domain.LockedPick{{
		Sport:  "basketball_nba",
		Market: domain.MarketMoneyline,
		Side:   "Boston Celtics ML",
		Tier:   domain.TierStrongLean,
		Score:  72, Confidence: 0.58,
		GameStartTime: time.Date(2025, 11, 2, 19, 0, 0, 0, time.UTC),
		Odds:          domain.OddsSnapshot{MLHome: &ml, MLAway: &ml},
	}}
	require.NoError(t, c.NotifyLocked(context.Background(), picks, true))

	out := buf.String()
	assert.Contains(t, out, "DRY-RUN")
	assert.Contains(t, out, "Boston Celtics ML")
	assert.Contains(t, out, "score:72")
}

func TestConsole_NotifyLockedEmpty(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsoleWriter(&buf, false)

	require.NoError(t, c.NotifyLocked(context.Background(), nil, false))
	assert.Contains(t, buf.String(), "no eligible picks")
}

func TestConsole_NotifyReport(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsoleWriter(&buf, false)

	report := domain.PerformanceReport{
		From:   time.Date(2025, 11, 1, 0, 0, 0, 0, time.UTC),
		To:     time.Date(2025, 11, 30, 0, 0, 0, 0, time.UTC),
		Source: domain.SourceLive,
		Overall: domain.GroupStats{
			Key: "overall", Wins: 3, Losses: 2, Pushes: 1, WinPct: 60, Units: 1.23,
		},
		BySport: []domain.GroupStats{
			{Key: "basketball_nba", Wins: 3, Losses: 2, Pushes: 1, WinPct: 60, Units: 1.23},
		},
	}
	require.NoError(t, c.NotifyReport(context.Background(), report))

	out := buf.String()
	assert.Contains(t, out, "PERFORMANCE 2025-11-01")
	assert.Contains(t, out, "basketball_nba")
	assert.Contains(t, out, "3 wins / 2 losses / 1 pushes")
	assert.Contains(t, out, "+1.23")
}

func TestTruncate_NeverSplitsRunes(t *testing.T) {
	// El corte cae en medio de la "é" si se trunca por bytes.
	got := truncate("Montréal Canadiens ML", 9)
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, "Montré...", got)

	// Strings cortos pasan intactos, acentos incluidos.
	assert.Equal(t, "Montréal", truncate("Montréal", 10))
}

func TestCompactSide_NeverSplitsRunes(t *testing.T) {
	got := compactSide("Montréal Canadiens ML", 10)
	assert.True(t, utf8.ValidString(got))
	// Retrocede hasta el espacio para no cortar la palabra.
	assert.Equal(t, "Montréal…", got)

	assert.Equal(t, "Over 224.5", compactSide("Over 224.5", 22))
}

func TestConsole_NotifyReportEmpty(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsoleWriter(&buf, false)

	require.NoError(t, c.NotifyReport(context.Background(), domain.PerformanceReport{}))
	assert.Contains(t, buf.String(), "no graded results in range")
}
