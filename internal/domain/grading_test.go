package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int          { return &v }
func floatPtr(v float64) *float64 { return &v }

func mlPick(selection string, mlHome, mlAway int) LockedPick {
	return LockedPick{
		ID:            "pick1",
		Market:        MarketMoneyline,
		SelectionTeam: selection,
		HomeTeam:      "Boston Celtics",
		AwayTeam:      "LA Lakers",
		Odds:          OddsSnapshot{MLHome: intPtr(mlHome), MLAway: intPtr(mlAway)},
	}
}

func spreadPick(selection string, homePt float64, homePx int, awayPt float64, awayPx int) LockedPick {
	return LockedPick{
		ID:            "pick1",
		Market:        MarketSpread,
		SelectionTeam: selection,
		HomeTeam:      "Boston Celtics",
		AwayTeam:      "LA Lakers",
		Odds: OddsSnapshot{
			SpreadPointHome: floatPtr(homePt), SpreadPriceHome: intPtr(homePx),
			SpreadPointAway: floatPtr(awayPt), SpreadPriceAway: intPtr(awayPx),
		},
	}
}

func finalScore(home, away int) GameResult {
	return GameResult{
		EventID:   "ev1",
		HomeTeam:  "Boston Celtics",
		AwayTeam:  "LA Lakers",
		HomeScore: home,
		AwayScore: away,
		Completed: true,
	}
}

func TestGrade_MoneylineFavoriteWin(t *testing.T) {
	out, err := Grade(mlPick("Boston Celtics", -150, 130), finalScore(110, 102))
	require.NoError(t, err)

	assert.Equal(t, OutcomeWin, out.Result)
	// Units siempre del precio LOCKED: -150 → 100/150
	assert.InDelta(t, 0.667, out.Units, 0.001)
	assert.Equal(t, MatchExact, out.MatchStrategy)
}

func TestGrade_MoneylineLossIsOneUnit(t *testing.T) {
	out, err := Grade(mlPick("Boston Celtics", -150, 130), finalScore(98, 104))
	require.NoError(t, err)

	assert.Equal(t, OutcomeLoss, out.Result)
	assert.Equal(t, -1.0, out.Units)
}

func TestGrade_MoneylineUnderdogWin(t *testing.T) {
	out, err := Grade(mlPick("LA Lakers", -150, 130), finalScore(98, 104))
	require.NoError(t, err)

	assert.Equal(t, OutcomeWin, out.Result)
	assert.InDelta(t, 1.3, out.Units, 0.001)
}

func TestGrade_MoneylineTieIsPush(t *testing.T) {
	out, err := Grade(mlPick("Boston Celtics", -150, 130), finalScore(100, 100))
	require.NoError(t, err)

	assert.Equal(t, OutcomePush, out.Result)
	assert.Equal(t, 0.0, out.Units)
}

func TestGrade_SpreadUnderdogCovers(t *testing.T) {
	// Away +6.5 a -110: pierde por 5, cubre → win a 0.909
	pick := spreadPick("LA Lakers", -6.5, -110, 6.5, -110)
	out, err := Grade(pick, finalScore(105, 100))
	require.NoError(t, err)

	assert.Equal(t, OutcomeWin, out.Result)
	assert.InDelta(t, 0.909, out.Units, 0.001)
}

func TestGrade_SpreadFavoriteFailsToCover(t *testing.T) {
	pick := spreadPick("Boston Celtics", -6.5, -110, 6.5, -110)
	out, err := Grade(pick, finalScore(105, 100))
	require.NoError(t, err)

	assert.Equal(t, OutcomeLoss, out.Result)
	assert.Equal(t, -1.0, out.Units)
}

func TestGrade_SpreadExactMarginIsPush(t *testing.T) {
	pick := spreadPick("Boston Celtics", -5.0, -110, 5.0, -110)
	out, err := Grade(pick, finalScore(105, 100))
	require.NoError(t, err)

	assert.Equal(t, OutcomePush, out.Result)
	assert.Equal(t, 0.0, out.Units)
}

func TestGrade_TotalsUnsupported(t *testing.T) {
	pick := LockedPick{Market: MarketTotal, SelectionTeam: ""}
	_, err := Grade(pick, finalScore(105, 100))
	assert.ErrorIs(t, err, ErrUnsupportedMarket)
}

func TestGrade_SubstringTeamMatch(t *testing.T) {
	// El feed de scores abrevia el nombre: match por substring, registrado.
	pick := mlPick("Celtics", -150, 130)
	out, err := Grade(pick, finalScore(110, 102))
	require.NoError(t, err)

	assert.Equal(t, OutcomeWin, out.Result)
	assert.Equal(t, MatchSubstring, out.MatchStrategy)
}

func TestGrade_TeamUnresolved(t *testing.T) {
	pick := mlPick("Chicago Bulls", -150, 130)
	_, err := Grade(pick, finalScore(110, 102))
	assert.ErrorIs(t, err, ErrTeamUnresolved)

	pick = mlPick("", -150, 130)
	_, err = Grade(pick, finalScore(110, 102))
	assert.ErrorIs(t, err, ErrTeamUnresolved)
}

func TestGrade_MissingLockedOdds(t *testing.T) {
	pick := mlPick("Boston Celtics", -150, 130)
	pick.Odds.MLHome = nil
	_, err := Grade(pick, finalScore(110, 102))
	assert.ErrorIs(t, err, ErrMissingLockedOdds)

	sp := spreadPick("LA Lakers", -6.5, -110, 6.5, -110)
	sp.Odds.SpreadPointAway = nil
	_, err = Grade(sp, finalScore(105, 100))
	assert.ErrorIs(t, err, ErrMissingLockedOdds)
}
