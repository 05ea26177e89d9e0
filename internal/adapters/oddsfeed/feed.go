package oddsfeed

// feed.go — implementación de ports.OddsProvider.

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"time"

	"github.com/alejandrodnm/picklock/internal/domain"
)

const (
	oddsPathFmt   = "/v4/sports/%s/odds"
	scoresPathFmt = "/v4/sports/%s/scores"

	regions    = "us"
	oddsFormat = "american"
	markets    = "h2h,spreads,totals"
)

// FetchEvents devuelve los eventos próximos del deporte con las quotes de
// todos los bookmakers que los cotizan.
func (c *Client) FetchEvents(ctx context.Context, sport string) ([]domain.Event, error) {
	params := url.Values{}
	params.Set("regions", regions)
	params.Set("markets", markets)
	params.Set("oddsFormat", oddsFormat)

	var raw []eventDTO
	if err := c.get(ctx, c.oddsLimiter, fmt.Sprintf(oddsPathFmt, sport), params, &raw); err != nil {
		return nil, fmt.Errorf("oddsfeed.FetchEvents: sport %s: %w", sport, err)
	}

	events := mapEvents(raw)
	slog.Debug("events fetched",
		"sport", sport,
		"raw", len(raw),
		"valid", len(events),
	)
	return events, nil
}

// FetchScores devuelve marcadores de eventos recientes, incluidos los aún
// en juego (Completed == false).
func (c *Client) FetchScores(ctx context.Context, sport string, daysFrom int) ([]domain.GameResult, error) {
	if daysFrom <= 0 {
		daysFrom = 1
	}
	params := url.Values{}
	params.Set("daysFrom", strconv.Itoa(daysFrom))

	var raw []scoreDTO
	if err := c.get(ctx, c.scoresLimiter, fmt.Sprintf(scoresPathFmt, sport), params, &raw); err != nil {
		return nil, fmt.Errorf("oddsfeed.FetchScores: sport %s: %w", sport, err)
	}

	results := mapScores(raw, time.Now().UTC())
	slog.Debug("scores fetched",
		"sport", sport,
		"raw", len(raw),
		"valid", len(results),
	)
	return results, nil
}
