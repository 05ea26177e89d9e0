package oddsfeed

// mapping.go — conversión DTO → dominio.
//
// El provider entrega payloads "any-shaped": eventos sin equipos, mercados
// con un solo outcome, puntos ausentes. La política es parsear a una
// representación estricta en esta frontera y saltar (con log) las entradas
// malformadas, en vez de arrastrar objetos laxos hacia el scoring.

import (
	"log/slog"
	"strconv"
	"time"

	"github.com/alejandrodnm/picklock/internal/domain"
)

const (
	marketKeyH2H     = "h2h"
	marketKeySpreads = "spreads"
	marketKeyTotals  = "totals"
)

// mapEvents convierte y valida los eventos del wire. Entradas malformadas
// se descartan con log debug, nunca abortan el batch.
func mapEvents(raw []eventDTO) []domain.Event {
	events := make([]domain.Event, 0, len(raw))
	for _, r := range raw {
		ev, ok := mapEvent(r)
		if !ok {
			slog.Debug("skipping malformed event", "event_id", r.ID)
			continue
		}
		events = append(events, ev)
	}
	return events
}

func mapEvent(r eventDTO) (domain.Event, bool) {
	if r.ID == "" || r.HomeTeam == "" || r.AwayTeam == "" {
		return domain.Event{}, false
	}
	start, err := time.Parse(time.RFC3339, r.CommenceTime)
	if err != nil {
		return domain.Event{}, false
	}

	ev := domain.Event{
		ID:        r.ID,
		Sport:     r.SportKey,
		League:    r.SportTitle,
		HomeTeam:  r.HomeTeam,
		AwayTeam:  r.AwayTeam,
		StartTime: start.UTC(),
	}

	for _, b := range r.Bookmakers {
		book := domain.BookmakerOdds{Bookmaker: b.Key}
		for _, m := range b.Markets {
			switch m.Key {
			case marketKeyH2H:
				book.Moneyline = mapMoneyline(m.Outcomes, ev.HomeTeam, ev.AwayTeam)
			case marketKeySpreads:
				book.Spread = mapSpread(m.Outcomes, ev.HomeTeam, ev.AwayTeam)
			case marketKeyTotals:
				book.Total = mapTotal(m.Outcomes)
			}
		}
		// Una casa sin ningún mercado parseable no aporta nada.
		if book.Moneyline != nil || book.Spread != nil || book.Total != nil {
			ev.Books = append(ev.Books, book)
		}
	}

	return ev, true
}

// mapMoneyline exige exactamente un precio por lado; si falta alguno la
// casa no cotiza este mercado.
func mapMoneyline(outcomes []outcomeDTO, home, away string) *domain.MoneylineQuote {
	var q domain.MoneylineQuote
	var gotHome, gotAway bool
	for _, o := range outcomes {
		switch o.Name {
		case home:
			q.Home, gotHome = o.Price, o.Price != 0
		case away:
			q.Away, gotAway = o.Price, o.Price != 0
		}
	}
	if !gotHome || !gotAway {
		return nil
	}
	return &q
}

func mapSpread(outcomes []outcomeDTO, home, away string) *domain.SpreadQuote {
	var q domain.SpreadQuote
	var gotHome, gotAway bool
	for _, o := range outcomes {
		if o.Point == nil || o.Price == 0 {
			continue
		}
		switch o.Name {
		case home:
			q.Home, gotHome = domain.PointPrice{Point: *o.Point, Price: o.Price}, true
		case away:
			q.Away, gotAway = domain.PointPrice{Point: *o.Point, Price: o.Price}, true
		}
	}
	if !gotHome || !gotAway {
		return nil
	}
	return &q
}

func mapTotal(outcomes []outcomeDTO) *domain.TotalQuote {
	var q domain.TotalQuote
	var gotOver, gotUnder bool
	for _, o := range outcomes {
		if o.Point == nil || o.Price == 0 {
			continue
		}
		switch o.Name {
		case "Over":
			q.Over, gotOver = domain.PointPrice{Point: *o.Point, Price: o.Price}, true
		case "Under":
			q.Under, gotUnder = domain.PointPrice{Point: *o.Point, Price: o.Price}, true
		}
	}
	if !gotOver || !gotUnder {
		return nil
	}
	return &q
}

// mapScores convierte los marcadores, tolerando eventos sin scores todavía.
func mapScores(raw []scoreDTO, fetchedAt time.Time) []domain.GameResult {
	results := make([]domain.GameResult, 0, len(raw))
	for _, r := range raw {
		if r.ID == "" || r.HomeTeam == "" || r.AwayTeam == "" {
			slog.Debug("skipping malformed score entry", "event_id", r.ID)
			continue
		}

		res := domain.GameResult{
			EventID:   r.ID,
			Sport:     r.SportKey,
			HomeTeam:  r.HomeTeam,
			AwayTeam:  r.AwayTeam,
			Completed: r.Completed,
			FetchedAt: fetchedAt,
		}

		var gotHome, gotAway bool
		for _, s := range r.Scores {
			n, err := strconv.Atoi(s.Score)
			if err != nil {
				continue
			}
			switch s.Name {
			case r.HomeTeam:
				res.HomeScore, gotHome = n, true
			case r.AwayTeam:
				res.AwayScore, gotAway = n, true
			}
		}

		// Sin ambos marcadores el evento no está liquidable: lo marcamos
		// incompleto aunque el provider diga completed.
		if !gotHome || !gotAway {
			res.Completed = false
		}
		results = append(results, res)
	}
	return results
}
