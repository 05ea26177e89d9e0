package domain

// consensus.go — Market Aggregator.
//
// Transformación pura: quotes crudas por bookmaker → estadísticas de consenso
// por lado de mercado (media, dispersión entre casas, mejor precio disponible).
// Un mercado sin ninguna casa cotizando produce Available=false, nunca un error.

import "math"

// SideConsensus son las estadísticas agregadas de un lado de un mercado.
type SideConsensus struct {
	Label string // nombre del equipo, "Over" o "Under"

	Books  int
	Prices []int // precios americanos disponibles entre casas

	MeanPrice   float64 // media aritmética de los precios
	PriceSpread float64 // max - min entre casas ("varianza" de la línea)
	BestPrice   int     // mejor precio para el apostador
	PriceEdge   float64 // |best - mean|: cuánto mejora el line shopping

	Points      []float64 // líneas (spread/total); vacío para moneyline
	MeanPoint   float64
	PointSpread float64
	BestPoint   float64
	PointEdge   float64

	Available bool
}

// MarketConsensus es el resultado del agregador para un (evento, mercado).
// Sides siempre tiene 2 entradas: home/away para moneyline y spread,
// over/under para totales.
type MarketConsensus struct {
	Kind      MarketKind
	Sides     [2]SideConsensus
	Available bool
}

// BuildConsensus agrega las quotes de todos los bookmakers de un evento
// para el mercado dado. Tolera casas que no cotizan el mercado.
func BuildConsensus(ev Event, kind MarketKind) MarketConsensus {
	switch kind {
	case MarketMoneyline:
		return consensusMoneyline(ev)
	case MarketSpread:
		return consensusSpread(ev)
	case MarketTotal:
		return consensusTotal(ev)
	}
	return MarketConsensus{Kind: kind}
}

func consensusMoneyline(ev Event) MarketConsensus {
	var home, away []int
	for _, b := range ev.Books {
		if b.Moneyline == nil {
			continue
		}
		home = append(home, b.Moneyline.Home)
		away = append(away, b.Moneyline.Away)
	}

	c := MarketConsensus{
		Kind: MarketMoneyline,
		Sides: [2]SideConsensus{
			buildSide(ev.HomeTeam, home, nil, false),
			buildSide(ev.AwayTeam, away, nil, false),
		},
	}
	c.Available = c.Sides[0].Available && c.Sides[1].Available
	return c
}

func consensusSpread(ev Event) MarketConsensus {
	var homePrices, awayPrices []int
	var homePoints, awayPoints []float64
	for _, b := range ev.Books {
		if b.Spread == nil {
			continue
		}
		homePrices = append(homePrices, b.Spread.Home.Price)
		homePoints = append(homePoints, b.Spread.Home.Point)
		awayPrices = append(awayPrices, b.Spread.Away.Price)
		awayPoints = append(awayPoints, b.Spread.Away.Point)
	}

	// Para el apostador de un spread, más puntos a favor siempre es mejor:
	// -3.0 mejor que -3.5 para el favorito, +6.5 mejor que +6.0 para el underdog.
	c := MarketConsensus{
		Kind: MarketSpread,
		Sides: [2]SideConsensus{
			buildSide(ev.HomeTeam, homePrices, homePoints, true),
			buildSide(ev.AwayTeam, awayPrices, awayPoints, true),
		},
	}
	c.Available = c.Sides[0].Available && c.Sides[1].Available
	return c
}

func consensusTotal(ev Event) MarketConsensus {
	var overPrices, underPrices []int
	var overPoints, underPoints []float64
	for _, b := range ev.Books {
		if b.Total == nil {
			continue
		}
		overPrices = append(overPrices, b.Total.Over.Price)
		overPoints = append(overPoints, b.Total.Over.Point)
		underPrices = append(underPrices, b.Total.Under.Price)
		underPoints = append(underPoints, b.Total.Under.Point)
	}

	// Over: línea más baja es mejor. Under: línea más alta es mejor.
	c := MarketConsensus{
		Kind: MarketTotal,
		Sides: [2]SideConsensus{
			buildSide("Over", overPrices, overPoints, false),
			buildSide("Under", underPrices, underPoints, true),
		},
	}
	c.Available = c.Sides[0].Available && c.Sides[1].Available
	return c
}

// buildSide calcula las estadísticas de un lado. higherPointBetter indica
// la dirección en la que una línea favorece al apostador de este lado.
func buildSide(label string, prices []int, points []float64, higherPointBetter bool) SideConsensus {
	s := SideConsensus{Label: label, Books: len(prices)}
	if len(prices) == 0 {
		return s
	}
	s.Available = true
	s.Prices = prices

	sum := 0.0
	minP, maxP := math.MaxFloat64, -math.MaxFloat64
	best := prices[0]
	for _, p := range prices {
		f := float64(p)
		sum += f
		minP = math.Min(minP, f)
		maxP = math.Max(maxP, f)
		// En odds americanas el mayor valor numérico es siempre el mejor
		// payout para el apostador (+150 > +120, -110 > -150).
		if p > best {
			best = p
		}
	}
	s.MeanPrice = sum / float64(len(prices))
	s.PriceSpread = maxP - minP
	s.BestPrice = best
	s.PriceEdge = math.Abs(float64(best) - s.MeanPrice)

	if len(points) == 0 {
		return s
	}
	s.Points = points
	sum = 0.0
	minPt, maxPt := math.MaxFloat64, -math.MaxFloat64
	for _, pt := range points {
		sum += pt
		minPt = math.Min(minPt, pt)
		maxPt = math.Max(maxPt, pt)
	}
	s.MeanPoint = sum / float64(len(points))
	s.PointSpread = maxPt - minPt
	if higherPointBetter {
		s.BestPoint = maxPt
	} else {
		s.BestPoint = minPt
	}
	s.PointEdge = math.Abs(s.BestPoint - s.MeanPoint)
	return s
}
