package domain

// ImpliedProb convierte un precio americano a probabilidad implícita (con vig).
// Un precio 0 (sin dato) devuelve 0.5 como neutral.
func ImpliedProb(price int) float64 {
	if price == 0 {
		return 0.5
	}
	if price < 0 {
		return float64(-price) / (float64(-price) + 100.0)
	}
	return 100.0 / (float64(price) + 100.0)
}

// AmericanProfit devuelve la ganancia neta por 1 unidad apostada a un precio americano.
//
//	+150 → 1.5     (ganas 1.5 unidades)
//	-150 → 0.667   (ganas 100/150)
//
// Un precio 0 devuelve 0 — sin precio no hay payout calculable.
func AmericanProfit(price int) float64 {
	switch {
	case price > 0:
		return float64(price) / 100.0
	case price < 0:
		return 100.0 / float64(-price)
	}
	return 0
}

// NoVigProb devuelve la probabilidad del lado propio normalizada contra el lado
// opuesto (de-vig proporcional de dos lados). Si algún precio falta devuelve 0.
func NoVigProb(ownPrice, oppPrice int) float64 {
	if ownPrice == 0 || oppPrice == 0 {
		return 0
	}
	own := ImpliedProb(ownPrice)
	opp := ImpliedProb(oppPrice)
	total := own + opp
	if total <= 0 {
		return 0
	}
	return own / total
}
