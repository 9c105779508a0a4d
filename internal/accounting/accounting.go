// Package accounting holds the pure trade calculations: realized P&L,
// confluence scoring and the open/close state transitions. Nothing in here
// touches storage; callers persist the mutated record themselves.
package accounting

import (
	"math"
	"time"

	"trading-journal-go/internal/models"
)

// UnitsPerLot converts lot size into currency units. One standard forex lot
// is 100,000 units of the base currency.
const UnitsPerLot = 100000

// ComputePnL returns the realized profit or loss for a closed trade, rounded
// to 2 decimal places. An open trade (nil exit price) has no realized P&L and
// yields 0.
func ComputePnL(t *models.Trade) float64 {
	if t.ExitPrice == nil {
		return 0
	}

	var pnl float64
	if t.Direction == models.DirectionLong {
		pnl = (*t.ExitPrice - t.EntryPrice) * t.LotSize * UnitsPerLot
	} else { // SHORT
		pnl = (t.EntryPrice - *t.ExitPrice) * t.LotSize * UnitsPerLot
	}

	return round2(pnl)
}

// ComputeConfluence returns the arithmetic mean of the five timeframe scores,
// rounded to 1 decimal place. Inputs are not range-checked here; validation
// belongs at the API boundary.
func ComputeConfluence(weekly, daily, h4, h1, lower int) float64 {
	return round1(float64(weekly+daily+h4+h1+lower) / 5)
}

// Close transitions a trade to CLOSED at the given exit price. The close
// timestamp is sticky: closing an already-closed trade recomputes the P&L but
// keeps the original closed_at.
func Close(t *models.Trade, exitPrice float64, now time.Time) {
	t.ExitPrice = &exitPrice
	t.Status = models.StatusClosed
	t.PnL = ComputePnL(t)
	if t.ClosedAt == nil {
		t.ClosedAt = &now
	}
}

// Reopen clears the exit price and returns the trade to OPEN with no
// realized P&L.
func Reopen(t *models.Trade) {
	t.ExitPrice = nil
	t.Status = models.StatusOpen
	t.PnL = 0
	t.ClosedAt = nil
}

// Recalculate restores every derived field after an arbitrary field update:
// total confluence from the five timeframe scores, and status/pnl/closed_at
// from the presence of the exit price. It is the single place the
// CLOSED <=> exit_price <=> closed_at invariant is enforced.
func Recalculate(t *models.Trade, now time.Time) {
	t.TotalConfluence = ComputeConfluence(t.WeeklyTF, t.DailyTF, t.H4TF, t.H1TF, t.LowerTF)

	if t.ExitPrice != nil {
		Close(t, *t.ExitPrice, now)
	} else {
		Reopen(t)
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
