// Package stats derives account-level, metric-level and time-bucketed views
// from a collection of trade records. Aggregates are recomputed in full on
// every call; nothing is cached. Every function is total: empty input yields
// an explicit zero-valued result, never an error.
package stats

import (
	"math"
	"sort"
	"time"

	"trading-journal-go/internal/models"
)

// DefaultStartingBalance is used when no account balance is configured.
const DefaultStartingBalance = 100000

// AccountStats summarizes the account against its starting balance.
type AccountStats struct {
	StartingBalance float64 `json:"starting_balance"`
	CurrentBalance  float64 `json:"current_balance"`
	TotalPnL        float64 `json:"total_pnl"`
	PnLPercentage   float64 `json:"pnl_percentage"`
	TotalTrades     int     `json:"total_trades"`
	OpenTrades      int     `json:"open_trades"`
	WinningTrades   int     `json:"winning_trades"`
	LosingTrades    int     `json:"losing_trades"`
}

// Metrics holds performance ratios over the closed trades.
type Metrics struct {
	ProfitFactor      float64 `json:"profit_factor"`
	WinRate           float64 `json:"win_rate"`
	AverageWin        float64 `json:"average_win"`
	AverageLoss       float64 `json:"average_loss"`
	LargestWin        float64 `json:"largest_win"`
	LargestLoss       float64 `json:"largest_loss"`
	AverageConfluence float64 `json:"average_confluence"`
}

// DailyPnL is one calendar day's realized result.
type DailyPnL struct {
	Date string  `json:"date"`
	PnL  float64 `json:"pnl"`
}

// DayDetail extends DailyPnL with the number of trades closed that day.
type DayDetail struct {
	Date   string  `json:"date"`
	PnL    float64 `json:"pnl"`
	Trades int     `json:"trades"`
}

// ExtremeDay is the best or worst day of a month. Date is null when the month
// had no trading days.
type ExtremeDay struct {
	Date *string `json:"date"`
	PnL  float64 `json:"pnl"`
}

// MonthlyStats summarizes one calendar month of trading.
type MonthlyStats struct {
	Year            int         `json:"year"`
	Month           int         `json:"month"`
	TotalPnL        float64     `json:"total_pnl"`
	TotalTrades     int         `json:"total_trades"`
	TradingDays     int         `json:"trading_days"`
	WinningDays     int         `json:"winning_days"`
	LosingDays      int         `json:"losing_days"`
	WinRate         float64     `json:"win_rate"`
	BestDay         ExtremeDay  `json:"best_day"`
	WorstDay        ExtremeDay  `json:"worst_day"`
	AverageDailyPnL float64     `json:"average_daily_pnl"`
	DailyData       []DayDetail `json:"daily_data"`
}

// Account computes balance and trade counts over the full collection.
//
// The losing count is defined as closed-minus-winning, so break-even trades
// count as losing here. Metrics uses the strict pnl<0 definition instead;
// both match what the dashboard already displays.
func Account(trades []models.Trade, startingBalance float64) AccountStats {
	s := AccountStats{StartingBalance: startingBalance}

	for _, t := range trades {
		switch t.Status {
		case models.StatusClosed:
			s.TotalTrades++
			s.TotalPnL += t.PnL
			if t.PnL > 0 {
				s.WinningTrades++
			}
		case models.StatusOpen:
			s.OpenTrades++
		}
	}

	s.LosingTrades = s.TotalTrades - s.WinningTrades
	s.CurrentBalance = startingBalance + s.TotalPnL
	if startingBalance > 0 {
		s.PnLPercentage = s.TotalPnL / startingBalance * 100
	}

	return s
}

// ComputeMetrics derives performance ratios from the closed trades in the
// collection. Trades with exactly zero P&L belong to neither the winning nor
// the losing side.
func ComputeMetrics(trades []models.Trade) Metrics {
	var closed []models.Trade
	for _, t := range trades {
		if t.IsClosed() {
			closed = append(closed, t)
		}
	}

	if len(closed) == 0 {
		return Metrics{}
	}

	var wins, losses int
	var grossProfit, grossLoss float64
	var largestWin, largestLoss float64
	var confluenceSum float64

	for _, t := range closed {
		confluenceSum += t.TotalConfluence
		switch {
		case t.PnL > 0:
			wins++
			grossProfit += t.PnL
			if t.PnL > largestWin {
				largestWin = t.PnL
			}
		case t.PnL < 0:
			losses++
			grossLoss += -t.PnL
			if t.PnL < largestLoss {
				largestLoss = t.PnL
			}
		}
	}

	m := Metrics{
		WinRate:           round1(float64(wins) / float64(len(closed)) * 100),
		LargestWin:        round2(largestWin),
		LargestLoss:       round2(largestLoss),
		AverageConfluence: round1(confluenceSum / float64(len(closed))),
	}
	if grossLoss > 0 {
		m.ProfitFactor = round2(grossProfit / grossLoss)
	}
	if wins > 0 {
		m.AverageWin = round2(grossProfit / float64(wins))
	}
	if losses > 0 {
		m.AverageLoss = round2(grossLoss / float64(losses))
	}

	return m
}

// Daily groups closed trades by the UTC calendar date of their close and
// returns per-day P&L in ascending date order. Closed trades missing a close
// timestamp are skipped rather than failing the whole aggregate.
func Daily(trades []models.Trade) []DailyPnL {
	byDate := make(map[string]float64)
	for _, t := range trades {
		if !t.IsClosed() || t.ClosedAt == nil {
			continue
		}
		date := t.ClosedAt.UTC().Format("2006-01-02")
		byDate[date] += t.PnL
	}

	out := make([]DailyPnL, 0, len(byDate))
	for date, pnl := range byDate {
		out = append(out, DailyPnL{Date: date, PnL: round2(pnl)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })

	return out
}

// Monthly summarizes the closed trades falling within the given calendar
// month. The window is half-open: [first of month, first of next month), so
// December rolls into January of the following year.
func Monthly(trades []models.Trade, year, month int) MonthlyStats {
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)

	dailyPnL := make(map[string]float64)
	dailyCount := make(map[string]int)
	totalTrades := 0

	for _, t := range trades {
		if !t.IsClosed() || t.ClosedAt == nil {
			continue
		}
		closedAt := t.ClosedAt.UTC()
		if closedAt.Before(start) || !closedAt.Before(end) {
			continue
		}
		date := closedAt.Format("2006-01-02")
		dailyPnL[date] += t.PnL
		dailyCount[date]++
		totalTrades++
	}

	s := MonthlyStats{
		Year:        year,
		Month:       month,
		TotalTrades: totalTrades,
		TradingDays: len(dailyPnL),
		DailyData:   make([]DayDetail, 0, len(dailyPnL)),
	}

	var totalPnL float64
	first := true
	var bestDate, worstDate string
	var bestPnL, worstPnL float64

	for date, pnl := range dailyPnL {
		totalPnL += pnl
		if pnl > 0 {
			s.WinningDays++
		} else if pnl < 0 {
			s.LosingDays++
		}
		if first || pnl > bestPnL {
			bestDate, bestPnL = date, pnl
		}
		if first || pnl < worstPnL {
			worstDate, worstPnL = date, pnl
		}
		first = false

		s.DailyData = append(s.DailyData, DayDetail{
			Date:   date,
			PnL:    round2(pnl),
			Trades: dailyCount[date],
		})
	}
	sort.Slice(s.DailyData, func(i, j int) bool { return s.DailyData[i].Date < s.DailyData[j].Date })

	s.TotalPnL = round2(totalPnL)
	s.BestDay = ExtremeDay{PnL: round2(bestPnL)}
	s.WorstDay = ExtremeDay{PnL: round2(worstPnL)}
	if s.TradingDays > 0 {
		s.BestDay.Date = &bestDate
		s.WorstDay.Date = &worstDate
		s.WinRate = round1(float64(s.WinningDays) / float64(s.TradingDays) * 100)
		s.AverageDailyPnL = round2(totalPnL / float64(s.TradingDays))
	}

	return s
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
