package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"trading-journal-go/internal/models"
)

func closedTrade(pnl float64, closedAt time.Time) models.Trade {
	exit := 1.0
	return models.Trade{
		Symbol:     "EURUSD",
		Direction:  models.DirectionLong,
		EntryPrice: 1.0,
		ExitPrice:  &exit,
		LotSize:    1.0,
		Status:     models.StatusClosed,
		PnL:        pnl,
		ClosedAt:   &closedAt,
	}
}

func openTrade() models.Trade {
	return models.Trade{
		Symbol:     "EURUSD",
		Direction:  models.DirectionLong,
		EntryPrice: 1.0,
		LotSize:    1.0,
		Status:     models.StatusOpen,
	}
}

func TestAccount(t *testing.T) {
	day := time.Date(2024, 6, 3, 12, 0, 0, 0, time.UTC)

	t.Run("Mixed collection", func(t *testing.T) {
		trades := []models.Trade{
			closedTrade(500, day),
			closedTrade(-200, day),
			closedTrade(0, day), // break-even counts as losing here
			openTrade(),
		}

		s := Account(trades, 100000)

		assert.Equal(t, float64(100000), s.StartingBalance)
		assert.InDelta(t, 300, s.TotalPnL, 0.001)
		assert.InDelta(t, 100300, s.CurrentBalance, 0.001)
		assert.InDelta(t, 0.3, s.PnLPercentage, 0.001)
		assert.Equal(t, 3, s.TotalTrades)
		assert.Equal(t, 1, s.OpenTrades)
		assert.Equal(t, 1, s.WinningTrades)
		assert.Equal(t, 2, s.LosingTrades)
	})

	t.Run("Zero starting balance guards division", func(t *testing.T) {
		s := Account([]models.Trade{closedTrade(500, day)}, 0)

		assert.Zero(t, s.PnLPercentage)
		assert.InDelta(t, 500, s.CurrentBalance, 0.001)
	})

	t.Run("Empty collection", func(t *testing.T) {
		s := Account(nil, 100000)

		assert.Equal(t, float64(100000), s.CurrentBalance)
		assert.Zero(t, s.TotalTrades)
		assert.Zero(t, s.TotalPnL)
	})
}

func TestComputeMetrics(t *testing.T) {
	day := time.Date(2024, 6, 3, 12, 0, 0, 0, time.UTC)

	t.Run("Empty closed set returns all zeros", func(t *testing.T) {
		m := ComputeMetrics([]models.Trade{openTrade()})

		assert.Equal(t, Metrics{}, m)
	})

	t.Run("Mixed results", func(t *testing.T) {
		tr1 := closedTrade(600, day)
		tr1.TotalConfluence = 80
		tr2 := closedTrade(400, day)
		tr2.TotalConfluence = 60
		tr3 := closedTrade(-250, day)
		tr3.TotalConfluence = 40
		tr4 := closedTrade(0, day) // excluded from both sides
		tr4.TotalConfluence = 20

		m := ComputeMetrics([]models.Trade{tr1, tr2, tr3, tr4, openTrade()})

		// gross profit 1000, gross loss 250
		assert.InDelta(t, 4.0, m.ProfitFactor, 0.001)
		assert.InDelta(t, 50.0, m.WinRate, 0.001) // 2 of 4 closed
		assert.InDelta(t, 500.0, m.AverageWin, 0.001)
		assert.InDelta(t, 250.0, m.AverageLoss, 0.001)
		assert.InDelta(t, 600.0, m.LargestWin, 0.001)
		assert.InDelta(t, -250.0, m.LargestLoss, 0.001)
		assert.InDelta(t, 50.0, m.AverageConfluence, 0.001)
	})

	t.Run("No losers means zero profit factor", func(t *testing.T) {
		m := ComputeMetrics([]models.Trade{closedTrade(100, day)})

		assert.Zero(t, m.ProfitFactor)
		assert.InDelta(t, 100.0, m.WinRate, 0.001)
		assert.Zero(t, m.AverageLoss)
		assert.Zero(t, m.LargestLoss)
	})
}

func TestDaily(t *testing.T) {
	d1 := time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC)
	d2 := time.Date(2024, 6, 5, 16, 0, 0, 0, time.UTC)

	t.Run("Groups and sorts ascending by date", func(t *testing.T) {
		trades := []models.Trade{
			closedTrade(300, d2),
			closedTrade(500, d1),
			closedTrade(-200, d1),
			openTrade(),
		}

		out := Daily(trades)

		assert.Len(t, out, 2)
		assert.Equal(t, "2024-06-03", out[0].Date)
		assert.InDelta(t, 300, out[0].PnL, 0.001)
		assert.Equal(t, "2024-06-05", out[1].Date)
		assert.InDelta(t, 300, out[1].PnL, 0.001)
	})

	t.Run("Closed trade without timestamp is skipped", func(t *testing.T) {
		broken := closedTrade(100, d1)
		broken.ClosedAt = nil

		out := Daily([]models.Trade{broken})

		assert.Empty(t, out)
	})

	t.Run("Empty input", func(t *testing.T) {
		assert.Empty(t, Daily(nil))
	})
}

func TestMonthly(t *testing.T) {
	t.Run("Summarizes one month", func(t *testing.T) {
		trades := []models.Trade{
			closedTrade(500, time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC)),
			closedTrade(250, time.Date(2024, 6, 3, 15, 0, 0, 0, time.UTC)),
			closedTrade(-400, time.Date(2024, 6, 10, 11, 0, 0, 0, time.UTC)),
			closedTrade(100, time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)), // next month
			openTrade(),
		}

		s := Monthly(trades, 2024, 6)

		assert.Equal(t, 2024, s.Year)
		assert.Equal(t, 6, s.Month)
		assert.Equal(t, 3, s.TotalTrades)
		assert.Equal(t, 2, s.TradingDays)
		assert.Equal(t, 1, s.WinningDays)
		assert.Equal(t, 1, s.LosingDays)
		assert.InDelta(t, 350, s.TotalPnL, 0.001)
		assert.InDelta(t, 50.0, s.WinRate, 0.001)
		assert.InDelta(t, 175.0, s.AverageDailyPnL, 0.001)

		if assert.NotNil(t, s.BestDay.Date) {
			assert.Equal(t, "2024-06-03", *s.BestDay.Date)
		}
		assert.InDelta(t, 750, s.BestDay.PnL, 0.001)
		if assert.NotNil(t, s.WorstDay.Date) {
			assert.Equal(t, "2024-06-10", *s.WorstDay.Date)
		}
		assert.InDelta(t, -400, s.WorstDay.PnL, 0.001)

		assert.Len(t, s.DailyData, 2)
		assert.Equal(t, "2024-06-03", s.DailyData[0].Date)
		assert.Equal(t, 2, s.DailyData[0].Trades)
		assert.Equal(t, "2024-06-10", s.DailyData[1].Date)
	})

	t.Run("December rolls into January", func(t *testing.T) {
		trades := []models.Trade{
			closedTrade(100, time.Date(2024, 12, 31, 23, 59, 0, 0, time.UTC)),
			closedTrade(999, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)),
		}

		s := Monthly(trades, 2024, 12)

		assert.Equal(t, 1, s.TotalTrades)
		assert.InDelta(t, 100, s.TotalPnL, 0.001)
	})

	t.Run("Empty month", func(t *testing.T) {
		s := Monthly(nil, 2024, 6)

		assert.Zero(t, s.TotalTrades)
		assert.Zero(t, s.TradingDays)
		assert.Zero(t, s.WinRate)
		assert.Zero(t, s.AverageDailyPnL)
		assert.Nil(t, s.BestDay.Date)
		assert.Nil(t, s.WorstDay.Date)
		assert.Zero(t, s.BestDay.PnL)
		assert.Zero(t, s.WorstDay.PnL)
		assert.Empty(t, s.DailyData)
	})
}
