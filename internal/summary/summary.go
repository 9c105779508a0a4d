// Package summary runs the optional end-of-day account summary job.
package summary

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"trading-journal-go/internal/stats"
	"trading-journal-go/internal/store"
)

// Scheduler logs an account summary on a cron schedule.
type Scheduler struct {
	cron            *cron.Cron
	store           store.Store
	log             *zap.Logger
	startingBalance float64
}

// NewScheduler creates the summary scheduler. Call Start to begin.
func NewScheduler(st store.Store, log *zap.Logger, startingBalance float64) *Scheduler {
	if startingBalance <= 0 {
		startingBalance = stats.DefaultStartingBalance
	}
	return &Scheduler{
		cron:            cron.New(),
		store:           st,
		log:             log.Named("summary"),
		startingBalance: startingBalance,
	}
}

// Start registers the job under the given cron spec and starts the scheduler.
func (s *Scheduler) Start(spec string) error {
	if _, err := s.cron.AddFunc(spec, func() { s.RunOnce(context.Background()) }); err != nil {
		return err
	}
	s.cron.Start()
	s.log.Info("Summary scheduler started", zap.String("cron", spec))
	return nil
}

// Stop halts the scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

// RunOnce computes and logs the summary immediately. Split out from the cron
// callback so it can be invoked directly.
func (s *Scheduler) RunOnce(ctx context.Context) {
	trades, err := s.store.ListTrades(ctx)
	if err != nil {
		s.log.Error("Failed to load trades for summary", zap.Error(err))
		return
	}

	account := stats.Account(trades, s.startingBalance)

	today := time.Now().UTC().Format("2006-01-02")
	var todayPnL float64
	for _, day := range stats.Daily(trades) {
		if day.Date == today {
			todayPnL = day.PnL
			break
		}
	}

	s.log.Info("Daily account summary",
		zap.String("date", today),
		zap.Float64("current_balance", account.CurrentBalance),
		zap.Float64("total_pnl", account.TotalPnL),
		zap.Float64("today_pnl", todayPnL),
		zap.Int("closed_trades", account.TotalTrades),
		zap.Int("open_trades", account.OpenTrades))
}
