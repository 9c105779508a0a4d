package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"trading-journal-go/internal/config"
	"trading-journal-go/internal/logger"
	"trading-journal-go/internal/server"
	"trading-journal-go/internal/store"
	"trading-journal-go/internal/summary"
)

func main() {
	// A .env file is optional; environment variables override config values.
	_ = godotenv.Load()

	cfg, err := config.LoadConfig("./configs")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.NewLogger(cfg.Logger.Level, cfg.Logger.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()
	log.Info("Configuration loaded", zap.String("driver", cfg.Database.Driver))

	st, err := store.Open(cfg.Database, log)
	if err != nil {
		log.Fatal("Failed to open store", zap.Error(err))
	}
	defer st.Close()

	srv := server.New(&cfg, log, st)
	srv.Start()

	var sched *summary.Scheduler
	if cfg.Summary.Enabled {
		sched = summary.NewScheduler(st, log, cfg.Journal.StartingBalance)
		if err := sched.Start(cfg.Summary.Cron); err != nil {
			log.Fatal("Failed to start summary scheduler", zap.Error(err))
		}
	}

	// Wait for a shutdown signal.
	sigchan := make(chan os.Signal, 1)
	signal.Notify(sigchan, syscall.SIGINT, syscall.SIGTERM)
	<-sigchan
	log.Info("Shutdown signal received, gracefully shutting down...")

	if sched != nil {
		sched.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Stop(ctx); err != nil {
		log.Error("Server shutdown failed", zap.Error(err))
	}

	log.Info("Journal server has been shut down.")
}
