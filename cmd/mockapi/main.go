package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/finactical/finactical-dash/internal/mockapi"
	"github.com/finactical/finactical-dash/pkg/logger"
)

func main() {
	addr := flag.String("addr", ":5611", "listen address")
	dbPath := flag.String("db", "./data/data.db", "path to the sqlite trade log")
	seed := flag.Int("seed", 0, "seed an empty database with N random-walk rows")
	flag.Parse()

	_ = godotenv.Load()
	log := logger.Console(os.Getenv("DASH_LOG_LEVEL"))
	defer log.Sync()

	apiKey := os.Getenv("DASH_API_KEY")

	store, err := mockapi.Open(*dbPath)
	if err != nil {
		log.Fatal("open store", zap.Error(err))
	}
	defer store.Close()

	if *seed > 0 {
		if err := store.Seed(*seed, time.Now().UTC()); err != nil {
			log.Fatal("seed store", zap.Error(err))
		}
		log.Info("store seeded", zap.Int("rows", *seed))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	srv := mockapi.NewServer(*addr, store, apiKey, log)
	if err := srv.Start(ctx); err != nil {
		log.Fatal("start server", zap.Error(err))
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	log.Info("shutdown signal received")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown", zap.Error(err))
	}
}
