package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/anonb2b/orders-backend/internal/config"
	"github.com/anonb2b/orders-backend/internal/events"
	kafkax "github.com/anonb2b/orders-backend/internal/kafka"
	"github.com/anonb2b/orders-backend/internal/redisx"
	"github.com/anonb2b/orders-backend/internal/stockwatch"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	w := &stockwatch.Watcher{
		Redis:     rdb,
		Threshold: cfg.LowStockThreshold,
	}

	group := getenv("STOCKWATCH_GROUP", "stockwatch")
	workers := mustAtoi(os.Getenv("STOCKWATCH_WORKERS"), 4)
	cons := kafkax.NewConsumer(cfg.KafkaBrokers, group, events.TopicStockAdjusted, workers)

	go func() {
		log.Printf("stockwatch consumer started: group=%s topic=%s workers=%d",
			group, events.TopicStockAdjusted, workers)
		if err := cons.Start(ctx, w.HandleStockAdjusted); err != nil {
			log.Printf("consumer exit: %v", err)
			cancel()
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sig:
	case <-ctx.Done():
	}
	log.Println("shutting down consumer...")
	cancel()
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func mustAtoi(s string, def int) int {
	if s == "" {
		return def
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}
