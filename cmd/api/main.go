package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/anonb2b/orders-backend/internal/address"
	"github.com/anonb2b/orders-backend/internal/catalog"
	"github.com/anonb2b/orders-backend/internal/config"
	"github.com/anonb2b/orders-backend/internal/events"
	"github.com/anonb2b/orders-backend/internal/fulfillment"
	"github.com/anonb2b/orders-backend/internal/httpx"
	kafkax "github.com/anonb2b/orders-backend/internal/kafka"
	"github.com/anonb2b/orders-backend/internal/orders"
	"github.com/anonb2b/orders-backend/internal/postgres"
	"github.com/anonb2b/orders-backend/internal/redisx"
	"github.com/anonb2b/orders-backend/internal/users"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer db.Close()

	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	flatShipping, err := decimal.NewFromString(cfg.FlatShippingCost)
	if err != nil {
		log.Fatalf("bad FLAT_SHIPPING_COST %q: %v", cfg.FlatShippingCost, err)
	}

	pPlaced := kafkax.NewProducer(cfg.KafkaBrokers, events.TopicOrderPlaced, 1024)
	pPlaced.Start(ctx)
	pStatus := kafkax.NewProducer(cfg.KafkaBrokers, events.TopicOrderStatusChanged, 1024)
	pStatus.Start(ctx)
	pStock := kafkax.NewProducer(cfg.KafkaBrokers, events.TopicStockAdjusted, 1024)
	pStock.Start(ctx)

	ledger := &orders.Ledger{DB: db}
	router := httpx.NewRouter()

	(&httpx.UsersHandler{Store: &users.Store{DB: db}}).Register(router)
	(&httpx.CatalogHandler{
		Store:             &catalog.Store{DB: db},
		StockProducer:     pStock,
		Service:           cfg.ServiceName,
		LowStockThreshold: cfg.LowStockThreshold,
	}).Register(router)
	(&httpx.AddressHandler{Book: &address.Book{DB: db}}).Register(router)
	(&httpx.OrdersHandler{
		Coordinator: &fulfillment.Coordinator{
			DB:           db,
			Ledger:       ledger,
			FlatShipping: flatShipping,
		},
		Ledger:         ledger,
		PlacedProducer: pPlaced,
		StatusProducer: pStatus,
		Redis:          rdb,
		Service:        cfg.ServiceName,
	}).Register(router)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Printf("HTTP listening at %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		select {
		case <-sig:
		case <-gctx.Done():
		}
		log.Println("shutting down...")
		shutCtx, shutCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutCancel()
		return srv.Shutdown(shutCtx)
	})

	if err := g.Wait(); err != nil {
		log.Printf("serve: %v", err)
	}

	pPlaced.Close()
	pStatus.Close()
	pStock.Close()
	cancel()
	pPlaced.WaitClosed()
	pStatus.WaitClosed()
	pStock.WaitClosed()
}
