// Package stockwatch consumes stock-adjustment events and keeps the advisory
// low-stock set warm so dashboards do not hit Postgres for it.
package stockwatch

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/anonb2b/orders-backend/internal/events"
	kafkax "github.com/anonb2b/orders-backend/internal/kafka"
	"github.com/anonb2b/orders-backend/internal/redisx"
)

type Watcher struct {
	Redis     *redis.Client
	Threshold int
}

func (w *Watcher) HandleStockAdjusted(ctx context.Context, m kafkago.Message) error {
	var env events.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		return err
	}
	if env.EventType != events.EventStockAdjusted {
		return nil
	}

	// dedup on event id; redelivery after a consumer restart is expected
	dkey := fmt.Sprintf(redisx.KeyDedup, "stockwatch", env.EventID)
	if exists, _ := redisx.Exists(ctx, w.Redis, dkey); exists {
		return nil
	}
	_ = w.Redis.Set(ctx, dkey, "1", redisx.TTLDedup).Err()

	p, err := kafkax.UnwrapPayload[events.StockAdjustedPayload](env.Payload)
	if err != nil {
		return err
	}

	if p.NewQuantity <= w.Threshold {
		if err := w.Redis.SAdd(ctx, redisx.KeyLowStockSet, p.SKU).Err(); err != nil {
			return err
		}
		log.Printf("low stock: sku=%s quantity=%d threshold=%d", p.SKU, p.NewQuantity, w.Threshold)
		return nil
	}
	return w.Redis.SRem(ctx, redisx.KeyLowStockSet, p.SKU).Err()
}
