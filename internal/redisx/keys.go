package redisx

import "time"

// Advisory keys only. Postgres is the source of truth for stock and
// default-address state; losing any of these keys must never change behavior.
const (
	// Cache of order status by order number: order_status:{order_number}
	KeyOrderStatus = "order_status:%s"

	// Set of SKUs currently at or below the low-stock threshold,
	// maintained by the stockwatch consumer.
	KeyLowStockSet = "catalog:low_stock"

	// Dedup for event processing: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"
)

var (
	TTLStatusCache = 5 * time.Minute
	TTLDedup       = 48 * time.Hour
)
