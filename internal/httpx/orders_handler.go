package httpx

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"

	"github.com/anonb2b/orders-backend/internal/apperr"
	"github.com/anonb2b/orders-backend/internal/events"
	"github.com/anonb2b/orders-backend/internal/fulfillment"
	kafkax "github.com/anonb2b/orders-backend/internal/kafka"
	"github.com/anonb2b/orders-backend/internal/orders"
	"github.com/anonb2b/orders-backend/internal/redisx"
)

type OrdersHandler struct {
	Coordinator    *fulfillment.Coordinator
	Ledger         *orders.Ledger
	PlacedProducer *kafkax.Producer
	StatusProducer *kafkax.Producer
	Redis          *redis.Client
	Service        string
}

type CreateOrderReq struct {
	UserID                string                  `json:"user_id"`
	DeliveryAddressID     string                  `json:"delivery_address_id"`
	Items                 []fulfillment.LineInput `json:"items"`
	TaxAmount             decimal.Decimal         `json:"tax_amount"`
	ShippingCost          *decimal.Decimal        `json:"shipping_cost,omitempty"`
	EstimatedDeliveryDate *time.Time              `json:"estimated_delivery_date,omitempty"`
	Notes                 string                  `json:"notes,omitempty"`
}

func (h *OrdersHandler) Register(r *chi.Mux) {
	r.Post("/orders", h.createOrder)
	r.Get("/orders", h.listOrders)
	r.Get("/orders/overdue", h.listOverdue)
	r.Get("/orders/{number}", h.getByNumber)
	r.Post("/orders/{id}/status", h.transition)
	r.Get("/users/{userID}/orders", h.listByUser)
}

func (h *OrdersHandler) createOrder(w http.ResponseWriter, r *http.Request) {
	var req CreateOrderReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, apperr.Validation("invalid json"))
		return
	}
	if req.UserID == "" || req.DeliveryAddressID == "" {
		writeErr(w, apperr.Validation("user_id and delivery_address_id are required"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	o, err := h.Coordinator.CreateOrder(ctx, fulfillment.CreateOrderInput{
		UserID:                req.UserID,
		DeliveryAddressID:     req.DeliveryAddressID,
		Items:                 req.Items,
		TaxAmount:             req.TaxAmount,
		ShippingCost:          req.ShippingCost,
		EstimatedDeliveryDate: req.EstimatedDeliveryDate,
		Notes:                 req.Notes,
	})
	if err != nil {
		writeErr(w, err)
		return
	}

	h.cacheStatus(ctx, o)
	h.publishPlaced(o, r.Header.Get("X-Request-Id"))
	writeJSON(w, http.StatusCreated, toOrderResp(o))
}

func (h *OrdersHandler) transition(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, apperr.Validation("invalid json"))
		return
	}
	next, err := orders.ParseStatus(req.Status)
	if err != nil {
		writeErr(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	o, prev, err := h.Ledger.Transition(ctx, chi.URLParam(r, "id"), next)
	if err != nil {
		writeErr(w, err)
		return
	}

	h.cacheStatus(ctx, o)
	h.publishStatusChanged(o, prev, r.Header.Get("X-Request-Id"))
	writeJSON(w, http.StatusOK, toOrderResp(o))
}

func (h *OrdersHandler) getByNumber(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	o, err := h.Ledger.GetByNumber(ctx, chi.URLParam(r, "number"))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResp(o))
}

func (h *OrdersHandler) listByUser(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	skip, limit := parsePage(r)
	os, err := h.Ledger.ListByUser(ctx, chi.URLParam(r, "userID"), skip, limit)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResps(os))
}

// listOrders filters by status or by creation-date range.
func (h *OrdersHandler) listOrders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	skip, limit := parsePage(r)
	q := r.URL.Query()

	if s := q.Get("status"); s != "" {
		st, err := orders.ParseStatus(s)
		if err != nil {
			writeErr(w, err)
			return
		}
		os, err := h.Ledger.ListByStatus(ctx, st, skip, limit)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toOrderResps(os))
		return
	}

	fromS, toS := q.Get("from"), q.Get("to")
	if fromS == "" || toS == "" {
		writeErr(w, apperr.Validation("provide status or from/to"))
		return
	}
	from, err := time.Parse(time.RFC3339, fromS)
	if err != nil {
		writeErr(w, apperr.Validation("invalid from timestamp"))
		return
	}
	to, err := time.Parse(time.RFC3339, toS)
	if err != nil {
		writeErr(w, apperr.Validation("invalid to timestamp"))
		return
	}
	os, err := h.Ledger.ListByDateRange(ctx, from, to, skip, limit)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResps(os))
}

func (h *OrdersHandler) listOverdue(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	skip, limit := parsePage(r)
	os, err := h.Ledger.ListOverdue(ctx, skip, limit)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResps(os))
}

// cacheStatus refreshes the advisory status cache; failures are ignored.
func (h *OrdersHandler) cacheStatus(ctx context.Context, o *orders.Order) {
	key := fmt.Sprintf(redisx.KeyOrderStatus, o.OrderNumber)
	body, _ := json.Marshal(map[string]any{"status": o.Status, "updated_at": o.UpdatedAt})
	_ = h.Redis.Set(ctx, key, body, redisx.TTLStatusCache).Err()
}

func (h *OrdersHandler) publishPlaced(o *orders.Order, trace string) {
	lines := make([]events.OrderLine, 0, len(o.Items))
	for _, it := range o.Items {
		lines = append(lines, events.OrderLine{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
		})
	}
	h.publish(h.PlacedProducer, o.ID, events.EventOrderPlaced, trace, events.OrderPlacedPayload{
		OrderID:     o.ID,
		OrderNumber: o.OrderNumber,
		UserID:      o.UserID,
		Lines:       lines,
		TotalAmount: o.TotalAmount,
	})
}

func (h *OrdersHandler) publishStatusChanged(o *orders.Order, from orders.Status, trace string) {
	h.publish(h.StatusProducer, o.ID, events.EventOrderStatusChanged, trace, events.OrderStatusChangedPayload{
		OrderID:     o.ID,
		OrderNumber: o.OrderNumber,
		From:        string(from),
		To:          string(o.Status),
	})
}

func (h *OrdersHandler) publish(p *kafkax.Producer, correlationID, eventType, trace string, payload any) {
	ev := events.Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      h.Service,
		TraceID:       trace,
		CorrelationID: correlationID,
		Payload:       kafkax.MustMarshal(payload),
	}
	p.Publish(events.PartitionKey(correlationID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(eventType)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}
