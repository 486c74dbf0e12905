package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"

	"github.com/anonb2b/orders-backend/internal/apperr"
	"github.com/anonb2b/orders-backend/internal/catalog"
	"github.com/anonb2b/orders-backend/internal/events"
	kafkax "github.com/anonb2b/orders-backend/internal/kafka"
)

type CatalogHandler struct {
	Store             *catalog.Store
	StockProducer     *kafkax.Producer
	Service           string
	LowStockThreshold int
}

type CreateProductReq struct {
	Name         string          `json:"name"`
	Description  string          `json:"description,omitempty"`
	SKU          string          `json:"sku"`
	RetailPrice  decimal.Decimal `json:"retail_price"`
	CompanyPrice decimal.Decimal `json:"company_price"`
	StockQty     int             `json:"stock_quantity"`
	WeightKg     decimal.Decimal `json:"weight_kg,omitempty"`
	Dimensions   string          `json:"dimensions,omitempty"`
	Category     string          `json:"category,omitempty"`
}

type UpdateProductReq struct {
	Name         *string          `json:"name,omitempty"`
	Description  *string          `json:"description,omitempty"`
	RetailPrice  *decimal.Decimal `json:"retail_price,omitempty"`
	CompanyPrice *decimal.Decimal `json:"company_price,omitempty"`
	IsActive     *bool            `json:"is_active,omitempty"`
	WeightKg     *decimal.Decimal `json:"weight_kg,omitempty"`
	Dimensions   *string          `json:"dimensions,omitempty"`
	Category     *string          `json:"category,omitempty"`
}

func (h *CatalogHandler) Register(r *chi.Mux) {
	r.Post("/products", h.create)
	r.Get("/products", h.list)
	r.Get("/products/categories", h.categories)
	r.Get("/products/{key}", h.get)
	r.Patch("/products/{id}", h.update)
	r.Post("/products/{id}/stock", h.adjustStock)
}

func (h *CatalogHandler) create(w http.ResponseWriter, r *http.Request) {
	var req CreateProductReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, apperr.Validation("invalid json"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	p, err := h.Store.Create(ctx, catalog.ProductSpec{
		Name:         req.Name,
		Description:  req.Description,
		SKU:          req.SKU,
		RetailPrice:  req.RetailPrice,
		CompanyPrice: req.CompanyPrice,
		StockQty:     req.StockQty,
		WeightKg:     req.WeightKg,
		Dimensions:   req.Dimensions,
		Category:     req.Category,
	})
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toProductResp(p))
}

func (h *CatalogHandler) update(w http.ResponseWriter, r *http.Request) {
	var req UpdateProductReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, apperr.Validation("invalid json"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	p, err := h.Store.Update(ctx, chi.URLParam(r, "id"), catalog.Update{
		Name:         req.Name,
		Description:  req.Description,
		RetailPrice:  req.RetailPrice,
		CompanyPrice: req.CompanyPrice,
		IsActive:     req.IsActive,
		WeightKg:     req.WeightKg,
		Dimensions:   req.Dimensions,
		Category:     req.Category,
	})
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toProductResp(p))
}

func (h *CatalogHandler) adjustStock(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Delta int `json:"delta"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, apperr.Validation("invalid json"))
		return
	}
	if req.Delta == 0 {
		writeErr(w, apperr.Validation("delta must be non-zero"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	p, err := h.Store.AdjustStock(ctx, chi.URLParam(r, "id"), req.Delta)
	if err != nil {
		writeErr(w, err)
		return
	}

	h.publishStockAdjusted(r, p, req.Delta)
	writeJSON(w, http.StatusOK, toProductResp(p))
}

// get resolves the key as a product id first, then as a SKU.
func (h *CatalogHandler) get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	key := chi.URLParam(r, "key")
	p, err := h.Store.GetByID(ctx, key)
	if apperr.IsNotFound(err) {
		p, err = h.Store.GetBySKU(ctx, key)
	}
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toProductResp(p))
}

func (h *CatalogHandler) list(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	skip, limit := parsePage(r)
	q := r.URL.Query()

	var (
		ps  []catalog.Product
		err error
	)
	switch {
	case q.Get("q") != "":
		ps, err = h.Store.Search(ctx, q.Get("q"), skip, limit)
	case q.Get("category") != "":
		ps, err = h.Store.ListByCategory(ctx, q.Get("category"), skip, limit)
	case q.Get("filter") == "in_stock":
		ps, err = h.Store.ListInStock(ctx, skip, limit)
	case q.Get("filter") == "low_stock":
		threshold := h.LowStockThreshold
		if t, convErr := strconv.Atoi(q.Get("threshold")); convErr == nil && t > 0 {
			threshold = t
		}
		ps, err = h.Store.ListLowStock(ctx, threshold, skip, limit)
	default:
		ps, err = h.Store.ListActive(ctx, skip, limit)
	}
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toProductResps(ps))
}

func (h *CatalogHandler) categories(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	cs, err := h.Store.Categories(ctx)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cs)
}

func (h *CatalogHandler) publishStockAdjusted(r *http.Request, p *catalog.Product, delta int) {
	ev := events.Envelope{
		EventID:       uuid.NewString(),
		EventType:     events.EventStockAdjusted,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      h.Service,
		TraceID:       r.Header.Get("X-Request-Id"),
		CorrelationID: p.ID,
		Payload: kafkax.MustMarshal(events.StockAdjustedPayload{
			ProductID:   p.ID,
			SKU:         p.SKU,
			Delta:       delta,
			NewQuantity: p.StockQuantity,
		}),
	}
	h.StockProducer.Publish(events.PartitionKey(p.ID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(events.EventStockAdjusted)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}
