package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/anonb2b/orders-backend/internal/apperr"
	"github.com/anonb2b/orders-backend/internal/postgres"
)

// Store is the only writer of product rows. Stock changes go through
// AdjustStock (or the fulfillment coordinator's in-transaction equivalent);
// there is no raw set-stock operation.
type Store struct{ DB *pgxpool.Pool }

const productCols = `id, name, COALESCE(description,''), sku, retail_price, company_price,
	stock_quantity, is_active, COALESCE(weight_kg,0), COALESCE(dimensions,''),
	COALESCE(category,''), created_at, COALESCE(updated_at, created_at)`

func scanProduct(row pgx.Row) (*Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.SKU, &p.RetailPrice, &p.CompanyPrice,
		&p.StockQuantity, &p.IsActive, &p.WeightKg, &p.Dimensions, &p.Category,
		&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Store) Create(ctx context.Context, spec ProductSpec) (*Product, error) {
	spec, err := spec.Validate()
	if err != nil {
		return nil, err
	}

	p := &Product{
		ID:            uuid.NewString(),
		Name:          spec.Name,
		Description:   spec.Description,
		SKU:           spec.SKU,
		RetailPrice:   spec.RetailPrice,
		CompanyPrice:  spec.CompanyPrice,
		StockQuantity: spec.StockQty,
		IsActive:      true,
		WeightKg:      spec.WeightKg,
		Dimensions:    spec.Dimensions,
		Category:      spec.Category,
	}
	err = s.DB.QueryRow(ctx, `
		INSERT INTO products (id, name, description, sku, retail_price, company_price,
		                      stock_quantity, is_active, weight_kg, dimensions, category)
		VALUES ($1,$2,NULLIF($3,''),$4,$5,$6,$7,true,NULLIF($8::numeric,0),NULLIF($9,''),NULLIF($10,''))
		RETURNING created_at`,
		p.ID, p.Name, p.Description, p.SKU, p.RetailPrice, p.CompanyPrice,
		p.StockQuantity, p.WeightKg, p.Dimensions, p.Category,
	).Scan(&p.CreatedAt)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return nil, apperr.Conflict("sku %s already exists", p.SKU)
		}
		return nil, apperr.Internal(err, "insert product")
	}
	p.UpdatedAt = p.CreatedAt
	return p, nil
}

// Update applies the set fields and re-checks the price invariant against the
// resulting pair, so a retail-only or company-only change cannot cross them.
type Update struct {
	Name         *string
	Description  *string
	RetailPrice  *decimal.Decimal
	CompanyPrice *decimal.Decimal
	IsActive     *bool
	WeightKg     *decimal.Decimal
	Dimensions   *string
	Category     *string
}

func (s *Store) Update(ctx context.Context, productID string, upd Update) (*Product, error) {
	tx, err := s.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, apperr.Internal(err, "begin update product")
	}
	defer tx.Rollback(ctx)

	p, err := scanProduct(tx.QueryRow(ctx,
		`SELECT `+productCols+` FROM products WHERE id=$1 FOR UPDATE`, productID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("product %s not found", productID)
	}
	if err != nil {
		return nil, apperr.Internal(err, "lock product")
	}

	if upd.Name != nil {
		p.Name = *upd.Name
	}
	if upd.Description != nil {
		p.Description = *upd.Description
	}
	if upd.RetailPrice != nil {
		p.RetailPrice = *upd.RetailPrice
	}
	if upd.CompanyPrice != nil {
		p.CompanyPrice = *upd.CompanyPrice
	}
	if upd.IsActive != nil {
		p.IsActive = *upd.IsActive
	}
	if upd.WeightKg != nil {
		p.WeightKg = *upd.WeightKg
	}
	if upd.Dimensions != nil {
		p.Dimensions = *upd.Dimensions
	}
	if upd.Category != nil {
		p.Category = *upd.Category
	}

	if p.Name == "" {
		return nil, apperr.Validation("product name is required")
	}
	if p.RetailPrice.LessThanOrEqual(decimal.Zero) || p.CompanyPrice.LessThanOrEqual(decimal.Zero) {
		return nil, apperr.Validation("prices must be positive")
	}
	if p.CompanyPrice.GreaterThanOrEqual(p.RetailPrice) {
		return nil, apperr.Validation("company price must be less than retail price")
	}

	err = tx.QueryRow(ctx, `
		UPDATE products
		SET name=$2, description=NULLIF($3,''), retail_price=$4, company_price=$5,
		    is_active=$6, weight_kg=NULLIF($7::numeric,0), dimensions=NULLIF($8,''),
		    category=NULLIF($9,''), updated_at=now()
		WHERE id=$1
		RETURNING updated_at`,
		p.ID, p.Name, p.Description, p.RetailPrice, p.CompanyPrice,
		p.IsActive, p.WeightKg, p.Dimensions, p.Category,
	).Scan(&p.UpdatedAt)
	if err != nil {
		return nil, apperr.Internal(err, "update product")
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, apperr.Internal(err, "commit update product")
	}
	return p, nil
}

// AdjustStock applies stock_quantity += delta under a row lock so concurrent
// adjustments on the same product serialize. A result below zero aborts with
// no change.
func (s *Store) AdjustStock(ctx context.Context, productID string, delta int) (*Product, error) {
	tx, err := s.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, apperr.Internal(err, "begin adjust stock")
	}
	defer tx.Rollback(ctx)

	var stock int
	err = tx.QueryRow(ctx,
		`SELECT stock_quantity FROM products WHERE id=$1 FOR UPDATE`, productID).Scan(&stock)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("product %s not found", productID)
	}
	if err != nil {
		return nil, apperr.Internal(err, "lock product")
	}
	if stock+delta < 0 {
		return nil, apperr.InvalidState("stock cannot go negative: have %d, delta %d", stock, delta)
	}

	p, err := scanProduct(tx.QueryRow(ctx, `
		UPDATE products SET stock_quantity = stock_quantity + $2, updated_at=now()
		WHERE id=$1
		RETURNING `+productCols, productID, delta))
	if err != nil {
		return nil, apperr.Internal(err, "adjust stock")
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, apperr.Internal(err, "commit adjust stock")
	}
	return p, nil
}

func (s *Store) GetByID(ctx context.Context, id string) (*Product, error) {
	p, err := scanProduct(s.DB.QueryRow(ctx,
		`SELECT `+productCols+` FROM products WHERE id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("product %s not found", id)
	}
	if err != nil {
		return nil, apperr.Internal(err, "query product")
	}
	return p, nil
}

func (s *Store) GetBySKU(ctx context.Context, sku string) (*Product, error) {
	sku = NormalizeSKU(sku)
	p, err := scanProduct(s.DB.QueryRow(ctx,
		`SELECT `+productCols+` FROM products WHERE sku=$1`, sku))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("product with sku %s not found", sku)
	}
	if err != nil {
		return nil, apperr.Internal(err, "query product")
	}
	return p, nil
}

func (s *Store) ListActive(ctx context.Context, skip, limit int) ([]Product, error) {
	return s.list(ctx, `WHERE is_active ORDER BY sku OFFSET $1 LIMIT $2`, skip, pageLimit(limit))
}

func (s *Store) ListInStock(ctx context.Context, skip, limit int) ([]Product, error) {
	return s.list(ctx, `WHERE is_active AND stock_quantity > 0 ORDER BY sku OFFSET $1 LIMIT $2`,
		skip, pageLimit(limit))
}

func (s *Store) ListLowStock(ctx context.Context, threshold, skip, limit int) ([]Product, error) {
	return s.list(ctx, `WHERE is_active AND stock_quantity > 0 AND stock_quantity <= $3
		ORDER BY stock_quantity ASC, sku OFFSET $1 LIMIT $2`,
		skip, pageLimit(limit), threshold)
}

func (s *Store) ListByCategory(ctx context.Context, category string, skip, limit int) ([]Product, error) {
	return s.list(ctx, `WHERE category = $3 ORDER BY sku OFFSET $1 LIMIT $2`,
		skip, pageLimit(limit), category)
}

// Search filters active products by name, description or SKU. Plain ILIKE,
// no ranking.
func (s *Store) Search(ctx context.Context, term string, skip, limit int) ([]Product, error) {
	return s.list(ctx, `WHERE is_active AND (name ILIKE $3 OR description ILIKE $3 OR sku ILIKE $3)
		ORDER BY sku OFFSET $1 LIMIT $2`,
		skip, pageLimit(limit), "%"+term+"%")
}

func (s *Store) Categories(ctx context.Context) ([]string, error) {
	rows, err := s.DB.Query(ctx,
		`SELECT DISTINCT category FROM products WHERE category IS NOT NULL ORDER BY category`)
	if err != nil {
		return nil, apperr.Internal(err, "query categories")
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, apperr.Internal(err, "scan category")
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Internal(err, "read categories")
	}
	return out, nil
}

func (s *Store) list(ctx context.Context, tail string, args ...any) ([]Product, error) {
	rows, err := s.DB.Query(ctx, `SELECT `+productCols+` FROM products `+tail, args...)
	if err != nil {
		return nil, apperr.Internal(err, "query products")
	}
	defer rows.Close()

	var out []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, apperr.Internal(err, "scan product")
		}
		out = append(out, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Internal(err, "read products")
	}
	return out, nil
}

func pageLimit(limit int) int {
	if limit <= 0 || limit > 100 {
		return 100
	}
	return limit
}
