package address

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/anonb2b/orders-backend/internal/apperr"
)

// Book owns the per-user default-address invariant: at most one address per
// user carries is_default.
type Book struct{ DB *pgxpool.Pool }

const addressCols = `id, user_id, address_line_1, COALESCE(address_line_2,''), city, state,
	postal_code, country, is_default, created_at, COALESCE(updated_at, created_at)`

func scanAddress(row pgx.Row) (*Address, error) {
	var a Address
	err := row.Scan(&a.ID, &a.UserID, &a.AddressLine1, &a.AddressLine2, &a.City, &a.State,
		&a.PostalCode, &a.Country, &a.IsDefault, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// Create never marks the new address default; the default moves only through
// an explicit SetDefault call.
func (b *Book) Create(ctx context.Context, userID string, spec Spec) (*Address, error) {
	spec, err := spec.Validate()
	if err != nil {
		return nil, err
	}
	a := &Address{
		ID:           uuid.NewString(),
		UserID:       userID,
		AddressLine1: spec.AddressLine1,
		AddressLine2: spec.AddressLine2,
		City:         spec.City,
		State:        spec.State,
		PostalCode:   spec.PostalCode,
		Country:      spec.Country,
	}
	err = b.DB.QueryRow(ctx, `
		INSERT INTO addresses (id, user_id, address_line_1, address_line_2, city, state, postal_code, country, is_default)
		VALUES ($1,$2,$3,NULLIF($4,''),$5,$6,$7,$8,false)
		RETURNING created_at`,
		a.ID, a.UserID, a.AddressLine1, a.AddressLine2, a.City, a.State, a.PostalCode, a.Country,
	).Scan(&a.CreatedAt)
	if err != nil {
		return nil, apperr.Internal(err, "insert address")
	}
	a.UpdatedAt = a.CreatedAt
	return a, nil
}

func (b *Book) Update(ctx context.Context, userID, addressID string, spec Spec) (*Address, error) {
	spec, err := spec.Validate()
	if err != nil {
		return nil, err
	}
	a, err := scanAddress(b.DB.QueryRow(ctx, `
		UPDATE addresses
		SET address_line_1=$3, address_line_2=NULLIF($4,''), city=$5, state=$6,
		    postal_code=$7, country=$8, updated_at=now()
		WHERE id=$1 AND user_id=$2
		RETURNING `+addressCols,
		addressID, userID, spec.AddressLine1, spec.AddressLine2, spec.City, spec.State,
		spec.PostalCode, spec.Country))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("address %s not found", addressID)
	}
	if err != nil {
		return nil, apperr.Internal(err, "update address")
	}
	return a, nil
}

func (b *Book) ListByUser(ctx context.Context, userID string) ([]Address, error) {
	rows, err := b.DB.Query(ctx, `
		SELECT `+addressCols+` FROM addresses
		WHERE user_id=$1
		ORDER BY is_default DESC, created_at DESC`, userID)
	if err != nil {
		return nil, apperr.Internal(err, "query addresses")
	}
	defer rows.Close()

	var out []Address
	for rows.Next() {
		a, err := scanAddress(rows)
		if err != nil {
			return nil, apperr.Internal(err, "scan address")
		}
		out = append(out, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Internal(err, "read addresses")
	}
	return out, nil
}

func (b *Book) Default(ctx context.Context, userID string) (*Address, error) {
	a, err := scanAddress(b.DB.QueryRow(ctx,
		`SELECT `+addressCols+` FROM addresses WHERE user_id=$1 AND is_default`, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("no default address for user %s", userID)
	}
	if err != nil {
		return nil, apperr.Internal(err, "query default address")
	}
	return a, nil
}

// SetDefault clears and re-sets the flag in one transaction. The user's whole
// address set is locked first, so two concurrent calls for the same user
// serialize and no moment with two defaults is observable.
func (b *Book) SetDefault(ctx context.Context, userID, addressID string) (*Address, error) {
	tx, err := b.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, apperr.Internal(err, "begin set default")
	}
	defer tx.Rollback(ctx)

	rows, err := tx.Query(ctx,
		`SELECT id FROM addresses WHERE user_id=$1 ORDER BY id FOR UPDATE`, userID)
	if err != nil {
		return nil, apperr.Internal(err, "lock addresses")
	}
	owned := false
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, apperr.Internal(err, "scan address id")
		}
		if id == addressID {
			owned = true
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, apperr.Internal(err, "lock addresses")
	}
	if !owned {
		return nil, apperr.NotFound("address %s not found for user %s", addressID, userID)
	}

	if _, err := tx.Exec(ctx,
		`UPDATE addresses SET is_default=false, updated_at=now() WHERE user_id=$1 AND is_default`,
		userID); err != nil {
		return nil, apperr.Internal(err, "clear default")
	}
	a, err := scanAddress(tx.QueryRow(ctx, `
		UPDATE addresses SET is_default=true, updated_at=now()
		WHERE id=$1
		RETURNING `+addressCols, addressID))
	if err != nil {
		return nil, apperr.Internal(err, "set default")
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, apperr.Internal(err, "commit set default")
	}
	return a, nil
}

// Delete refuses while any order still points at the address; orders are
// immutable audit records.
func (b *Book) Delete(ctx context.Context, userID, addressID string) error {
	tx, err := b.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return apperr.Internal(err, "begin delete address")
	}
	defer tx.Rollback(ctx)

	var referenced bool
	err = tx.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM orders WHERE delivery_address_id=$1)`, addressID).Scan(&referenced)
	if err != nil {
		return apperr.Internal(err, "check order references")
	}
	if referenced {
		return apperr.Conflict("address %s is referenced by existing orders", addressID)
	}

	ct, err := tx.Exec(ctx, `DELETE FROM addresses WHERE id=$1 AND user_id=$2`, addressID, userID)
	if err != nil {
		return apperr.Internal(err, "delete address")
	}
	if ct.RowsAffected() == 0 {
		return apperr.NotFound("address %s not found for user %s", addressID, userID)
	}
	if err := tx.Commit(ctx); err != nil {
		return apperr.Internal(err, "commit delete address")
	}
	return nil
}
