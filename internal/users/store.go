package users

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"

	"github.com/anonb2b/orders-backend/internal/apperr"
	"github.com/anonb2b/orders-backend/internal/postgres"
)

type Store struct{ DB *pgxpool.Pool }

type CreateInput struct {
	Email        string
	Phone        string
	Password     string
	BusinessName string
	GSTIN        string
	BusinessType BusinessType
}

func (s *Store) Create(ctx context.Context, in CreateInput) (*User, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, apperr.Validation("invalid email")
	}
	if len(in.Password) < 8 {
		return nil, apperr.Validation("password must be at least 8 characters")
	}
	if in.BusinessName == "" {
		return nil, apperr.Validation("business name is required")
	}
	if !in.BusinessType.Valid() {
		return nil, apperr.Validation("unknown business type %q", in.BusinessType)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperr.Internal(err, "hash password")
	}

	u := &User{
		ID:             uuid.NewString(),
		Email:          email,
		Phone:          strings.TrimSpace(in.Phone),
		HashedPassword: string(hash),
		BusinessName:   in.BusinessName,
		GSTIN:          strings.ToUpper(strings.TrimSpace(in.GSTIN)),
		BusinessType:   in.BusinessType,
		IsActive:       true,
	}

	err = s.DB.QueryRow(ctx, `
		INSERT INTO users (id, email, phone, hashed_password, business_name, gstin, business_type, is_active, is_verified)
		VALUES ($1,$2,NULLIF($3,''),$4,$5,NULLIF($6,''),$7,$8,false)
		RETURNING created_at`,
		u.ID, u.Email, u.Phone, u.HashedPassword, u.BusinessName, u.GSTIN, u.BusinessType, u.IsActive,
	).Scan(&u.CreatedAt)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return nil, apperr.Conflict("email, phone or GSTIN already registered")
		}
		return nil, apperr.Internal(err, "insert user")
	}
	return u, nil
}

func (s *Store) GetByID(ctx context.Context, id string) (*User, error) {
	return s.one(ctx, `WHERE id=$1`, id)
}

func (s *Store) GetByEmail(ctx context.Context, email string) (*User, error) {
	return s.one(ctx, `WHERE email=$1`, strings.ToLower(strings.TrimSpace(email)))
}

// Authenticate verifies credentials for an active account. The caller turns
// the returned user into whatever session/token scheme it runs.
func (s *Store) Authenticate(ctx context.Context, email, password string) (*User, error) {
	u, err := s.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if !u.IsActive {
		return nil, apperr.NotFound("user not found")
	}
	if bcrypt.CompareHashAndPassword([]byte(u.HashedPassword), []byte(password)) != nil {
		return nil, apperr.Validation("invalid credentials")
	}
	return u, nil
}

// Verify marks the account as verified. Repeat calls are harmless.
func (s *Store) Verify(ctx context.Context, id string) (*User, error) {
	return s.setFlag(ctx, id, `is_verified=true`)
}

// Deactivate disables login for the account. The row stays; orders keep
// pointing at it.
func (s *Store) Deactivate(ctx context.Context, id string) (*User, error) {
	return s.setFlag(ctx, id, `is_active=false`)
}

func (s *Store) setFlag(ctx context.Context, id, set string) (*User, error) {
	tag, err := s.DB.Exec(ctx, `UPDATE users SET `+set+`, updated_at=now() WHERE id=$1`, id)
	if err != nil {
		return nil, apperr.Internal(err, "update user")
	}
	if tag.RowsAffected() == 0 {
		return nil, apperr.NotFound("user not found")
	}
	return s.GetByID(ctx, id)
}

func (s *Store) one(ctx context.Context, where string, args ...any) (*User, error) {
	var u User
	err := s.DB.QueryRow(ctx, `
		SELECT id, email, COALESCE(phone,''), hashed_password, business_name, COALESCE(gstin,''), business_type,
		       is_active, is_verified, created_at, COALESCE(updated_at, created_at)
		FROM users `+where, args...,
	).Scan(&u.ID, &u.Email, &u.Phone, &u.HashedPassword, &u.BusinessName, &u.GSTIN,
		&u.BusinessType, &u.IsActive, &u.IsVerified, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("user not found")
	}
	if err != nil {
		return nil, apperr.Internal(err, "query user")
	}
	return &u, nil
}
