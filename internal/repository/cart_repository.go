package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"clothing-store/internal/domain"

	"github.com/google/uuid"
)

// CartRepository mutates the cart_data document on the user row. Every
// mutation is a single UPDATE so concurrent requests for the same user
// serialize on the row lock.
type CartRepository interface {
	Increment(ctx context.Context, userID uuid.UUID, itemID, size string) error
	SetQuantity(ctx context.Context, userID uuid.UUID, itemID, size string, quantity int) error
	Get(ctx context.Context, userID uuid.UUID) (domain.Cart, error)
}

type cartRepository struct {
	db *sql.DB
}

func NewCartRepository(db *sql.DB) CartRepository {
	return &cartRepository{db: db}
}

// Increment adds one unit of (itemID, size), creating both keys as needed.
func (r *cartRepository) Increment(ctx context.Context, userID uuid.UUID, itemID, size string) error {
	query := `
		UPDATE users
		SET cart_data = jsonb_set(
		        cart_data,
		        ARRAY[$2::text],
		        COALESCE(cart_data -> $2::text, '{}'::jsonb)
		            || jsonb_build_object($3::text, COALESCE((cart_data -> $2::text ->> $3::text)::int, 0) + 1)
		    ),
		    updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query, userID, itemID, size)
	if err != nil {
		return fmt.Errorf("failed to increment cart item: %w", err)
	}

	return expectOneRow(result, ErrUserNotFound)
}

// SetQuantity stores quantity for (itemID, size). Zero removes the size key,
// and removes the item key when that size was its last one. The emptiness
// check happens inside the same statement, against the locked row.
func (r *cartRepository) SetQuantity(ctx context.Context, userID uuid.UUID, itemID, size string, quantity int) error {
	query := `
		UPDATE users
		SET cart_data = CASE
		        WHEN $4::int > 0 THEN jsonb_set(
		            cart_data,
		            ARRAY[$2::text],
		            COALESCE(cart_data -> $2::text, '{}'::jsonb) || jsonb_build_object($3::text, $4::int)
		        )
		        WHEN (cart_data -> $2::text) - $3::text = '{}'::jsonb THEN cart_data - $2::text
		        ELSE cart_data #- ARRAY[$2::text, $3::text]
		    END,
		    updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query, userID, itemID, size, quantity)
	if err != nil {
		return fmt.Errorf("failed to update cart item: %w", err)
	}

	return expectOneRow(result, ErrUserNotFound)
}

func (r *cartRepository) Get(ctx context.Context, userID uuid.UUID) (domain.Cart, error) {
	var cart domain.Cart
	err := r.db.QueryRowContext(ctx, `SELECT cart_data FROM users WHERE id = $1`, userID).Scan(&cart)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}
	return cart, nil
}
