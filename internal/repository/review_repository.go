package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"clothing-store/internal/database"
	"clothing-store/internal/domain"

	"github.com/google/uuid"
)

var (
	ErrReviewNotFound  = errors.New("review not found")
	ErrDuplicateReview = errors.New("product already reviewed for this order")
)

// ReviewRepository defines the interface for review data access
type ReviewRepository interface {
	Create(ctx context.Context, review *domain.Review) error
	Update(ctx context.Context, review *domain.Review) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Review, error)
	FindByKey(ctx context.Context, userID, productID, orderID uuid.UUID) (*domain.Review, error)
	ListByProduct(ctx context.Context, productID uuid.UUID, includeHidden bool) ([]*domain.Review, error)
	SetReply(ctx context.Context, id uuid.UUID, reply *domain.Reply) (*domain.Review, error)
	ToggleHidden(ctx context.Context, id uuid.UUID) (*domain.Review, error)
}

type reviewRepository struct {
	db *sql.DB
}

// NewReviewRepository creates a new instance of ReviewRepository
func NewReviewRepository(db *sql.DB) ReviewRepository {
	return &reviewRepository{db: db}
}

const reviewColumns = `r.id, r.product_id, r.user_id, r.order_id, r.rating, r.comment, r.hidden, r.reply, r.images,
	r.created_at, r.updated_at, COALESCE(u.name, '')`

func scanReview(row interface{ Scan(...interface{}) error }) (*domain.Review, error) {
	review := &domain.Review{}
	var reply nullReply
	err := row.Scan(
		&review.ID,
		&review.ProductID,
		&review.UserID,
		&review.OrderID,
		&review.Rating,
		&review.Comment,
		&review.Hidden,
		&reply,
		&review.Images,
		&review.CreatedAt,
		&review.UpdatedAt,
		&review.UserName,
	)
	review.Reply = reply.reply
	return review, err
}

// nullReply scans a nullable JSONB reply column.
type nullReply struct {
	reply *domain.Reply
}

func (n *nullReply) Scan(src interface{}) error {
	if src == nil {
		n.reply = nil
		return nil
	}
	n.reply = &domain.Reply{}
	return n.reply.Scan(src)
}

// Create inserts the review, flags the order line item as reviewed and
// refreshes the product's rating aggregate.
func (r *reviewRepository) Create(ctx context.Context, review *domain.Review) error {
	return database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO reviews (id, product_id, user_id, order_id, rating, comment, hidden, reply, images, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, FALSE, NULL, $7, $8, $9)
		`,
			review.ID,
			review.ProductID,
			review.UserID,
			review.OrderID,
			review.Rating,
			review.Comment,
			review.Images,
			review.CreatedAt,
			review.UpdatedAt,
		)
		if err != nil {
			if isUniqueViolation(err, "reviews_user_product_order_key") {
				return ErrDuplicateReview
			}
			return fmt.Errorf("failed to create review: %w", err)
		}

		_, err = tx.ExecContext(ctx, `
			UPDATE orders
			SET items = (
			        SELECT jsonb_agg(
			            CASE WHEN e ->> 'productId' = $2::text
			                 THEN e || '{"isReviewed": true}'::jsonb
			                 ELSE e END
			            ORDER BY ord)
			        FROM jsonb_array_elements(items) WITH ORDINALITY AS t(e, ord)
			    ),
			    updated_at = NOW()
			WHERE id = $1
		`, review.OrderID, review.ProductID.String())
		if err != nil {
			return fmt.Errorf("failed to mark order item reviewed: %w", err)
		}

		return refreshRating(ctx, tx, review.ProductID)
	})
}

// Update rewrites rating, comment and images of an existing review.
func (r *reviewRepository) Update(ctx context.Context, review *domain.Review) error {
	return database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, `
			UPDATE reviews
			SET rating = $2, comment = $3, images = $4, updated_at = $5
			WHERE id = $1
		`, review.ID, review.Rating, review.Comment, review.Images, review.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to update review: %w", err)
		}
		if err := expectOneRow(result, ErrReviewNotFound); err != nil {
			return err
		}

		return refreshRating(ctx, tx, review.ProductID)
	})
}

// refreshRating recomputes the aggregate from every review of the product,
// hidden ones included.
func refreshRating(ctx context.Context, tx *sql.Tx, productID uuid.UUID) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE products p
		SET rating_average = agg.average, rating_count = agg.count, updated_at = NOW()
		FROM (
			SELECT COALESCE(AVG(rating)::float8, 0) AS average, COUNT(*) AS count
			FROM reviews WHERE product_id = $1
		) agg
		WHERE p.id = $1
	`, productID)
	if err != nil {
		return fmt.Errorf("failed to refresh product rating: %w", err)
	}
	return nil
}

func (r *reviewRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Review, error) {
	query := `SELECT ` + reviewColumns + ` FROM reviews r LEFT JOIN users u ON u.id = r.user_id WHERE r.id = $1`

	review, err := scanReview(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrReviewNotFound
		}
		return nil, fmt.Errorf("failed to find review by ID: %w", err)
	}
	return review, nil
}

// FindByKey looks a review up by its natural key.
func (r *reviewRepository) FindByKey(ctx context.Context, userID, productID, orderID uuid.UUID) (*domain.Review, error) {
	query := `SELECT ` + reviewColumns + `
		FROM reviews r LEFT JOIN users u ON u.id = r.user_id
		WHERE r.user_id = $1 AND r.product_id = $2 AND r.order_id = $3`

	review, err := scanReview(r.db.QueryRowContext(ctx, query, userID, productID, orderID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrReviewNotFound
		}
		return nil, fmt.Errorf("failed to find review: %w", err)
	}
	return review, nil
}

// ListByProduct returns the product's reviews newest first.
func (r *reviewRepository) ListByProduct(ctx context.Context, productID uuid.UUID, includeHidden bool) ([]*domain.Review, error) {
	query := `SELECT ` + reviewColumns + `
		FROM reviews r LEFT JOIN users u ON u.id = r.user_id
		WHERE r.product_id = $1 AND ($2 OR NOT r.hidden)
		ORDER BY r.created_at DESC, r.id DESC`

	rows, err := r.db.QueryContext(ctx, query, productID, includeHidden)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	defer rows.Close()

	reviews := []*domain.Review{}
	for rows.Next() {
		review, err := scanReview(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan review: %w", err)
		}
		reviews = append(reviews, review)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating reviews: %w", err)
	}
	return reviews, nil
}

// SetReply overwrites the admin reply. A nil reply removes it.
func (r *reviewRepository) SetReply(ctx context.Context, id uuid.UUID, reply *domain.Reply) (*domain.Review, error) {
	var value interface{}
	if reply != nil {
		value = *reply
	}

	result, err := r.db.ExecContext(ctx,
		`UPDATE reviews SET reply = $2, updated_at = NOW() WHERE id = $1`, id, value)
	if err != nil {
		return nil, fmt.Errorf("failed to set review reply: %w", err)
	}
	if err := expectOneRow(result, ErrReviewNotFound); err != nil {
		return nil, err
	}
	return r.FindByID(ctx, id)
}

// ToggleHidden flips the hidden flag and returns the updated review.
func (r *reviewRepository) ToggleHidden(ctx context.Context, id uuid.UUID) (*domain.Review, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE reviews SET hidden = NOT hidden, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to toggle review visibility: %w", err)
	}
	if err := expectOneRow(result, ErrReviewNotFound); err != nil {
		return nil, err
	}
	return r.FindByID(ctx, id)
}
