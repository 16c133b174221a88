package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"clothing-store/internal/domain"

	"github.com/google/uuid"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrUserAlreadyExists = errors.New("user with this email already exists")
)

// UserListFilter drives the admin customer overview.
type UserListFilter struct {
	Page      Page
	Search    string
	SortBy    string
	SortOrder SortOrder
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, canComment, canChat *bool) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListWithStats(ctx context.Context, filter UserListFilter) ([]*domain.UserStats, int, error)
}

type userRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new instance of UserRepository
func NewUserRepository(db *sql.DB) UserRepository {
	return &userRepository{db: db}
}

const userColumns = `id, name, email, password_hash, role, cart_data, can_comment, can_chat, created_at, updated_at`

func scanUser(row interface{ Scan(...interface{}) error }) (*domain.User, error) {
	user := &domain.User{}
	err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.Role,
		&user.CartData,
		&user.CanComment,
		&user.CanChat,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	return user, err
}

// Create inserts a new user; the cart starts empty.
func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (id, name, email, password_hash, role, cart_data, can_comment, can_chat, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, '{}'::jsonb, $6, $7, $8, $9)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		user.ID,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.Role,
		user.CanComment,
		user.CanChat,
		user.CreatedAt,
		user.UpdatedAt,
	)

	if err != nil {
		if isUniqueViolation(err, "users_email_key") {
			return ErrUserAlreadyExists
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	if user.CartData == nil {
		user.CartData = domain.Cart{}
	}
	return nil
}

// FindByEmail retrieves a user by email
func (r *userRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	user, err := scanUser(r.db.QueryRowContext(ctx, query, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}

	return user, nil
}

// FindByID retrieves a user by ID
func (r *userRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := scanUser(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user by ID: %w", err)
	}

	return user, nil
}

// UpdateStatus changes the moderation flags that are non-nil.
func (r *userRepository) UpdateStatus(ctx context.Context, id uuid.UUID, canComment, canChat *bool) error {
	query := `
		UPDATE users
		SET can_comment = COALESCE($2, can_comment),
		    can_chat = COALESCE($3, can_chat),
		    updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query, id, nullableBool(canComment), nullableBool(canChat))
	if err != nil {
		return fmt.Errorf("failed to update user status: %w", err)
	}

	return expectOneRow(result, ErrUserNotFound)
}

// Delete removes a user. Their orders and reviews stay, detached from the
// account, so sales history and rating aggregates are unchanged.
func (r *userRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	return expectOneRow(result, ErrUserNotFound)
}

var userSortColumns = map[string]string{
	"name":          "u.name",
	"email":         "u.email",
	"createdAt":     "u.created_at",
	"totalOrders":   "total_orders",
	"totalSpent":    "total_spent",
	"totalProducts": "total_products",
}

// ListWithStats lists customers with totals over their delivered orders.
// Search matches name, email or any phone used on the customer's orders.
func (r *userRepository) ListWithStats(ctx context.Context, filter UserListFilter) ([]*domain.UserStats, int, error) {
	page := filter.Page.Normalize()

	sortBy, ok := userSortColumns[filter.SortBy]
	if !ok {
		sortBy = "u.created_at"
	}
	sortOrder := filter.SortOrder
	if sortOrder != SortOrderAsc && sortOrder != SortOrderDesc {
		sortOrder = SortOrderDesc
	}

	conditions := []string{"u.role = 'user'"}
	args := []interface{}{}
	argIndex := 1

	if search := strings.TrimSpace(filter.Search); search != "" {
		conditions = append(conditions, fmt.Sprintf(`(u.name ILIKE $%[1]d OR u.email ILIKE $%[1]d
			OR EXISTS (SELECT 1 FROM orders so WHERE so.user_id = u.id AND so.phone ILIKE $%[1]d))`, argIndex))
		args = append(args, likePattern(search))
		argIndex++
	}

	whereClause := "WHERE " + strings.Join(conditions, " AND ")

	var total int
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM users u %s", whereClause)
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT u.id, u.name, u.email, u.can_comment, u.can_chat, u.created_at,
		       COALESCE(latest.phone, 'N/A'),
		       COALESCE(stats.total_orders, 0) AS total_orders,
		       COALESCE(stats.total_spent, 0) AS total_spent,
		       COALESCE(stats.total_products, 0) AS total_products
		FROM users u
		LEFT JOIN LATERAL (
			SELECT COUNT(*) AS total_orders,
			       SUM(o.amount) AS total_spent,
			       SUM((SELECT COALESCE(SUM((e->>'quantity')::int), 0) FROM jsonb_array_elements(o.items) e)) AS total_products
			FROM orders o
			WHERE o.user_id = u.id AND o.status = 'Delivered'
		) stats ON TRUE
		LEFT JOIN LATERAL (
			SELECT o.phone FROM orders o WHERE o.user_id = u.id ORDER BY o.created_at DESC LIMIT 1
		) latest ON TRUE
		%s
		ORDER BY %s %s, u.id
		LIMIT $%d OFFSET $%d
	`, whereClause, sortBy, sortOrder, argIndex, argIndex+1)

	args = append(args, page.Size, page.Offset())

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	users := []*domain.UserStats{}
	for rows.Next() {
		u := &domain.UserStats{}
		if err := rows.Scan(
			&u.ID,
			&u.Name,
			&u.Email,
			&u.CanComment,
			&u.CanChat,
			&u.CreatedAt,
			&u.Phone,
			&u.TotalOrders,
			&u.TotalSpent,
			&u.TotalProducts,
		); err != nil {
			return nil, 0, fmt.Errorf("failed to scan user stats: %w", err)
		}
		users = append(users, u)
	}

	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating users: %w", err)
	}

	return users, total, nil
}

func nullableBool(b *bool) sql.NullBool {
	if b == nil {
		return sql.NullBool{}
	}
	return sql.NullBool{Bool: *b, Valid: true}
}

// expectOneRow maps "no row touched" to notFound.
func expectOneRow(result sql.Result, notFound error) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return notFound
	}
	return nil
}
