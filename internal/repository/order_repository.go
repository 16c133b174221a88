package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"clothing-store/internal/database"
	"clothing-store/internal/domain"

	"github.com/google/uuid"
)

var (
	ErrOrderNotFound     = errors.New("order not found")
	ErrInsufficientStock = errors.New("insufficient stock")
)

// OrderFilter drives the admin order listing. Nil fields are not filtered.
type OrderFilter struct {
	Page      Page
	Status    string
	Payment   *bool
	UserID    *uuid.UUID
	StartDate *time.Time
	EndDate   *time.Time
	SortBy    string
	SortOrder SortOrder
}

// OrderRepository defines the interface for order data access
type OrderRepository interface {
	Place(ctx context.Context, order *domain.Order) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Order, error)
	List(ctx context.Context, filter OrderFilter) ([]*domain.Order, int, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*domain.Order, error)
	UpdatePayment(ctx context.Context, id uuid.UUID, payment bool) (*domain.Order, error)
}

type orderRepository struct {
	db *sql.DB
}

// NewOrderRepository creates a new instance of OrderRepository
func NewOrderRepository(db *sql.DB) OrderRepository {
	return &orderRepository{db: db}
}

const orderColumns = `o.id, o.user_id, o.phone, o.items, o.amount, o.address, o.status, o.payment_method, o.payment,
	o.created_at, o.updated_at, COALESCE(u.name, ''), COALESCE(u.email, '')`

func scanOrder(row interface{ Scan(...interface{}) error }) (*domain.Order, error) {
	order := &domain.Order{}
	err := row.Scan(
		&order.ID,
		&order.UserID,
		&order.Phone,
		&order.Items,
		&order.Amount,
		&order.Address,
		&order.Status,
		&order.PaymentMethod,
		&order.Payment,
		&order.CreatedAt,
		&order.UpdatedAt,
		&order.UserName,
		&order.UserEmail,
	)
	return order, err
}

func scanOrders(rows *sql.Rows) ([]*domain.Order, error) {
	defer rows.Close()

	orders := []*domain.Order{}
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, order)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating orders: %w", err)
	}
	return orders, nil
}

// Place stores the order, moves the ordered units from quantity to sold and
// empties the buyer's cart, all in one transaction. A line item whose
// product no longer has enough stock aborts everything with
// ErrInsufficientStock.
func (r *orderRepository) Place(ctx context.Context, order *domain.Order) error {
	return database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		if err := reserveStock(ctx, tx, order.Items); err != nil {
			return err
		}

		_, err := tx.ExecContext(ctx, `
			INSERT INTO orders (id, user_id, phone, items, amount, address, status, payment_method, payment, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		`,
			order.ID,
			order.UserID,
			order.Phone,
			order.Items,
			order.Amount,
			order.Address,
			order.Status,
			order.PaymentMethod,
			order.Payment,
			order.CreatedAt,
			order.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}

		result, err := tx.ExecContext(ctx,
			`UPDATE users SET cart_data = '{}'::jsonb, updated_at = NOW() WHERE id = $1`, order.UserID)
		if err != nil {
			return fmt.Errorf("failed to clear cart: %w", err)
		}
		return expectOneRow(result, ErrUserNotFound)
	})
}

func (r *orderRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders o LEFT JOIN users u ON u.id = o.user_id WHERE o.id = $1`

	order, err := scanOrder(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to find order by ID: %w", err)
	}
	return order, nil
}

// ListByUser returns the user's orders, newest first.
func (r *orderRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Order, error) {
	query := `SELECT ` + orderColumns + `
		FROM orders o LEFT JOIN users u ON u.id = o.user_id
		WHERE o.user_id = $1
		ORDER BY o.created_at DESC, o.id DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list user orders: %w", err)
	}
	return scanOrders(rows)
}

var orderSortColumns = map[string]string{
	"createdAt": "o.created_at",
	"amount":    "o.amount",
	"status":    "o.status",
}

func (r *orderRepository) List(ctx context.Context, filter OrderFilter) ([]*domain.Order, int, error) {
	page := filter.Page.Normalize()

	sortBy, ok := orderSortColumns[filter.SortBy]
	if !ok {
		sortBy = "o.created_at"
	}
	sortOrder := filter.SortOrder
	if sortOrder != SortOrderAsc && sortOrder != SortOrderDesc {
		sortOrder = SortOrderDesc
	}

	conditions := []string{}
	args := []interface{}{}
	argIndex := 1

	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("o.status = $%d", argIndex))
		args = append(args, filter.Status)
		argIndex++
	}
	if filter.Payment != nil {
		conditions = append(conditions, fmt.Sprintf("o.payment = $%d", argIndex))
		args = append(args, *filter.Payment)
		argIndex++
	}
	if filter.UserID != nil {
		conditions = append(conditions, fmt.Sprintf("o.user_id = $%d", argIndex))
		args = append(args, *filter.UserID)
		argIndex++
	}
	if filter.StartDate != nil {
		conditions = append(conditions, fmt.Sprintf("o.created_at >= $%d", argIndex))
		args = append(args, *filter.StartDate)
		argIndex++
	}
	if filter.EndDate != nil {
		conditions = append(conditions, fmt.Sprintf("o.created_at <= $%d", argIndex))
		args = append(args, *filter.EndDate)
		argIndex++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM orders o %s", whereClause)
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM orders o LEFT JOIN users u ON u.id = o.user_id
		%s
		ORDER BY %s %s, o.id DESC
		LIMIT $%d OFFSET $%d
	`, orderColumns, whereClause, sortBy, sortOrder, argIndex, argIndex+1)

	args = append(args, page.Size, page.Offset())

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list orders: %w", err)
	}

	orders, err := scanOrders(rows)
	if err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

func reserveStock(ctx context.Context, tx *sql.Tx, items domain.OrderItems) error {
	for _, item := range items {
		result, err := tx.ExecContext(ctx, `
			UPDATE products
			SET quantity = quantity - $2, sold = sold + $2, updated_at = NOW()
			WHERE id = $1 AND quantity >= $2
		`, item.ProductID, item.Quantity)
		if err != nil {
			return fmt.Errorf("failed to reserve stock: %w", err)
		}
		if err := expectOneRow(result, ErrInsufficientStock); err != nil {
			return err
		}
	}
	return nil
}

// releaseStock undoes reserveStock. Products deleted since are skipped.
func releaseStock(ctx context.Context, tx *sql.Tx, items domain.OrderItems) error {
	for _, item := range items {
		_, err := tx.ExecContext(ctx, `
			UPDATE products
			SET quantity = quantity + $2, sold = GREATEST(sold - $2, 0), updated_at = NOW()
			WHERE id = $1
		`, item.ProductID, item.Quantity)
		if err != nil {
			return fmt.Errorf("failed to release stock: %w", err)
		}
	}
	return nil
}

// UpdateStatus sets the order status. Cancelling returns the order's units
// to stock; reopening a cancelled order reserves them again and fails with
// ErrInsufficientStock when they are gone.
func (r *orderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*domain.Order, error) {
	err := database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		var (
			current string
			items   domain.OrderItems
		)
		err := tx.QueryRowContext(ctx,
			`SELECT status, items FROM orders WHERE id = $1 FOR UPDATE`, id).Scan(&current, &items)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrOrderNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to lock order: %w", err)
		}

		wasCancelled := current == domain.OrderStatusCancelled
		cancelling := status == domain.OrderStatusCancelled
		switch {
		case cancelling && !wasCancelled:
			err = releaseStock(ctx, tx, items)
		case wasCancelled && !cancelling:
			err = reserveStock(ctx, tx, items)
		}
		if err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx,
			`UPDATE orders SET status = $2, updated_at = NOW() WHERE id = $1`, id, status)
		if err != nil {
			return fmt.Errorf("failed to update order status: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r.FindByID(ctx, id)
}

func (r *orderRepository) UpdatePayment(ctx context.Context, id uuid.UUID, payment bool) (*domain.Order, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE orders SET payment = $2, updated_at = NOW() WHERE id = $1`, id, payment)
	if err != nil {
		return nil, fmt.Errorf("failed to update order payment: %w", err)
	}
	if err := expectOneRow(result, ErrOrderNotFound); err != nil {
		return nil, err
	}
	return r.FindByID(ctx, id)
}
