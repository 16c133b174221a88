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
)

// InventoryLogFilter drives the ledger listing. CreatedBy is a
// case-insensitive substring match.
type InventoryLogFilter struct {
	Page      Page
	Type      string
	CreatedBy string
	StartDate *time.Time
	EndDate   *time.Time
}

// InventoryLogRepository defines the interface for inventory ledger access
type InventoryLogRepository interface {
	CreateAndApply(ctx context.Context, log *domain.InventoryLog) error
	List(ctx context.Context, filter InventoryLogFilter) ([]*domain.InventoryLog, int, error)
}

type inventoryLogRepository struct {
	db *sql.DB
}

func NewInventoryLogRepository(db *sql.DB) InventoryLogRepository {
	return &inventoryLogRepository{db: db}
}

// CreateAndApply appends the ledger entry and moves each product's
// quantity by the entry's delta. An export larger than the stock on hand
// fails the whole entry with ErrInsufficientStock.
func (r *inventoryLogRepository) CreateAndApply(ctx context.Context, log *domain.InventoryLog) error {
	return database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		for _, item := range log.Items {
			var onHand int
			err := tx.QueryRowContext(ctx,
				`SELECT quantity FROM products WHERE id = $1 FOR UPDATE`, item.ProductID).Scan(&onHand)
			if err != nil {
				if errors.Is(err, sql.ErrNoRows) {
					return ErrProductNotFound
				}
				return fmt.Errorf("failed to lock product: %w", err)
			}

			delta := log.Delta(item.Quantity)
			if onHand+delta < 0 {
				return ErrInsufficientStock
			}

			if _, err := tx.ExecContext(ctx,
				`UPDATE products SET quantity = quantity + $2, updated_at = NOW() WHERE id = $1`,
				item.ProductID, delta,
			); err != nil {
				return fmt.Errorf("failed to apply inventory delta: %w", err)
			}
		}

		_, err := tx.ExecContext(ctx, `
			INSERT INTO inventory_logs (id, type, items, created_by, created_at)
			VALUES ($1, $2, $3, $4, $5)
		`, log.ID, log.Type, log.Items, log.CreatedBy, log.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to create inventory log: %w", err)
		}
		return nil
	})
}

// List returns ledger entries newest first. Each item carries the current
// product name, empty when the product has since been deleted.
func (r *inventoryLogRepository) List(ctx context.Context, filter InventoryLogFilter) ([]*domain.InventoryLog, int, error) {
	page := filter.Page.Normalize()

	conditions := []string{}
	args := []interface{}{}
	argIndex := 1

	if filter.Type != "" {
		conditions = append(conditions, fmt.Sprintf("l.type = $%d", argIndex))
		args = append(args, filter.Type)
		argIndex++
	}
	if createdBy := strings.TrimSpace(filter.CreatedBy); createdBy != "" {
		conditions = append(conditions, fmt.Sprintf("l.created_by ILIKE $%d", argIndex))
		args = append(args, likePattern(createdBy))
		argIndex++
	}
	if filter.StartDate != nil {
		conditions = append(conditions, fmt.Sprintf("l.created_at >= $%d", argIndex))
		args = append(args, *filter.StartDate)
		argIndex++
	}
	if filter.EndDate != nil {
		conditions = append(conditions, fmt.Sprintf("l.created_at <= $%d", argIndex))
		args = append(args, *filter.EndDate)
		argIndex++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM inventory_logs l %s", whereClause)
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count inventory logs: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT l.id, l.type,
		       COALESCE((
		           SELECT jsonb_agg(e || jsonb_build_object('productName', COALESCE(p.name, '')) ORDER BY ord)
		           FROM jsonb_array_elements(l.items) WITH ORDINALITY AS t(e, ord)
		           LEFT JOIN products p ON p.id = (e ->> 'productId')::uuid
		       ), '[]'::jsonb),
		       l.created_by, l.created_at
		FROM inventory_logs l
		%s
		ORDER BY l.created_at DESC, l.id DESC
		LIMIT $%d OFFSET $%d
	`, whereClause, argIndex, argIndex+1)

	args = append(args, page.Size, page.Offset())

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list inventory logs: %w", err)
	}
	defer rows.Close()

	logs := []*domain.InventoryLog{}
	for rows.Next() {
		log := &domain.InventoryLog{}
		if err := rows.Scan(&log.ID, &log.Type, &log.Items, &log.CreatedBy, &log.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("failed to scan inventory log: %w", err)
		}
		logs = append(logs, log)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating inventory logs: %w", err)
	}
	return logs, total, nil
}
