package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"clothing-store/internal/domain"
)

// TopProductsLimit caps the product ranking.
const TopProductsLimit = 10

// DashboardRepository aggregates qualifying orders: paid and not cancelled,
// created within [start, end].
type DashboardRepository interface {
	DailyTotals(ctx context.Context, start, end time.Time) ([]domain.DailyStat, error)
	TopProducts(ctx context.Context, start, end time.Time, order SortOrder) ([]domain.ProductStat, error)
}

type dashboardRepository struct {
	db *sql.DB
}

func NewDashboardRepository(db *sql.DB) DashboardRepository {
	return &dashboardRepository{db: db}
}

// DailyTotals returns only the days that have orders, bucketed by UTC date
// and sorted ascending.
func (r *dashboardRepository) DailyTotals(ctx context.Context, start, end time.Time) ([]domain.DailyStat, error) {
	query := `
		SELECT to_char(o.created_at AT TIME ZONE 'UTC', 'YYYY-MM-DD') AS day,
		       SUM(o.amount),
		       COUNT(*),
		       COALESCE(SUM((SELECT COALESCE(SUM((e ->> 'quantity')::int), 0) FROM jsonb_array_elements(o.items) e)), 0)
		FROM orders o
		WHERE o.created_at >= $1 AND o.created_at <= $2
		  AND o.payment = TRUE AND o.status <> 'Cancelled'
		GROUP BY day
		ORDER BY day
	`

	rows, err := r.db.QueryContext(ctx, query, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate daily sales: %w", err)
	}
	defer rows.Close()

	stats := []domain.DailyStat{}
	for rows.Next() {
		var s domain.DailyStat
		if err := rows.Scan(&s.Date, &s.TotalSales, &s.TotalOrders, &s.TotalProducts); err != nil {
			return nil, fmt.Errorf("failed to scan daily stat: %w", err)
		}
		stats = append(stats, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating daily stats: %w", err)
	}
	return stats, nil
}

// TopProducts ranks products by units sold. The name is the one
// snapshotted on the line items.
func (r *dashboardRepository) TopProducts(ctx context.Context, start, end time.Time, order SortOrder) ([]domain.ProductStat, error) {
	if order != SortOrderAsc {
		order = SortOrderDesc
	}

	query := fmt.Sprintf(`
		SELECT (e ->> 'productId')::uuid AS product_id,
		       MIN(e ->> 'name') AS name,
		       SUM((e ->> 'quantity')::int) AS quantity
		FROM orders o, jsonb_array_elements(o.items) e
		WHERE o.created_at >= $1 AND o.created_at <= $2
		  AND o.payment = TRUE AND o.status <> 'Cancelled'
		GROUP BY product_id
		ORDER BY quantity %s, product_id
		LIMIT %d
	`, order, TopProductsLimit)

	rows, err := r.db.QueryContext(ctx, query, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to rank products: %w", err)
	}
	defer rows.Close()

	stats := []domain.ProductStat{}
	for rows.Next() {
		var s domain.ProductStat
		if err := rows.Scan(&s.ProductID, &s.Name, &s.Quantity); err != nil {
			return nil, fmt.Errorf("failed to scan product stat: %w", err)
		}
		stats = append(stats, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating product stats: %w", err)
	}
	return stats, nil
}
