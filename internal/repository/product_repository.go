package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"clothing-store/internal/domain"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

var (
	ErrProductNotFound = errors.New("product not found")
)

// ProductFilter drives the admin catalog listing.
type ProductFilter struct {
	Page      Page
	Search    string
	Status    string
	TagIDs    []string
	SortBy    string
	SortOrder SortOrder
}

// ProductRepository defines the interface for product data access
type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	ListBefore(ctx context.Context, cursor *uuid.UUID, limit int) ([]*domain.Product, error)
	List(ctx context.Context, filter ProductFilter) ([]*domain.Product, int, error)
	SetDiscount(ctx context.Context, ids []uuid.UUID, discount int) (int64, error)
}

type productRepository struct {
	db *sql.DB
}

// NewProductRepository creates a new instance of ProductRepository
func NewProductRepository(db *sql.DB) ProductRepository {
	return &productRepository{db: db}
}

const productColumns = `id, name, description, price, discount, quantity, sold, status, sizes, images, tags,
	rating_average, rating_count, created_at, updated_at`

func scanProduct(row interface{ Scan(...interface{}) error }) (*domain.Product, error) {
	product := &domain.Product{}
	err := row.Scan(
		&product.ID,
		&product.Name,
		&product.Description,
		&product.Price,
		&product.Discount,
		&product.Quantity,
		&product.Sold,
		&product.Status,
		pq.Array(&product.Sizes),
		&product.Images,
		pq.Array(&product.Tags),
		&product.RatingAverage,
		&product.RatingCount,
		&product.CreatedAt,
		&product.UpdatedAt,
	)
	return product, err
}

func scanProducts(rows *sql.Rows) ([]*domain.Product, error) {
	defer rows.Close()

	products := []*domain.Product{}
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, product)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}
	return products, nil
}

// Create inserts a new product into the database using parameterized queries
func (r *productRepository) Create(ctx context.Context, product *domain.Product) error {
	query := `
		INSERT INTO products (id, name, description, price, discount, quantity, sold, status, sizes, images, tags,
		                      rating_average, rating_count, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, 0, 0, $12, $13)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		product.ID,
		product.Name,
		product.Description,
		product.Price,
		product.Discount,
		product.Quantity,
		product.Sold,
		product.Status,
		pq.Array(product.Sizes),
		product.Images,
		pq.Array(product.Tags),
		product.CreatedAt,
		product.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}

	return nil
}

// Delete removes a product from the database using parameterized queries
func (r *productRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	return expectOneRow(result, ErrProductNotFound)
}

// FindByID retrieves a product by ID using parameterized queries
func (r *productRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	product, err := scanProduct(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product by ID: %w", err)
	}

	return product, nil
}

// ListBefore returns active products with id strictly below cursor, newest
// first. Ids are UUIDv7 so id order is creation order. A nil cursor starts
// from the newest product.
func (r *productRepository) ListBefore(ctx context.Context, cursor *uuid.UUID, limit int) ([]*domain.Product, error) {
	var (
		rows *sql.Rows
		err  error
	)

	if cursor == nil {
		query := `SELECT ` + productColumns + ` FROM products WHERE status = 'active' ORDER BY id DESC LIMIT $1`
		rows, err = r.db.QueryContext(ctx, query, limit)
	} else {
		query := `SELECT ` + productColumns + ` FROM products WHERE status = 'active' AND id < $1 ORDER BY id DESC LIMIT $2`
		rows, err = r.db.QueryContext(ctx, query, *cursor, limit)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	return scanProducts(rows)
}

var productSortColumns = map[string]string{
	"name":      "name",
	"price":     "price",
	"discount":  "discount",
	"sold":      "sold",
	"quantity":  "quantity",
	"createdAt": "created_at",
}

// List retrieves products with filtering, offset pagination, and sorting.
// TagIDs match products carrying any of the tags.
func (r *productRepository) List(ctx context.Context, filter ProductFilter) ([]*domain.Product, int, error) {
	page := filter.Page.Normalize()

	// Validate sort field to prevent SQL injection
	sortBy, ok := productSortColumns[filter.SortBy]
	if !ok {
		sortBy = "created_at"
	}

	sortOrder := filter.SortOrder
	if sortOrder != SortOrderAsc && sortOrder != SortOrderDesc {
		sortOrder = SortOrderDesc
	}

	conditions := []string{}
	args := []interface{}{}
	argIndex := 1

	if search := strings.TrimSpace(filter.Search); search != "" {
		conditions = append(conditions, fmt.Sprintf("(name ILIKE $%[1]d OR description ILIKE $%[1]d)", argIndex))
		args = append(args, likePattern(search))
		argIndex++
	}

	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argIndex))
		args = append(args, filter.Status)
		argIndex++
	}

	if len(filter.TagIDs) > 0 {
		conditions = append(conditions, fmt.Sprintf("tags && $%d::text[]", argIndex))
		args = append(args, pq.Array(filter.TagIDs))
		argIndex++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	// Count total products
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM products %s", whereClause)
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM products
		%s
		ORDER BY %s %s, id DESC
		LIMIT $%d OFFSET $%d
	`, productColumns, whereClause, sortBy, sortOrder, argIndex, argIndex+1)

	args = append(args, page.Size, page.Offset())

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list products: %w", err)
	}

	products, err := scanProducts(rows)
	if err != nil {
		return nil, 0, err
	}

	return products, total, nil
}

// SetDiscount applies one discount to many products and reports how many
// rows changed.
func (r *productRepository) SetDiscount(ctx context.Context, ids []uuid.UUID, discount int) (int64, error) {
	idStrings := make([]string, 0, len(ids))
	for _, id := range ids {
		idStrings = append(idStrings, id.String())
	}

	result, err := r.db.ExecContext(ctx,
		`UPDATE products SET discount = $1, updated_at = NOW() WHERE id = ANY($2::uuid[])`,
		discount, pq.Array(idStrings),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to apply discount: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return affected, nil
}
