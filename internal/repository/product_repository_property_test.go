package repository

import (
	"context"
	"testing"

	"clothing-store/internal/domain"

	"github.com/google/uuid"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProperty_ProductCreationPreservesAttributes(t *testing.T) {
	repo := NewProductRepository(testDB)

	properties := gopter.NewProperties(nil)

	properties.Property("creating and retrieving a product preserves all attributes", prop.ForAll(
		func(name string, cents int64, discount int, quantity int, sizes []string) bool {
			ctx := context.Background()
			price := decimal.New(cents, -2)

			product := createTestProduct(t, func(p *domain.Product) {
				p.Name = name
				p.Price = price
				p.Discount = discount
				p.Quantity = quantity
				p.Sizes = sizes
				p.Tags = []string{uuid.NewString()}
			})

			got, err := repo.FindByID(ctx, product.ID)
			if err != nil {
				t.Logf("FAIL: Failed to retrieve product: %v", err)
				return false
			}

			if got.Name != name || !got.Price.Equal(price) || got.Discount != discount || got.Quantity != quantity {
				t.Logf("FAIL: scalar mismatch: got %+v", got)
				return false
			}
			if len(got.Sizes) != len(sizes) {
				t.Logf("FAIL: sizes mismatch: %v vs %v", got.Sizes, sizes)
				return false
			}
			for i := range sizes {
				if got.Sizes[i] != sizes[i] {
					return false
				}
			}
			if len(got.Images) != 1 || got.Images[0].PublicID != "products/a" {
				t.Logf("FAIL: images mismatch: %v", got.Images)
				return false
			}
			if got.RatingCount != 0 || got.Sold != 0 {
				return false
			}

			return repo.Delete(ctx, product.ID) == nil
		},
		gen.RegexMatch(`[A-Z][a-z]{2,30}`),
		gen.Int64Range(1, 10_000_000),
		gen.IntRange(0, 100),
		gen.IntRange(0, 1000),
		gen.SliceOf(gen.OneConstOf("XS", "S", "M", "L", "XL")),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestProperty_KeysetPagesCoverActiveProductsOnce(t *testing.T) {
	resetTables(t)
	repo := NewProductRepository(testDB)
	ctx := context.Background()

	var active []uuid.UUID
	for i := 0; i < 13; i++ {
		p := createTestProduct(t, func(p *domain.Product) {
			if i%4 == 3 {
				p.Status = domain.ProductStatusInactive
			}
		})
		if p.Status == domain.ProductStatusActive {
			active = append(active, p.ID)
		}
	}

	properties := gopter.NewProperties(nil)

	properties.Property("walking pages yields every active product once, newest first", prop.ForAll(
		func(limit int) bool {
			var seen []uuid.UUID
			var cursor *uuid.UUID

			for {
				page, err := repo.ListBefore(ctx, cursor, limit)
				if err != nil {
					t.Logf("FAIL: list: %v", err)
					return false
				}
				for _, p := range page {
					seen = append(seen, p.ID)
				}
				if len(page) < limit {
					break
				}
				last := page[len(page)-1].ID
				cursor = &last
			}

			if len(seen) != len(active) {
				t.Logf("FAIL: saw %d products, want %d", len(seen), len(active))
				return false
			}
			for i, id := range seen {
				if id != active[len(active)-1-i] {
					t.Logf("FAIL: position %d out of order", i)
					return false
				}
			}
			return true
		},
		gen.IntRange(1, 12),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestProductRepository_ListFilters(t *testing.T) {
	resetTables(t)
	repo := NewProductRepository(testDB)
	ctx := context.Background()

	summer, winter := uuid.NewString(), uuid.NewString()

	createTestProduct(t, func(p *domain.Product) {
		p.Name = "Summer Dress"
		p.Price = decimal.NewFromInt(50)
		p.Tags = []string{summer}
	})
	createTestProduct(t, func(p *domain.Product) {
		p.Name = "Wool Coat"
		p.Price = decimal.NewFromInt(300)
		p.Tags = []string{winter}
		p.Status = domain.ProductStatusInactive
	})
	createTestProduct(t, func(p *domain.Product) {
		p.Name = "100% Cotton Tee"
		p.Price = decimal.NewFromInt(20)
		p.Tags = []string{summer, winter}
	})

	t.Run("search escapes wildcards", func(t *testing.T) {
		list, total, err := repo.List(ctx, ProductFilter{Search: "100%"})
		require.NoError(t, err)
		assert.Equal(t, 1, total)
		assert.Equal(t, "100% Cotton Tee", list[0].Name)
	})

	t.Run("status", func(t *testing.T) {
		_, total, err := repo.List(ctx, ProductFilter{Status: domain.ProductStatusInactive})
		require.NoError(t, err)
		assert.Equal(t, 1, total)
	})

	t.Run("tags match any", func(t *testing.T) {
		_, total, err := repo.List(ctx, ProductFilter{TagIDs: []string{winter}})
		require.NoError(t, err)
		assert.Equal(t, 2, total)

		_, total, err = repo.List(ctx, ProductFilter{TagIDs: []string{summer, winter}})
		require.NoError(t, err)
		assert.Equal(t, 3, total)
	})

	t.Run("sort by price and paginate", func(t *testing.T) {
		list, total, err := repo.List(ctx, ProductFilter{
			Page:      Page{Number: 2, Size: 2},
			SortBy:    "price",
			SortOrder: SortOrderAsc,
		})
		require.NoError(t, err)
		assert.Equal(t, 3, total)
		require.Len(t, list, 1)
		assert.Equal(t, "Wool Coat", list[0].Name)
	})

	t.Run("unknown sort falls back", func(t *testing.T) {
		list, _, err := repo.List(ctx, ProductFilter{SortBy: "price; DROP TABLE products"})
		require.NoError(t, err)
		assert.Len(t, list, 3)
	})
}

func TestProductRepository_SetDiscount(t *testing.T) {
	repo := NewProductRepository(testDB)
	ctx := context.Background()

	a := createTestProduct(t, nil)
	b := createTestProduct(t, nil)

	affected, err := repo.SetDiscount(ctx, []uuid.UUID{a.ID, b.ID, uuid.New()}, 30)
	require.NoError(t, err)
	assert.Equal(t, int64(2), affected)

	got, err := repo.FindByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, 30, got.Discount)
}

func TestProductRepository_DeleteMissing(t *testing.T) {
	repo := NewProductRepository(testDB)

	err := repo.Delete(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrProductNotFound)

	_, err = repo.FindByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrProductNotFound)
}
