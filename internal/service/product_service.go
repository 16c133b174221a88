package service

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"clothing-store/internal/domain"
	"clothing-store/internal/repository"
	"clothing-store/internal/storage"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	DefaultListLimit = 10
	MaxListLimit     = 100
	MaxProductImages = 4
)

// CreateProductInput carries an admin's new catalog entry.
type CreateProductInput struct {
	Name        string
	Description string
	Price       domain.Money
	Discount    int
	Quantity    int
	Status      string
	Sizes       []string
	Tags        []string
	Images      []storage.File
}

func (in *CreateProductInput) validate() error {
	in.Name = strings.TrimSpace(in.Name)
	if n := utf8.RuneCountInString(in.Name); n < 2 || n > 100 {
		return invalidf("name must be between 2 and 100 characters")
	}
	if strings.TrimSpace(in.Description) == "" {
		return invalidf("description is required")
	}
	if !in.Price.IsPositive() {
		return invalidf("price must be greater than 0")
	}
	if in.Discount < 0 || in.Discount > 100 {
		return invalidf("discount must be between 0 and 100")
	}
	if in.Quantity < 0 {
		return invalidf("quantity must not be negative")
	}
	if in.Status == "" {
		in.Status = domain.ProductStatusActive
	}
	if in.Status != domain.ProductStatusActive && in.Status != domain.ProductStatusInactive {
		return invalidf("status must be active or inactive")
	}
	if len(in.Sizes) == 0 {
		return invalidf("at least one size is required")
	}
	if len(in.Tags) == 0 {
		return invalidf("at least one tag is required")
	}
	if len(in.Images) == 0 {
		return invalidf("at least one image is required")
	}
	if len(in.Images) > MaxProductImages {
		return invalidf("at most %d images are allowed", MaxProductImages)
	}
	return nil
}

// ProductPage is one storefront page. NextCursor is the id to pass as
// lastId for the following page.
type ProductPage struct {
	Products   []*domain.Product `json:"products"`
	NextCursor *uuid.UUID        `json:"nextCursor"`
	HasMore    bool              `json:"hasMore"`
}

type ProductService interface {
	Create(ctx context.Context, in CreateProductInput) (*domain.Product, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ListStorefront(ctx context.Context, lastID *uuid.UUID, limit int) (*ProductPage, error)
	ListAdmin(ctx context.Context, filter repository.ProductFilter) ([]*domain.Product, int, error)
	BulkDiscount(ctx context.Context, ids []uuid.UUID, discount int) (int64, error)
}

type productService struct {
	productRepo repository.ProductRepository
	images      storage.ImageStore
	logger      *zap.Logger
}

func NewProductService(productRepo repository.ProductRepository, images storage.ImageStore, logger *zap.Logger) ProductService {
	return &productService{productRepo: productRepo, images: images, logger: logger}
}

// Create uploads the images and stores the product. Uploaded images are
// removed again when the insert fails.
func (s *productService) Create(ctx context.Context, in CreateProductInput) (*domain.Product, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	images, err := storage.UploadAll(ctx, s.images, storage.FolderProducts, in.Images, s.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to upload product images: %w", err)
	}

	now := time.Now().UTC()
	product := &domain.Product{
		ID:          uuid.Must(uuid.NewV7()),
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		Discount:    in.Discount,
		Quantity:    in.Quantity,
		Status:      in.Status,
		Sizes:       in.Sizes,
		Images:      images,
		Tags:        in.Tags,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		s.discardImages(ctx, images.PublicIDs())
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	return product, nil
}

func (s *productService) Get(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return product, nil
}

// Delete removes the product and then its stored images.
func (s *productService) Delete(ctx context.Context, id uuid.UUID) error {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get product: %w", err)
	}

	if err := s.productRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	s.discardImages(ctx, product.Images.PublicIDs())
	return nil
}

func (s *productService) discardImages(ctx context.Context, publicIDs []string) {
	if len(publicIDs) == 0 {
		return
	}
	if err := storage.DeleteAll(context.WithoutCancel(ctx), s.images, publicIDs); err != nil {
		s.logger.Warn("Failed to delete product images",
			zap.Strings("public_ids", publicIDs),
			zap.Error(err),
		)
	}
}

// ListStorefront pages active products newest first. One extra row is
// fetched to tell whether another page exists.
func (s *productService) ListStorefront(ctx context.Context, lastID *uuid.UUID, limit int) (*ProductPage, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}

	products, err := s.productRepo.ListBefore(ctx, lastID, limit+1)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	page := &ProductPage{Products: products}
	if len(products) > limit {
		page.Products = products[:limit]
		page.HasMore = true
	}
	if n := len(page.Products); n > 0 {
		cursor := page.Products[n-1].ID
		page.NextCursor = &cursor
	}

	return page, nil
}

func (s *productService) ListAdmin(ctx context.Context, filter repository.ProductFilter) ([]*domain.Product, int, error) {
	products, total, err := s.productRepo.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list products: %w", err)
	}
	return products, total, nil
}

func (s *productService) BulkDiscount(ctx context.Context, ids []uuid.UUID, discount int) (int64, error) {
	if len(ids) == 0 {
		return 0, invalidf("productIds must not be empty")
	}
	if discount < 0 || discount > 100 {
		return 0, invalidf("discount must be between 0 and 100")
	}

	affected, err := s.productRepo.SetDiscount(ctx, ids, discount)
	if err != nil {
		return 0, fmt.Errorf("failed to apply discount: %w", err)
	}
	return affected, nil
}
