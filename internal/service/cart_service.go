package service

import (
	"context"
	"fmt"
	"strings"

	"clothing-store/internal/domain"
	"clothing-store/internal/repository"

	"github.com/google/uuid"
)

// CartService validates cart requests before handing them to the
// repository's single-statement updates.
type CartService interface {
	AddToCart(ctx context.Context, userID uuid.UUID, itemID, size string) error
	UpdateCart(ctx context.Context, userID uuid.UUID, itemID, size string, quantity int) error
	GetCart(ctx context.Context, userID uuid.UUID) (domain.Cart, error)
}

type cartService struct {
	cartRepo repository.CartRepository
}

func NewCartService(cartRepo repository.CartRepository) CartService {
	return &cartService{cartRepo: cartRepo}
}

func validateCartKey(itemID, size string) error {
	if strings.TrimSpace(itemID) == "" {
		return invalidf("itemId is required")
	}
	if strings.TrimSpace(size) == "" {
		return invalidf("size is required")
	}
	return nil
}

func (s *cartService) AddToCart(ctx context.Context, userID uuid.UUID, itemID, size string) error {
	if err := validateCartKey(itemID, size); err != nil {
		return err
	}
	if err := s.cartRepo.Increment(ctx, userID, itemID, size); err != nil {
		return fmt.Errorf("failed to add to cart: %w", err)
	}
	return nil
}

// UpdateCart sets the quantity; zero removes the size.
func (s *cartService) UpdateCart(ctx context.Context, userID uuid.UUID, itemID, size string, quantity int) error {
	if err := validateCartKey(itemID, size); err != nil {
		return err
	}
	if quantity < 0 {
		return invalidf("quantity must be a non-negative integer")
	}
	if err := s.cartRepo.SetQuantity(ctx, userID, itemID, size, quantity); err != nil {
		return fmt.Errorf("failed to update cart: %w", err)
	}
	return nil
}

func (s *cartService) GetCart(ctx context.Context, userID uuid.UUID) (domain.Cart, error) {
	cart, err := s.cartRepo.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}
	return cart, nil
}
