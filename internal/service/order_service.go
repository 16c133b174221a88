package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"clothing-store/internal/domain"
	"clothing-store/internal/repository"

	"github.com/google/uuid"
)

type OrderItemInput struct {
	ProductID uuid.UUID `json:"productId" validate:"required"`
	Size      string    `json:"size" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required,gt=0"`
}

// PlaceOrderInput is a cash-on-delivery checkout request.
type PlaceOrderInput struct {
	Phone   string           `json:"phone" validate:"required,max=30"`
	Items   []OrderItemInput `json:"items" validate:"required,min=1,dive"`
	Amount  domain.Money     `json:"amount"`
	Address domain.Address   `json:"address"`
}

func (in *PlaceOrderInput) validate() error {
	if err := validate.Struct(in); err != nil {
		return invalidf("phone (at most 30 characters), items, amount and a complete address are required")
	}
	if !in.Amount.IsPositive() {
		return invalidf("amount must be greater than 0")
	}
	return nil
}

type OrderService interface {
	PlaceCOD(ctx context.Context, userID uuid.UUID, in PlaceOrderInput) (*domain.Order, error)
	ListUserOrders(ctx context.Context, userID uuid.UUID) ([]*domain.Order, error)
	ListOrders(ctx context.Context, filter repository.OrderFilter) ([]*domain.Order, int, error)
	UpdateStatus(ctx context.Context, orderID uuid.UUID, status string) (*domain.Order, error)
	UpdatePayment(ctx context.Context, orderID uuid.UUID, payment bool) (*domain.Order, error)
}

type orderService struct {
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
}

func NewOrderService(orderRepo repository.OrderRepository, productRepo repository.ProductRepository) OrderService {
	return &orderService{orderRepo: orderRepo, productRepo: productRepo}
}

// PlaceCOD checks every line item in request order and stops at the first
// unknown product or unavailable size. Names and unit prices are taken from
// the catalog at this moment.
func (s *orderService) PlaceCOD(ctx context.Context, userID uuid.UUID, in PlaceOrderInput) (*domain.Order, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	items := make(domain.OrderItems, 0, len(in.Items))
	for _, item := range in.Items {
		product, err := s.productRepo.FindByID(ctx, item.ProductID)
		if err != nil {
			if errors.Is(err, repository.ErrProductNotFound) {
				return nil, fmt.Errorf("%w: %s", repository.ErrProductNotFound, item.ProductID)
			}
			return nil, fmt.Errorf("failed to load product: %w", err)
		}
		if !product.HasSize(item.Size) {
			return nil, fmt.Errorf("%w: size %s for %s", ErrInvalidSize, item.Size, product.Name)
		}

		items = append(items, domain.OrderItem{
			ProductID: product.ID,
			Name:      product.Name,
			Size:      item.Size,
			Quantity:  item.Quantity,
			Price:     product.FinalPrice(),
		})
	}

	now := time.Now().UTC()
	order := &domain.Order{
		ID:            uuid.Must(uuid.NewV7()),
		UserID:        userID,
		Phone:         strings.TrimSpace(in.Phone),
		Items:         items,
		Amount:        in.Amount,
		Address:       in.Address,
		Status:        domain.OrderStatusPending,
		PaymentMethod: domain.PaymentMethodCOD,
		Payment:       false,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.orderRepo.Place(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to place order: %w", err)
	}

	return order, nil
}

func (s *orderService) ListUserOrders(ctx context.Context, userID uuid.UUID) ([]*domain.Order, error) {
	orders, err := s.orderRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

func (s *orderService) ListOrders(ctx context.Context, filter repository.OrderFilter) ([]*domain.Order, int, error) {
	if filter.Status != "" && !domain.IsValidOrderStatus(filter.Status) {
		return nil, 0, invalidf("invalid status value")
	}

	orders, total, err := s.orderRepo.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, total, nil
}

func (s *orderService) UpdateStatus(ctx context.Context, orderID uuid.UUID, status string) (*domain.Order, error) {
	if !domain.IsValidOrderStatus(status) {
		return nil, invalidf("invalid status value")
	}

	order, err := s.orderRepo.UpdateStatus(ctx, orderID, status)
	if err != nil {
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}
	return order, nil
}

func (s *orderService) UpdatePayment(ctx context.Context, orderID uuid.UUID, payment bool) (*domain.Order, error) {
	order, err := s.orderRepo.UpdatePayment(ctx, orderID, payment)
	if err != nil {
		return nil, fmt.Errorf("failed to update payment: %w", err)
	}
	return order, nil
}
