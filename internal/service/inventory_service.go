package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"clothing-store/internal/domain"
	"clothing-store/internal/repository"

	"github.com/google/uuid"
)

type CreateInventoryLogInput struct {
	Type      string                 `json:"type" validate:"required,oneof=IMPORT EXPORT"`
	Items     []domain.InventoryItem `json:"items" validate:"required,min=1"`
	CreatedBy string                 `json:"createdBy" validate:"required,max=100"`
}

func (in *CreateInventoryLogInput) validate() error {
	if err := validate.Struct(in); err != nil {
		return invalidf("type (IMPORT or EXPORT), items and createdBy (at most 100 characters) are required")
	}
	for _, item := range in.Items {
		if item.ProductID == uuid.Nil {
			return invalidf("every item needs a productId")
		}
		if item.Quantity <= 0 {
			return invalidf("item quantities must be positive")
		}
	}
	return nil
}

type InventoryService interface {
	Create(ctx context.Context, in CreateInventoryLogInput) (*domain.InventoryLog, error)
	List(ctx context.Context, filter repository.InventoryLogFilter) ([]*domain.InventoryLog, int, error)
}

type inventoryService struct {
	logRepo repository.InventoryLogRepository
}

func NewInventoryService(logRepo repository.InventoryLogRepository) InventoryService {
	return &inventoryService{logRepo: logRepo}
}

// Create appends a ledger entry and moves stock by it in one step.
func (s *inventoryService) Create(ctx context.Context, in CreateInventoryLogInput) (*domain.InventoryLog, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	items := make(domain.InventoryItems, 0, len(in.Items))
	for _, item := range in.Items {
		items = append(items, domain.InventoryItem{ProductID: item.ProductID, Quantity: item.Quantity})
	}

	log := &domain.InventoryLog{
		ID:        uuid.Must(uuid.NewV7()),
		Type:      in.Type,
		Items:     items,
		CreatedBy: strings.TrimSpace(in.CreatedBy),
		CreatedAt: time.Now().UTC(),
	}

	if err := s.logRepo.CreateAndApply(ctx, log); err != nil {
		return nil, fmt.Errorf("failed to create inventory log: %w", err)
	}
	return log, nil
}

// List treats type "all" as no type filter.
func (s *inventoryService) List(ctx context.Context, filter repository.InventoryLogFilter) ([]*domain.InventoryLog, int, error) {
	switch filter.Type {
	case "", domain.InventoryImport, domain.InventoryExport:
	case "all":
		filter.Type = ""
	default:
		return nil, 0, invalidf("type must be IMPORT or EXPORT")
	}

	logs, total, err := s.logRepo.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list inventory logs: %w", err)
	}
	return logs, total, nil
}
