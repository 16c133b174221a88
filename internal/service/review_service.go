package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"clothing-store/internal/domain"
	"clothing-store/internal/repository"
	"clothing-store/internal/storage"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type AddReviewInput struct {
	ProductID uuid.UUID
	OrderID   uuid.UUID
	Rating    int
	Comment   string
	Images    []storage.File
}

type UpdateReviewInput struct {
	ReviewID uuid.UUID
	Rating   int
	Comment  string
	// KeptImages lists the public ids of existing images to keep. Others
	// are deleted.
	KeptImages []string
	Images     []storage.File
}

func validateReviewBody(rating int, comment string) error {
	if rating < 1 || rating > 5 {
		return invalidf("rating must be between 1 and 5")
	}
	if strings.TrimSpace(comment) == "" {
		return invalidf("comment is required")
	}
	return nil
}

type ReviewService interface {
	Add(ctx context.Context, userID uuid.UUID, in AddReviewInput) (*domain.Review, error)
	Update(ctx context.Context, userID uuid.UUID, in UpdateReviewInput) (*domain.Review, error)
	GetUserReview(ctx context.Context, userID, productID, orderID uuid.UUID) (*domain.Review, error)
	ListForProduct(ctx context.Context, productID uuid.UUID, includeHidden bool) ([]*domain.Review, error)
	Reply(ctx context.Context, reviewID uuid.UUID, comment string) (*domain.Review, error)
	RemoveReply(ctx context.Context, reviewID uuid.UUID) (*domain.Review, error)
	ToggleHidden(ctx context.Context, reviewID uuid.UUID) (*domain.Review, error)
}

type reviewService struct {
	reviewRepo repository.ReviewRepository
	orderRepo  repository.OrderRepository
	userRepo   repository.UserRepository
	images     storage.ImageStore
	logger     *zap.Logger
}

func NewReviewService(
	reviewRepo repository.ReviewRepository,
	orderRepo repository.OrderRepository,
	userRepo repository.UserRepository,
	images storage.ImageStore,
	logger *zap.Logger,
) ReviewService {
	return &reviewService{
		reviewRepo: reviewRepo,
		orderRepo:  orderRepo,
		userRepo:   userRepo,
		images:     images,
		logger:     logger,
	}
}

// Add records a buyer's review of a product from one of their orders.
// Duplicates are rejected before any image is uploaded.
func (s *reviewService) Add(ctx context.Context, userID uuid.UUID, in AddReviewInput) (*domain.Review, error) {
	if err := validateReviewBody(in.Rating, in.Comment); err != nil {
		return nil, err
	}
	if len(in.Images) > domain.MaxReviewImages {
		return nil, invalidf("at most %d images are allowed", domain.MaxReviewImages)
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if !user.CanComment {
		return nil, ErrCommentingDisabled
	}

	order, err := s.orderRepo.FindByID(ctx, in.OrderID)
	if err != nil {
		return nil, fmt.Errorf("failed to load order: %w", err)
	}
	if order.UserID != userID {
		return nil, ErrNotOrderOwner
	}
	if !order.Items.Contains(in.ProductID) {
		return nil, ErrProductNotInOrder
	}

	_, err = s.reviewRepo.FindByKey(ctx, userID, in.ProductID, in.OrderID)
	if err == nil {
		return nil, repository.ErrDuplicateReview
	}
	if !errors.Is(err, repository.ErrReviewNotFound) {
		return nil, fmt.Errorf("failed to check existing review: %w", err)
	}

	images, err := storage.UploadAll(ctx, s.images, storage.FolderReviews, in.Images, s.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to upload review images: %w", err)
	}

	now := time.Now().UTC()
	review := &domain.Review{
		ID:        uuid.Must(uuid.NewV7()),
		ProductID: in.ProductID,
		UserID:    userID,
		OrderID:   in.OrderID,
		Rating:    in.Rating,
		Comment:   strings.TrimSpace(in.Comment),
		Images:    images,
		CreatedAt: now,
		UpdatedAt: now,
		UserName:  user.Name,
	}

	if err := s.reviewRepo.Create(ctx, review); err != nil {
		s.discardImages(ctx, images.PublicIDs())
		if errors.Is(err, repository.ErrDuplicateReview) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create review: %w", err)
	}

	return review, nil
}

// Update rewrites the author's review. Images not listed in KeptImages are
// deleted from storage once the review is saved.
func (s *reviewService) Update(ctx context.Context, userID uuid.UUID, in UpdateReviewInput) (*domain.Review, error) {
	if err := validateReviewBody(in.Rating, in.Comment); err != nil {
		return nil, err
	}

	review, err := s.reviewRepo.FindByID(ctx, in.ReviewID)
	if err != nil {
		return nil, fmt.Errorf("failed to load review: %w", err)
	}
	if review.UserID != userID {
		return nil, repository.ErrReviewNotFound
	}

	keep := make(map[string]bool, len(in.KeptImages))
	for _, id := range in.KeptImages {
		keep[id] = true
	}

	var kept, removed domain.Images
	for _, img := range review.Images {
		if keep[img.PublicID] {
			kept = append(kept, img)
		} else {
			removed = append(removed, img)
		}
	}

	if len(kept)+len(in.Images) > domain.MaxReviewImages {
		return nil, invalidf("at most %d images are allowed", domain.MaxReviewImages)
	}

	added, err := storage.UploadAll(ctx, s.images, storage.FolderReviews, in.Images, s.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to upload review images: %w", err)
	}

	review.Rating = in.Rating
	review.Comment = strings.TrimSpace(in.Comment)
	review.Images = append(append(domain.Images{}, kept...), added...)
	review.UpdatedAt = time.Now().UTC()

	if err := s.reviewRepo.Update(ctx, review); err != nil {
		s.discardImages(ctx, added.PublicIDs())
		return nil, fmt.Errorf("failed to update review: %w", err)
	}

	s.discardImages(ctx, removed.PublicIDs())
	return review, nil
}

func (s *reviewService) discardImages(ctx context.Context, publicIDs []string) {
	if len(publicIDs) == 0 {
		return
	}
	if err := storage.DeleteAll(context.WithoutCancel(ctx), s.images, publicIDs); err != nil {
		s.logger.Warn("Failed to delete review images",
			zap.Strings("public_ids", publicIDs),
			zap.Error(err),
		)
	}
}

func (s *reviewService) GetUserReview(ctx context.Context, userID, productID, orderID uuid.UUID) (*domain.Review, error) {
	review, err := s.reviewRepo.FindByKey(ctx, userID, productID, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to get review: %w", err)
	}
	return review, nil
}

func (s *reviewService) ListForProduct(ctx context.Context, productID uuid.UUID, includeHidden bool) ([]*domain.Review, error) {
	reviews, err := s.reviewRepo.ListByProduct(ctx, productID, includeHidden)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	return reviews, nil
}

// Reply replaces any previous admin reply.
func (s *reviewService) Reply(ctx context.Context, reviewID uuid.UUID, comment string) (*domain.Review, error) {
	comment = strings.TrimSpace(comment)
	if comment == "" {
		return nil, invalidf("reply comment is required")
	}

	review, err := s.reviewRepo.SetReply(ctx, reviewID, &domain.Reply{Comment: comment, CreatedAt: time.Now().UTC()})
	if err != nil {
		return nil, fmt.Errorf("failed to reply to review: %w", err)
	}
	return review, nil
}

func (s *reviewService) RemoveReply(ctx context.Context, reviewID uuid.UUID) (*domain.Review, error) {
	review, err := s.reviewRepo.SetReply(ctx, reviewID, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to remove reply: %w", err)
	}
	return review, nil
}

func (s *reviewService) ToggleHidden(ctx context.Context, reviewID uuid.UUID) (*domain.Review, error) {
	review, err := s.reviewRepo.ToggleHidden(ctx, reviewID)
	if err != nil {
		return nil, fmt.Errorf("failed to toggle review visibility: %w", err)
	}
	return review, nil
}
