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

type TagService interface {
	Create(ctx context.Context, name, group string) (*domain.Tag, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ListByGroup(ctx context.Context) ([]domain.TagGroup, error)
}

type tagService struct {
	tagRepo repository.TagRepository
}

func NewTagService(tagRepo repository.TagRepository) TagService {
	return &tagService{tagRepo: tagRepo}
}

func (s *tagService) Create(ctx context.Context, name, group string) (*domain.Tag, error) {
	name = strings.TrimSpace(name)
	group = strings.TrimSpace(group)
	if name == "" || group == "" {
		return nil, invalidf("name and group are required")
	}

	tag := &domain.Tag{
		ID:        uuid.Must(uuid.NewV7()),
		Name:      name,
		Group:     group,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.tagRepo.Create(ctx, tag); err != nil {
		return nil, fmt.Errorf("failed to create tag: %w", err)
	}
	return tag, nil
}

func (s *tagService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.tagRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete tag: %w", err)
	}
	return nil
}

// ListByGroup buckets tags by group, keeping the repository's ordering.
func (s *tagService) ListByGroup(ctx context.Context) ([]domain.TagGroup, error) {
	tags, err := s.tagRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	return GroupTags(tags), nil
}

// GroupTags expects tags sorted by group.
func GroupTags(tags []*domain.Tag) []domain.TagGroup {
	groups := []domain.TagGroup{}
	for _, tag := range tags {
		if n := len(groups); n == 0 || groups[n-1].Group != tag.Group {
			groups = append(groups, domain.TagGroup{Group: tag.Group, Tags: []domain.Tag{}})
		}
		last := &groups[len(groups)-1]
		last.Tags = append(last.Tags, *tag)
	}
	return groups
}
