package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"clothing-store/internal/database"
	"clothing-store/internal/domain"

	"github.com/google/uuid"
)

var (
	ErrTagNotFound      = errors.New("tag not found")
	ErrTagAlreadyExists = errors.New("tag already exists in this group")
)

// TagRepository defines the interface for tag data access
type TagRepository interface {
	Create(ctx context.Context, tag *domain.Tag) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context) ([]*domain.Tag, error)
}

type tagRepository struct {
	db *sql.DB
}

func NewTagRepository(db *sql.DB) TagRepository {
	return &tagRepository{db: db}
}

func (r *tagRepository) Create(ctx context.Context, tag *domain.Tag) error {
	query := `INSERT INTO tags (id, name, tag_group, created_at) VALUES ($1, $2, $3, $4)`

	if _, err := r.db.ExecContext(ctx, query, tag.ID, tag.Name, tag.Group, tag.CreatedAt); err != nil {
		if isUniqueViolation(err, "") {
			return ErrTagAlreadyExists
		}
		return fmt.Errorf("failed to create tag: %w", err)
	}
	return nil
}

// Delete removes the tag and strips it from every product carrying it.
func (r *tagRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, `DELETE FROM tags WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("failed to delete tag: %w", err)
		}
		if err := expectOneRow(result, ErrTagNotFound); err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx,
			`UPDATE products SET tags = array_remove(tags, $1::text), updated_at = NOW() WHERE $1::text = ANY(tags)`,
			id.String(),
		); err != nil {
			return fmt.Errorf("failed to detach tag from products: %w", err)
		}
		return nil
	})
}

// List returns all tags ordered by group then name.
func (r *tagRepository) List(ctx context.Context) ([]*domain.Tag, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, tag_group, created_at FROM tags ORDER BY tag_group, name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	defer rows.Close()

	tags := []*domain.Tag{}
	for rows.Next() {
		tag := &domain.Tag{}
		if err := rows.Scan(&tag.ID, &tag.Name, &tag.Group, &tag.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan tag: %w", err)
		}
		tags = append(tags, tag)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tags: %w", err)
	}
	return tags, nil
}
