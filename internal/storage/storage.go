package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"clothing-store/internal/domain"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	FolderProducts = "products"
	FolderReviews  = "reviews"
)

var ErrNotFound = errors.New("object not found")

// File is an uploaded image waiting to be stored.
type File struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// ImageStore keeps product and review images. The PublicID of a stored
// image is the key Delete expects.
type ImageStore interface {
	Upload(ctx context.Context, folder string, file File) (domain.Image, error)
	Delete(ctx context.Context, publicID string) error
}

// UploadAll stores files concurrently and returns the images in input
// order. When any upload fails the ones that succeeded are deleted again.
func UploadAll(ctx context.Context, store ImageStore, folder string, files []File, logger *zap.Logger) (domain.Images, error) {
	images := make(domain.Images, len(files))
	uploaded := make([]bool, len(files))

	g, gctx := errgroup.WithContext(ctx)
	for i, file := range files {
		g.Go(func() error {
			img, err := store.Upload(gctx, folder, file)
			if err != nil {
				return fmt.Errorf("failed to upload %s: %w", file.Filename, err)
			}
			images[i] = img
			uploaded[i] = true
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		var done domain.Images
		for i, ok := range uploaded {
			if ok {
				done = append(done, images[i])
			}
		}
		if derr := DeleteAll(context.WithoutCancel(ctx), store, done.PublicIDs()); derr != nil {
			logger.Warn("Failed to remove partial upload",
				zap.Strings("public_ids", done.PublicIDs()),
				zap.Error(derr),
			)
		}
		return nil, err
	}

	return images, nil
}

// DeleteAll removes objects concurrently and returns the first error.
// Every delete is attempted even when one fails.
func DeleteAll(ctx context.Context, store ImageStore, publicIDs []string) error {
	var g errgroup.Group
	for _, id := range publicIDs {
		g.Go(func() error {
			return store.Delete(ctx, id)
		})
	}
	return g.Wait()
}

// objectName builds a collision-free key that keeps the file extension.
func objectName(folder, filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	return path.Join(folder, uuid.NewString()+ext)
}
