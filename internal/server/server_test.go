package server

import (
	"context"
	"testing"

	"clothing-store/internal/config"
	"clothing-store/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewImageStore_Drivers(t *testing.T) {
	ctx := context.Background()
	logger := zap.NewNop()

	store, err := newImageStore(ctx, config.StorageConfig{Driver: config.StorageDriverMemory}, logger)
	require.NoError(t, err)
	assert.IsType(t, &storage.MemoryStore{}, store)

	_, err = newImageStore(ctx, config.StorageConfig{Driver: config.StorageDriverMinio}, logger)
	assert.ErrorContains(t, err, "STORAGE_ENDPOINT")

	_, err = newImageStore(ctx, config.StorageConfig{Driver: "s3"}, logger)
	assert.ErrorContains(t, err, "unknown storage driver")
}
