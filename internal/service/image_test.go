package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nmorozova/platefeed/backend/internal/service"
)

func TestStoreDataURL(t *testing.T) {
	ctx := context.Background()
	svc := service.NewImageService(nil)

	t.Run("plain URLs pass through unchanged", func(t *testing.T) {
		url, err := svc.StoreDataURL(ctx, "https://cdn.example.com/pic.png", "recipes")
		require.NoError(t, err)
		assert.Equal(t, "https://cdn.example.com/pic.png", url)
	})

	t.Run("malformed data URL", func(t *testing.T) {
		_, err := svc.StoreDataURL(ctx, "data:image/png,no-base64-marker", "recipes")
		require.Error(t, err)

		v, ok := service.AsValidationError(err)
		require.True(t, ok)
		assert.Contains(t, v.Fields, "image")
	})

	t.Run("invalid base64 payload", func(t *testing.T) {
		_, err := svc.StoreDataURL(ctx, "data:image/png;base64,!!!not-base64!!!", "recipes")
		require.Error(t, err)

		v, ok := service.AsValidationError(err)
		require.True(t, ok)
		assert.Contains(t, v.Fields, "image")
	})
}
