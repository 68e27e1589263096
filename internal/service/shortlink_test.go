package service_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nmorozova/platefeed/backend/internal/service"
	"github.com/nmorozova/platefeed/backend/internal/testhelpers"
)

func TestShortLinks(t *testing.T) {
	ctx := context.Background()
	client := testhelpers.SetupTestRedis(t)
	svc := service.NewShortLinkService(client, "http://localhost:8080")

	t.Run("shorten and resolve round trip", func(t *testing.T) {
		short, err := svc.Shorten(ctx, "/api/recipes/abc")
		require.NoError(t, err)
		require.True(t, strings.HasPrefix(short, "http://localhost:8080/s/"))

		code := strings.TrimPrefix(short, "http://localhost:8080/s/")
		target, err := svc.Resolve(ctx, code)
		require.NoError(t, err)
		assert.Equal(t, "/api/recipes/abc", target)
	})

	t.Run("same target reuses the code", func(t *testing.T) {
		first, err := svc.Shorten(ctx, "/api/recipes/stable")
		require.NoError(t, err)
		second, err := svc.Shorten(ctx, "/api/recipes/stable")
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})

	t.Run("distinct targets get distinct codes", func(t *testing.T) {
		first, err := svc.Shorten(ctx, "/api/recipes/one")
		require.NoError(t, err)
		second, err := svc.Shorten(ctx, "/api/recipes/two")
		require.NoError(t, err)
		assert.NotEqual(t, first, second)
	})

	t.Run("unknown code", func(t *testing.T) {
		_, err := svc.Resolve(ctx, "nope42")
		assert.ErrorIs(t, err, service.ErrNotFound)
	})
}
