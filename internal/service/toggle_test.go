package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nmorozova/platefeed/backend/internal/models"
	"github.com/nmorozova/platefeed/backend/internal/service"
	"github.com/nmorozova/platefeed/backend/internal/testhelpers"
)

func TestFavoriteToggle(t *testing.T) {
	ctx := context.Background()
	db := testhelpers.SetupTestDB(t)
	toggles := service.NewToggleService(db)

	author := testhelpers.CreateTestUser(t, db, "author")
	fan := testhelpers.CreateTestUser(t, db, "fan")
	recipe := testhelpers.CreateTestRecipe(t, db, author, "Pancakes", nil, 0, nil)

	toggle := toggles.Favorite(recipe.ID)

	t.Run("add then duplicate add", func(t *testing.T) {
		require.NoError(t, toggle.Add(ctx, fan.ID))
		assert.ErrorIs(t, toggle.Add(ctx, fan.ID), service.ErrAlreadyExists)

		var count int64
		db.Model(&models.Favorite{}).Count(&count)
		assert.Equal(t, int64(1), count)
	})

	t.Run("remove then missing remove", func(t *testing.T) {
		require.NoError(t, toggle.Remove(ctx, fan.ID))
		assert.ErrorIs(t, toggle.Remove(ctx, fan.ID), service.ErrNotFound)

		var count int64
		db.Model(&models.Favorite{}).Count(&count)
		assert.Zero(t, count)
	})
}

func TestCartToggle(t *testing.T) {
	ctx := context.Background()
	db := testhelpers.SetupTestDB(t)
	toggles := service.NewToggleService(db)

	author := testhelpers.CreateTestUser(t, db, "author")
	fan := testhelpers.CreateTestUser(t, db, "fan")
	recipe := testhelpers.CreateTestRecipe(t, db, author, "Pancakes", nil, 0, nil)

	toggle := toggles.Cart(recipe.ID)

	require.NoError(t, toggle.Add(ctx, fan.ID))
	assert.ErrorIs(t, toggle.Add(ctx, fan.ID), service.ErrAlreadyExists)

	// Favorites and cart are independent memberships.
	require.NoError(t, toggles.Favorite(recipe.ID).Add(ctx, fan.ID))

	var carts, favs int64
	db.Model(&models.ShoppingCartItem{}).Count(&carts)
	db.Model(&models.Favorite{}).Count(&favs)
	assert.Equal(t, int64(1), carts)
	assert.Equal(t, int64(1), favs)

	require.NoError(t, toggle.Remove(ctx, fan.ID))
	assert.ErrorIs(t, toggle.Remove(ctx, fan.ID), service.ErrNotFound)
}

func TestSubscriptionToggle(t *testing.T) {
	ctx := context.Background()
	db := testhelpers.SetupTestDB(t)
	toggles := service.NewToggleService(db)

	author := testhelpers.CreateTestUser(t, db, "author")
	fan := testhelpers.CreateTestUser(t, db, "fan")

	t.Run("self subscription rejected before lookup", func(t *testing.T) {
		err := toggles.Subscription(fan.ID).Add(ctx, fan.ID)
		assert.ErrorIs(t, err, service.ErrSelfSubscription)

		err = toggles.Subscription(fan.ID).Remove(ctx, fan.ID)
		assert.ErrorIs(t, err, service.ErrSelfSubscription)
	})

	t.Run("follow and unfollow", func(t *testing.T) {
		toggle := toggles.Subscription(author.ID)

		require.NoError(t, toggle.Add(ctx, fan.ID))
		assert.ErrorIs(t, toggle.Add(ctx, fan.ID), service.ErrAlreadyExists)

		var count int64
		db.Model(&models.Subscription{}).Count(&count)
		assert.Equal(t, int64(1), count)

		require.NoError(t, toggle.Remove(ctx, fan.ID))
		assert.ErrorIs(t, toggle.Remove(ctx, fan.ID), service.ErrNotFound)
	})

	t.Run("subscription is directional", func(t *testing.T) {
		require.NoError(t, toggles.Subscription(author.ID).Add(ctx, fan.ID))

		// The reverse direction is a distinct row.
		require.NoError(t, toggles.Subscription(fan.ID).Add(ctx, author.ID))

		var count int64
		db.Model(&models.Subscription{}).Count(&count)
		assert.Equal(t, int64(2), count)
	})
}
