package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nmorozova/platefeed/backend/internal/models"
)

// RelationToggle is the shared contract of the three user-scoped join-row
// toggles. Add fails with ErrAlreadyExists when the row is present, Remove
// fails with ErrNotFound when it is not; both are safe to retry with the
// same intent. The existence pre-checks only produce friendlier errors;
// under a racing add the composite unique index is the actual guarantee,
// and its violation is reported as ErrAlreadyExists too.
type RelationToggle interface {
	Add(ctx context.Context, actor uuid.UUID) error
	Remove(ctx context.Context, actor uuid.UUID) error
}

// ToggleService builds the concrete toggle variants. Keeping them a closed
// set keeps per-kind rules (the self-subscription check) type-checked
// instead of hidden behind a generic model handle.
type ToggleService struct {
	db *gorm.DB
}

func NewToggleService(db *gorm.DB) *ToggleService {
	return &ToggleService{db: db}
}

func (s *ToggleService) Favorite(recipeID uuid.UUID) RelationToggle {
	return favoriteToggle{db: s.db, recipeID: recipeID}
}

func (s *ToggleService) Cart(recipeID uuid.UUID) RelationToggle {
	return cartToggle{db: s.db, recipeID: recipeID}
}

func (s *ToggleService) Subscription(targetID uuid.UUID) RelationToggle {
	return subscriptionToggle{db: s.db, targetID: targetID}
}

type favoriteToggle struct {
	db       *gorm.DB
	recipeID uuid.UUID
}

func (t favoriteToggle) Add(ctx context.Context, actor uuid.UUID) error {
	return addRow(ctx, t.db,
		t.db.Model(&models.Favorite{}).Where("user_id = ? AND recipe_id = ?", actor, t.recipeID),
		&models.Favorite{UserID: actor, RecipeID: t.recipeID})
}

func (t favoriteToggle) Remove(ctx context.Context, actor uuid.UUID) error {
	return removeRow(t.db.WithContext(ctx).
		Where("user_id = ? AND recipe_id = ?", actor, t.recipeID).
		Delete(&models.Favorite{}))
}

type cartToggle struct {
	db       *gorm.DB
	recipeID uuid.UUID
}

func (t cartToggle) Add(ctx context.Context, actor uuid.UUID) error {
	return addRow(ctx, t.db,
		t.db.Model(&models.ShoppingCartItem{}).Where("user_id = ? AND recipe_id = ?", actor, t.recipeID),
		&models.ShoppingCartItem{UserID: actor, RecipeID: t.recipeID})
}

func (t cartToggle) Remove(ctx context.Context, actor uuid.UUID) error {
	return removeRow(t.db.WithContext(ctx).
		Where("user_id = ? AND recipe_id = ?", actor, t.recipeID).
		Delete(&models.ShoppingCartItem{}))
}

type subscriptionToggle struct {
	db       *gorm.DB
	targetID uuid.UUID
}

func (t subscriptionToggle) Add(ctx context.Context, actor uuid.UUID) error {
	// Checked before any lookup.
	if actor == t.targetID {
		return ErrSelfSubscription
	}
	return addRow(ctx, t.db,
		t.db.Model(&models.Subscription{}).Where("user_id = ? AND subscribed_to_id = ?", actor, t.targetID),
		&models.Subscription{UserID: actor, SubscribedToID: t.targetID})
}

func (t subscriptionToggle) Remove(ctx context.Context, actor uuid.UUID) error {
	if actor == t.targetID {
		return ErrSelfSubscription
	}
	return removeRow(t.db.WithContext(ctx).
		Where("user_id = ? AND subscribed_to_id = ?", actor, t.targetID).
		Delete(&models.Subscription{}))
}

func addRow(ctx context.Context, db *gorm.DB, existing *gorm.DB, row interface{}) error {
	var count int64
	if err := existing.WithContext(ctx).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrAlreadyExists
	}

	if err := db.WithContext(ctx).Create(row).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrAlreadyExists
		}
		return err
	}
	return nil
}

func removeRow(result *gorm.DB) error {
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
