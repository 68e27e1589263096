package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nmorozova/platefeed/backend/internal/models"
)

// ShoppingListService aggregates ingredient amounts across every recipe in
// a user's cart.
type ShoppingListService struct {
	db *gorm.DB
}

func NewShoppingListService(db *gorm.DB) *ShoppingListService {
	return &ShoppingListService{db: db}
}

// ShoppingListRow is one aggregated line of the report.
type ShoppingListRow struct {
	IngredientID    uuid.UUID `json:"ingredient_id"`
	Name            string    `json:"name"`
	MeasurementUnit string    `json:"measurement_unit"`
	TotalAmount     int       `json:"total_amount"`
}

// Aggregate sums amounts grouped by the ingredient's surrogate id, never by
// its display name: two ingredients that share a name but differ in
// identity (say, sugar in grams and sugar in tablespoons) stay separate
// rows. Ordering is by name with the id as tiebreaker, so repeated calls
// against the same data produce identical output. An empty cart yields
// ErrEmptyCart.
func (s *ShoppingListService) Aggregate(ctx context.Context, userID uuid.UUID) ([]ShoppingListRow, error) {
	var rows []ShoppingListRow
	err := s.db.WithContext(ctx).
		Model(&models.RecipeIngredient{}).
		Select("ingredients.id AS ingredient_id, ingredients.name, ingredients.measurement_unit, SUM(recipe_ingredients.amount) AS total_amount").
		Joins("JOIN shopping_cart_items ON shopping_cart_items.recipe_id = recipe_ingredients.recipe_id").
		Joins("JOIN ingredients ON ingredients.id = recipe_ingredients.ingredient_id").
		Where("shopping_cart_items.user_id = ?", userID).
		Group("ingredients.id, ingredients.name, ingredients.measurement_unit").
		Order("ingredients.name, ingredients.id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	if len(rows) == 0 {
		return nil, ErrEmptyCart
	}

	return rows, nil
}

// Render serializes the aggregated rows into the downloadable plain-text
// report, one line per ingredient under a header naming the user.
func (s *ShoppingListService) Render(user *models.User, rows []ShoppingListRow) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Shopping list for: %s\n\n", user.FullName())
	for _, row := range rows {
		fmt.Fprintf(&b, "- %s (%s) — %d\n", row.Name, row.MeasurementUnit, row.TotalAmount)
	}
	return b.String()
}

// Download aggregates the user's cart and renders the report in one call.
func (s *ShoppingListService) Download(ctx context.Context, userID uuid.UUID) (string, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		return "", err
	}

	rows, err := s.Aggregate(ctx, userID)
	if err != nil {
		return "", err
	}

	return s.Render(&user, rows), nil
}
