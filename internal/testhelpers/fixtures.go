package testhelpers

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/nmorozova/platefeed/backend/internal/models"
)

// CreateTestUser inserts a user with a unique email/username derived from
// the given handle. The password is always "password123".
func CreateTestUser(t *testing.T, db *gorm.DB, handle string) *models.User {
	t.Helper()

	hashed, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Email:        fmt.Sprintf("%s@example.com", handle),
		Username:     handle,
		FirstName:    "Test",
		LastName:     handle,
		PasswordHash: string(hashed),
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user %s: %v", handle, err)
	}
	return user
}

func CreateTestTag(t *testing.T, db *gorm.DB, name, slug string) *models.Tag {
	t.Helper()

	tag := &models.Tag{Name: name, Slug: slug}
	if err := db.Create(tag).Error; err != nil {
		t.Fatalf("failed to create test tag %s: %v", slug, err)
	}
	return tag
}

func CreateTestIngredient(t *testing.T, db *gorm.DB, name, unit string) *models.Ingredient {
	t.Helper()

	ingredient := &models.Ingredient{Name: name, MeasurementUnit: unit}
	if err := db.Create(ingredient).Error; err != nil {
		t.Fatalf("failed to create test ingredient %s: %v", name, err)
	}
	return ingredient
}

// CreateTestRecipe inserts a recipe with one ingredient line and one tag.
func CreateTestRecipe(t *testing.T, db *gorm.DB, author *models.User, name string, ingredient *models.Ingredient, amount int, tag *models.Tag) *models.Recipe {
	t.Helper()

	recipe := &models.Recipe{
		AuthorID:    author.ID,
		Name:        name,
		ImageURL:    "https://example.com/" + uuid.NewString() + ".png",
		Text:        "Steps for " + name,
		CookingTime: 15,
	}
	if err := db.Create(recipe).Error; err != nil {
		t.Fatalf("failed to create test recipe %s: %v", name, err)
	}

	if ingredient != nil {
		line := &models.RecipeIngredient{
			RecipeID:     recipe.ID,
			IngredientID: ingredient.ID,
			Amount:       amount,
		}
		if err := db.Create(line).Error; err != nil {
			t.Fatalf("failed to attach ingredient to %s: %v", name, err)
		}
	}
	if tag != nil {
		link := &models.RecipeTag{RecipeID: recipe.ID, TagID: tag.ID}
		if err := db.Create(link).Error; err != nil {
			t.Fatalf("failed to attach tag to %s: %v", name, err)
		}
	}
	return recipe
}
