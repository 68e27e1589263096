package service

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nmorozova/platefeed/backend/internal/models"
)

const minCookingTime = 1

// RecipeService owns recipe composition: validation, atomic create/update
// of a recipe together with its ingredient and tag associations, and the
// filtered list reads.
type RecipeService struct {
	db *gorm.DB
}

func NewRecipeService(db *gorm.DB) *RecipeService {
	return &RecipeService{db: db}
}

// IngredientLine references an ingredient with its per-recipe amount.
type IngredientLine struct {
	ID     uuid.UUID `json:"id"`
	Amount int       `json:"amount"`
}

// RecipeInput is the composition payload for both create and update.
type RecipeInput struct {
	Name        string
	ImageURL    string
	Text        string
	CookingTime int
	Ingredients []IngredientLine
	TagIDs      []uuid.UUID
}

// RecipeFilter is the query/filter layer contract: author exact match, tag
// slugs with OR semantics, and the two viewer-scoped boolean predicates.
type RecipeFilter struct {
	AuthorID         *uuid.UUID
	TagSlugs         []string
	IsFavorited      *bool
	IsInShoppingCart *bool
	Page             int
	Limit            int
}

// Views returned to the API layer, with ingredient name/unit and tag
// name/slug denormalized onto the recipe.

type IngredientView struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	MeasurementUnit string    `json:"measurement_unit"`
	Amount          int       `json:"amount"`
}

type TagView struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	Slug string    `json:"slug"`
}

type AuthorView struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Avatar       string    `json:"avatar"`
	IsSubscribed bool      `json:"is_subscribed"`
}

type RecipeView struct {
	ID               uuid.UUID        `json:"id"`
	Tags             []TagView        `json:"tags"`
	Author           AuthorView       `json:"author"`
	Ingredients      []IngredientView `json:"ingredients"`
	IsFavorited      bool             `json:"is_favorited"`
	IsInShoppingCart bool             `json:"is_in_shopping_cart"`
	Name             string           `json:"name"`
	Image            string           `json:"image"`
	Text             string           `json:"text"`
	CookingTime      int              `json:"cooking_time"`
}

// ShortRecipeView is the compact representation used by toggle responses
// and subscription previews.
type ShortRecipeView struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Image       string    `json:"image"`
	CookingTime int       `json:"cooking_time"`
}

// validateComposition accumulates every violation grouped by field before
// any mutation happens. Unknown ingredient/tag ids are reported here too so
// the client gets the full picture in one round trip.
func (s *RecipeService) validateComposition(input RecipeInput) error {
	v := NewValidationError()

	if input.Name == "" {
		v.Add("name", "This field is required.")
	}
	if input.Text == "" {
		v.Add("text", "This field is required.")
	}
	if input.ImageURL == "" {
		v.Add("image", "This field is required.")
	}

	if input.CookingTime < minCookingTime {
		v.Add("cooking_time", "Cooking time must be at least one minute.")
	}

	if len(input.Ingredients) == 0 {
		v.Add("ingredients", "This field cannot be empty.")
	} else {
		seen := make(map[uuid.UUID]bool, len(input.Ingredients))
		ids := make([]uuid.UUID, 0, len(input.Ingredients))
		duplicated := false
		for _, line := range input.Ingredients {
			if line.Amount <= 0 {
				v.Add("ingredients", "Amount must be greater than zero.")
			}
			if seen[line.ID] {
				duplicated = true
			}
			seen[line.ID] = true
			ids = append(ids, line.ID)
		}
		if duplicated {
			v.Add("ingredients", "Ingredients must be unique.")
		}

		var count int64
		if err := s.db.Model(&models.Ingredient{}).Where("id IN ?", ids).Count(&count).Error; err != nil {
			return err
		}
		if int(count) != len(seen) {
			v.Add("ingredients", "One or more ingredients do not exist.")
		}
	}

	if len(input.TagIDs) == 0 {
		v.Add("tags", "This field cannot be empty.")
	} else {
		seen := make(map[uuid.UUID]bool, len(input.TagIDs))
		duplicated := false
		for _, id := range input.TagIDs {
			if seen[id] {
				duplicated = true
			}
			seen[id] = true
		}
		if duplicated {
			v.Add("tags", "Tags must be unique.")
		}

		var count int64
		if err := s.db.Model(&models.Tag{}).Where("id IN ?", input.TagIDs).Count(&count).Error; err != nil {
			return err
		}
		if int(count) != len(seen) {
			v.Add("tags", "One or more tags do not exist.")
		}
	}

	return v.ErrOrNil()
}

// Create persists the recipe and all its associations in one transaction:
// either the recipe with its full composition exists afterwards, or
// nothing does.
func (s *RecipeService) Create(ctx context.Context, authorID uuid.UUID, input RecipeInput) (*RecipeView, error) {
	if err := s.validateComposition(input); err != nil {
		return nil, err
	}

	recipe := models.Recipe{
		AuthorID:    authorID,
		Name:        input.Name,
		ImageURL:    input.ImageURL,
		Text:        input.Text,
		CookingTime: input.CookingTime,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&recipe).Error; err != nil {
			return err
		}
		return replaceAssociations(tx, recipe.ID, input)
	})
	if err != nil {
		return nil, err
	}

	return s.Get(ctx, recipe.ID, &authorID)
}

// Update replaces the scalar fields and the associations wholesale. The
// delete-then-reinsert runs inside the same transaction as the field
// update, so concurrent readers never observe a recipe with zero
// ingredients mid-update.
func (s *RecipeService) Update(ctx context.Context, recipeID, actorID uuid.UUID, input RecipeInput) (*RecipeView, error) {
	var recipe models.Recipe
	if err := s.db.WithContext(ctx).First(&recipe, "id = ?", recipeID).Error; err != nil {
		return nil, err
	}
	if recipe.AuthorID != actorID {
		return nil, ErrPermissionDenied
	}

	if input.Name == "" {
		input.Name = recipe.Name
	}
	if input.Text == "" {
		input.Text = recipe.Text
	}
	if input.ImageURL == "" {
		input.ImageURL = recipe.ImageURL
	}

	if err := s.validateComposition(input); err != nil {
		return nil, err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"name":         input.Name,
			"image_url":    input.ImageURL,
			"text":         input.Text,
			"cooking_time": input.CookingTime,
		}
		if err := tx.Model(&models.Recipe{}).Where("id = ?", recipeID).Updates(updates).Error; err != nil {
			return err
		}

		if err := tx.Where("recipe_id = ?", recipeID).Delete(&models.RecipeIngredient{}).Error; err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", recipeID).Delete(&models.RecipeTag{}).Error; err != nil {
			return err
		}

		return replaceAssociations(tx, recipeID, input)
	})
	if err != nil {
		return nil, err
	}

	return s.Get(ctx, recipeID, &actorID)
}

// replaceAssociations inserts the request's composition. Callers hold the
// transaction; on create the tables are empty for this recipe, on update
// they were just cleared.
func replaceAssociations(tx *gorm.DB, recipeID uuid.UUID, input RecipeInput) error {
	lines := make([]models.RecipeIngredient, 0, len(input.Ingredients))
	for _, line := range input.Ingredients {
		lines = append(lines, models.RecipeIngredient{
			RecipeID:     recipeID,
			IngredientID: line.ID,
			Amount:       line.Amount,
		})
	}
	if err := tx.Create(&lines).Error; err != nil {
		return err
	}

	tags := make([]models.RecipeTag, 0, len(input.TagIDs))
	for _, tagID := range input.TagIDs {
		tags = append(tags, models.RecipeTag{
			RecipeID: recipeID,
			TagID:    tagID,
		})
	}
	return tx.Create(&tags).Error
}

// Delete removes the recipe; associations and join rows cascade.
func (s *RecipeService) Delete(ctx context.Context, recipeID, actorID uuid.UUID) error {
	var recipe models.Recipe
	if err := s.db.WithContext(ctx).First(&recipe, "id = ?", recipeID).Error; err != nil {
		return err
	}
	if recipe.AuthorID != actorID {
		return ErrPermissionDenied
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// SQLite in tests does not enforce the FK cascades AutoMigrate
		// declares, so the join rows are cleared explicitly.
		for _, joined := range []interface{}{
			&models.RecipeIngredient{}, &models.RecipeTag{},
			&models.Favorite{}, &models.ShoppingCartItem{},
		} {
			if err := tx.Where("recipe_id = ?", recipeID).Delete(joined).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&models.Recipe{}, "id = ?", recipeID).Error
	})
}

// Get assembles the full representation for one recipe as seen by viewer
// (nil means anonymous).
func (s *RecipeService) Get(ctx context.Context, recipeID uuid.UUID, viewer *uuid.UUID) (*RecipeView, error) {
	var recipe models.Recipe
	err := s.db.WithContext(ctx).
		Preload("Author").
		Preload("Ingredients.Ingredient").
		Preload("Tags.Tag").
		First(&recipe, "id = ?", recipeID).Error
	if err != nil {
		return nil, err
	}

	views, err := s.buildViews(ctx, []models.Recipe{recipe}, viewer)
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// List applies the filter layer and returns one page of representations
// plus the total match count for the pagination envelope.
func (s *RecipeService) List(ctx context.Context, filter RecipeFilter, viewer *uuid.UUID) ([]RecipeView, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.Recipe{})

	if filter.AuthorID != nil {
		query = query.Where("recipes.author_id = ?", *filter.AuthorID)
	}

	if len(filter.TagSlugs) > 0 {
		// OR semantics: a recipe matches when it carries at least one of
		// the requested tags.
		query = query.Where("recipes.id IN (?)",
			s.db.Model(&models.RecipeTag{}).
				Select("recipe_tags.recipe_id").
				Joins("JOIN tags ON tags.id = recipe_tags.tag_id").
				Where("tags.slug IN ?", filter.TagSlugs))
	}

	// The viewer-scoped predicates are inapplicable for an anonymous
	// viewer: an anonymous request for favorited=true gets the set not
	// filtered by this predicate rather than an error or an empty page.
	if viewer != nil {
		if filter.IsFavorited != nil {
			sub := s.db.Model(&models.Favorite{}).
				Select("favorites.recipe_id").
				Where("favorites.user_id = ?", *viewer)
			if *filter.IsFavorited {
				query = query.Where("recipes.id IN (?)", sub)
			} else {
				query = query.Where("recipes.id NOT IN (?)", sub)
			}
		}
		if filter.IsInShoppingCart != nil {
			sub := s.db.Model(&models.ShoppingCartItem{}).
				Select("shopping_cart_items.recipe_id").
				Where("shopping_cart_items.user_id = ?", *viewer)
			if *filter.IsInShoppingCart {
				query = query.Where("recipes.id IN (?)", sub)
			} else {
				query = query.Where("recipes.id NOT IN (?)", sub)
			}
		}
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = query.Order("recipes.created_at DESC, recipes.id")
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
		if filter.Page > 1 {
			query = query.Offset((filter.Page - 1) * filter.Limit)
		}
	}

	var recipes []models.Recipe
	err := query.
		Preload("Author").
		Preload("Ingredients.Ingredient").
		Preload("Tags.Tag").
		Find(&recipes).Error
	if err != nil {
		return nil, 0, err
	}

	views, err := s.buildViews(ctx, recipes, viewer)
	if err != nil {
		return nil, 0, err
	}
	return views, total, nil
}

// ListShortByAuthor returns compact previews of an author's recipes,
// newest first, optionally capped.
func (s *RecipeService) ListShortByAuthor(ctx context.Context, authorID uuid.UUID, limit int) ([]ShortRecipeView, int64, error) {
	var total int64
	if err := s.db.WithContext(ctx).Model(&models.Recipe{}).
		Where("author_id = ?", authorID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query := s.db.WithContext(ctx).
		Where("author_id = ?", authorID).
		Order("created_at DESC, id")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var recipes []models.Recipe
	if err := query.Find(&recipes).Error; err != nil {
		return nil, 0, err
	}

	views := make([]ShortRecipeView, 0, len(recipes))
	for _, r := range recipes {
		views = append(views, ShortRecipeView{
			ID:          r.ID,
			Name:        r.Name,
			Image:       r.ImageURL,
			CookingTime: r.CookingTime,
		})
	}
	return views, total, nil
}

// buildViews assembles representations for a batch of preloaded recipes.
// The viewer-scoped booleans come from three batched membership queries
// rather than one query per recipe.
func (s *RecipeService) buildViews(ctx context.Context, recipes []models.Recipe, viewer *uuid.UUID) ([]RecipeView, error) {
	favorited := map[uuid.UUID]bool{}
	inCart := map[uuid.UUID]bool{}
	subscribed := map[uuid.UUID]bool{}

	if viewer != nil && len(recipes) > 0 {
		recipeIDs := make([]uuid.UUID, 0, len(recipes))
		authorIDs := make([]uuid.UUID, 0, len(recipes))
		for _, r := range recipes {
			recipeIDs = append(recipeIDs, r.ID)
			authorIDs = append(authorIDs, r.AuthorID)
		}

		var favs []models.Favorite
		if err := s.db.WithContext(ctx).
			Where("user_id = ? AND recipe_id IN ?", *viewer, recipeIDs).
			Find(&favs).Error; err != nil {
			return nil, err
		}
		for _, f := range favs {
			favorited[f.RecipeID] = true
		}

		var items []models.ShoppingCartItem
		if err := s.db.WithContext(ctx).
			Where("user_id = ? AND recipe_id IN ?", *viewer, recipeIDs).
			Find(&items).Error; err != nil {
			return nil, err
		}
		for _, item := range items {
			inCart[item.RecipeID] = true
		}

		var subs []models.Subscription
		if err := s.db.WithContext(ctx).
			Where("user_id = ? AND subscribed_to_id IN ?", *viewer, authorIDs).
			Find(&subs).Error; err != nil {
			return nil, err
		}
		for _, sub := range subs {
			subscribed[sub.SubscribedToID] = true
		}
	}

	views := make([]RecipeView, 0, len(recipes))
	for _, r := range recipes {
		view := RecipeView{
			ID: r.ID,
			Author: AuthorView{
				ID:           r.Author.ID,
				Email:        r.Author.Email,
				Username:     r.Author.Username,
				FirstName:    r.Author.FirstName,
				LastName:     r.Author.LastName,
				Avatar:       r.Author.AvatarURL,
				IsSubscribed: subscribed[r.AuthorID],
			},
			IsFavorited:      favorited[r.ID],
			IsInShoppingCart: inCart[r.ID],
			Name:             r.Name,
			Image:            r.ImageURL,
			Text:             r.Text,
			CookingTime:      r.CookingTime,
		}

		view.Ingredients = make([]IngredientView, 0, len(r.Ingredients))
		for _, line := range r.Ingredients {
			view.Ingredients = append(view.Ingredients, IngredientView{
				ID:              line.IngredientID,
				Name:            line.Ingredient.Name,
				MeasurementUnit: line.Ingredient.MeasurementUnit,
				Amount:          line.Amount,
			})
		}
		// Surrogate keys churn on every update, so order by the stable
		// denormalized fields to keep representations deterministic.
		sort.Slice(view.Ingredients, func(i, j int) bool {
			a, b := view.Ingredients[i], view.Ingredients[j]
			if a.Name != b.Name {
				return a.Name < b.Name
			}
			return strings.Compare(a.ID.String(), b.ID.String()) < 0
		})

		view.Tags = make([]TagView, 0, len(r.Tags))
		for _, rt := range r.Tags {
			view.Tags = append(view.Tags, TagView{
				ID:   rt.TagID,
				Name: rt.Tag.Name,
				Slug: rt.Tag.Slug,
			})
		}
		sort.Slice(view.Tags, func(i, j int) bool {
			return view.Tags[i].Slug < view.Tags[j].Slug
		})

		views = append(views, view)
	}

	return views, nil
}

// IsRecordNotFound reports whether err means the entity does not exist, for
// handlers mapping store errors to 404.
func IsRecordNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
