package service

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nmorozova/platefeed/backend/internal/models"
)

// UserService covers profile reads, avatar updates and the subscriptions
// listing.
type UserService struct {
	db      *gorm.DB
	recipes *RecipeService
}

func NewUserService(db *gorm.DB, recipes *RecipeService) *UserService {
	return &UserService{db: db, recipes: recipes}
}

// UserView is the public profile representation; is_subscribed is always
// false for an anonymous viewer.
type UserView struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Avatar       string    `json:"avatar"`
	IsSubscribed bool      `json:"is_subscribed"`
}

// SubscribedUserView extends the profile with recipe previews for the
// subscriptions listing.
type SubscribedUserView struct {
	UserView
	Recipes      []ShortRecipeView `json:"recipes"`
	RecipesCount int64             `json:"recipes_count"`
}

// Get returns one user's profile as seen by viewer.
func (s *UserService) Get(ctx context.Context, userID uuid.UUID, viewer *uuid.UUID) (*UserView, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		return nil, err
	}

	view := s.toView(ctx, &user, viewer)
	return &view, nil
}

// List returns one page of user profiles plus the total count.
func (s *UserService) List(ctx context.Context, page, limit int, viewer *uuid.UUID) ([]UserView, int64, error) {
	var total int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query := s.db.WithContext(ctx).Order("username")
	if limit > 0 {
		query = query.Limit(limit)
		if page > 1 {
			query = query.Offset((page - 1) * limit)
		}
	}

	var users []models.User
	if err := query.Find(&users).Error; err != nil {
		return nil, 0, err
	}

	views := make([]UserView, 0, len(users))
	for i := range users {
		views = append(views, s.toView(ctx, &users[i], viewer))
	}
	return views, total, nil
}

// UpdateProfile applies partial name changes; nil fields stay untouched.
func (s *UserService) UpdateProfile(ctx context.Context, userID uuid.UUID, firstName, lastName *string) error {
	v := NewValidationError()
	updates := map[string]interface{}{}
	if firstName != nil {
		if *firstName == "" {
			v.Add("first_name", "This field may not be blank.")
		}
		updates["first_name"] = *firstName
	}
	if lastName != nil {
		if *lastName == "" {
			v.Add("last_name", "This field may not be blank.")
		}
		updates["last_name"] = *lastName
	}
	if err := v.ErrOrNil(); err != nil {
		return err
	}
	if len(updates) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Updates(updates).Error
}

// UpdateAvatar stores the new avatar URL; an empty value clears it.
func (s *UserService) UpdateAvatar(ctx context.Context, userID uuid.UUID, avatarURL string) error {
	return s.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Update("avatar_url", avatarURL).Error
}

// Subscriptions returns the authors the user follows, each with up to
// recipesLimit recipe previews (0 means all), plus the total count of
// followed authors.
func (s *UserService) Subscriptions(ctx context.Context, userID uuid.UUID, page, limit, recipesLimit int) ([]SubscribedUserView, int64, error) {
	var total int64
	if err := s.db.WithContext(ctx).Model(&models.Subscription{}).
		Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query := s.db.WithContext(ctx).
		Preload("SubscribedTo").
		Where("user_id = ?", userID).
		Order("created_at DESC, id")
	if limit > 0 {
		query = query.Limit(limit)
		if page > 1 {
			query = query.Offset((page - 1) * limit)
		}
	}

	var subs []models.Subscription
	if err := query.Find(&subs).Error; err != nil {
		return nil, 0, err
	}

	views := make([]SubscribedUserView, 0, len(subs))
	for i := range subs {
		author := subs[i].SubscribedTo
		recipes, count, err := s.recipes.ListShortByAuthor(ctx, author.ID, recipesLimit)
		if err != nil {
			return nil, 0, err
		}

		view := SubscribedUserView{
			UserView: UserView{
				ID:        author.ID,
				Email:     author.Email,
				Username:  author.Username,
				FirstName: author.FirstName,
				LastName:  author.LastName,
				Avatar:    author.AvatarURL,
				// Listed because the viewer follows them.
				IsSubscribed: true,
			},
			Recipes:      recipes,
			RecipesCount: count,
		}
		views = append(views, view)
	}
	return views, total, nil
}

func (s *UserService) toView(ctx context.Context, user *models.User, viewer *uuid.UUID) UserView {
	isSubscribed := false
	if viewer != nil && *viewer != user.ID {
		var count int64
		s.db.WithContext(ctx).Model(&models.Subscription{}).
			Where("user_id = ? AND subscribed_to_id = ?", *viewer, user.ID).
			Count(&count)
		isSubscribed = count > 0
	}

	return UserView{
		ID:           user.ID,
		Email:        user.Email,
		Username:     user.Username,
		FirstName:    user.FirstName,
		LastName:     user.LastName,
		Avatar:       user.AvatarURL,
		IsSubscribed: isSubscribed,
	}
}
