package service

import (
	"errors"
	"net/mail"
	"regexp"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/nmorozova/platefeed/backend/internal/middleware"
	"github.com/nmorozova/platefeed/backend/internal/models"
)

var usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)

const (
	maxEmailLength    = 254
	maxUsernameLength = 150
	maxNameLength     = 150
	minPasswordLength = 8
)

type AuthService struct {
	db        *gorm.DB
	jwtSecret string
}

func NewAuthService(db *gorm.DB, jwtSecret string) *AuthService {
	return &AuthService{
		db:        db,
		jwtSecret: jwtSecret,
	}
}

// RegisterInput carries everything a registration request may set.
type RegisterInput struct {
	Email     string
	Username  string
	FirstName string
	LastName  string
	Password  string
}

// Register validates the input, accumulating every violation, then creates
// the user with a bcrypt password hash.
func (s *AuthService) Register(input RegisterInput) (*models.User, error) {
	v := NewValidationError()

	if input.Email == "" {
		v.Add("email", "This field is required.")
	} else if len(input.Email) > maxEmailLength {
		v.Add("email", "Email is too long.")
	} else if _, err := mail.ParseAddress(input.Email); err != nil {
		v.Add("email", "Enter a valid email address.")
	}

	if input.Username == "" {
		v.Add("username", "This field is required.")
	} else {
		if len(input.Username) > maxUsernameLength {
			v.Add("username", "Username is too long.")
		}
		if !usernamePattern.MatchString(input.Username) {
			v.Add("username", "Username may contain only letters, digits and @/./+/-/_ characters.")
		}
		if input.Username == "me" {
			v.Add("username", "Username cannot be 'me'.")
		}
	}

	if input.FirstName == "" {
		v.Add("first_name", "This field is required.")
	} else if len(input.FirstName) > maxNameLength {
		v.Add("first_name", "First name is too long.")
	}
	if input.LastName == "" {
		v.Add("last_name", "This field is required.")
	} else if len(input.LastName) > maxNameLength {
		v.Add("last_name", "Last name is too long.")
	}

	if len(input.Password) < minPasswordLength {
		v.Add("password", "Password must be at least 8 characters.")
	}

	// Friendly duplicate reporting; the unique indexes stay the actual
	// guarantee under concurrent registration.
	if input.Email != "" {
		var count int64
		s.db.Model(&models.User{}).Where("email = ?", input.Email).Count(&count)
		if count > 0 {
			v.Add("email", "A user with this email already exists.")
		}
	}
	if input.Username != "" {
		var count int64
		s.db.Model(&models.User{}).Where("username = ?", input.Username).Count(&count)
		if count > 0 {
			v.Add("username", "A user with this username already exists.")
		}
	}

	if err := v.ErrOrNil(); err != nil {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := models.User{
		Email:        input.Email,
		Username:     input.Username,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		PasswordHash: string(hashed),
	}
	if err := s.db.Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			dup := NewValidationError()
			dup.Add("email", "A user with this email or username already exists.")
			return nil, dup
		}
		return nil, err
	}

	return &user, nil
}

// Login verifies credentials and issues a signed token.
func (s *AuthService) Login(email, password string) (string, error) {
	var user models.User
	if err := s.db.Where("email = ?", email).First(&user).Error; err != nil {
		return "", ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	return s.generateToken(&user)
}

// SetPassword changes the user's password after verifying the current one.
func (s *AuthService) SetPassword(userID uuid.UUID, currentPassword, newPassword string) error {
	var user models.User
	if err := s.db.First(&user, "id = ?", userID).Error; err != nil {
		return err
	}

	v := NewValidationError()
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(currentPassword)); err != nil {
		v.Add("current_password", "Current password is incorrect.")
	}
	if len(newPassword) < minPasswordLength {
		v.Add("new_password", "Password must be at least 8 characters.")
	}
	if err := v.ErrOrNil(); err != nil {
		return err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	return s.db.Model(&user).Update("password_hash", string(hashed)).Error
}

func (s *AuthService) generateToken(user *models.User) (string, error) {
	claims := jwt.MapClaims{
		"user_id":  user.ID.String(),
		"username": user.Username,
		"exp":      time.Now().Add(24 * time.Hour).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}

// ValidateToken parses and verifies a bearer token.
func (s *AuthService) ValidateToken(tokenString string) (*middleware.TokenClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}

	userIDStr, ok := claims["user_id"].(string)
	if !ok {
		return nil, errors.New("invalid token claims")
	}
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return nil, err
	}

	username, _ := claims["username"].(string)

	return &middleware.TokenClaims{
		UserID:   userID,
		Username: username,
	}, nil
}
