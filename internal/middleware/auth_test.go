package middleware_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/nmorozova/platefeed/backend/internal/middleware"
)

type stubValidator struct {
	claims *middleware.TokenClaims
}

func (s *stubValidator) ValidateToken(token string) (*middleware.TokenClaims, error) {
	if token == "good" && s.claims != nil {
		return s.claims, nil
	}
	return nil, errors.New("invalid token")
}

func setupAuthRouter(validator middleware.TokenValidator, optional bool) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	handler := func(c *gin.Context) {
		if id := middleware.ViewerID(c); id != nil {
			c.JSON(http.StatusOK, gin.H{"viewer": id.String()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"viewer": nil})
	}

	if optional {
		router.GET("/x", middleware.OptionalAuthMiddleware(validator), handler)
	} else {
		router.GET("/x", middleware.AuthMiddleware(validator), handler)
	}
	return router
}

func doAuthRequest(router *gin.Engine, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("GET", "/x", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	userID := uuid.New()
	validator := &stubValidator{claims: &middleware.TokenClaims{UserID: userID, Username: "alice"}}
	router := setupAuthRouter(validator, false)

	t.Run("missing header", func(t *testing.T) {
		w := doAuthRequest(router, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("malformed header", func(t *testing.T) {
		w := doAuthRequest(router, "Token good")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("invalid token", func(t *testing.T) {
		w := doAuthRequest(router, "Bearer bad")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("valid token resolves the viewer", func(t *testing.T) {
		w := doAuthRequest(router, "Bearer good")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), userID.String())
	})
}

func TestOptionalAuthMiddleware(t *testing.T) {
	userID := uuid.New()
	validator := &stubValidator{claims: &middleware.TokenClaims{UserID: userID, Username: "alice"}}
	router := setupAuthRouter(validator, true)

	t.Run("anonymous passes through", func(t *testing.T) {
		w := doAuthRequest(router, "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "null")
	})

	t.Run("invalid token is treated as anonymous", func(t *testing.T) {
		w := doAuthRequest(router, "Bearer bad")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "null")
	})

	t.Run("valid token resolves the viewer", func(t *testing.T) {
		w := doAuthRequest(router, "Bearer good")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), userID.String())
	})
}
