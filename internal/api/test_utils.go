package api

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/nmorozova/platefeed/backend/config"
	"github.com/nmorozova/platefeed/backend/internal/models"
	"github.com/nmorozova/platefeed/backend/internal/service"
	"github.com/nmorozova/platefeed/backend/internal/testhelpers"
)

const testJWTSecret = "test-secret-0123456789"

// setupTestRouter wires the full API against an in-memory database. Redis
// and S3 are absent, so short links report unavailable and images stay
// pass-through.
func setupTestRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testhelpers.SetupTestDB(t)
	router := gin.New()
	SetupAPI(router, db, nil, nil, &config.Config{
		JWTSecret: testJWTSecret,
		BaseURL:   "http://localhost:8080",
	})
	return router, db
}

// createUserAndToken registers nothing through HTTP; it seeds the user
// directly and issues a real token for it.
func createUserAndToken(t *testing.T, db *gorm.DB, handle string) (*models.User, string) {
	t.Helper()

	user := testhelpers.CreateTestUser(t, db, handle)
	token, err := service.NewAuthService(db, testJWTSecret).Login(user.Email, "password123")
	if err != nil {
		t.Fatalf("failed to log test user in: %v", err)
	}
	return user, token
}

// doJSON performs a request with an optional bearer token and JSON body.
func doJSON(router *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()

	var body map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode response body %q: %v", w.Body.String(), err)
	}
	return body
}
