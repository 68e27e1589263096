package server_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/nmorozova/platefeed/backend/config"
	"github.com/nmorozova/platefeed/backend/internal/server"
	"github.com/nmorozova/platefeed/backend/internal/testhelpers"
)

func TestHealthEndpoint(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := testhelpers.SetupTestDB(t)

	srv := server.NewServer(db, nil, nil, &config.Config{
		JWTSecret: "test-secret-0123456789",
		BaseURL:   "http://localhost:8080",
	})

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ok")
}

func TestAPIMounted(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := testhelpers.SetupTestDB(t)

	srv := server.NewServer(db, nil, nil, &config.Config{
		JWTSecret: "test-secret-0123456789",
		BaseURL:   "http://localhost:8080",
	})

	req := httptest.NewRequest("GET", "/api/tags", nil)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}
