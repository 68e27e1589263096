package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nmorozova/platefeed/backend/internal/testhelpers"
)

func TestRegisterEndpoint(t *testing.T) {
	t.Run("valid registration", func(t *testing.T) {
		router, _ := setupTestRouter(t)

		w := doJSON(router, "POST", "/api/users", "", map[string]interface{}{
			"email":      "alice@example.com",
			"username":   "alice",
			"first_name": "Alice",
			"last_name":  "Cooper",
			"password":   "password123",
		})

		require.Equal(t, http.StatusCreated, w.Code)
		body := decodeBody(t, w)
		assert.Equal(t, "alice", body["username"])
		assert.NotContains(t, body, "password")
		assert.NotContains(t, body, "password_hash")
	})

	t.Run("validation failures come back grouped by field", func(t *testing.T) {
		router, _ := setupTestRouter(t)

		w := doJSON(router, "POST", "/api/users", "", map[string]interface{}{
			"email":    "not-an-email",
			"username": "me",
			"password": "short",
		})

		require.Equal(t, http.StatusBadRequest, w.Code)
		body := decodeBody(t, w)
		assert.Contains(t, body, "email")
		assert.Contains(t, body, "username")
		assert.Contains(t, body, "password")
	})
}

func TestLoginEndpoint(t *testing.T) {
	router, db := setupTestRouter(t)
	user, _ := createUserAndToken(t, db, "alice")

	t.Run("issues auth token", func(t *testing.T) {
		w := doJSON(router, "POST", "/api/auth/token/login", "", map[string]string{
			"email":    user.Email,
			"password": "password123",
		})

		require.Equal(t, http.StatusOK, w.Code)
		body := decodeBody(t, w)
		assert.NotEmpty(t, body["auth_token"])
	})

	t.Run("wrong password", func(t *testing.T) {
		w := doJSON(router, "POST", "/api/auth/token/login", "", map[string]string{
			"email":    user.Email,
			"password": "wrong-password",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestMeEndpoint(t *testing.T) {
	router, db := setupTestRouter(t)
	_, token := createUserAndToken(t, db, "alice")

	t.Run("requires auth", func(t *testing.T) {
		w := doJSON(router, "GET", "/api/users/me", "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("returns own profile", func(t *testing.T) {
		w := doJSON(router, "GET", "/api/users/me", token, nil)
		require.Equal(t, http.StatusOK, w.Code)

		body := decodeBody(t, w)
		assert.Equal(t, "alice", body["username"])
		assert.Equal(t, false, body["is_subscribed"])
	})

	t.Run("partial profile update", func(t *testing.T) {
		w := doJSON(router, "PATCH", "/api/users/me", token, map[string]string{
			"first_name": "Alicia",
		})
		require.Equal(t, http.StatusOK, w.Code)

		body := decodeBody(t, w)
		assert.Equal(t, "Alicia", body["first_name"])
		assert.Equal(t, "alice", body["last_name"])
	})
}

func TestUserListEndpoint(t *testing.T) {
	router, db := setupTestRouter(t)
	for _, handle := range []string{"alice", "bob", "carol"} {
		testhelpers.CreateTestUser(t, db, handle)
	}

	w := doJSON(router, "GET", "/api/users?page=1&limit=2", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	assert.EqualValues(t, 3, body["count"])
	assert.NotNil(t, body["next"])
	assert.Nil(t, body["previous"])
	assert.Len(t, body["results"], 2)
}

func TestSubscribeEndpoints(t *testing.T) {
	router, db := setupTestRouter(t)
	fan, token := createUserAndToken(t, db, "fan")
	author := testhelpers.CreateTestUser(t, db, "author")

	t.Run("subscribe returns the author with previews", func(t *testing.T) {
		w := doJSON(router, "POST", "/api/users/"+author.ID.String()+"/subscribe", token, nil)
		require.Equal(t, http.StatusCreated, w.Code)

		body := decodeBody(t, w)
		assert.Equal(t, "author", body["username"])
		assert.Equal(t, true, body["is_subscribed"])
		assert.Contains(t, body, "recipes")
		assert.Contains(t, body, "recipes_count")
	})

	t.Run("duplicate subscribe", func(t *testing.T) {
		w := doJSON(router, "POST", "/api/users/"+author.ID.String()+"/subscribe", token, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("self subscribe", func(t *testing.T) {
		w := doJSON(router, "POST", "/api/users/"+fan.ID.String()+"/subscribe", token, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unknown target user", func(t *testing.T) {
		w := doJSON(router, "POST", "/api/users/00000000-0000-0000-0000-000000000001/subscribe", token, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("subscriptions listing", func(t *testing.T) {
		w := doJSON(router, "GET", "/api/users/subscriptions", token, nil)
		require.Equal(t, http.StatusOK, w.Code)

		body := decodeBody(t, w)
		assert.EqualValues(t, 1, body["count"])
	})

	t.Run("unsubscribe then missing unsubscribe", func(t *testing.T) {
		path := "/api/users/" + author.ID.String() + "/subscribe"
		w := doJSON(router, "DELETE", path, token, nil)
		assert.Equal(t, http.StatusNoContent, w.Code)

		w = doJSON(router, "DELETE", path, token, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestAvatarEndpoints(t *testing.T) {
	router, db := setupTestRouter(t)
	_, token := createUserAndToken(t, db, "alice")

	t.Run("stored reference is persisted as-is", func(t *testing.T) {
		w := doJSON(router, "PUT", "/api/users/me/avatar", token, map[string]string{
			"avatar": "https://cdn.example.com/a.png",
		})
		require.Equal(t, http.StatusOK, w.Code)

		body := decodeBody(t, w)
		assert.Equal(t, "https://cdn.example.com/a.png", body["avatar"])
	})

	t.Run("missing avatar field", func(t *testing.T) {
		w := doJSON(router, "PUT", "/api/users/me/avatar", token, map[string]string{})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("delete clears the avatar", func(t *testing.T) {
		w := doJSON(router, "DELETE", "/api/users/me/avatar", token, nil)
		assert.Equal(t, http.StatusNoContent, w.Code)

		w = doJSON(router, "GET", "/api/users/me", token, nil)
		require.Equal(t, http.StatusOK, w.Code)
		body := decodeBody(t, w)
		assert.Equal(t, "", body["avatar"])
	})
}

func TestSetPasswordEndpoint(t *testing.T) {
	router, db := setupTestRouter(t)
	user, token := createUserAndToken(t, db, "alice")

	w := doJSON(router, "POST", "/api/users/set_password", token, map[string]string{
		"current_password": "password123",
		"new_password":     "newpassword123",
	})
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(router, "POST", "/api/auth/token/login", "", map[string]string{
		"email":    user.Email,
		"password": "newpassword123",
	})
	assert.Equal(t, http.StatusOK, w.Code)
}
