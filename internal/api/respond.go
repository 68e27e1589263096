package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/nmorozova/platefeed/backend/internal/service"
)

const defaultPageSize = 10

// pageParams reads page/limit query params, falling back to sane defaults.
func pageParams(c *gin.Context) (page, limit int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultPageSize)))
	if limit < 1 {
		limit = defaultPageSize
	}
	return page, limit
}

// paginated wraps results in the {count, next, previous, results} envelope.
// next/previous are absolute URLs rebuilt from the current request with the
// page param swapped, or null at the edges.
func paginated(c *gin.Context, count int64, page, limit int, results interface{}) gin.H {
	var next, previous interface{}

	if int64(page*limit) < count {
		next = pageURL(c, page+1)
	}
	if page > 1 {
		previous = pageURL(c, page-1)
	}

	return gin.H{
		"count":    count,
		"next":     next,
		"previous": previous,
		"results":  results,
	}
}

func pageURL(c *gin.Context, page int) string {
	u := *c.Request.URL
	q := u.Query()
	q.Set("page", strconv.Itoa(page))
	u.RawQuery = q.Encode()

	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s%s", scheme, c.Request.Host, u.RequestURI())
}

// respondError maps service errors to HTTP responses. Validation failures
// become a field-grouped 400 body; toggle conflicts and the empty cart are
// 400 with a single message; everything unrecognized is a logged 500.
func respondError(c *gin.Context, err error) {
	var v *service.ValidationError
	if errors.As(err, &v) {
		c.JSON(http.StatusBadRequest, v.Fields)
		return
	}

	switch {
	case errors.Is(err, service.ErrAlreadyExists):
		c.JSON(http.StatusBadRequest, gin.H{"error": "already exists"})
	case errors.Is(err, service.ErrSelfSubscription):
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot subscribe to yourself"})
	case errors.Is(err, service.ErrEmptyCart):
		c.JSON(http.StatusBadRequest, gin.H{"error": "shopping cart is empty"})
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid credentials"})
	case errors.Is(err, service.ErrPermissionDenied):
		c.JSON(http.StatusForbidden, gin.H{"error": "permission denied"})
	case errors.Is(err, service.ErrNotFound), errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	default:
		log.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

// toggleNotFound is for DELETE on a toggle where a missing row means the
// relation was never there, which the API reports as 400, not 404.
func toggleNotFound(c *gin.Context, err error) bool {
	if errors.Is(err, service.ErrNotFound) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "relation does not exist"})
		return true
	}
	return false
}

// pathUUID parses the :id path segment; a malformed id is a 404, same as a
// well-formed id that matches nothing.
func pathUUID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return uuid.Nil, false
	}
	return id, true
}
