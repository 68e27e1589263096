package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/nmorozova/platefeed/backend/internal/models"
)

// TagHandler serves the tag reference data. Tags are created out of band,
// so the surface is read only and unpaginated.
type TagHandler struct {
	db *gorm.DB
}

func NewTagHandler(db *gorm.DB) *TagHandler {
	return &TagHandler{db: db}
}

func (h *TagHandler) RegisterRoutes(router *gin.RouterGroup) {
	tags := router.Group("/tags")
	{
		tags.GET("", h.List)
		tags.GET("/:id", h.Get)
	}
}

func (h *TagHandler) List(c *gin.Context) {
	var tags []models.Tag
	if err := h.db.WithContext(c.Request.Context()).Order("slug").Find(&tags).Error; err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tags)
}

func (h *TagHandler) Get(c *gin.Context) {
	id, ok := pathUUID(c)
	if !ok {
		return
	}

	var tag models.Tag
	if err := h.db.WithContext(c.Request.Context()).First(&tag, "id = ?", id).Error; err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tag)
}
