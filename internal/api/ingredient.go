package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/nmorozova/platefeed/backend/internal/models"
)

// IngredientHandler serves the ingredient reference data with the
// prefix-search the recipe form autocomplete relies on.
type IngredientHandler struct {
	db *gorm.DB
}

func NewIngredientHandler(db *gorm.DB) *IngredientHandler {
	return &IngredientHandler{db: db}
}

func (h *IngredientHandler) RegisterRoutes(router *gin.RouterGroup) {
	ingredients := router.Group("/ingredients")
	{
		ingredients.GET("", h.List)
		ingredients.GET("/:id", h.Get)
	}
}

func (h *IngredientHandler) List(c *gin.Context) {
	query := h.db.WithContext(c.Request.Context()).Order("name")
	if name := c.Query("name"); name != "" {
		query = query.Where("LOWER(name) LIKE ?", strings.ToLower(name)+"%")
	}

	var ingredients []models.Ingredient
	if err := query.Find(&ingredients).Error; err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ingredients)
}

func (h *IngredientHandler) Get(c *gin.Context) {
	id, ok := pathUUID(c)
	if !ok {
		return
	}

	var ingredient models.Ingredient
	if err := h.db.WithContext(c.Request.Context()).First(&ingredient, "id = ?", id).Error; err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ingredient)
}
