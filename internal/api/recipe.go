package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/nmorozova/platefeed/backend/internal/middleware"
	"github.com/nmorozova/platefeed/backend/internal/service"
)

type RecipeHandler struct {
	authService   *service.AuthService
	recipeService *service.RecipeService
	imageService  *service.ImageService
	toggles       *service.ToggleService
	shoppingList  *service.ShoppingListService
	shortLinks    *service.ShortLinkService
	writeLimiter  *middleware.RateLimiter
}

func NewRecipeHandler(
	authService *service.AuthService,
	recipeService *service.RecipeService,
	imageService *service.ImageService,
	toggles *service.ToggleService,
	shoppingList *service.ShoppingListService,
	shortLinks *service.ShortLinkService,
	writeLimiter *middleware.RateLimiter,
) *RecipeHandler {
	return &RecipeHandler{
		authService:   authService,
		recipeService: recipeService,
		imageService:  imageService,
		toggles:       toggles,
		shoppingList:  shoppingList,
		shortLinks:    shortLinks,
		writeLimiter:  writeLimiter,
	}
}

func (h *RecipeHandler) RegisterRoutes(router *gin.RouterGroup) {
	requireAuth := middleware.AuthMiddleware(h.authService)
	optionalAuth := middleware.OptionalAuthMiddleware(h.authService)

	writeLimit := func(c *gin.Context) { c.Next() }
	if h.writeLimiter != nil {
		writeLimit = h.writeLimiter.Middleware()
	}

	recipes := router.Group("/recipes")
	{
		recipes.GET("", optionalAuth, h.List)
		recipes.POST("", requireAuth, writeLimit, h.Create)
		recipes.GET("/download_shopping_cart", requireAuth, h.DownloadShoppingCart)
		recipes.GET("/:id", optionalAuth, h.Get)
		recipes.PATCH("/:id", requireAuth, writeLimit, h.Update)
		recipes.DELETE("/:id", requireAuth, h.Delete)
		recipes.GET("/:id/get-link", h.GetLink)
		recipes.POST("/:id/favorite", requireAuth, h.AddFavorite)
		recipes.DELETE("/:id/favorite", requireAuth, h.RemoveFavorite)
		recipes.POST("/:id/shopping_cart", requireAuth, h.AddToCart)
		recipes.DELETE("/:id/shopping_cart", requireAuth, h.RemoveFromCart)
	}
}

// recipeRequest is the composition payload. Image arrives as a base64 data
// URL on create; on update it may be omitted to keep the stored one.
type recipeRequest struct {
	Name        string                   `json:"name"`
	Image       string                   `json:"image"`
	Text        string                   `json:"text"`
	CookingTime int                      `json:"cooking_time"`
	Ingredients []service.IngredientLine `json:"ingredients"`
	Tags        []uuid.UUID              `json:"tags"`
}

func (h *RecipeHandler) input(c *gin.Context, req recipeRequest) (service.RecipeInput, error) {
	imageURL := req.Image
	if imageURL != "" {
		stored, err := h.imageService.StoreDataURL(c.Request.Context(), imageURL, "recipes")
		if err != nil {
			return service.RecipeInput{}, err
		}
		imageURL = stored
	}

	return service.RecipeInput{
		Name:        req.Name,
		ImageURL:    imageURL,
		Text:        req.Text,
		CookingTime: req.CookingTime,
		Ingredients: req.Ingredients,
		TagIDs:      req.Tags,
	}, nil
}

func (h *RecipeHandler) List(c *gin.Context) {
	page, limit := pageParams(c)
	filter := service.RecipeFilter{
		TagSlugs: c.QueryArray("tags"),
		Page:     page,
		Limit:    limit,
	}

	if author := c.Query("author"); author != "" {
		id, err := uuid.Parse(author)
		if err != nil {
			c.JSON(http.StatusOK, paginated(c, 0, page, limit, []service.RecipeView{}))
			return
		}
		filter.AuthorID = &id
	}

	viewer := middleware.ViewerID(c)
	if viewer != nil {
		if v := c.Query("is_favorited"); v == "1" || v == "true" {
			t := true
			filter.IsFavorited = &t
		}
		if v := c.Query("is_in_shopping_cart"); v == "1" || v == "true" {
			t := true
			filter.IsInShoppingCart = &t
		}
	}

	views, total, err := h.recipeService.List(c.Request.Context(), filter, viewer)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, paginated(c, total, page, limit, views))
}

func (h *RecipeHandler) Get(c *gin.Context) {
	id, ok := pathUUID(c)
	if !ok {
		return
	}

	view, err := h.recipeService.Get(c.Request.Context(), id, middleware.ViewerID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *RecipeHandler) Create(c *gin.Context) {
	var req recipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	input, err := h.input(c, req)
	if err != nil {
		respondError(c, err)
		return
	}

	view, err := h.recipeService.Create(c.Request.Context(), middleware.MustViewerID(c), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, view)
}

func (h *RecipeHandler) Update(c *gin.Context) {
	id, ok := pathUUID(c)
	if !ok {
		return
	}

	var req recipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	input, err := h.input(c, req)
	if err != nil {
		respondError(c, err)
		return
	}

	view, err := h.recipeService.Update(c.Request.Context(), id, middleware.MustViewerID(c), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *RecipeHandler) Delete(c *gin.Context) {
	id, ok := pathUUID(c)
	if !ok {
		return
	}

	if err := h.recipeService.Delete(c.Request.Context(), id, middleware.MustViewerID(c)); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *RecipeHandler) AddFavorite(c *gin.Context) {
	h.addRelation(c, h.toggles.Favorite)
}

func (h *RecipeHandler) RemoveFavorite(c *gin.Context) {
	h.removeRelation(c, h.toggles.Favorite)
}

func (h *RecipeHandler) AddToCart(c *gin.Context) {
	h.addRelation(c, h.toggles.Cart)
}

func (h *RecipeHandler) RemoveFromCart(c *gin.Context) {
	h.removeRelation(c, h.toggles.Cart)
}

// addRelation runs a recipe-scoped toggle add and responds with the compact
// recipe view. A recipe that does not exist is a 404; a duplicate add is 400.
func (h *RecipeHandler) addRelation(c *gin.Context, toggle func(uuid.UUID) service.RelationToggle) {
	id, ok := pathUUID(c)
	if !ok {
		return
	}

	view, err := h.recipeService.Get(c.Request.Context(), id, nil)
	if err != nil {
		respondError(c, err)
		return
	}

	if err := toggle(id).Add(c.Request.Context(), middleware.MustViewerID(c)); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, service.ShortRecipeView{
		ID:          view.ID,
		Name:        view.Name,
		Image:       view.Image,
		CookingTime: view.CookingTime,
	})
}

func (h *RecipeHandler) removeRelation(c *gin.Context, toggle func(uuid.UUID) service.RelationToggle) {
	id, ok := pathUUID(c)
	if !ok {
		return
	}

	if err := toggle(id).Remove(c.Request.Context(), middleware.MustViewerID(c)); err != nil {
		if toggleNotFound(c, err) {
			return
		}
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *RecipeHandler) DownloadShoppingCart(c *gin.Context) {
	report, err := h.shoppingList.Download(c.Request.Context(), middleware.MustViewerID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="shopping_list.txt"`)
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(report))
}

func (h *RecipeHandler) GetLink(c *gin.Context) {
	if h.shortLinks == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "short links unavailable"})
		return
	}

	id, ok := pathUUID(c)
	if !ok {
		return
	}

	// Only existing recipes get links.
	if _, err := h.recipeService.Get(c.Request.Context(), id, nil); err != nil {
		respondError(c, err)
		return
	}

	short, err := h.shortLinks.Shorten(c.Request.Context(), "/api/recipes/"+id.String())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"short-link": short})
}
