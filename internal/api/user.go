package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/nmorozova/platefeed/backend/internal/middleware"
	"github.com/nmorozova/platefeed/backend/internal/service"
)

type UserHandler struct {
	authService  *service.AuthService
	userService  *service.UserService
	imageService *service.ImageService
	toggles      *service.ToggleService
	recipes      *service.RecipeService
}

func NewUserHandler(
	authService *service.AuthService,
	userService *service.UserService,
	imageService *service.ImageService,
	toggles *service.ToggleService,
	recipes *service.RecipeService,
) *UserHandler {
	return &UserHandler{
		authService:  authService,
		userService:  userService,
		imageService: imageService,
		toggles:      toggles,
		recipes:      recipes,
	}
}

func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup) {
	users := router.Group("/users")
	{
		users.POST("", h.Register)
		users.GET("", middleware.OptionalAuthMiddleware(h.authService), h.List)
		users.GET("/me", middleware.AuthMiddleware(h.authService), h.Me)
		users.PATCH("/me", middleware.AuthMiddleware(h.authService), h.UpdateMe)
		users.PUT("/me/avatar", middleware.AuthMiddleware(h.authService), h.SetAvatar)
		users.DELETE("/me/avatar", middleware.AuthMiddleware(h.authService), h.DeleteAvatar)
		users.POST("/set_password", middleware.AuthMiddleware(h.authService), h.SetPassword)
		users.GET("/subscriptions", middleware.AuthMiddleware(h.authService), h.Subscriptions)
		users.GET("/:id", middleware.OptionalAuthMiddleware(h.authService), h.Get)
		users.POST("/:id/subscribe", middleware.AuthMiddleware(h.authService), h.Subscribe)
		users.DELETE("/:id/subscribe", middleware.AuthMiddleware(h.authService), h.Unsubscribe)
	}
}

func (h *UserHandler) Register(c *gin.Context) {
	var req struct {
		Email     string `json:"email"`
		Username  string `json:"username"`
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
		Password  string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	user, err := h.authService.Register(service.RegisterInput{
		Email:     req.Email,
		Username:  req.Username,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Password:  req.Password,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":         user.ID,
		"email":      user.Email,
		"username":   user.Username,
		"first_name": user.FirstName,
		"last_name":  user.LastName,
	})
}

func (h *UserHandler) List(c *gin.Context) {
	page, limit := pageParams(c)
	views, total, err := h.userService.List(c.Request.Context(), page, limit, middleware.ViewerID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, paginated(c, total, page, limit, views))
}

func (h *UserHandler) Get(c *gin.Context) {
	id, ok := pathUUID(c)
	if !ok {
		return
	}

	view, err := h.userService.Get(c.Request.Context(), id, middleware.ViewerID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *UserHandler) Me(c *gin.Context) {
	viewerID := middleware.MustViewerID(c)
	view, err := h.userService.Get(c.Request.Context(), viewerID, &viewerID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *UserHandler) UpdateMe(c *gin.Context) {
	var req struct {
		FirstName *string `json:"first_name"`
		LastName  *string `json:"last_name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	viewerID := middleware.MustViewerID(c)
	if err := h.userService.UpdateProfile(c.Request.Context(), viewerID, req.FirstName, req.LastName); err != nil {
		respondError(c, err)
		return
	}

	view, err := h.userService.Get(c.Request.Context(), viewerID, &viewerID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *UserHandler) SetAvatar(c *gin.Context) {
	var req struct {
		Avatar string `json:"avatar" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"avatar": []string{"This field is required."}})
		return
	}

	url, err := h.imageService.StoreDataURL(c.Request.Context(), req.Avatar, "avatars")
	if err != nil {
		respondError(c, err)
		return
	}

	viewerID := middleware.MustViewerID(c)
	if err := h.userService.UpdateAvatar(c.Request.Context(), viewerID, url); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"avatar": url})
}

func (h *UserHandler) DeleteAvatar(c *gin.Context) {
	if err := h.userService.UpdateAvatar(c.Request.Context(), middleware.MustViewerID(c), ""); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *UserHandler) SetPassword(c *gin.Context) {
	var req struct {
		CurrentPassword string `json:"current_password"`
		NewPassword     string `json:"new_password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := h.authService.SetPassword(middleware.MustViewerID(c), req.CurrentPassword, req.NewPassword); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *UserHandler) Subscriptions(c *gin.Context) {
	page, limit := pageParams(c)
	recipesLimit, _ := strconv.Atoi(c.DefaultQuery("recipes_limit", "0"))
	if recipesLimit < 0 {
		recipesLimit = 0
	}

	views, total, err := h.userService.Subscriptions(c.Request.Context(), middleware.MustViewerID(c), page, limit, recipesLimit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, paginated(c, total, page, limit, views))
}

func (h *UserHandler) Subscribe(c *gin.Context) {
	targetID, ok := pathUUID(c)
	if !ok {
		return
	}

	// Subscribing to a user that does not exist is a 404, not a 400.
	viewerID := middleware.MustViewerID(c)
	if _, err := h.userService.Get(c.Request.Context(), targetID, nil); err != nil {
		respondError(c, err)
		return
	}

	if err := h.toggles.Subscription(targetID).Add(c.Request.Context(), viewerID); err != nil {
		respondError(c, err)
		return
	}

	recipesLimit, _ := strconv.Atoi(c.DefaultQuery("recipes_limit", "0"))
	view, err := h.userService.Get(c.Request.Context(), targetID, &viewerID)
	if err != nil {
		respondError(c, err)
		return
	}
	previews, count, err := h.recipes.ListShortByAuthor(c.Request.Context(), targetID, recipesLimit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, service.SubscribedUserView{
		UserView:     *view,
		Recipes:      previews,
		RecipesCount: count,
	})
}

func (h *UserHandler) Unsubscribe(c *gin.Context) {
	targetID, ok := pathUUID(c)
	if !ok {
		return
	}

	err := h.toggles.Subscription(targetID).Remove(c.Request.Context(), middleware.MustViewerID(c))
	if err != nil {
		if toggleNotFound(c, err) {
			return
		}
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
