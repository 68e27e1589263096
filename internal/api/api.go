package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/nmorozova/platefeed/backend/config"
	"github.com/nmorozova/platefeed/backend/internal/middleware"
	"github.com/nmorozova/platefeed/backend/internal/service"
)

// SetupAPI wires services and handlers onto the router. redisClient and
// s3Config may be nil in tests; the short link and image features then fall
// back to no-ops where possible.
func SetupAPI(router *gin.Engine, db *gorm.DB, redisClient *redis.Client, s3Config *config.S3Config, cfg *config.Config) {
	authService := service.NewAuthService(db, cfg.JWTSecret)
	recipeService := service.NewRecipeService(db)
	userService := service.NewUserService(db, recipeService)
	imageService := service.NewImageService(s3Config)
	toggleService := service.NewToggleService(db)
	shoppingList := service.NewShoppingListService(db)

	var shortLinks *service.ShortLinkService
	var writeLimiter *middleware.RateLimiter
	if redisClient != nil {
		shortLinks = service.NewShortLinkService(redisClient, cfg.BaseURL)
		writeLimiter = middleware.NewRecipeWriteRateLimiter(redisClient)
	}

	apiGroup := router.Group("/api")
	{
		NewAuthHandler(authService).RegisterRoutes(apiGroup)
		NewUserHandler(authService, userService, imageService, toggleService, recipeService).RegisterRoutes(apiGroup)
		NewRecipeHandler(authService, recipeService, imageService, toggleService, shoppingList, shortLinks, writeLimiter).RegisterRoutes(apiGroup)
		NewTagHandler(db).RegisterRoutes(apiGroup)
		NewIngredientHandler(db).RegisterRoutes(apiGroup)
	}

	if shortLinks != nil {
		router.GET("/s/:code", func(c *gin.Context) {
			target, err := shortLinks.Resolve(c.Request.Context(), c.Param("code"))
			if err != nil {
				respondError(c, err)
				return
			}
			c.Redirect(http.StatusFound, target)
		})
	}
}
