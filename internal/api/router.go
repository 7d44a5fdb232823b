package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/pythonegrove/codesamples/internal/api/handlers"
	"github.com/pythonegrove/codesamples/internal/api/middleware"
	"github.com/pythonegrove/codesamples/internal/cache"
	"github.com/pythonegrove/codesamples/internal/captcha"
	"github.com/pythonegrove/codesamples/internal/config"
	"github.com/pythonegrove/codesamples/internal/email"
	"github.com/pythonegrove/codesamples/internal/services"
	"github.com/pythonegrove/codesamples/internal/storage"
	"github.com/pythonegrove/codesamples/internal/tasks"
	"github.com/pythonegrove/codesamples/internal/views"
)

// Site bundles the site engine with resources the caller must release.
type Site struct {
	Engine      *gin.Engine
	RateLimiter *middleware.RateLimiterMiddleware
}

// SetupRouter configures the site Gin engine.
func SetupRouter(cfg *config.Config, db *mongo.Database, rdb *redis.Client, dispatcher tasks.IEmailDispatcher) (*Site, error) {
	baseService := services.NewBaseService(db, cache.NewRedisJSONCache(rdb, "base:"), cfg.BaseCacheTTL, cfg.DefaultBaseSlug)
	listingService := services.NewListingService(db)
	bookmarkService := services.NewBookmarkService(db)
	menuService := services.NewMenuService(db, cache.NewRedisJSONCache(rdb, "menu:"), cfg.MenuCacheTTL)
	enquiryService := services.NewEnquiryService(db)

	photoStorage, err := storage.NewS3Storage(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize photo storage: %w", err)
	}
	renderer, err := views.NewRenderer()
	if err != nil {
		return nil, fmt.Errorf("failed to load page templates: %w", err)
	}
	captchaVerifier := captcha.NewTurnstileVerifier(cfg)

	r := gin.Default()

	rateLimiter := middleware.NewRateLimiterMiddleware(cfg.RateLimitRefillRate, cfg.RateLimitBucketSize)

	// Apply global middleware first (order matters)
	if cfg.SecureHeaders {
		r.Use(middleware.SecureHeaders(false))
	}
	// Assets are registered before tenant resolution so they load for any host.
	r.StaticFS("/static", views.StaticFS())

	r.Use(middleware.BaseMiddleware(baseService))
	r.Use(middleware.OptionalAuthMiddleware(cfg.JwtSecret, cfg.SessionCookie))

	rentalHandler := handlers.NewRestRentalHandler(listingService, bookmarkService, photoStorage, renderer, cfg.GalleryPageSize, cfg.CloudflareTurnstileSiteKey)
	requestInfoHandler := handlers.NewRestRequestInformationHandler(listingService, enquiryService, dispatcher, cfg.AdminEmailAddress, cfg.DefaultLocale)
	menuHandler := handlers.NewRestMenuHandler(menuService)

	rentals := r.Group("/rentals")
	{
		rentals.GET("", rentalHandler.ListRentals)
		rentals.POST("", rentalHandler.ListRentals)
		rentals.GET("/gallery", rentalHandler.RentalGallery)
		rentals.POST("/gallery", rentalHandler.RentalGallery)
		rentals.POST("/request-information",
			rateLimiter.Limit(),
			middleware.CaptchaMiddleware(captchaVerifier),
			requestInfoHandler.RequestInformation,
		)
		rentals.GET("/:listing_id", rentalHandler.GetRentalDetail)
	}

	menu := r.Group("/menu")
	menu.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))
	{
		menu.GET("/top", menuHandler.GetTopMenu)
		menu.OPTIONS("/top", func(c *gin.Context) {})
	}

	r.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})

	return &Site{Engine: r, RateLimiter: rateLimiter}, nil
}

// SetupServiceRouter configures and returns the service Gin engine.
// Requires the Redis client for the getTestEmail method.
func SetupServiceRouter(rdb *redis.Client, menuService services.IMenuService, shutdownChan chan<- struct{}) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	r.POST("/api", func(c *gin.Context) {
		var req struct {
			Method    string          `json:"method"`
			Arguments json.RawMessage `json:"arguments"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request format"})
			return
		}

		switch req.Method {
		case "shutdown":
			log.Println("Received shutdown command via Service API")
			c.JSON(http.StatusOK, gin.H{"success": true, "result": "Shutdown initiated"})
			select {
			case shutdownChan <- struct{}{}:
				log.Println("Shutdown signal sent successfully.")
			default:
				log.Println("Shutdown channel already signaled or blocked.")
			}
		case "getTestEmail":
			getTestEmail(c, rdb, req.Arguments)
		case "invalidateMenu":
			invalidateMenu(c, menuService, req.Arguments)
		default:
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": fmt.Sprintf("Unknown service method: %s", req.Method)})
		}
	})
	return r
}

// invalidateMenu drops the cached top menu of the base named in [baseSlug].
func invalidateMenu(c *gin.Context, menuService services.IMenuService, rawArgs json.RawMessage) {
	var args []string
	if err := json.Unmarshal(rawArgs, &args); err != nil || len(args) != 1 || args[0] == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid arguments: expected JSON array [baseSlug]"})
		return
	}
	if menuService == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"success": false, "error": "Menu service not configured"})
		return
	}
	if err := menuService.Invalidate(c.Request.Context(), args[0]); err != nil {
		log.Printf("Service API: Error invalidating menu for base %s: %v", args[0], err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to invalidate menu"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "result": "Menu invalidated"})
}

// getTestEmail returns (and deletes) the mock email stored for [templateID, email].
func getTestEmail(c *gin.Context, rdb *redis.Client, rawArgs json.RawMessage) {
	var args []string
	if err := json.Unmarshal(rawArgs, &args); err != nil || len(args) != 2 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid arguments: expected JSON array [templateID, email]"})
		return
	}
	if rdb == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"success": false, "error": "Redis not configured"})
		return
	}
	redisKey := email.MockKey(args[1], args[0])

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	// Poll briefly, the worker may still be sending.
	var data string
	found := false
	for i := 0; i < 10; i++ {
		var err error
		data, err = rdb.GetDel(ctx, redisKey).Result()
		if err == nil {
			found = true
			break
		}
		if !errors.Is(err, redis.Nil) {
			log.Printf("Service API: Error getting key %s from Redis: %v", redisKey, err)
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Redis error"})
			return
		}
		time.Sleep(200 * time.Millisecond)
	}

	if !found {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": fmt.Sprintf("Test email not found in Redis for key %s", redisKey)})
		return
	}

	var emailData map[string]interface{}
	if err := json.Unmarshal([]byte(data), &emailData); err != nil {
		log.Printf("Service API: Error unmarshalling email data from key %s: %v", redisKey, err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to parse stored email data"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": emailData})
}
