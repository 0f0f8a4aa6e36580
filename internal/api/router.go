package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"studyroom-booking-backend/config"
	"studyroom-booking-backend/internal/batch"
	"studyroom-booking-backend/internal/bridge"
	"studyroom-booking-backend/internal/mw"
	"studyroom-booking-backend/internal/secrets"
	"studyroom-booking-backend/internal/store"
)

// NewRouter creates and configures a new Gin router.
func NewRouter(s store.Store, b *bridge.Client, box *secrets.Box, runner *batch.Runner, cfg *config.Config, loc *time.Location) *gin.Engine {
	r := gin.Default()

	handler := NewHandler(s, b, box, runner, cfg, loc)

	rateLimiter := mw.RateLimiter(rate.Limit(cfg.Server.RateLimitPerSec), cfg.Server.RateLimitBurst, cfg.Server.RequestIPHeader)

	cacheTTL := time.Duration(cfg.Server.CacheTTLSeconds) * time.Second
	cacheStore := cache.New(cacheTTL, 2*cacheTTL)
	caching := mw.Cache(cacheStore, cacheTTL)

	api := r.Group("/api")
	api.Use(rateLimiter)
	{
		api.POST("/auth/login", handler.Login)
		api.POST("/auth/logout", handler.Logout)

		api.GET("/rooms", caching, handler.GetRooms)

		api.POST("/reservations", handler.CreateReservation)
		api.DELETE("/reservations/cancel", handler.CancelReservation)
		api.GET("/reservations/slots", caching, handler.GetSlots)

		api.GET("/history", handler.GetHistory)

		api.POST("/students/verify", handler.VerifyStudent)

		api.PUT("/subscriptions", handler.PutSubscription)
		api.DELETE("/subscriptions", handler.DeleteSubscription)
		api.GET("/vapid_public_key", handler.GetVAPIDPublicKey)

		api.GET("/cron/reserve", handler.RunBatch)
	}

	return r
}
