package router

import (
	"context"
	"net/http"
	"time"

	"nearby/config"
	"nearby/internal/handler"
	"nearby/internal/middleware"
	"nearby/internal/ratelimit"
	"nearby/internal/repository"
	"nearby/internal/service"
	"nearby/internal/ws"
	"nearby/pkg/media"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Stores is the persistence the services run on.
type Stores struct {
	Locations service.LocationStore
	Profiles  interface {
		service.ProfileStore
		service.ProfileEditor
	}
	Messages service.MessageStore
	Posts    service.PostStore
}

func GormStores(db *gorm.DB) Stores {
	return Stores{
		Locations: repository.NewLocationRepository(db),
		Profiles:  repository.NewProfileRepository(db),
		Messages:  repository.NewMessageRepository(db),
		Posts:     repository.NewPostRepository(db),
	}
}

func MemoryStores(m *repository.MemoryStore) Stores {
	return Stores{Locations: m, Profiles: m, Messages: m, Posts: m}
}

// Limiters holds one limiter per rate-limited route group.
type Limiters struct {
	Global   ratelimit.Limiter
	Location ratelimit.Limiter
	Messages ratelimit.Limiter
}

// NewLimiters uses Redis when client is non-nil and in-process windows
// otherwise. In-process limiters are pruned until ctx is done.
func NewLimiters(ctx context.Context, cfg *config.RateLimitConfig, client redis.UniversalClient) Limiters {
	if client != nil {
		return Limiters{
			Global:   ratelimit.NewRedisLimiter(client, "ip", cfg.RequestsPerMin, time.Minute),
			Location: ratelimit.NewRedisLimiter(client, "location", cfg.LocationUpdatesPerMin, time.Minute),
			Messages: ratelimit.NewRedisLimiter(client, "messages", cfg.MessagesPerMin, time.Minute),
		}
	}
	global := ratelimit.NewMemoryLimiter(cfg.RequestsPerMin, time.Minute)
	loc := ratelimit.NewMemoryLimiter(cfg.LocationUpdatesPerMin, time.Minute)
	msgs := ratelimit.NewMemoryLimiter(cfg.MessagesPerMin, time.Minute)
	for _, l := range []*ratelimit.MemoryLimiter{global, loc, msgs} {
		go l.RunPruner(ctx, time.Minute)
	}
	return Limiters{Global: global, Location: loc, Messages: msgs}
}

// Deps are the collaborators main builds from config. Redis and Media may be nil.
type Deps struct {
	Stores   Stores
	Limiters Limiters
	Redis    redis.UniversalClient
	Media    media.Uploader
	Log      *zap.Logger
}

// Setup wires services and handlers. With Redis set, message events are
// relayed through it until ctx is done.
func Setup(ctx context.Context, cfg *config.Config, deps Deps) *gin.Engine {
	stores, limiters, log := deps.Stores, deps.Limiters, deps.Log
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(middleware.Recovery(log), middleware.RequestLogger(log))
	corsCfg := cors.Config{
		AllowOrigins:     cfg.Server.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(corsCfg.AllowOrigins) == 0 {
		corsCfg.AllowOrigins = nil
		corsCfg.AllowAllOrigins = true
		corsCfg.AllowCredentials = false
	}
	r.Use(cors.New(corsCfg))
	r.Use(middleware.RateLimit(limiters.Global, middleware.ByClientIP, log))

	hub := ws.NewHub()
	var notifier service.Notifier = hub
	if deps.Redis != nil {
		relay := ws.NewRelay(deps.Redis, hub, log)
		go func() {
			if err := relay.Run(ctx); err != nil && ctx.Err() == nil {
				log.Error("event relay stopped", zap.Error(err))
			}
		}()
		notifier = relay
	}

	// Services
	locationSvc := service.NewLocationService(stores.Locations, log)
	proximitySvc := service.NewProximityService(stores.Locations, stores.Profiles, cfg.Proximity.Range, log)
	conversationSvc := service.NewConversationService(proximitySvc, stores.Messages, notifier, log)
	feedSvc := service.NewFeedService(proximitySvc, stores.Posts, cfg.Proximity.FeedPageSize, log)
	profileSvc := service.NewProfileService(stores.Profiles, log)

	// Handlers
	locationHandler := handler.NewLocationHandler(locationSvc)
	nearbyHandler := handler.NewNearbyHandler(proximitySvc, cfg.Proximity.MaxRange)
	conversationHandler := handler.NewConversationHandler(conversationSvc)
	feedHandler := handler.NewFeedHandler(feedSvc)
	profileHandler := handler.NewProfileHandler(profileSvc)
	uploadHandler := handler.NewUploadHandler(deps.Media, cfg.Storage.Folder)

	authMw := middleware.AuthRequired(&cfg.JWT)
	perUser := func(l ratelimit.Limiter) gin.HandlerFunc {
		return middleware.RateLimit(l, middleware.ByUser, log)
	}

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ws/events", ws.UpgradeEventsWS(&cfg.JWT, hub, cfg.Server.AllowedOrigins, log))

	api := r.Group("/api/v1")
	api.Use(authMw)
	{
		me := api.Group("/me")
		{
			me.GET("/location", locationHandler.GetLocation)
			me.PATCH("/location", perUser(limiters.Location), locationHandler.UpdateLocation)
			me.GET("/profile", profileHandler.GetMe)
			me.PUT("/profile", profileHandler.UpdateMe)
			me.POST("/uploads", uploadHandler.Upload)
		}
		api.GET("/nearby", nearbyHandler.Nearby)
		api.GET("/conversations/:user_id", conversationHandler.Open)
		api.POST("/conversations/:user_id/messages", perUser(limiters.Messages), conversationHandler.Send)
		api.GET("/feed", feedHandler.Feed)
		api.POST("/posts", perUser(limiters.Messages), feedHandler.CreatePost)
	}
	return r
}
