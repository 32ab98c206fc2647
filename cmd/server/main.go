package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"nearby/config"
	"nearby/internal/database"
	"nearby/internal/repository"
	"nearby/internal/router"
	"nearby/pkg/cloudinary"
	"nearby/pkg/logger"
	"nearby/pkg/media"
	"nearby/pkg/objectstore"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}
	logg, err := logger.New(cfg.Log.Level, cfg.Server.Env)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logg.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	deps := router.Deps{Log: logg}
	if cfg.Database.Driver == "memory" {
		logg.Warn("using in-memory store; data is lost on restart")
		deps.Stores = router.MemoryStores(repository.NewMemoryStore())
	} else {
		db, err := database.NewDB(&cfg.Database)
		if err != nil {
			logg.Fatal("database", zap.Error(err))
		}
		if err := database.AutoMigrate(db); err != nil {
			logg.Fatal("migrate", zap.Error(err))
		}
		deps.Stores = router.GormStores(db)
	}

	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			logg.Fatal("redis", zap.Error(err))
		}
		defer rdb.Close()
		deps.Redis = rdb
	} else {
		logg.Info("REDIS_ADDR not set; rate limits and message events are per instance")
	}
	deps.Limiters = router.NewLimiters(ctx, &cfg.RateLimit, deps.Redis)

	deps.Media, err = newUploader(ctx, cfg)
	if err != nil {
		logg.Fatal("media storage", zap.Error(err))
	}
	if deps.Media == nil {
		logg.Info("STORAGE_BACKEND=none; uploads disabled")
	}

	engine := router.Setup(ctx, cfg, deps)
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	go func() {
		logg.Info("server listening", zap.String("port", cfg.Server.Port), zap.String("env", cfg.Server.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Fatal("listen", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logg.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logg.Error("server shutdown", zap.Error(err))
	}
}

func newUploader(ctx context.Context, cfg *config.Config) (media.Uploader, error) {
	switch cfg.Storage.Backend {
	case "cloudinary":
		client, err := cloudinary.NewClientFromParams(cfg.Cloudinary.CloudName, cfg.Cloudinary.APIKey, cfg.Cloudinary.APISecret)
		if err != nil {
			return nil, err
		}
		return client, nil
	case "minio":
		store, err := objectstore.NewMinioStore(objectstore.Config{
			Endpoint:  cfg.MinIO.Endpoint,
			AccessKey: cfg.MinIO.AccessKey,
			SecretKey: cfg.MinIO.SecretKey,
			Bucket:    cfg.MinIO.Bucket,
			Region:    cfg.MinIO.Region,
			UseSSL:    cfg.MinIO.UseSSL,
			PublicURL: cfg.MinIO.PublicURL,
		})
		if err != nil {
			return nil, err
		}
		ensureCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := store.EnsureBucket(ensureCtx); err != nil {
			return nil, err
		}
		return store, nil
	}
	return nil, nil
}
