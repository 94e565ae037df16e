package app

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/vietanh2810/stand-portal-api/internal/api"
	"github.com/vietanh2810/stand-portal-api/internal/cache"
	"github.com/vietanh2810/stand-portal-api/internal/config"
	"github.com/vietanh2810/stand-portal-api/internal/db"
	"github.com/vietanh2810/stand-portal-api/internal/logger"
	"github.com/vietanh2810/stand-portal-api/internal/notify"
	"github.com/vietanh2810/stand-portal-api/internal/service"
	"github.com/vietanh2810/stand-portal-api/internal/storage"
)

func Start() error {
	conf, err := config.Load("./cmd/app/config.yml")
	if err != nil {
		return fmt.Errorf("failed to initialize config -> %w", err)
	}

	if err = logger.Init(conf.API.Environment); err != nil {
		return fmt.Errorf("failed to initialize logger -> %w", err)
	}
	if err = logger.SetLevel(conf.API.LogLevel); err != nil {
		zap.L().Warn("invalid log level, keeping the default", zap.String("log_level", conf.API.LogLevel))
	}
	config.Watch(func(updated *config.AppConfig) {
		if err := logger.SetLevel(updated.API.LogLevel); err != nil {
			zap.L().Warn("ignoring invalid log level", zap.String("log_level", updated.API.LogLevel))
			return
		}
		zap.L().Info("log level changed", zap.String("log_level", updated.API.LogLevel))
	})

	dbURL := os.Getenv("DATABASE_URL")
	var postgresDB *gorm.DB
	if dbURL != "" {
		postgresDB, err = db.OpenPostgresWithURL(dbURL)
	} else {
		postgresDB, err = db.OpenPostgres(conf.Postgres)
	}
	if err != nil {
		return fmt.Errorf("failed to initialize database -> %w", err)
	}

	blobs, err := openBlobStore(conf.Minio)
	if err != nil {
		return fmt.Errorf("failed to initialize file storage -> %w", err)
	}

	pub, err := notify.New(conf.Notifications)
	if err != nil {
		return fmt.Errorf("failed to initialize notifications -> %w", err)
	}
	defer func() {
		if err := pub.Close(); err != nil {
			zap.L().Warn("failed to close notification publisher", zap.Error(err))
		}
	}()

	redisClient := cache.NewRedisClient(conf.Redis)
	if redisClient == nil {
		zap.L().Info("redis not available, partner lookups are not cached")
	} else {
		defer redisClient.Close()
	}

	s := api.NewServer(conf, postgresDB, blobs, pub, redisClient)

	addr := ":" + s.Config.API.Port
	zap.L().Info(fmt.Sprintf("starting server at %v", addr))
	if err = s.Router.Run(addr); err != nil {
		return fmt.Errorf("failed to start the server -> %w", err)
	}

	return nil
}

func openBlobStore(conf *config.MinioConfig) (service.BlobStore, error) {
	if conf == nil || !conf.Enabled {
		zap.L().Warn("minio disabled, file uploads will be rejected")
		return storage.Disabled{}, nil
	}

	store, err := storage.NewMinioStore(conf)
	if err != nil {
		return nil, fmt.Errorf("storage.NewMinioStore -> %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err = store.EnsureBucket(ctx); err != nil {
		return nil, fmt.Errorf("store.EnsureBucket -> %w", err)
	}

	return store, nil
}
