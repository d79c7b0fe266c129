package main

import (
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker/v2"
	"gorm.io/gorm"

	"fitzty/internal/cache"
	"fitzty/internal/config"
	"fitzty/internal/handlers"
	"fitzty/internal/metrics"
	"fitzty/internal/middleware"
	"fitzty/internal/progression"
	"fitzty/internal/repositories"
	"fitzty/internal/services"
	"fitzty/pkg/database"
	"fitzty/pkg/llm"
	"fitzty/pkg/logger"
	"fitzty/pkg/rabbitmq"
)

// infra holds the external connections. Redis and RabbitMQ are optional and stay
// nil when unconfigured or unreachable.
type infra struct {
	db    *gorm.DB
	redis *redis.Client
	mq    *rabbitmq.Client
}

func openInfra(cfg *config.Config, log *logger.Logger) (*infra, error) {
	db, err := database.OpenAndMigrate(database.Config{
		Driver: cfg.DatabaseDriver,
		DSN:    cfg.DatabaseDSN,
		Debug:  !cfg.IsProduction(),
	})
	if err != nil {
		return nil, err
	}
	in := &infra{db: db}

	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		err := client.Ping(ctx).Err()
		cancel()
		if err != nil {
			log.Warn("redis unreachable, follow cache disabled", "addr", cfg.RedisAddr, "error", err)
			_ = client.Close()
		} else {
			in.redis = client
		}
	}

	if cfg.RabbitMQURL != "" {
		mq, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL}, log)
		if err != nil {
			log.Warn("rabbitmq unavailable, events disabled", "error", err)
		} else {
			in.mq = mq
		}
	}
	return in, nil
}

func (in *infra) Close(log *logger.Logger) {
	if in.mq != nil {
		if err := in.mq.Close(); err != nil {
			log.Warn("closing rabbitmq", "error", err)
		}
	}
	if in.redis != nil {
		if err := in.redis.Close(); err != nil {
			log.Warn("closing redis", "error", err)
		}
	}
	if sqlDB, err := in.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

// events returns the publisher, or a nil interface when RabbitMQ is off.
func (in *infra) events() services.EventPublisher {
	if in.mq == nil {
		return nil
	}
	return in.mq
}

func buildServices(cfg *config.Config, in *infra, log *logger.Logger) handlers.Services {
	users := repositories.NewGORMUserRepository(in.db)
	posts := repositories.NewGORMPostRepository(in.db)
	interactions := repositories.NewGORMInteractionRepository(in.db)
	challenges := repositories.NewGORMChallengeRepository(in.db)
	recs := repositories.NewGORMRecommendationRepository(in.db)
	closet := repositories.NewGORMClosetRepository(in.db)
	avatars := repositories.NewGORMAvatarItemRepository(in.db)
	follows := repositories.NewFollowRepository(in.db)
	if in.redis != nil {
		follows = cache.NewFollowCache(follows, in.redis, cfg.RedisTTL, log)
	}

	chat := llm.NewClient(llm.Config{
		APIKey:  cfg.LLMAPIKey,
		BaseURL: cfg.LLMBaseURL,
		Model:   cfg.LLMModel,
		Timeout: cfg.LLMTimeout,
		MaxRPS:  cfg.LLMMaxRPS,
		Referer: cfg.LLMReferer,
		Title:   cfg.LLMTitle,
		OnStateChange: func(_ string, _, to gobreaker.State) {
			metrics.SetCircuitState(int(to))
		},
	}, log)

	events := in.events()
	feedCfg := services.DefaultFeedConfig()
	feedCfg.DefaultLimit = cfg.FeedDefaultLimit
	feedCfg.MaxLimit = cfg.FeedMaxLimit
	feedCfg.TrendingWindow = cfg.FeedTrendingWindow
	feedCfg.ColdStartFallback = cfg.FeedColdStartToTrend

	activity := services.NewActivityService(users, avatars, progression.StreakPolicy{ResetOnMiss: cfg.StreakResetOnMiss}, events, log)
	return handlers.Services{
		Auth:            services.NewAuthService(users, cfg.JWTSecret, log),
		Feed:            services.NewFeedService(users, posts, follows, interactions, feedCfg, log),
		Activity:        activity,
		Recommendations: services.NewRecommendationService(users, posts, closet, recs, chat, services.RecommendationConfig{Timeout: cfg.LLMTimeout}, events, log),
		Avatar:          services.NewAvatarService(users, avatars, log),
		Posts:           services.NewPostService(users, posts, interactions, activity, events, log),
		Social:          services.NewSocialService(users, follows, log),
		Challenges:      services.NewChallengeService(users, challenges, activity, log),
		Closet:          services.NewClosetService(users, closet, activity, log),
	}
}

func newApp(cfg *config.Config, in *infra, svc handlers.Services, log *logger.Logger) *fiber.App {
	app := handlers.NewApp(log)
	app.Use(fiberlogger.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		status := fiber.StatusOK
		body := fiber.Map{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"database": "connected",
			"redis":    connState(in.redis != nil),
			"rabbitmq": connState(in.mq != nil),
		}
		if err := pingDB(c.UserContext(), in.db); err != nil {
			status = fiber.StatusServiceUnavailable
			body["status"] = "degraded"
			body["database"] = err.Error()
		}
		return c.Status(status).JSON(body)
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	guard := middleware.OptionalAuth(svc.Auth, log)
	if cfg.AuthRequired {
		guard = middleware.AuthRequired(svc.Auth, log)
	}
	handlers.RegisterRoutes(app.Group("/api/v1"), svc, guard, log)
	return app
}

func pingDB(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("database handle: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

func connState(ok bool) string {
	if ok {
		return "connected"
	}
	return "disabled"
}
