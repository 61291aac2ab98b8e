package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/headcookai/headcook/config"
	"github.com/headcookai/headcook/internal/api"
	"github.com/headcookai/headcook/internal/database"
	"github.com/headcookai/headcook/internal/logger"
	"github.com/headcookai/headcook/internal/metrics"
	"github.com/headcookai/headcook/internal/middleware"
	"github.com/headcookai/headcook/internal/router"
	"github.com/headcookai/headcook/internal/server"
	"github.com/headcookai/headcook/internal/service"
	"github.com/headcookai/headcook/internal/store"
)

// stores bundles the user and credential stores with their health probe.
type stores struct {
	users       store.UserStore
	credentials store.CredentialStore
	ping        api.PingFunc
	close       func()
}

func main() {
	// A missing .env file is fine; the environment may be set directly
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		// The logger is configured from cfg, so fall back to a default one
		zap.NewExample().Fatal("failed to load configuration", zap.Error(err))
	}

	log := logger.New(logger.Config{
		Level:       cfg.LogLevel,
		Format:      cfg.LogFormat,
		Development: cfg.Env == config.Development,
	})
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Fatal("server error", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	st, err := openStores(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer st.close()
	checks := map[string]api.Pinger{"database": st.ping}

	var redisClient *redis.Client
	if cfg.Redis.Enabled() {
		client, err := database.NewRedisClient(cfg.Redis, log)
		if err != nil {
			// Redis only backs the rate limiter and the image cache, both of which degrade
			log.Warn("redis unavailable, continuing without it", zap.Error(err))
		} else {
			redisClient = client
			defer client.Close()
			checks["redis"] = api.PingFunc(func(ctx context.Context) error { return client.Ping(ctx).Err() })
		}
	}

	// Identity
	var verifier middleware.TokenVerifier
	var authHandler *api.AuthHandler
	switch cfg.Auth.Provider {
	case config.AuthProviderFirebase:
		fv, err := service.NewFirebaseVerifier(ctx, cfg.Auth.FirebaseProjectID, cfg.Auth.FirebaseCredentialsFile)
		if err != nil {
			return err
		}
		verifier = fv
	default:
		jwtVerifier := service.NewJWTVerifier(cfg.Auth.JWTSecret)
		verifier = jwtVerifier
		authHandler = api.NewAuthHandler(service.NewAuthService(st.credentials, jwtVerifier, cfg.Auth.TokenTTL, log), log)
	}

	// Recipe generation
	var generator service.RecipeGenerator
	switch cfg.LLM.Provider {
	case config.LLMProviderGemini:
		gemini, err := service.NewGeminiRecipeGenerator(ctx, cfg.LLM, m, log)
		if err != nil {
			return err
		}
		defer gemini.Close()
		generator = gemini
	default:
		generator = service.NewOpenAIRecipeGenerator(cfg.LLM, m, log)
	}

	// Image generation, cached in Redis and mirrored to S3 when configured
	var cache service.ImageCache
	if redisClient != nil {
		cache = service.NewRedisImageCache(redisClient, cfg.Image.CacheTTL)
	}
	var mirror service.ImageMirror
	if cfg.Storage.Bucket != "" {
		s3cfg, err := config.NewS3Config(ctx, cfg.Storage)
		if err != nil {
			return err
		}
		mirror = service.NewS3ImageMirror(s3cfg, cfg.Image.Timeout, log)
	}
	images := service.NewImageService(service.NewDalleImageGenerator(cfg.Image, m, log), cache, mirror, m, log)

	var limiter *middleware.RateLimiter
	if cfg.RateLimit.Enabled {
		limiter = middleware.NewRateLimiter(redisClient, middleware.RateLimitConfig{
			Window:    cfg.RateLimit.Window,
			Limit:     cfg.RateLimit.Limit,
			KeyPrefix: "headcook:ratelimit",
		}, log)
	}

	engine := router.SetupRouter(router.Dependencies{
		Verifier:       verifier,
		Searcher:       service.NewSearchService(st.users, generator, cfg.Quota.FreeSearches, m, log),
		Images:         images,
		AuthHandler:    authHandler,
		RateLimiter:    limiter,
		Health:         api.NewHealthHandler(checks),
		Metrics:        m,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Logger:         log,
	})

	srv := server.New(cfg.Server, engine, log)
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		log.Info("received shutdown signal")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil {
		return err
	}
	log.Info("server stopped")
	return nil
}

func openStores(ctx context.Context, cfg *config.Config, log *zap.Logger) (*stores, error) {
	if cfg.Database.Driver == config.DriverMongo {
		client, err := database.NewMongoClient(ctx, cfg.Database, log)
		if err != nil {
			return nil, err
		}
		mongoStore := store.NewMongoStore(client.Database(cfg.Database.MongoDatabase))
		if err := mongoStore.EnsureIndexes(ctx); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, err
		}
		return &stores{
			users:       mongoStore,
			credentials: mongoStore,
			ping:        func(ctx context.Context) error { return client.Ping(ctx, nil) },
			close:       func() { _ = client.Disconnect(context.Background()) },
		}, nil
	}

	db, err := database.Open(cfg.Database, log)
	if err != nil {
		return nil, err
	}
	if err := database.RunMigrations(db, log); err != nil {
		_ = database.Close(db)
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		_ = database.Close(db)
		return nil, err
	}
	gormStore := store.NewGormStore(db)
	return &stores{
		users:       gormStore,
		credentials: gormStore,
		ping:        sqlDB.PingContext,
		close:       func() { _ = database.Close(db) },
	}, nil
}
