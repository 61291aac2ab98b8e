package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/headcookai/headcook/config"
	"github.com/headcookai/headcook/internal/database"
	"github.com/headcookai/headcook/internal/logger"
	"github.com/headcookai/headcook/internal/service"
	"github.com/headcookai/headcook/internal/store"
)

// Local accounts for development. All share testUserPassword.
var testUsers = []string{
	"john.doe@example.com",
	"jane.smith@example.com",
	"bob.wilson@example.com",
}

const testUserPassword = "testpassword123"

// seed_test_users creates local accounts and prints a bearer token for each,
// for use against a server running with AUTH_PROVIDER=local.
func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		zap.NewExample().Fatal("failed to load configuration", zap.Error(err))
	}
	if cfg.Env == config.Production {
		zap.NewExample().Fatal("refusing to seed test users in production")
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Format: "console"})
	defer func() { _ = log.Sync() }()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	credentials, closeStore, err := openCredentialStore(ctx, cfg, log)
	if err != nil {
		log.Fatal("failed to open store", zap.Error(err))
	}
	defer closeStore()

	auth := service.NewAuthService(credentials, service.NewJWTVerifier(cfg.Auth.JWTSecret), cfg.Auth.TokenTTL, log)

	for _, email := range testUsers {
		token, err := auth.Register(ctx, email, testUserPassword)
		if errors.Is(err, service.ErrEmailTaken) {
			token, err = auth.Login(ctx, email, testUserPassword)
		}
		if err != nil {
			log.Error("failed to seed user", zap.String("email", email), zap.Error(err))
			continue
		}
		fmt.Printf("%s\t%s\n", email, token)
	}
}

func openCredentialStore(ctx context.Context, cfg *config.Config, log *zap.Logger) (store.CredentialStore, func(), error) {
	if cfg.Database.Driver == config.DriverMongo {
		client, err := database.NewMongoClient(ctx, cfg.Database, log)
		if err != nil {
			return nil, nil, err
		}
		closeFn := func() { _ = client.Disconnect(context.Background()) }
		s := store.NewMongoStore(client.Database(cfg.Database.MongoDatabase))
		if err := s.EnsureIndexes(ctx); err != nil {
			closeFn()
			return nil, nil, err
		}
		return s, closeFn, nil
	}

	db, err := database.Open(cfg.Database, log)
	if err != nil {
		return nil, nil, err
	}
	closeFn := func() { _ = database.Close(db) }
	if err := database.RunMigrations(db, log); err != nil {
		closeFn()
		return nil, nil, err
	}
	return store.NewGormStore(db), closeFn, nil
}
