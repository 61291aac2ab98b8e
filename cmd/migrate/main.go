package main

import (
	"context"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/headcookai/headcook/config"
	"github.com/headcookai/headcook/internal/database"
	"github.com/headcookai/headcook/internal/logger"
	"github.com/headcookai/headcook/internal/store"
)

// migrate prepares the configured user store: tables for the SQL drivers,
// indexes for MongoDB.
func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		zap.NewExample().Fatal("failed to load configuration", zap.Error(err))
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	defer func() { _ = log.Sync() }()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if cfg.Database.Driver == config.DriverMongo {
		client, err := database.NewMongoClient(ctx, cfg.Database, log)
		if err != nil {
			log.Fatal("failed to connect to database", zap.Error(err))
		}
		defer func() { _ = client.Disconnect(context.Background()) }()

		if err := store.NewMongoStore(client.Database(cfg.Database.MongoDatabase)).EnsureIndexes(ctx); err != nil {
			log.Fatal("failed to create indexes", zap.Error(err))
		}
		log.Info("indexes created", zap.String("database", cfg.Database.MongoDatabase))
		return
	}

	db, err := database.Open(cfg.Database, log)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer func() { _ = database.Close(db) }()

	if err := database.RunMigrations(db.WithContext(ctx), log); err != nil {
		log.Fatal("migration failed", zap.Error(err))
	}
}
