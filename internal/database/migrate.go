package database

import (
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/headcookai/headcook/internal/models"
)

// RunMigrations creates or updates the user store tables.
func RunMigrations(db *gorm.DB, logger *zap.Logger) error {
	logger.Info("running migrations", zap.String("dialect", db.Dialector.Name()))
	if err := db.AutoMigrate(&models.User{}, &models.Credential{}); err != nil {
		return fmt.Errorf("failed to migrate: %w", err)
	}
	return nil
}
