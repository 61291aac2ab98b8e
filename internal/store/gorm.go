package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/headcookai/headcook/internal/models"
	"github.com/headcookai/headcook/internal/types"
)

// GormStore implements UserStore and CredentialStore on PostgreSQL or SQLite.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) GetUser(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

func (s *GormStore) IncrementSearchCount(ctx context.Context, identity types.Identity, limit int64) (int64, error) {
	var user models.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		newUser := models.User{ID: identity.UID, Email: identity.Email}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&newUser).Error; err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}

		// The conditional UPDATE is a single statement, so concurrent searches
		// cannot both pass the limit check on a stale count.
		query := tx.Model(&models.User{}).Where("id = ?", identity.UID)
		if limit > 0 {
			query = query.Where("search_count < ?", limit)
		}
		res := query.UpdateColumns(map[string]interface{}{
			"search_count": gorm.Expr("search_count + ?", 1),
			"updated_at":   time.Now(),
		})
		if res.Error != nil {
			return fmt.Errorf("failed to increment search count: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrQuotaExceeded
		}

		return tx.First(&user, "id = ?", identity.UID).Error
	})
	if err != nil {
		return 0, err
	}
	return user.SearchCount, nil
}

func (s *GormStore) CreateCredential(ctx context.Context, cred *models.Credential) error {
	if err := s.db.WithContext(ctx).Create(cred).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to create credential: %w", err)
	}
	return nil
}

func (s *GormStore) GetCredentialByEmail(ctx context.Context, email string) (*models.Credential, error) {
	var cred models.Credential
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&cred).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get credential: %w", err)
	}
	return &cred, nil
}

// isUniqueViolation recognizes unique constraint errors from every driver we
// run on. lib/pq errors are not translated by gorm.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
