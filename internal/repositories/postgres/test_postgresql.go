package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Aleshka-08-12-00/navuchai-back-sub000/internal/cache"
	"github.com/Aleshka-08-12-00/navuchai-back-sub000/internal/models"
	"github.com/Aleshka-08-12-00/navuchai-back-sub000/internal/repositories"
	"gorm.io/gorm"
)

type TestPostgreSQL struct {
	db       *gorm.DB
	helpers  *SharedHelpers
	cache    cache.CacheService
	cacheTTL time.Duration
	logger   *slog.Logger
}

// NewTestPostgreSQL builds the test repository. A nil cache disables caching.
func NewTestPostgreSQL(db *gorm.DB, testCache cache.CacheService, cacheTTL time.Duration, logger *slog.Logger) repositories.TestRepository {
	return &TestPostgreSQL{
		db:       db,
		helpers:  NewSharedHelpers(db),
		cache:    testCache,
		cacheTTL: cacheTTL,
		logger:   logger,
	}
}

func (t *TestPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Test, error) {
	var test models.Test
	if err := t.helpers.getDB(tx).WithContext(ctx).First(&test, id).Error; err != nil {
		return nil, fmt.Errorf("failed to get test %d: %w", id, err)
	}
	return &test, nil
}

// GetWithQuestions retrieves a test snapshot with caching
func (t *TestPostgreSQL) GetWithQuestions(ctx context.Context, tx *gorm.DB, id uint) (*models.Test, error) {
	load := func() (interface{}, error) {
		var test models.Test
		err := t.helpers.getDB(tx).WithContext(ctx).
			Preload("Questions", func(db *gorm.DB) *gorm.DB {
				return db.Order("test_questions.position ASC, test_questions.id ASC")
			}).
			Preload("Questions.Question").
			First(&test, id).Error
		if err != nil {
			return nil, fmt.Errorf("failed to get test %d with questions: %w", id, err)
		}
		return &test, nil
	}

	if t.cache == nil {
		value, err := load()
		if err != nil {
			return nil, err
		}
		return value.(*models.Test), nil
	}

	var test models.Test
	if err := t.cache.CacheOrExecute(ctx, snapshotKey(id), &test, t.cacheTTL, load); err != nil {
		return nil, err
	}
	return &test, nil
}

func (t *TestPostgreSQL) InvalidateCache(ctx context.Context, id uint) {
	cache.SafeDelete(ctx, t.cache, snapshotKey(id), t.logger)
}

func snapshotKey(id uint) string {
	return fmt.Sprintf("snapshot:%d", id)
}
