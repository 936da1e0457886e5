package postgres

import (
	"context"
	"log/slog"
	"time"

	"github.com/Aleshka-08-12-00/navuchai-back-sub000/internal/cache"
	"github.com/Aleshka-08-12-00/navuchai-back-sub000/internal/models"
	"github.com/Aleshka-08-12-00/navuchai-back-sub000/internal/repositories"
	"gorm.io/gorm"
)

type Repository struct {
	db     *gorm.DB
	test   repositories.TestRepository
	result repositories.ResultRepository
	audit  repositories.AuditRepository
}

func NewRepository(db *gorm.DB, testCache cache.CacheService, testCacheTTL time.Duration, logger *slog.Logger) repositories.Repository {
	return &Repository{
		db:     db,
		test:   NewTestPostgreSQL(db, testCache, testCacheTTL, logger),
		result: NewResultPostgreSQL(db),
		audit:  NewAuditPostgreSQL(db),
	}
}

func (r *Repository) Test() repositories.TestRepository     { return r.test }
func (r *Repository) Result() repositories.ResultRepository { return r.result }
func (r *Repository) Audit() repositories.AuditRepository   { return r.audit }
func (r *Repository) DB() *gorm.DB                          { return r.db }

func (r *Repository) WithTransaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

func (r *Repository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (r *Repository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Migrate creates or updates the tables this service reads and writes.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Question{},
		&models.Test{},
		&models.TestQuestion{},
		&models.Result{},
		&models.AuditLog{},
	)
}
