package postgres

import (
	"context"
	"fmt"

	"github.com/Aleshka-08-12-00/navuchai-back-sub000/internal/models"
	"github.com/Aleshka-08-12-00/navuchai-back-sub000/internal/repositories"
	"gorm.io/gorm"
)

type AuditPostgreSQL struct {
	db      *gorm.DB
	helpers *SharedHelpers
}

func NewAuditPostgreSQL(db *gorm.DB) repositories.AuditRepository {
	return &AuditPostgreSQL{
		db:      db,
		helpers: NewSharedHelpers(db),
	}
}

func (a *AuditPostgreSQL) Create(ctx context.Context, tx *gorm.DB, entry *models.AuditLog) error {
	if err := a.helpers.getDB(tx).WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("failed to create audit log: %w", err)
	}
	return nil
}
