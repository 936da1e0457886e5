package repositories

import (
	"context"
	"errors"

	"github.com/Aleshka-08-12-00/navuchai-back-sub000/internal/models"
	"gorm.io/gorm"
)

// ErrStaleWrite is returned when a conditional update matched no row because another
// writer got there first.
var ErrStaleWrite = errors.New("record was modified concurrently")

// ===== SHARED FILTER STRUCTS =====

type ResultFilters struct {
	UserID              *string `json:"user_id"`
	ManualCheckRequired *bool   `json:"manual_check_required"`
	IncludeSuperseded   bool    `json:"include_superseded"`
	Limit               int     `json:"limit"`
	Offset              int     `json:"offset"`
	SortBy              string  `json:"sort_by"`    // "created_at", "percentage", "score"
	SortOrder           string  `json:"sort_order"` // "asc", "desc"
}

// ===== REPOSITORIES =====

// TestRepository reads the test catalog. Tests are owned by the authoring side and
// are read-only here.
type TestRepository interface {
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Test, error)
	// GetWithQuestions returns the test with its question links ordered by position
	GetWithQuestions(ctx context.Context, tx *gorm.DB, id uint) (*models.Test, error)
	InvalidateCache(ctx context.Context, id uint)
}

type ResultRepository interface {
	Create(ctx context.Context, tx *gorm.DB, result *models.Result) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Result, error)
	// Supersede marks oldID as replaced by newID. It fails with ErrStaleWrite when
	// oldID was already superseded.
	Supersede(ctx context.Context, tx *gorm.DB, oldID, newID uint) error
	ListByTest(ctx context.Context, tx *gorm.DB, testID uint, filters ResultFilters) ([]*models.Result, int64, error)
}

// AuditRepository stores who changed grading data and how.
type AuditRepository interface {
	Create(ctx context.Context, tx *gorm.DB, entry *models.AuditLog) error
}

// Repository groups the repositories over one database handle.
type Repository interface {
	Test() TestRepository
	Result() ResultRepository
	Audit() AuditRepository

	DB() *gorm.DB
	WithTransaction(ctx context.Context, fn func(tx *gorm.DB) error) error
	Ping(ctx context.Context) error
	Close() error
}
