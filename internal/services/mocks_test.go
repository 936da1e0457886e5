package services

import (
	"context"

	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"

	"github.com/Aleshka-08-12-00/navuchai-back-sub000/internal/models"
	"github.com/Aleshka-08-12-00/navuchai-back-sub000/internal/repositories"
)

// MockTestRepository is a mock implementation of TestRepository
type MockTestRepository struct {
	mock.Mock
}

func (m *MockTestRepository) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Test, error) {
	args := m.Called(ctx, tx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Test), args.Error(1)
}

func (m *MockTestRepository) GetWithQuestions(ctx context.Context, tx *gorm.DB, id uint) (*models.Test, error) {
	args := m.Called(ctx, tx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Test), args.Error(1)
}

func (m *MockTestRepository) InvalidateCache(ctx context.Context, id uint) {
	m.Called(ctx, id)
}

// MockResultRepository is a mock implementation of ResultRepository
type MockResultRepository struct {
	mock.Mock
}

func (m *MockResultRepository) Create(ctx context.Context, tx *gorm.DB, result *models.Result) error {
	args := m.Called(ctx, tx, result)
	return args.Error(0)
}

func (m *MockResultRepository) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Result, error) {
	args := m.Called(ctx, tx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Result), args.Error(1)
}

func (m *MockResultRepository) Supersede(ctx context.Context, tx *gorm.DB, oldID, newID uint) error {
	args := m.Called(ctx, tx, oldID, newID)
	return args.Error(0)
}

func (m *MockResultRepository) ListByTest(ctx context.Context, tx *gorm.DB, testID uint, filters repositories.ResultFilters) ([]*models.Result, int64, error) {
	args := m.Called(ctx, tx, testID, filters)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*models.Result), args.Get(1).(int64), args.Error(2)
}

// MockAuditRepository is a mock implementation of AuditRepository
type MockAuditRepository struct {
	mock.Mock
}

func (m *MockAuditRepository) Create(ctx context.Context, tx *gorm.DB, entry *models.AuditLog) error {
	args := m.Called(ctx, tx, entry)
	return args.Error(0)
}

// MockRepository implements repositories.Repository for testing
type MockRepository struct {
	testRepo   *MockTestRepository
	resultRepo *MockResultRepository
	auditRepo  *MockAuditRepository
}

func newMockRepository() *MockRepository {
	return &MockRepository{
		testRepo:   &MockTestRepository{},
		resultRepo: &MockResultRepository{},
		auditRepo:  &MockAuditRepository{},
	}
}

func (m *MockRepository) Test() repositories.TestRepository     { return m.testRepo }
func (m *MockRepository) Result() repositories.ResultRepository { return m.resultRepo }
func (m *MockRepository) Audit() repositories.AuditRepository   { return m.auditRepo }
func (m *MockRepository) DB() *gorm.DB                          { return nil }

func (m *MockRepository) WithTransaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}
func (m *MockRepository) Ping(ctx context.Context) error { return nil }
func (m *MockRepository) Close() error                   { return nil }
