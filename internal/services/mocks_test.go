package services

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"

	"github.com/4brn/stddy-bddy/internal/models"
	"github.com/4brn/stddy-bddy/internal/repositories"
)

// ===== TESTIFY MOCKS FOR ENTITY REPOSITORIES =====

type MockUserRepository struct{ mock.Mock }

func (m *MockUserRepository) Create(ctx context.Context, tx *gorm.DB, user *models.User) error {
	args := m.Called(ctx, tx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.User, error) {
	args := m.Called(ctx, tx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, tx *gorm.DB, username string) (*models.User, error) {
	args := m.Called(ctx, tx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) Update(ctx context.Context, tx *gorm.DB, user *models.User) error {
	args := m.Called(ctx, tx, user)
	return args.Error(0)
}

func (m *MockUserRepository) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	args := m.Called(ctx, tx, id)
	return args.Error(0)
}

func (m *MockUserRepository) List(ctx context.Context, tx *gorm.DB, filters repositories.UserFilters) ([]*models.User, int64, error) {
	args := m.Called(ctx, tx, filters)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*models.User), args.Get(1).(int64), args.Error(2)
}

func (m *MockUserRepository) ExistsByUsername(ctx context.Context, tx *gorm.DB, username string) (bool, error) {
	args := m.Called(ctx, tx, username)
	return args.Bool(0), args.Error(1)
}

type MockSessionRepository struct{ mock.Mock }

func (m *MockSessionRepository) Create(ctx context.Context, tx *gorm.DB, session *models.Session) error {
	args := m.Called(ctx, tx, session)
	return args.Error(0)
}

func (m *MockSessionRepository) GetByToken(ctx context.Context, tx *gorm.DB, token string) (*models.Session, error) {
	args := m.Called(ctx, tx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Session), args.Error(1)
}

func (m *MockSessionRepository) UpdateExpiry(ctx context.Context, tx *gorm.DB, token string, expiresAt time.Time) error {
	args := m.Called(ctx, tx, token, expiresAt)
	return args.Error(0)
}

func (m *MockSessionRepository) Delete(ctx context.Context, tx *gorm.DB, token string) error {
	args := m.Called(ctx, tx, token)
	return args.Error(0)
}

func (m *MockSessionRepository) DeleteByUser(ctx context.Context, tx *gorm.DB, userID uint) error {
	args := m.Called(ctx, tx, userID)
	return args.Error(0)
}

type MockTestRepository struct{ mock.Mock }

func (m *MockTestRepository) Create(ctx context.Context, tx *gorm.DB, test *models.Test) error {
	args := m.Called(ctx, tx, test)
	return args.Error(0)
}

func (m *MockTestRepository) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Test, error) {
	args := m.Called(ctx, tx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Test), args.Error(1)
}

func (m *MockTestRepository) Update(ctx context.Context, tx *gorm.DB, test *models.Test) error {
	args := m.Called(ctx, tx, test)
	return args.Error(0)
}

func (m *MockTestRepository) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	args := m.Called(ctx, tx, id)
	return args.Error(0)
}

func (m *MockTestRepository) List(ctx context.Context, tx *gorm.DB, filters repositories.TestFilters) ([]*models.Test, int64, error) {
	args := m.Called(ctx, tx, filters)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*models.Test), args.Get(1).(int64), args.Error(2)
}

func (m *MockTestRepository) CountByAuthor(ctx context.Context, tx *gorm.DB, authorID uint) (int64, error) {
	args := m.Called(ctx, tx, authorID)
	return args.Get(0).(int64), args.Error(1)
}

type MockLikeRepository struct{ mock.Mock }

func (m *MockLikeRepository) Create(ctx context.Context, tx *gorm.DB, like *models.Like) error {
	args := m.Called(ctx, tx, like)
	return args.Error(0)
}

func (m *MockLikeRepository) Delete(ctx context.Context, tx *gorm.DB, userID, testID uint) error {
	args := m.Called(ctx, tx, userID, testID)
	return args.Error(0)
}

func (m *MockLikeRepository) DeleteByTest(ctx context.Context, tx *gorm.DB, testID uint) error {
	args := m.Called(ctx, tx, testID)
	return args.Error(0)
}

func (m *MockLikeRepository) Exists(ctx context.Context, tx *gorm.DB, userID, testID uint) (bool, error) {
	args := m.Called(ctx, tx, userID, testID)
	return args.Bool(0), args.Error(1)
}

func (m *MockLikeRepository) CountByTest(ctx context.Context, tx *gorm.DB, testID uint) (int64, error) {
	args := m.Called(ctx, tx, testID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockLikeRepository) ListTestIDsByUser(ctx context.Context, tx *gorm.DB, userID uint) ([]uint, error) {
	args := m.Called(ctx, tx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uint), args.Error(1)
}

type MockResultRepository struct{ mock.Mock }

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

func (m *MockResultRepository) List(ctx context.Context, tx *gorm.DB, filters repositories.ResultFilters) ([]*models.Result, int64, error) {
	args := m.Called(ctx, tx, filters)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*models.Result), args.Get(1).(int64), args.Error(2)
}

type MockCategoryRepository struct{ mock.Mock }

func (m *MockCategoryRepository) Create(ctx context.Context, tx *gorm.DB, category *models.Category) error {
	args := m.Called(ctx, tx, category)
	return args.Error(0)
}

func (m *MockCategoryRepository) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Category, error) {
	args := m.Called(ctx, tx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Category), args.Error(1)
}

func (m *MockCategoryRepository) Update(ctx context.Context, tx *gorm.DB, category *models.Category) error {
	args := m.Called(ctx, tx, category)
	return args.Error(0)
}

func (m *MockCategoryRepository) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	args := m.Called(ctx, tx, id)
	return args.Error(0)
}

func (m *MockCategoryRepository) List(ctx context.Context, tx *gorm.DB) ([]*models.Category, error) {
	args := m.Called(ctx, tx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Category), args.Error(1)
}

// ===== AGGREGATE MOCK =====

type mockRepository struct {
	user     *MockUserRepository
	session  *MockSessionRepository
	test     *MockTestRepository
	like     *MockLikeRepository
	result   *MockResultRepository
	category *MockCategoryRepository
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		user:     new(MockUserRepository),
		session:  new(MockSessionRepository),
		test:     new(MockTestRepository),
		like:     new(MockLikeRepository),
		result:   new(MockResultRepository),
		category: new(MockCategoryRepository),
	}
}

func (m *mockRepository) User() repositories.UserRepository         { return m.user }
func (m *mockRepository) Session() repositories.SessionRepository   { return m.session }
func (m *mockRepository) Test() repositories.TestRepository         { return m.test }
func (m *mockRepository) Like() repositories.LikeRepository         { return m.like }
func (m *mockRepository) Result() repositories.ResultRepository     { return m.result }
func (m *mockRepository) Category() repositories.CategoryRepository { return m.category }

func (m *mockRepository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	return fn(m)
}

func (m *mockRepository) Ping(ctx context.Context) error { return nil }
func (m *mockRepository) Close() error                   { return nil }

func (m *mockRepository) assertExpectations(t *testing.T) {
	t.Helper()
	m.user.AssertExpectations(t)
	m.session.AssertExpectations(t)
	m.test.AssertExpectations(t)
	m.like.AssertExpectations(t)
	m.result.AssertExpectations(t)
	m.category.AssertExpectations(t)
}

// ===== SHARED FIXTURES =====

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func adminActor() *models.User {
	return &models.User{ID: 1, Username: "admin", Role: models.RoleAdmin}
}

func userActor(id uint) *models.User {
	return &models.User{ID: id, Username: "user", Role: models.RoleUser}
}
