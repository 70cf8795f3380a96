package repositories

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/4brn/stddy-bddy/internal/models"
)

// ===== SHARED FILTER STRUCTS =====

type TestFilters struct {
	AuthorID   *uint `json:"author_id"`
	CategoryID *uint `json:"category_id"`
	IsPrivate  *bool `json:"is_private"`
	// VisibleToUserID widens IsPrivate filtering to "public or owned by this user"
	VisibleToUserID *uint      `json:"-"`
	Search          string     `json:"search"`
	DateFrom        *time.Time `json:"date_from"`
	DateTo          *time.Time `json:"date_to"`
	Limit           int        `json:"limit"`
	Offset          int        `json:"offset"`
	SortBy          string     `json:"sort_by"`    // "created_at", "title", "likes"
	SortOrder       string     `json:"sort_order"` // "asc", "desc"
}

type ResultFilters struct {
	UserID   *uint      `json:"user_id"`
	TestID   *uint      `json:"test_id"`
	DateFrom *time.Time `json:"date_from"`
	DateTo   *time.Time `json:"date_to"`
	Limit    int        `json:"limit"`
	Offset   int        `json:"offset"`
}

type UserFilters struct {
	Role   *models.UserRole `json:"role"`
	Search string           `json:"search"`
	Limit  int              `json:"limit"`
	Offset int              `json:"offset"`
}

// ===== ENTITY REPOSITORY INTERFACES =====

type UserRepository interface {
	Create(ctx context.Context, tx *gorm.DB, user *models.User) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.User, error)
	GetByUsername(ctx context.Context, tx *gorm.DB, username string) (*models.User, error)
	Update(ctx context.Context, tx *gorm.DB, user *models.User) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error
	List(ctx context.Context, tx *gorm.DB, filters UserFilters) ([]*models.User, int64, error)
	ExistsByUsername(ctx context.Context, tx *gorm.DB, username string) (bool, error)
}

type SessionRepository interface {
	Create(ctx context.Context, tx *gorm.DB, session *models.Session) error
	GetByToken(ctx context.Context, tx *gorm.DB, token string) (*models.Session, error)
	UpdateExpiry(ctx context.Context, tx *gorm.DB, token string, expiresAt time.Time) error
	Delete(ctx context.Context, tx *gorm.DB, token string) error
	DeleteByUser(ctx context.Context, tx *gorm.DB, userID uint) error
}

type TestRepository interface {
	Create(ctx context.Context, tx *gorm.DB, test *models.Test) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Test, error)
	Update(ctx context.Context, tx *gorm.DB, test *models.Test) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error
	List(ctx context.Context, tx *gorm.DB, filters TestFilters) ([]*models.Test, int64, error)
	CountByAuthor(ctx context.Context, tx *gorm.DB, authorID uint) (int64, error)
}

type LikeRepository interface {
	Create(ctx context.Context, tx *gorm.DB, like *models.Like) error
	Delete(ctx context.Context, tx *gorm.DB, userID, testID uint) error
	Exists(ctx context.Context, tx *gorm.DB, userID, testID uint) (bool, error)
	CountByTest(ctx context.Context, tx *gorm.DB, testID uint) (int64, error)
	DeleteByTest(ctx context.Context, tx *gorm.DB, testID uint) error
	ListTestIDsByUser(ctx context.Context, tx *gorm.DB, userID uint) ([]uint, error)
}

type ResultRepository interface {
	Create(ctx context.Context, tx *gorm.DB, result *models.Result) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Result, error)
	List(ctx context.Context, tx *gorm.DB, filters ResultFilters) ([]*models.Result, int64, error)
}

type CategoryRepository interface {
	Create(ctx context.Context, tx *gorm.DB, category *models.Category) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Category, error)
	Update(ctx context.Context, tx *gorm.DB, category *models.Category) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error
	List(ctx context.Context, tx *gorm.DB) ([]*models.Category, error)
}
