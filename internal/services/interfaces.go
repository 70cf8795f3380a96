package services

import (
	"context"
	"io"
	"time"

	"github.com/4brn/stddy-bddy/internal/models"
	"github.com/4brn/stddy-bddy/internal/repositories"
	"github.com/4brn/stddy-bddy/internal/validator"
)

// ===== REQUEST/RESPONSE DTOs =====

// Use business validator types
type RegisterRequest = validator.RegisterRequest
type LoginRequest = validator.LoginRequest
type CreateTestRequest = validator.TestCreateRequest
type UpdateTestRequest = validator.TestUpdateRequest
type SubmitResultRequest = validator.SubmitResultRequest
type CreateUserRequest = validator.UserCreateRequest
type UpdateUserRequest = validator.UserUpdateRequest
type CreateCategoryRequest = validator.CategoryCreateRequest
type UpdateCategoryRequest = validator.CategoryUpdateRequest

type UserResponse struct {
	ID        uint            `json:"id"`
	Username  string          `json:"username"`
	Role      models.UserRole `json:"role"`
	CreatedAt time.Time       `json:"created_at"`
}

type UserListResponse struct {
	Users []*UserResponse `json:"users"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Size  int             `json:"size"`
}

// AuthResponse carries the logged-in user and the session to set as a cookie
type AuthResponse struct {
	User    *UserResponse   `json:"user"`
	Session *models.Session `json:"-"`
}

type TestResponse struct {
	*models.Test
	Questions  []models.Question `json:"questions"`
	LikesCount int64             `json:"likes_count"`
	Liked      bool              `json:"liked"`
	CanEdit    bool              `json:"can_edit"`
	CanDelete  bool              `json:"can_delete"`
}

type TestListResponse struct {
	Tests []*TestResponse `json:"tests"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Size  int             `json:"size"`
}

type ResultResponse struct {
	*models.Result
	Percentage float64 `json:"percentage"`
}

type ResultListResponse struct {
	Results []*ResultResponse `json:"results"`
	Total   int64             `json:"total"`
}

// ScoreBreakdown is the outcome of grading one submission
type ScoreBreakdown struct {
	Correct    int     `json:"correct"`
	Total      int     `json:"total"`
	Percentage float64 `json:"percentage"`
}

// ===== SERVICE INTERFACES =====

type SessionService interface {
	// Create opens a session for the user and returns it with a fresh token
	Create(ctx context.Context, userID uint) (*models.Session, error)

	// Validate resolves a token to its session, deleting expired rows lazily
	// and sliding the expiry forward when inside the renew window. The
	// returned session reflects any renewal.
	Validate(ctx context.Context, token string) (*models.Session, error)

	// Destroy removes one session; unknown tokens are not an error
	Destroy(ctx context.Context, token string) error

	// DestroyAllForUser removes every session of a user (force logout)
	DestroyAllForUser(ctx context.Context, userID uint) error
}

type AuthService interface {
	Register(ctx context.Context, req *RegisterRequest) (*AuthResponse, error)
	Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error)
	Logout(ctx context.Context, token string) error
	GetUser(ctx context.Context, userID uint) (*UserResponse, error)
}

type TestService interface {
	Create(ctx context.Context, req *CreateTestRequest, actor *models.User) (*TestResponse, error)
	GetByID(ctx context.Context, id uint, actor *models.User) (*TestResponse, error)
	Update(ctx context.Context, id uint, req *UpdateTestRequest, actor *models.User) (*TestResponse, error)
	Delete(ctx context.Context, id uint, actor *models.User) error
	List(ctx context.Context, filters repositories.TestFilters, actor *models.User) (*TestListResponse, error)
	GetByAuthor(ctx context.Context, authorID uint, filters repositories.TestFilters, actor *models.User) (*TestListResponse, error)
}

type LikeService interface {
	// Like records a like; liking an already-liked test is a no-op
	Like(ctx context.Context, testID uint, actor *models.User) error

	// Dislike removes a like; disliking a never-liked test is a no-op
	Dislike(ctx context.Context, testID uint, actor *models.User) error

	Count(ctx context.Context, testID uint, actor *models.User) (int64, error)
	Liked(ctx context.Context, testID uint, actor *models.User) (bool, error)
	ListLikedTestIDs(ctx context.Context, actor *models.User) ([]uint, error)
}

type GradingService interface {
	// Score grades submitted answers against a question set. Pure: no I/O.
	Score(questions []models.Question, answers []models.SubmittedAnswer) ScoreBreakdown

	// Submit grades a submission and records it as an immutable result
	Submit(ctx context.Context, req *SubmitResultRequest, actor *models.User) (*ResultResponse, error)

	GetMine(ctx context.Context, filters repositories.ResultFilters, actor *models.User) (*ResultListResponse, error)
	GetByTest(ctx context.Context, testID uint, filters repositories.ResultFilters, actor *models.User) (*ResultListResponse, error)
}

type UserService interface {
	Create(ctx context.Context, req *CreateUserRequest, actor *models.User) (*UserResponse, error)
	GetByID(ctx context.Context, id uint, actor *models.User) (*UserResponse, error)
	Update(ctx context.Context, id uint, req *UpdateUserRequest, actor *models.User) (*UserResponse, error)
	Delete(ctx context.Context, id uint, actor *models.User) error
	List(ctx context.Context, filters repositories.UserFilters, actor *models.User) (*UserListResponse, error)

	// ForceLogout destroys every session of the target user
	ForceLogout(ctx context.Context, id uint, actor *models.User) error
}

type CategoryService interface {
	Create(ctx context.Context, req *CreateCategoryRequest, actor *models.User) (*models.Category, error)
	Update(ctx context.Context, id uint, req *UpdateCategoryRequest, actor *models.User) (*models.Category, error)
	Delete(ctx context.Context, id uint, actor *models.User) error
	List(ctx context.Context) ([]*models.Category, error)
}

type ExportService interface {
	// ExportResults writes an xlsx workbook of results matching the filters
	ExportResults(ctx context.Context, filters repositories.ResultFilters, actor *models.User, w io.Writer) error
}

// ===== SERVICE MANAGER =====

type ServiceManager interface {
	Session() SessionService
	Auth() AuthService
	Test() TestService
	Like() LikeService
	Grading() GradingService
	User() UserService
	Category() CategoryService
	Export() ExportService

	Initialize(ctx context.Context) error
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
