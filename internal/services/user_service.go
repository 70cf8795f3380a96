package services

import (
	"context"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"github.com/4brn/stddy-bddy/internal/auth"
	"github.com/4brn/stddy-bddy/internal/events"
	"github.com/4brn/stddy-bddy/internal/models"
	"github.com/4brn/stddy-bddy/internal/repositories"
	"github.com/4brn/stddy-bddy/internal/validator"
)

// userService covers the admin-side account operations. Self-service signup
// and login live in AuthService.
type userService struct {
	repo      repositories.Repository
	sessions  SessionService
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
	policy    *AccessPolicy
	publisher events.EventPublisher
}

func NewUserService(repo repositories.Repository, sessions SessionService, db *gorm.DB, logger *slog.Logger, v *validator.Validator, publisher events.EventPublisher) UserService {
	return &userService{
		repo:      repo,
		sessions:  sessions,
		db:        db,
		logger:    logger,
		validator: v,
		policy:    NewAccessPolicy(),
		publisher: publisher,
	}
}

func (s *userService) Create(ctx context.Context, req *CreateUserRequest, actor *models.User) (*UserResponse, error) {
	if !s.policy.CanManageUsers(actor) {
		return nil, NewPermissionError(actorID(actor), 0, "user", "create", "admin only")
	}

	if errs := s.validator.GetBusinessValidator().Validate(req); len(errs) > 0 {
		return nil, errs
	}

	taken, err := s.repo.User().ExistsByUsername(ctx, s.db, req.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}
	if taken {
		return nil, ErrUsernameTaken
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	role := req.Role
	if role == "" {
		role = models.RoleUser
	}

	user := &models.User{
		Username:     req.Username,
		PasswordHash: hash,
		Role:         role,
	}

	if err := s.repo.User().Create(ctx, s.db, user); err != nil {
		if repositories.IsDuplicateKeyError(err) {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("User created by admin", "user_id", user.ID, "admin_id", actor.ID)

	return toUserResponse(user), nil
}

func (s *userService) GetByID(ctx context.Context, id uint, actor *models.User) (*UserResponse, error) {
	if !s.policy.CanManageUsers(actor) && (actor == nil || actor.ID != id) {
		return nil, NewPermissionError(actorID(actor), id, "user", "read", "admin only")
	}

	user, err := s.repo.User().GetByID(ctx, s.db, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return toUserResponse(user), nil
}

func (s *userService) Update(ctx context.Context, id uint, req *UpdateUserRequest, actor *models.User) (*UserResponse, error) {
	if !s.policy.CanManageUsers(actor) {
		return nil, NewPermissionError(actorID(actor), id, "user", "update", "admin only")
	}

	if errs := s.validator.GetBusinessValidator().Validate(req); len(errs) > 0 {
		return nil, errs
	}

	user, err := s.repo.User().GetByID(ctx, s.db, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if req.Username != nil && *req.Username != user.Username {
		taken, err := s.repo.User().ExistsByUsername(ctx, s.db, *req.Username)
		if err != nil {
			return nil, fmt.Errorf("failed to check username: %w", err)
		}
		if taken {
			return nil, ErrUsernameTaken
		}
		user.Username = *req.Username
	}
	if req.Password != nil {
		hash, err := auth.HashPassword(*req.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hash
	}
	if req.Role != nil {
		user.Role = *req.Role
	}

	if err := s.repo.User().Update(ctx, s.db, user); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	// A password or role change invalidates every open session of the user
	if req.Password != nil || req.Role != nil {
		if err := s.sessions.DestroyAllForUser(ctx, id); err != nil {
			s.logger.Error("Failed to destroy sessions after credentials change", "error", err, "user_id", id)
		}
	}

	s.logger.Info("User updated by admin", "user_id", id, "admin_id", actor.ID)

	return toUserResponse(user), nil
}

func (s *userService) Delete(ctx context.Context, id uint, actor *models.User) error {
	if !s.policy.CanManageUsers(actor) {
		return NewPermissionError(actorID(actor), id, "user", "delete", "admin only")
	}
	if actor.ID == id {
		return NewValidationError("id", "cannot delete your own account")
	}

	err := s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		if err := txRepo.Session().DeleteByUser(ctx, nil, id); err != nil {
			return err
		}
		return txRepo.User().Delete(ctx, nil, id)
	})
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to delete user: %w", err)
	}

	s.logger.Info("User deleted by admin", "user_id", id, "admin_id", actor.ID)

	return nil
}

func (s *userService) List(ctx context.Context, filters repositories.UserFilters, actor *models.User) (*UserListResponse, error) {
	if !s.policy.CanManageUsers(actor) {
		return nil, NewPermissionError(actorID(actor), 0, "user", "list", "admin only")
	}

	users, total, err := s.repo.User().List(ctx, s.db, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	responses := make([]*UserResponse, len(users))
	for i, u := range users {
		responses[i] = toUserResponse(u)
	}

	page := 1
	if filters.Limit > 0 {
		page = filters.Offset/filters.Limit + 1
	}

	return &UserListResponse{
		Users: responses,
		Total: total,
		Page:  page,
		Size:  len(responses),
	}, nil
}

func (s *userService) ForceLogout(ctx context.Context, id uint, actor *models.User) error {
	if !s.policy.CanManageUsers(actor) {
		return NewPermissionError(actorID(actor), id, "user", "force_logout", "admin only")
	}

	if _, err := s.repo.User().GetByID(ctx, s.db, id); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to get user: %w", err)
	}

	if err := s.sessions.DestroyAllForUser(ctx, id); err != nil {
		return err
	}

	s.logger.Info("User forcibly logged out", "user_id", id, "admin_id", actor.ID)
	if s.publisher != nil {
		event := events.NewEvent(events.EventUserForcedOut, map[string]interface{}{
			"user_id":  id,
			"admin_id": actor.ID,
		})
		if err := s.publisher.Publish(ctx, event); err != nil {
			s.logger.Error("Failed to publish event", "error", err, "event_type", events.EventUserForcedOut)
		}
	}

	return nil
}

func actorID(actor *models.User) uint {
	if actor == nil {
		return 0
	}
	return actor.ID
}
