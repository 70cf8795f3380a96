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

type authService struct {
	repo      repositories.Repository
	sessions  SessionService
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
	publisher events.EventPublisher
}

func NewAuthService(repo repositories.Repository, sessions SessionService, db *gorm.DB, logger *slog.Logger, v *validator.Validator, publisher events.EventPublisher) AuthService {
	return &authService{
		repo:      repo,
		sessions:  sessions,
		db:        db,
		logger:    logger,
		validator: v,
		publisher: publisher,
	}
}

func (s *authService) Register(ctx context.Context, req *RegisterRequest) (*AuthResponse, error) {
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

	user := &models.User{
		Username:     req.Username,
		PasswordHash: hash,
		Role:         models.RoleUser,
	}

	if err := s.repo.User().Create(ctx, s.db, user); err != nil {
		if repositories.IsDuplicateKeyError(err) {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	session, err := s.sessions.Create(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("User registered", "user_id", user.ID, "username", user.Username)
	s.publishEvent(ctx, events.EventUserRegistered, map[string]interface{}{
		"user_id":  user.ID,
		"username": user.Username,
	})

	return &AuthResponse{User: toUserResponse(user), Session: session}, nil
}

func (s *authService) Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error) {
	if errs := s.validator.GetBusinessValidator().Validate(req); len(errs) > 0 {
		return nil, errs
	}

	user, err := s.repo.User().GetByUsername(ctx, s.db, req.Username)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			// Same error as a wrong password so usernames cannot be probed
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		return nil, ErrInvalidCredentials
	}

	session, err := s.sessions.Create(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("User logged in", "user_id", user.ID)
	s.publishEvent(ctx, events.EventUserLoggedIn, map[string]interface{}{
		"user_id": user.ID,
	})

	return &AuthResponse{User: toUserResponse(user), Session: session}, nil
}

func (s *authService) Logout(ctx context.Context, token string) error {
	if err := s.sessions.Destroy(ctx, token); err != nil {
		return err
	}
	s.publishEvent(ctx, events.EventUserLoggedOut, nil)
	return nil
}

func (s *authService) GetUser(ctx context.Context, userID uint) (*UserResponse, error) {
	user, err := s.repo.User().GetByID(ctx, s.db, userID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return toUserResponse(user), nil
}

func (s *authService) publishEvent(ctx context.Context, eventType string, data map[string]interface{}) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, events.NewEvent(eventType, data)); err != nil {
		s.logger.Error("Failed to publish event", "error", err, "event_type", eventType)
	}
}

func toUserResponse(user *models.User) *UserResponse {
	return &UserResponse{
		ID:        user.ID,
		Username:  user.Username,
		Role:      user.Role,
		CreatedAt: user.CreatedAt,
	}
}
