package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/4brn/stddy-bddy/internal/auth"
	"github.com/4brn/stddy-bddy/internal/models"
	"github.com/4brn/stddy-bddy/internal/repositories"
)

type sessionService struct {
	repo   repositories.Repository
	db     *gorm.DB
	logger *slog.Logger

	// now is swappable for tests
	now func() time.Time
}

func NewSessionService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger) SessionService {
	return &sessionService{
		repo:   repo,
		db:     db,
		logger: logger,
		now:    time.Now,
	}
}

func (s *sessionService) Create(ctx context.Context, userID uint) (*models.Session, error) {
	token, err := auth.NewSessionToken()
	if err != nil {
		return nil, err
	}

	session := &models.Session{
		Token:     token,
		UserID:    userID,
		ExpiresAt: s.now().Add(models.SessionLifetime),
	}

	if err := s.repo.Session().Create(ctx, s.db, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	s.logger.Info("Session created", "user_id", userID)

	return session, nil
}

func (s *sessionService) Validate(ctx context.Context, token string) (*models.Session, error) {
	if token == "" {
		return nil, ErrSessionNotFound
	}

	session, err := s.repo.Session().GetByToken(ctx, s.db, token)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to look up session: %w", err)
	}

	now := s.now()

	// Expired rows are deleted lazily on first use after expiry
	if session.Expired(now) {
		if err := s.repo.Session().Delete(ctx, s.db, token); err != nil {
			s.logger.Error("Failed to delete expired session", "error", err, "user_id", session.UserID)
		}
		return nil, ErrSessionExpired
	}

	// Sliding expiry: renew when inside the window
	if session.NeedsRenewal(now) {
		newExpiry := now.Add(models.SessionLifetime)
		if err := s.repo.Session().UpdateExpiry(ctx, s.db, token, newExpiry); err != nil {
			// The session is still valid; serve the request on the old expiry
			s.logger.Error("Failed to renew session", "error", err, "user_id", session.UserID)
		} else {
			session.ExpiresAt = newExpiry
		}
	}

	return session, nil
}

func (s *sessionService) Destroy(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := s.repo.Session().Delete(ctx, s.db, token); err != nil {
		return fmt.Errorf("failed to destroy session: %w", err)
	}
	return nil
}

func (s *sessionService) DestroyAllForUser(ctx context.Context, userID uint) error {
	if err := s.repo.Session().DeleteByUser(ctx, s.db, userID); err != nil {
		return fmt.Errorf("failed to destroy sessions for user %d: %w", userID, err)
	}
	s.logger.Info("All sessions destroyed", "user_id", userID)
	return nil
}
