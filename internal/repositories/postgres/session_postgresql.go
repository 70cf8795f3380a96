package postgres

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/4brn/stddy-bddy/internal/models"
	"github.com/4brn/stddy-bddy/internal/repositories"
)

// SessionPostgreSQL reads and writes sessions directly against the database.
// Sessions bypass the cache layer: every validation may slide the expiry, so
// the row in Postgres is the only authority.
type SessionPostgreSQL struct {
	db *gorm.DB
}

func NewSessionPostgreSQL(db *gorm.DB) repositories.SessionRepository {
	return &SessionPostgreSQL{db: db}
}

func (s *SessionPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return s.db
}

func (s *SessionPostgreSQL) Create(ctx context.Context, tx *gorm.DB, session *models.Session) error {
	if err := s.getDB(tx).WithContext(ctx).Create(session).Error; err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

func (s *SessionPostgreSQL) GetByToken(ctx context.Context, tx *gorm.DB, token string) (*models.Session, error) {
	var session models.Session
	if err := s.getDB(tx).WithContext(ctx).Where("token = ?", token).First(&session).Error; err != nil {
		return nil, err
	}
	return &session, nil
}

func (s *SessionPostgreSQL) UpdateExpiry(ctx context.Context, tx *gorm.DB, token string, expiresAt time.Time) error {
	result := s.getDB(tx).WithContext(ctx).
		Model(&models.Session{}).
		Where("token = ?", token).
		Update("expires_at", expiresAt)
	if result.Error != nil {
		return fmt.Errorf("failed to update session expiry: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (s *SessionPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, token string) error {
	if err := s.getDB(tx).WithContext(ctx).
		Where("token = ?", token).
		Delete(&models.Session{}).Error; err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

func (s *SessionPostgreSQL) DeleteByUser(ctx context.Context, tx *gorm.DB, userID uint) error {
	if err := s.getDB(tx).WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&models.Session{}).Error; err != nil {
		return fmt.Errorf("failed to delete sessions for user %d: %w", userID, err)
	}
	return nil
}
