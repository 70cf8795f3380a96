package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/4brn/stddy-bddy/internal/models"
)

func newSessionServiceForTest(repo *mockRepository, now time.Time) *sessionService {
	svc := NewSessionService(repo, nil, testLogger()).(*sessionService)
	svc.now = func() time.Time { return now }
	return svc
}

func TestSessionService_Create(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	repo := newMockRepository()
	repo.session.On("Create", mock.Anything, (*gorm.DB)(nil), mock.AnythingOfType("*models.Session")).Return(nil)

	svc := newSessionServiceForTest(repo, now)

	session, err := svc.Create(context.Background(), 42)
	require.NoError(t, err)
	assert.Len(t, session.Token, 32)
	assert.Equal(t, uint(42), session.UserID)
	assert.Equal(t, now.Add(models.SessionLifetime), session.ExpiresAt)
	repo.assertExpectations(t)
}

func TestSessionService_Validate_EmptyToken(t *testing.T) {
	repo := newMockRepository()
	svc := newSessionServiceForTest(repo, time.Now())

	_, err := svc.Validate(context.Background(), "")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSessionService_Validate_UnknownToken(t *testing.T) {
	repo := newMockRepository()
	repo.session.On("GetByToken", mock.Anything, (*gorm.DB)(nil), "deadbeef").Return(nil, gorm.ErrRecordNotFound)

	svc := newSessionServiceForTest(repo, time.Now())

	_, err := svc.Validate(context.Background(), "deadbeef")
	assert.ErrorIs(t, err, ErrSessionNotFound)
	repo.assertExpectations(t)
}

func TestSessionService_Validate_ExpiredDeletesLazily(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	session := &models.Session{Token: "tok", UserID: 7, ExpiresAt: now.Add(-time.Minute)}

	repo := newMockRepository()
	repo.session.On("GetByToken", mock.Anything, (*gorm.DB)(nil), "tok").Return(session, nil)
	repo.session.On("Delete", mock.Anything, (*gorm.DB)(nil), "tok").Return(nil)

	svc := newSessionServiceForTest(repo, now)

	_, err := svc.Validate(context.Background(), "tok")
	assert.ErrorIs(t, err, ErrSessionExpired)
	repo.assertExpectations(t)
}

func TestSessionService_Validate_ExpiryBoundaryIsExpired(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	session := &models.Session{Token: "tok", UserID: 7, ExpiresAt: now}

	repo := newMockRepository()
	repo.session.On("GetByToken", mock.Anything, (*gorm.DB)(nil), "tok").Return(session, nil)
	repo.session.On("Delete", mock.Anything, (*gorm.DB)(nil), "tok").Return(nil)

	svc := newSessionServiceForTest(repo, now)

	_, err := svc.Validate(context.Background(), "tok")
	assert.ErrorIs(t, err, ErrSessionExpired)
}

func TestSessionService_Validate_SlidesInsideRenewWindow(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	// 2h of life left, well inside the renew window
	session := &models.Session{Token: "tok", UserID: 7, ExpiresAt: now.Add(2 * time.Hour)}
	newExpiry := now.Add(models.SessionLifetime)

	repo := newMockRepository()
	repo.session.On("GetByToken", mock.Anything, (*gorm.DB)(nil), "tok").Return(session, nil)
	repo.session.On("UpdateExpiry", mock.Anything, (*gorm.DB)(nil), "tok", newExpiry).Return(nil)

	svc := newSessionServiceForTest(repo, now)

	got, err := svc.Validate(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, newExpiry, got.ExpiresAt)
	repo.assertExpectations(t)
}

func TestSessionService_Validate_NoSlideOutsideRenewWindow(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	farExpiry := now.Add(models.SessionRenewWindow + time.Hour)
	session := &models.Session{Token: "tok", UserID: 7, ExpiresAt: farExpiry}

	repo := newMockRepository()
	repo.session.On("GetByToken", mock.Anything, (*gorm.DB)(nil), "tok").Return(session, nil)

	svc := newSessionServiceForTest(repo, now)

	got, err := svc.Validate(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, farExpiry, got.ExpiresAt)
	repo.session.AssertNotCalled(t, "UpdateExpiry", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSessionService_Validate_RenewalFailureStillServes(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	oldExpiry := now.Add(2 * time.Hour)
	session := &models.Session{Token: "tok", UserID: 7, ExpiresAt: oldExpiry}

	repo := newMockRepository()
	repo.session.On("GetByToken", mock.Anything, (*gorm.DB)(nil), "tok").Return(session, nil)
	repo.session.On("UpdateExpiry", mock.Anything, (*gorm.DB)(nil), "tok", mock.Anything).Return(errors.New("db down"))

	svc := newSessionServiceForTest(repo, now)

	got, err := svc.Validate(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, oldExpiry, got.ExpiresAt)
}

func TestSessionService_Destroy(t *testing.T) {
	repo := newMockRepository()
	repo.session.On("Delete", mock.Anything, (*gorm.DB)(nil), "tok").Return(nil)

	svc := newSessionServiceForTest(repo, time.Now())

	assert.NoError(t, svc.Destroy(context.Background(), "tok"))
	assert.NoError(t, svc.Destroy(context.Background(), ""))
	repo.assertExpectations(t)
}
