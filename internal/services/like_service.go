package services

import (
	"context"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"github.com/4brn/stddy-bddy/internal/events"
	"github.com/4brn/stddy-bddy/internal/models"
	"github.com/4brn/stddy-bddy/internal/repositories"
)

type likeService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	policy    *AccessPolicy
	publisher events.EventPublisher
}

func NewLikeService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, publisher events.EventPublisher) LikeService {
	return &likeService{
		repo:      repo,
		db:        db,
		logger:    logger,
		policy:    NewAccessPolicy(),
		publisher: publisher,
	}
}

// visibleTest loads a test and checks the actor may see it. Likes follow test
// visibility: a test you cannot view you also cannot like.
func (s *likeService) visibleTest(ctx context.Context, testID uint, actor *models.User) (*models.Test, error) {
	test, err := s.repo.Test().GetByID(ctx, s.db, testID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrTestNotFound
		}
		return nil, fmt.Errorf("failed to get test: %w", err)
	}
	if err := s.policy.Authorize(actor, OpTestView, testTarget(test)); err != nil {
		return nil, err
	}
	return test, nil
}

func (s *likeService) Like(ctx context.Context, testID uint, actor *models.User) error {
	if _, err := s.visibleTest(ctx, testID, actor); err != nil {
		return err
	}

	// Idempotent: the repository ignores conflicts on the unique index
	like := &models.Like{UserID: actor.ID, TestID: testID}
	if err := s.repo.Like().Create(ctx, s.db, like); err != nil {
		return fmt.Errorf("failed to like test: %w", err)
	}

	s.publishEvent(ctx, events.EventTestLiked, map[string]interface{}{
		"test_id": testID,
		"user_id": actor.ID,
	})

	return nil
}

func (s *likeService) Dislike(ctx context.Context, testID uint, actor *models.User) error {
	if _, err := s.visibleTest(ctx, testID, actor); err != nil {
		return err
	}

	// Idempotent: deleting a like that never existed is not an error
	if err := s.repo.Like().Delete(ctx, s.db, actor.ID, testID); err != nil {
		return fmt.Errorf("failed to dislike test: %w", err)
	}

	s.publishEvent(ctx, events.EventTestDisliked, map[string]interface{}{
		"test_id": testID,
		"user_id": actor.ID,
	})

	return nil
}

func (s *likeService) Count(ctx context.Context, testID uint, actor *models.User) (int64, error) {
	if _, err := s.visibleTest(ctx, testID, actor); err != nil {
		return 0, err
	}
	return s.repo.Like().CountByTest(ctx, s.db, testID)
}

func (s *likeService) Liked(ctx context.Context, testID uint, actor *models.User) (bool, error) {
	if _, err := s.visibleTest(ctx, testID, actor); err != nil {
		return false, err
	}
	return s.repo.Like().Exists(ctx, s.db, actor.ID, testID)
}

func (s *likeService) ListLikedTestIDs(ctx context.Context, actor *models.User) ([]uint, error) {
	return s.repo.Like().ListTestIDsByUser(ctx, s.db, actor.ID)
}

func (s *likeService) publishEvent(ctx context.Context, eventType string, data map[string]interface{}) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, events.NewEvent(eventType, data)); err != nil {
		s.logger.Error("Failed to publish event", "error", err, "event_type", eventType)
	}
}
