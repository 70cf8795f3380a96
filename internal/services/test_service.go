package services

import (
	"context"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"github.com/4brn/stddy-bddy/internal/events"
	"github.com/4brn/stddy-bddy/internal/models"
	"github.com/4brn/stddy-bddy/internal/repositories"
	"github.com/4brn/stddy-bddy/internal/validator"
)

type testService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
	policy    *AccessPolicy
	publisher events.EventPublisher
}

func NewTestService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, v *validator.Validator, publisher events.EventPublisher) TestService {
	return &testService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: v,
		policy:    NewAccessPolicy(),
		publisher: publisher,
	}
}

func (s *testService) Create(ctx context.Context, req *CreateTestRequest, actor *models.User) (*TestResponse, error) {
	s.logger.Info("Creating test", "author_id", actor.ID, "title", req.Title)

	if errs := s.validator.GetBusinessValidator().ValidateTestCreate(req); len(errs) > 0 {
		return nil, errs
	}

	if req.CategoryID != nil {
		if _, err := s.repo.Category().GetByID(ctx, s.db, *req.CategoryID); err != nil {
			if repositories.IsNotFoundError(err) {
				return nil, ErrCategoryNotFound
			}
			return nil, fmt.Errorf("failed to check category: %w", err)
		}
	}

	questions := validator.QuestionsToModel(req.Questions)
	blob, err := models.EncodeQuestions(questions)
	if err != nil {
		return nil, err
	}

	// The author is always the acting user, never taken from the payload
	test := &models.Test{
		Title:       req.Title,
		Description: req.Description,
		AuthorID:    actor.ID,
		CategoryID:  req.CategoryID,
		IsPrivate:   req.IsPrivate,
		Questions:   blob,
	}

	if err := s.repo.Test().Create(ctx, s.db, test); err != nil {
		return nil, fmt.Errorf("failed to create test: %w", err)
	}

	s.logger.Info("Test created", "test_id", test.ID, "author_id", actor.ID)
	s.publishEvent(ctx, events.EventTestCreated, map[string]interface{}{
		"test_id":   test.ID,
		"author_id": actor.ID,
	})

	return s.buildTestResponse(ctx, test, questions, actor), nil
}

func (s *testService) GetByID(ctx context.Context, id uint, actor *models.User) (*TestResponse, error) {
	test, err := s.getTest(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.policy.Authorize(actor, OpTestView, testTarget(test)); err != nil {
		return nil, err
	}

	questions, err := test.DecodeQuestions()
	if err != nil {
		return nil, err
	}

	return s.buildTestResponse(ctx, test, questions, actor), nil
}

func (s *testService) Update(ctx context.Context, id uint, req *UpdateTestRequest, actor *models.User) (*TestResponse, error) {
	s.logger.Info("Updating test", "test_id", id, "user_id", actor.ID)

	if errs := s.validator.GetBusinessValidator().ValidateTestUpdate(req); len(errs) > 0 {
		return nil, errs
	}

	test, err := s.getTest(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.policy.Authorize(actor, OpTestEdit, testTarget(test)); err != nil {
		return nil, err
	}

	if req.Title != nil {
		test.Title = *req.Title
	}
	if req.Description != nil {
		test.Description = req.Description
	}
	if req.IsPrivate != nil {
		test.IsPrivate = *req.IsPrivate
	}
	if req.CategoryID != nil {
		if _, err := s.repo.Category().GetByID(ctx, s.db, *req.CategoryID); err != nil {
			if repositories.IsNotFoundError(err) {
				return nil, ErrCategoryNotFound
			}
			return nil, fmt.Errorf("failed to check category: %w", err)
		}
		test.CategoryID = req.CategoryID
	}
	if req.Questions != nil {
		blob, err := models.EncodeQuestions(validator.QuestionsToModel(req.Questions))
		if err != nil {
			return nil, err
		}
		test.Questions = blob
	}

	if err := s.repo.Test().Update(ctx, s.db, test); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrTestNotFound
		}
		return nil, fmt.Errorf("failed to update test: %w", err)
	}

	s.publishEvent(ctx, events.EventTestUpdated, map[string]interface{}{
		"test_id": test.ID,
		"user_id": actor.ID,
	})

	questions, err := test.DecodeQuestions()
	if err != nil {
		return nil, err
	}

	return s.buildTestResponse(ctx, test, questions, actor), nil
}

func (s *testService) Delete(ctx context.Context, id uint, actor *models.User) error {
	test, err := s.getTest(ctx, id)
	if err != nil {
		return err
	}

	if err := s.policy.Authorize(actor, OpTestDelete, testTarget(test)); err != nil {
		return err
	}

	// Likes go with the test; results survive as immutable history
	err = s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		if err := txRepo.Like().DeleteByTest(ctx, nil, id); err != nil {
			return err
		}
		return txRepo.Test().Delete(ctx, nil, id)
	})
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrTestNotFound
		}
		return fmt.Errorf("failed to delete test: %w", err)
	}

	s.logger.Info("Test deleted", "test_id", id, "user_id", actor.ID)
	s.publishEvent(ctx, events.EventTestDeleted, map[string]interface{}{
		"test_id": id,
		"user_id": actor.ID,
	})

	return nil
}

// List returns tests visible to the actor: all public tests plus the actor's
// own private ones. Admins see everything.
func (s *testService) List(ctx context.Context, filters repositories.TestFilters, actor *models.User) (*TestListResponse, error) {
	switch {
	case actor == nil:
		public := false
		filters.IsPrivate = &public
	case !actor.IsAdmin():
		filters.VisibleToUserID = &actor.ID
	}

	tests, total, err := s.repo.Test().List(ctx, s.db, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list tests: %w", err)
	}

	return s.buildListResponse(ctx, tests, total, filters, actor)
}

func (s *testService) GetByAuthor(ctx context.Context, authorID uint, filters repositories.TestFilters, actor *models.User) (*TestListResponse, error) {
	filters.AuthorID = &authorID

	// Private tests of other authors stay hidden
	if actor == nil || (!actor.IsAdmin() && actor.ID != authorID) {
		public := false
		filters.IsPrivate = &public
	}

	tests, total, err := s.repo.Test().List(ctx, s.db, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list tests by author: %w", err)
	}

	return s.buildListResponse(ctx, tests, total, filters, actor)
}

// ===== HELPERS =====

func (s *testService) getTest(ctx context.Context, id uint) (*models.Test, error) {
	test, err := s.repo.Test().GetByID(ctx, s.db, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrTestNotFound
		}
		return nil, fmt.Errorf("failed to get test: %w", err)
	}
	return test, nil
}

func (s *testService) buildTestResponse(ctx context.Context, test *models.Test, questions []models.Question, actor *models.User) *TestResponse {
	resp := &TestResponse{
		Test:      test,
		Questions: questions,
		CanEdit:   s.policy.CanModifyTest(actor, test),
		CanDelete: s.policy.CanModifyTest(actor, test),
	}

	if count, err := s.repo.Like().CountByTest(ctx, s.db, test.ID); err == nil {
		resp.LikesCount = count
	}
	if actor != nil {
		if liked, err := s.repo.Like().Exists(ctx, s.db, actor.ID, test.ID); err == nil {
			resp.Liked = liked
		}
	}

	return resp
}

func (s *testService) buildListResponse(ctx context.Context, tests []*models.Test, total int64, filters repositories.TestFilters, actor *models.User) (*TestListResponse, error) {
	responses := make([]*TestResponse, 0, len(tests))
	for _, test := range tests {
		questions, err := test.DecodeQuestions()
		if err != nil {
			s.logger.Error("Skipping test with undecodable questions", "test_id", test.ID, "error", err)
			continue
		}
		responses = append(responses, s.buildTestResponse(ctx, test, questions, actor))
	}

	page := 1
	if filters.Limit > 0 {
		page = filters.Offset/filters.Limit + 1
	}

	return &TestListResponse{
		Tests: responses,
		Total: total,
		Page:  page,
		Size:  len(responses),
	}, nil
}

func (s *testService) publishEvent(ctx context.Context, eventType string, data map[string]interface{}) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, events.NewEvent(eventType, data)); err != nil {
		s.logger.Error("Failed to publish event", "error", err, "event_type", eventType)
	}
}

func testTarget(test *models.Test) Target {
	return Target{Resource: "test", ID: test.ID, OwnerID: test.AuthorID, Private: test.IsPrivate}
}
