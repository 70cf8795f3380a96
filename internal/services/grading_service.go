package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/4brn/stddy-bddy/internal/events"
	"github.com/4brn/stddy-bddy/internal/models"
	"github.com/4brn/stddy-bddy/internal/repositories"
	"github.com/4brn/stddy-bddy/internal/validator"
)

type gradingService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
	policy    *AccessPolicy
	publisher events.EventPublisher

	now func() time.Time
}

func NewGradingService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, v *validator.Validator, publisher events.EventPublisher) GradingService {
	return &gradingService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: v,
		policy:    NewAccessPolicy(),
		publisher: publisher,
		now:       time.Now,
	}
}

// Score grades answers against the question set. The denominator is always
// the number of questions, so unanswered questions count as wrong. Questions
// without a configured correct answer can never be matched. Answers for
// unknown questions are ignored.
func (s *gradingService) Score(questions []models.Question, answers []models.SubmittedAnswer) ScoreBreakdown {
	total := len(questions)
	if total == 0 {
		return ScoreBreakdown{}
	}

	key := models.AnswerKey(questions)

	picked := make(map[int64]int64, len(answers))
	for _, a := range answers {
		picked[a.QuestionID] = a.AnswerID
	}

	correct := 0
	for questionID, correctID := range key {
		if answerID, ok := picked[questionID]; ok && answerID == correctID {
			correct++
		}
	}

	return ScoreBreakdown{
		Correct:    correct,
		Total:      total,
		Percentage: 100 * float64(correct) / float64(total),
	}
}

// Submit grades a submission against the current questions of the test and
// records the outcome as a new immutable result row.
func (s *gradingService) Submit(ctx context.Context, req *SubmitResultRequest, actor *models.User) (*ResultResponse, error) {
	if errs := s.validator.GetBusinessValidator().ValidateSubmit(req); len(errs) > 0 {
		return nil, errs
	}

	test, err := s.repo.Test().GetByID(ctx, s.db, req.TestID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrTestNotFound
		}
		return nil, fmt.Errorf("failed to get test: %w", err)
	}

	if err := s.policy.Authorize(actor, OpTestView, testTarget(test)); err != nil {
		return nil, err
	}

	questions, err := test.DecodeQuestions()
	if err != nil {
		return nil, err
	}
	if len(questions) == 0 {
		return nil, NewValidationError("test", "has no questions to grade")
	}

	answers := make([]models.SubmittedAnswer, len(req.Answers))
	for i, a := range req.Answers {
		answers[i] = models.SubmittedAnswer{QuestionID: a.QuestionID, AnswerID: a.AnswerID}
	}

	breakdown := s.Score(questions, answers)

	answersBlob, err := json.Marshal(answers)
	if err != nil {
		return nil, fmt.Errorf("failed to encode answers: %w", err)
	}

	result := &models.Result{
		UserID:   actor.ID,
		TestID:   test.ID,
		Score:    breakdown.Percentage,
		Answers:  datatypes.JSON(answersBlob),
		Correct:  breakdown.Correct,
		Total:    breakdown.Total,
		TakenAt:  s.now(),
		TestName: test.Title,
	}

	if err := s.repo.Result().Create(ctx, s.db, result); err != nil {
		return nil, fmt.Errorf("failed to record result: %w", err)
	}

	s.logger.Info("Result recorded",
		"result_id", result.ID,
		"test_id", test.ID,
		"user_id", actor.ID,
		"score", breakdown.Percentage)
	s.publishEvent(ctx, events.EventResultSubmitted, map[string]interface{}{
		"result_id": result.ID,
		"test_id":   test.ID,
		"user_id":   actor.ID,
		"score":     breakdown.Percentage,
	})

	return &ResultResponse{Result: result, Percentage: result.Score}, nil
}

// GetMine lists the actor's own results
func (s *gradingService) GetMine(ctx context.Context, filters repositories.ResultFilters, actor *models.User) (*ResultListResponse, error) {
	filters.UserID = &actor.ID

	results, total, err := s.repo.Result().List(ctx, s.db, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list results: %w", err)
	}

	return toResultListResponse(results, total), nil
}

// GetByTest lists all results for a test; author or admin only
func (s *gradingService) GetByTest(ctx context.Context, testID uint, filters repositories.ResultFilters, actor *models.User) (*ResultListResponse, error) {
	test, err := s.repo.Test().GetByID(ctx, s.db, testID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrTestNotFound
		}
		return nil, fmt.Errorf("failed to get test: %w", err)
	}

	if err := s.policy.Authorize(actor, OpTestEdit, testTarget(test)); err != nil {
		return nil, err
	}

	filters.TestID = &testID

	results, total, err := s.repo.Result().List(ctx, s.db, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list results for test: %w", err)
	}

	return toResultListResponse(results, total), nil
}

func (s *gradingService) publishEvent(ctx context.Context, eventType string, data map[string]interface{}) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, events.NewEvent(eventType, data)); err != nil {
		s.logger.Error("Failed to publish event", "error", err, "event_type", eventType)
	}
}

func toResultListResponse(results []*models.Result, total int64) *ResultListResponse {
	responses := make([]*ResultResponse, len(results))
	for i, r := range results {
		responses[i] = &ResultResponse{Result: r, Percentage: r.Score}
	}
	return &ResultListResponse{Results: responses, Total: total}
}
