package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/4brn/stddy-bddy/internal/events"
	"github.com/4brn/stddy-bddy/internal/models"
	"github.com/4brn/stddy-bddy/internal/repositories"
	"github.com/4brn/stddy-bddy/internal/validator"
)

func int64Ptr(v int64) *int64 { return &v }

func newGradingServiceForTest(repo *mockRepository, publisher events.EventPublisher, now time.Time) *gradingService {
	svc := NewGradingService(repo, nil, testLogger(), validator.New(), publisher).(*gradingService)
	svc.now = func() time.Time { return now }
	return svc
}

func TestGradingService_Score(t *testing.T) {
	svc := newGradingServiceForTest(newMockRepository(), nil, time.Now())

	twoQuestions := []models.Question{
		{ID: 1, Text: "q1", Answers: []models.Answer{{ID: 1, Text: "a"}, {ID: 2, Text: "b"}}, CorrectID: int64Ptr(1)},
		{ID: 2, Text: "q2", Answers: []models.Answer{{ID: 3, Text: "a"}, {ID: 4, Text: "b"}}, CorrectID: int64Ptr(4)},
	}

	tests := []struct {
		name      string
		questions []models.Question
		answers   []models.SubmittedAnswer
		want      ScoreBreakdown
	}{
		{
			name:      "no questions",
			questions: nil,
			answers:   []models.SubmittedAnswer{{QuestionID: 1, AnswerID: 1}},
			want:      ScoreBreakdown{},
		},
		{
			name:      "all correct",
			questions: twoQuestions,
			answers: []models.SubmittedAnswer{
				{QuestionID: 1, AnswerID: 1},
				{QuestionID: 2, AnswerID: 4},
			},
			want: ScoreBreakdown{Correct: 2, Total: 2, Percentage: 100},
		},
		{
			name:      "half correct",
			questions: twoQuestions,
			answers: []models.SubmittedAnswer{
				{QuestionID: 1, AnswerID: 1},
				{QuestionID: 2, AnswerID: 3},
			},
			want: ScoreBreakdown{Correct: 1, Total: 2, Percentage: 50},
		},
		{
			name:      "unanswered questions count as wrong",
			questions: twoQuestions,
			answers:   []models.SubmittedAnswer{{QuestionID: 1, AnswerID: 1}},
			want:      ScoreBreakdown{Correct: 1, Total: 2, Percentage: 50},
		},
		{
			name:      "no answers at all",
			questions: twoQuestions,
			answers:   nil,
			want:      ScoreBreakdown{Correct: 0, Total: 2, Percentage: 0},
		},
		{
			name:      "answers for unknown questions are ignored",
			questions: twoQuestions,
			answers: []models.SubmittedAnswer{
				{QuestionID: 99, AnswerID: 1},
				{QuestionID: 1, AnswerID: 1},
			},
			want: ScoreBreakdown{Correct: 1, Total: 2, Percentage: 50},
		},
		{
			name: "question without correct answer never matches",
			questions: []models.Question{
				{ID: 1, Text: "q1", Answers: []models.Answer{{ID: 1, Text: "a"}, {ID: 2, Text: "b"}}, CorrectID: nil},
				{ID: 2, Text: "q2", Answers: []models.Answer{{ID: 3, Text: "a"}, {ID: 4, Text: "b"}}, CorrectID: int64Ptr(4)},
			},
			answers: []models.SubmittedAnswer{
				{QuestionID: 1, AnswerID: 1},
				{QuestionID: 2, AnswerID: 4},
			},
			want: ScoreBreakdown{Correct: 1, Total: 2, Percentage: 50},
		},
		{
			name: "fractional percentage is kept exact",
			questions: []models.Question{
				{ID: 1, Text: "q1", Answers: []models.Answer{{ID: 1, Text: "a"}, {ID: 2, Text: "b"}}, CorrectID: int64Ptr(1)},
				{ID: 2, Text: "q2", Answers: []models.Answer{{ID: 3, Text: "a"}, {ID: 4, Text: "b"}}, CorrectID: int64Ptr(3)},
				{ID: 3, Text: "q3", Answers: []models.Answer{{ID: 5, Text: "a"}, {ID: 6, Text: "b"}}, CorrectID: int64Ptr(5)},
			},
			answers: []models.SubmittedAnswer{
				{QuestionID: 1, AnswerID: 1},
				{QuestionID: 2, AnswerID: 3},
			},
			want: ScoreBreakdown{Correct: 2, Total: 3, Percentage: 100.0 * 2 / 3},
		},
		{
			name: "one of three is a third, not a rounded integer",
			questions: []models.Question{
				{ID: 1, Text: "q1", Answers: []models.Answer{{ID: 1, Text: "a"}, {ID: 2, Text: "b"}}, CorrectID: int64Ptr(1)},
				{ID: 2, Text: "q2", Answers: []models.Answer{{ID: 3, Text: "a"}, {ID: 4, Text: "b"}}, CorrectID: int64Ptr(3)},
				{ID: 3, Text: "q3", Answers: []models.Answer{{ID: 5, Text: "a"}, {ID: 6, Text: "b"}}, CorrectID: int64Ptr(5)},
			},
			answers: []models.SubmittedAnswer{
				{QuestionID: 1, AnswerID: 1},
			},
			want: ScoreBreakdown{Correct: 1, Total: 3, Percentage: 100.0 * 1 / 3},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := svc.Score(tt.questions, tt.answers)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGradingService_Submit(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	questions, err := models.EncodeQuestions([]models.Question{
		{ID: 1, Text: "q1", Answers: []models.Answer{{ID: 1, Text: "a"}, {ID: 2, Text: "b"}}, CorrectID: int64Ptr(2)},
	})
	require.NoError(t, err)

	test := &models.Test{ID: 5, Title: "Algebra basics", AuthorID: 10, Questions: questions}

	repo := newMockRepository()
	repo.test.On("GetByID", mock.Anything, (*gorm.DB)(nil), uint(5)).Return(test, nil)
	repo.result.On("Create", mock.Anything, (*gorm.DB)(nil), mock.AnythingOfType("*models.Result")).Return(nil)

	publisher := events.NewMockEventPublisher()
	svc := newGradingServiceForTest(repo, publisher, now)

	resp, err := svc.Submit(context.Background(), &SubmitResultRequest{
		TestID:  5,
		Answers: []validator.SubmittedAnswerRequest{{QuestionID: 1, AnswerID: 2}},
	}, userActor(20))
	require.NoError(t, err)

	assert.Equal(t, 100.0, resp.Percentage)
	assert.Equal(t, uint(20), resp.Result.UserID)
	assert.Equal(t, "Algebra basics", resp.Result.TestName)
	assert.Equal(t, now, resp.Result.TakenAt)

	published := publisher.GetEventsByType(events.EventResultSubmitted)
	require.Len(t, published, 1)
	repo.assertExpectations(t)
}

func TestGradingService_Submit_PrivateTestDenied(t *testing.T) {
	questions, err := models.EncodeQuestions([]models.Question{
		{ID: 1, Text: "q1", Answers: []models.Answer{{ID: 1, Text: "a"}, {ID: 2, Text: "b"}}, CorrectID: int64Ptr(2)},
	})
	require.NoError(t, err)

	test := &models.Test{ID: 5, Title: "Secret", AuthorID: 10, IsPrivate: true, Questions: questions}

	repo := newMockRepository()
	repo.test.On("GetByID", mock.Anything, (*gorm.DB)(nil), uint(5)).Return(test, nil)

	svc := newGradingServiceForTest(repo, nil, time.Now())

	_, err = svc.Submit(context.Background(), &SubmitResultRequest{
		TestID:  5,
		Answers: []validator.SubmittedAnswerRequest{{QuestionID: 1, AnswerID: 2}},
	}, userActor(20))

	assert.True(t, IsPermissionError(err))
	repo.result.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
}

func TestGradingService_Submit_NoQuestions(t *testing.T) {
	questions, err := models.EncodeQuestions([]models.Question{})
	require.NoError(t, err)

	test := &models.Test{ID: 5, Title: "Empty", AuthorID: 10, Questions: questions}

	repo := newMockRepository()
	repo.test.On("GetByID", mock.Anything, (*gorm.DB)(nil), uint(5)).Return(test, nil)

	svc := newGradingServiceForTest(repo, nil, time.Now())

	_, err = svc.Submit(context.Background(), &SubmitResultRequest{TestID: 5}, userActor(20))
	assert.True(t, IsValidationError(err))
}

func TestGradingService_Submit_TestNotFound(t *testing.T) {
	repo := newMockRepository()
	repo.test.On("GetByID", mock.Anything, (*gorm.DB)(nil), uint(99)).Return(nil, gorm.ErrRecordNotFound)

	svc := newGradingServiceForTest(repo, nil, time.Now())

	_, err := svc.Submit(context.Background(), &SubmitResultRequest{TestID: 99}, userActor(20))
	assert.ErrorIs(t, err, ErrTestNotFound)
}

func TestGradingService_GetByTest_AuthorOnly(t *testing.T) {
	questions, err := models.EncodeQuestions([]models.Question{
		{ID: 1, Text: "q1", Answers: []models.Answer{{ID: 1, Text: "a"}, {ID: 2, Text: "b"}}, CorrectID: int64Ptr(2)},
	})
	require.NoError(t, err)

	test := &models.Test{ID: 5, Title: "Algebra basics", AuthorID: 10, Questions: questions}

	repo := newMockRepository()
	repo.test.On("GetByID", mock.Anything, (*gorm.DB)(nil), uint(5)).Return(test, nil)

	svc := newGradingServiceForTest(repo, nil, time.Now())

	_, err = svc.GetByTest(context.Background(), 5, repositories.ResultFilters{}, userActor(20))
	assert.True(t, IsPermissionError(err))

	repo.result.On("List", mock.Anything, (*gorm.DB)(nil), mock.Anything).Return([]*models.Result{}, int64(0), nil)
	_, err = svc.GetByTest(context.Background(), 5, repositories.ResultFilters{}, userActor(10))
	assert.NoError(t, err)
}
