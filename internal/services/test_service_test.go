package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/4brn/stddy-bddy/internal/events"
	"github.com/4brn/stddy-bddy/internal/models"
	"github.com/4brn/stddy-bddy/internal/repositories"
	"github.com/4brn/stddy-bddy/internal/validator"
)

func newTestServiceForTest(repo *mockRepository, publisher events.EventPublisher) TestService {
	return NewTestService(repo, nil, testLogger(), validator.New(), publisher)
}

func validCreateRequest() *CreateTestRequest {
	return &CreateTestRequest{
		Title: "Algebra basics",
		Questions: []validator.QuestionRequest{
			{
				ID:   1,
				Text: "2+2?",
				Answers: []validator.AnswerRequest{
					{ID: 1, Text: "3"},
					{ID: 2, Text: "4"},
				},
				CorrectID: int64Ptr(2),
			},
		},
	}
}

func TestTestService_Create(t *testing.T) {
	repo := newMockRepository()
	repo.test.On("Create", mock.Anything, (*gorm.DB)(nil), mock.AnythingOfType("*models.Test")).
		Run(func(args mock.Arguments) {
			args.Get(2).(*models.Test).ID = 5
		}).Return(nil)
	repo.like.On("CountByTest", mock.Anything, (*gorm.DB)(nil), uint(5)).Return(int64(0), nil)
	repo.like.On("Exists", mock.Anything, (*gorm.DB)(nil), uint(20), uint(5)).Return(false, nil)

	publisher := events.NewMockEventPublisher()
	svc := newTestServiceForTest(repo, publisher)

	resp, err := svc.Create(context.Background(), validCreateRequest(), userActor(20))
	require.NoError(t, err)

	// The author is the acting user regardless of the payload
	assert.Equal(t, uint(20), resp.Test.AuthorID)
	assert.True(t, resp.CanEdit)
	assert.Len(t, resp.Questions, 1)
	require.Len(t, publisher.GetEventsByType(events.EventTestCreated), 1)
	repo.assertExpectations(t)
}

func TestTestService_Create_NoQuestions(t *testing.T) {
	svc := newTestServiceForTest(newMockRepository(), nil)

	req := validCreateRequest()
	req.Questions = nil

	_, err := svc.Create(context.Background(), req, userActor(20))
	assert.True(t, IsValidationError(err))
}

func TestTestService_Create_UnknownCategory(t *testing.T) {
	repo := newMockRepository()
	repo.category.On("GetByID", mock.Anything, (*gorm.DB)(nil), uint(9)).Return(nil, gorm.ErrRecordNotFound)

	svc := newTestServiceForTest(repo, nil)

	req := validCreateRequest()
	categoryID := uint(9)
	req.CategoryID = &categoryID

	_, err := svc.Create(context.Background(), req, userActor(20))
	assert.ErrorIs(t, err, ErrCategoryNotFound)
}

func TestTestService_GetByID_Visibility(t *testing.T) {
	questions, err := models.EncodeQuestions([]models.Question{
		{ID: 1, Text: "q", Answers: []models.Answer{{ID: 1, Text: "a"}, {ID: 2, Text: "b"}}, CorrectID: int64Ptr(1)},
	})
	require.NoError(t, err)

	private := &models.Test{ID: 2, Title: "Secret", AuthorID: 10, IsPrivate: true, Questions: questions}

	repo := newMockRepository()
	repo.test.On("GetByID", mock.Anything, (*gorm.DB)(nil), uint(2)).Return(private, nil)
	repo.like.On("CountByTest", mock.Anything, (*gorm.DB)(nil), uint(2)).Return(int64(0), nil)
	repo.like.On("Exists", mock.Anything, (*gorm.DB)(nil), mock.Anything, uint(2)).Return(false, nil)

	svc := newTestServiceForTest(repo, nil)

	_, err = svc.GetByID(context.Background(), 2, userActor(11))
	assert.True(t, IsPermissionError(err))

	resp, err := svc.GetByID(context.Background(), 2, userActor(10))
	require.NoError(t, err)
	assert.True(t, resp.CanEdit)

	resp, err = svc.GetByID(context.Background(), 2, adminActor())
	require.NoError(t, err)
	assert.True(t, resp.CanDelete)
}

func TestTestService_Update_PartialFields(t *testing.T) {
	questions, err := models.EncodeQuestions([]models.Question{
		{ID: 1, Text: "q", Answers: []models.Answer{{ID: 1, Text: "a"}, {ID: 2, Text: "b"}}, CorrectID: int64Ptr(1)},
	})
	require.NoError(t, err)

	existing := &models.Test{ID: 5, Title: "Old title", AuthorID: 10, Questions: questions}

	repo := newMockRepository()
	repo.test.On("GetByID", mock.Anything, (*gorm.DB)(nil), uint(5)).Return(existing, nil)
	repo.test.On("Update", mock.Anything, (*gorm.DB)(nil), mock.AnythingOfType("*models.Test")).Return(nil)
	repo.like.On("CountByTest", mock.Anything, (*gorm.DB)(nil), uint(5)).Return(int64(0), nil)
	repo.like.On("Exists", mock.Anything, (*gorm.DB)(nil), uint(10), uint(5)).Return(false, nil)

	svc := newTestServiceForTest(repo, nil)

	title := "New title"
	resp, err := svc.Update(context.Background(), 5, &UpdateTestRequest{Title: &title}, userActor(10))
	require.NoError(t, err)

	assert.Equal(t, "New title", resp.Test.Title)
	// Untouched fields survive a partial update
	assert.Len(t, resp.Questions, 1)
}

func TestTestService_Update_NotAuthor(t *testing.T) {
	existing := &models.Test{ID: 5, Title: "Old title", AuthorID: 10}

	repo := newMockRepository()
	repo.test.On("GetByID", mock.Anything, (*gorm.DB)(nil), uint(5)).Return(existing, nil)

	svc := newTestServiceForTest(repo, nil)

	title := "Hijacked"
	_, err := svc.Update(context.Background(), 5, &UpdateTestRequest{Title: &title}, userActor(11))
	assert.True(t, IsPermissionError(err))
	repo.test.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestTestService_Delete(t *testing.T) {
	existing := &models.Test{ID: 5, Title: "Doomed", AuthorID: 10}

	repo := newMockRepository()
	repo.test.On("GetByID", mock.Anything, (*gorm.DB)(nil), uint(5)).Return(existing, nil)
	repo.like.On("DeleteByTest", mock.Anything, (*gorm.DB)(nil), uint(5)).Return(nil)
	repo.test.On("Delete", mock.Anything, (*gorm.DB)(nil), uint(5)).Return(nil)

	publisher := events.NewMockEventPublisher()
	svc := newTestServiceForTest(repo, publisher)

	err := svc.Delete(context.Background(), 5, userActor(11))
	assert.True(t, IsPermissionError(err))
	repo.like.AssertNotCalled(t, "DeleteByTest", mock.Anything, (*gorm.DB)(nil), uint(5))

	require.NoError(t, svc.Delete(context.Background(), 5, userActor(10)))
	require.Len(t, publisher.GetEventsByType(events.EventTestDeleted), 1)

	// Likes go with the test
	repo.like.AssertCalled(t, "DeleteByTest", mock.Anything, (*gorm.DB)(nil), uint(5))
	repo.test.AssertCalled(t, "Delete", mock.Anything, (*gorm.DB)(nil), uint(5))
}

func TestTestService_List_VisibilityFilters(t *testing.T) {
	repo := newMockRepository()
	repo.test.On("List", mock.Anything, (*gorm.DB)(nil), mock.MatchedBy(func(f repositories.TestFilters) bool {
		return f.IsPrivate != nil && !*f.IsPrivate && f.VisibleToUserID == nil
	})).Return([]*models.Test{}, int64(0), nil).Once()

	svc := newTestServiceForTest(repo, nil)

	_, err := svc.List(context.Background(), repositories.TestFilters{}, nil)
	require.NoError(t, err)

	repo.test.On("List", mock.Anything, (*gorm.DB)(nil), mock.MatchedBy(func(f repositories.TestFilters) bool {
		return f.IsPrivate == nil && f.VisibleToUserID != nil && *f.VisibleToUserID == 20
	})).Return([]*models.Test{}, int64(0), nil).Once()

	_, err = svc.List(context.Background(), repositories.TestFilters{}, userActor(20))
	require.NoError(t, err)

	repo.test.On("List", mock.Anything, (*gorm.DB)(nil), mock.MatchedBy(func(f repositories.TestFilters) bool {
		return f.IsPrivate == nil && f.VisibleToUserID == nil
	})).Return([]*models.Test{}, int64(0), nil).Once()

	_, err = svc.List(context.Background(), repositories.TestFilters{}, adminActor())
	require.NoError(t, err)

	repo.assertExpectations(t)
}

func TestTestService_GetByAuthor_HidesOthersPrivate(t *testing.T) {
	repo := newMockRepository()
	repo.test.On("List", mock.Anything, (*gorm.DB)(nil), mock.MatchedBy(func(f repositories.TestFilters) bool {
		return f.AuthorID != nil && *f.AuthorID == 10 && f.IsPrivate != nil && !*f.IsPrivate
	})).Return([]*models.Test{}, int64(0), nil).Once()

	svc := newTestServiceForTest(repo, nil)

	_, err := svc.GetByAuthor(context.Background(), 10, repositories.TestFilters{}, userActor(11))
	require.NoError(t, err)

	// The author sees their own private tests
	repo.test.On("List", mock.Anything, (*gorm.DB)(nil), mock.MatchedBy(func(f repositories.TestFilters) bool {
		return f.AuthorID != nil && *f.AuthorID == 10 && f.IsPrivate == nil
	})).Return([]*models.Test{}, int64(0), nil).Once()

	_, err = svc.GetByAuthor(context.Background(), 10, repositories.TestFilters{}, userActor(10))
	require.NoError(t, err)

	repo.assertExpectations(t)
}
