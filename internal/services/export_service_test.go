package services

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"github.com/4brn/stddy-bddy/internal/models"
	"github.com/4brn/stddy-bddy/internal/repositories"
)

func TestExportService_ExportResults_AdminOnly(t *testing.T) {
	svc := NewExportService(newMockRepository(), nil, testLogger())

	var buf bytes.Buffer
	err := svc.ExportResults(context.Background(), repositories.ResultFilters{}, userActor(20), &buf)
	assert.True(t, IsPermissionError(err))
	assert.Zero(t, buf.Len())
}

func TestExportService_ExportResults(t *testing.T) {
	takenAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	results := []*models.Result{
		{ID: 1, UserID: 20, TestID: 5, Score: 50, Correct: 1, Total: 2, TakenAt: takenAt, TestName: "Algebra basics"},
		{ID: 2, UserID: 20, TestID: 5, Score: 100, Correct: 2, Total: 2, TakenAt: takenAt, TestName: "Algebra basics"},
	}

	repo := newMockRepository()
	repo.result.On("List", mock.Anything, (*gorm.DB)(nil), mock.Anything).Return(results, int64(2), nil)
	repo.user.On("GetByID", mock.Anything, (*gorm.DB)(nil), uint(20)).
		Return(&models.User{ID: 20, Username: "someone"}, nil).Once()

	svc := NewExportService(repo, nil, testLogger())

	var buf bytes.Buffer
	require.NoError(t, svc.ExportResults(context.Background(), repositories.ResultFilters{}, adminActor(), &buf))

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Results")
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, "Result ID", rows[0][0])
	assert.Equal(t, "someone", rows[1][1])
	assert.Equal(t, "Algebra basics", rows[2][2])
	// The username lookup ran once despite two rows for the same user
	repo.user.AssertNumberOfCalls(t, "GetByID", 1)
}
