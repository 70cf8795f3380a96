package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"github.com/4brn/stddy-bddy/internal/models"
	"github.com/4brn/stddy-bddy/internal/repositories"
)

// exportService produces xlsx exports of result data for admins
type exportService struct {
	repo   repositories.Repository
	db     *gorm.DB
	logger *slog.Logger
	policy *AccessPolicy
}

func NewExportService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger) ExportService {
	return &exportService{
		repo:   repo,
		db:     db,
		logger: logger,
		policy: NewAccessPolicy(),
	}
}

var resultExportHeader = []string{"Result ID", "User", "Test", "Score (%)", "Correct", "Total", "Taken At"}

func (s *exportService) ExportResults(ctx context.Context, filters repositories.ResultFilters, actor *models.User, w io.Writer) error {
	if !s.policy.CanManageUsers(actor) {
		return NewPermissionError(actorID(actor), 0, "result", "export", "admin only")
	}

	results, _, err := s.repo.Result().List(ctx, s.db, filters)
	if err != nil {
		return fmt.Errorf("failed to load results for export: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Results"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("failed to set up workbook: %w", err)
	}

	for col, title := range resultExportHeader {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, title); err != nil {
			return err
		}
	}

	// Usernames resolved once per user, not per row
	usernames := make(map[uint]string)

	for i, result := range results {
		username, ok := usernames[result.UserID]
		if !ok {
			if user, err := s.repo.User().GetByID(ctx, s.db, result.UserID); err == nil {
				username = user.Username
			} else {
				username = fmt.Sprintf("user-%d", result.UserID)
			}
			usernames[result.UserID] = username
		}

		row := []interface{}{
			result.ID,
			username,
			result.TestName,
			result.Score,
			result.Correct,
			result.Total,
			result.TakenAt.Format("2006-01-02 15:04:05"),
		}

		for col, value := range row {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return err
			}
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}

	s.logger.Info("Results exported", "count", len(results), "admin_id", actor.ID)

	return nil
}
