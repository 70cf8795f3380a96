package services

import (
	"context"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"github.com/4brn/stddy-bddy/internal/models"
	"github.com/4brn/stddy-bddy/internal/repositories"
	"github.com/4brn/stddy-bddy/internal/validator"
)

type categoryService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
	policy    *AccessPolicy
}

func NewCategoryService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, v *validator.Validator) CategoryService {
	return &categoryService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: v,
		policy:    NewAccessPolicy(),
	}
}

func (s *categoryService) Create(ctx context.Context, req *CreateCategoryRequest, actor *models.User) (*models.Category, error) {
	if !s.policy.CanManageCategories(actor) {
		return nil, NewPermissionError(actorID(actor), 0, "category", "create", "admin only")
	}

	if errs := s.validator.GetBusinessValidator().Validate(req); len(errs) > 0 {
		return nil, errs
	}

	category := &models.Category{Name: req.Name}
	if err := s.repo.Category().Create(ctx, s.db, category); err != nil {
		if repositories.IsDuplicateKeyError(err) {
			return nil, NewValidationError("name", "category already exists")
		}
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	s.logger.Info("Category created", "category_id", category.ID, "name", category.Name)

	return category, nil
}

func (s *categoryService) Update(ctx context.Context, id uint, req *UpdateCategoryRequest, actor *models.User) (*models.Category, error) {
	if !s.policy.CanManageCategories(actor) {
		return nil, NewPermissionError(actorID(actor), id, "category", "update", "admin only")
	}

	if errs := s.validator.GetBusinessValidator().Validate(req); len(errs) > 0 {
		return nil, errs
	}

	category, err := s.repo.Category().GetByID(ctx, s.db, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to get category: %w", err)
	}

	category.Name = req.Name
	if err := s.repo.Category().Update(ctx, s.db, category); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCategoryNotFound
		}
		if repositories.IsDuplicateKeyError(err) {
			return nil, NewValidationError("name", "category already exists")
		}
		return nil, fmt.Errorf("failed to update category: %w", err)
	}

	return category, nil
}

func (s *categoryService) Delete(ctx context.Context, id uint, actor *models.User) error {
	if !s.policy.CanManageCategories(actor) {
		return NewPermissionError(actorID(actor), id, "category", "delete", "admin only")
	}

	if err := s.repo.Category().Delete(ctx, s.db, id); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrCategoryNotFound
		}
		return fmt.Errorf("failed to delete category: %w", err)
	}

	s.logger.Info("Category deleted", "category_id", id)

	return nil
}

func (s *categoryService) List(ctx context.Context) ([]*models.Category, error) {
	return s.repo.Category().List(ctx, s.db)
}
