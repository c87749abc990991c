package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"expensio/internal/common"
	"expensio/internal/dbx"
	"expensio/internal/server/models"
	"expensio/internal/server/repositories/repomanager"

	"github.com/google/uuid"
)

// CreateCategoryRequest carries the fields of a new category label.
type CreateCategoryRequest struct {
	Name  string
	Color string
	Icon  string
}

// UpdateCategoryRequest carries a partial update; empty fields keep the
// stored values.
type UpdateCategoryRequest struct {
	Name  string
	Color string
	Icon  string
}

type CategoryService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewCategoryService(db *sql.DB, m repomanager.RepositoryManager) *CategoryService {
	return &CategoryService{db: db, repomanager: m}
}

// Create adds a category, enforcing name uniqueness within the user's scope.
// The duplicate check and insert run in one transaction.
func (s *CategoryService) Create(ctx context.Context, userID string, req CreateCategoryRequest) (*models.Category, error) {
	if req.Name == "" {
		return nil, fmt.Errorf("%w: name is required", common.ErrorValidation)
	}

	category := &models.Category{
		ID:     uuid.NewString(),
		UserID: userID,
		Name:   req.Name,
		Color:  req.Color,
		Icon:   req.Icon,
	}

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Categories(tx)

		_, err := repo.GetByName(ctx, userID, req.Name)
		if err == nil {
			return fmt.Errorf("%w: category %q", common.ErrorAlreadyExists, req.Name)
		}
		if !errors.Is(err, common.ErrorNotFound) {
			return fmt.Errorf("error checking category name: %w", err)
		}

		category, err = repo.Create(ctx, category)
		return err
	})

	if err != nil {
		return nil, err
	}

	return category, nil
}

func (s *CategoryService) List(ctx context.Context, userID string) ([]*models.Category, error) {
	repo := s.repomanager.Categories(s.db)

	result, err := repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error listing categories: %w", err)
	}

	return result, nil
}

func (s *CategoryService) Update(ctx context.Context, userID, id string, req UpdateCategoryRequest) (*models.Category, error) {
	category, err := s.owned(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	rename := req.Name != "" && req.Name != category.Name

	if req.Name != "" {
		category.Name = req.Name
	}
	if req.Color != "" {
		category.Color = req.Color
	}
	if req.Icon != "" {
		category.Icon = req.Icon
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Categories(tx)

		if rename {
			_, err := repo.GetByName(ctx, userID, category.Name)
			if err == nil {
				return fmt.Errorf("%w: category %q", common.ErrorAlreadyExists, category.Name)
			}
			if !errors.Is(err, common.ErrorNotFound) {
				return fmt.Errorf("error checking category name: %w", err)
			}
		}

		return repo.Update(ctx, category)
	})

	if err != nil {
		return nil, err
	}

	return category, nil
}

func (s *CategoryService) Delete(ctx context.Context, userID, id string) error {
	if _, err := s.owned(ctx, userID, id); err != nil {
		return err
	}

	repo := s.repomanager.Categories(s.db)
	if err := repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("error deleting category: %w", err)
	}

	// Expenses reference categories by name, so no cascade happens here.
	return nil
}

// owned loads a category and enforces the owner check, existence first.
func (s *CategoryService) owned(ctx context.Context, userID, id string) (*models.Category, error) {
	repo := s.repomanager.Categories(s.db)

	category, err := repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("error fetching category: %w", err)
	}

	if category.UserID != userID {
		return nil, common.ErrorForbidden
	}

	return category, nil
}
