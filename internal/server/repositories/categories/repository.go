// Package categories contains the persistence layer for expense category
// labels.
package categories

import (
	"context"

	"expensio/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, category *models.Category) (*models.Category, error)
	GetByID(ctx context.Context, id string) (*models.Category, error)
	GetByName(ctx context.Context, userID, name string) (*models.Category, error)
	ListByUser(ctx context.Context, userID string) ([]*models.Category, error)
	Update(ctx context.Context, category *models.Category) error
	Delete(ctx context.Context, id string) error
}
