// Package expenses contains the persistence layer for expense records,
// including the filtered listing and the aggregation queries backing the
// statistics engine.
package expenses

import (
	"context"
	"time"

	"expensio/internal/server/models"
)

// Filter narrows a listing to one user's expenses, optionally constrained by
// category and an inclusive date window. Zero time bounds mean unbounded.
type Filter struct {
	UserID   string
	Category string
	Start    time.Time
	End      time.Time

	// SortBy is one of date, amount, title, category; anything else falls
	// back to date. SortOrder is "asc" or "desc".
	SortBy    string
	SortOrder string
}

// StatsFilter is the match portion of an aggregation: owner scope plus the
// optional window and category constraints.
type StatsFilter struct {
	UserID   string
	Category string
	Start    time.Time
	End      time.Time
}

type Repository interface {
	Create(ctx context.Context, expense *models.Expense) (*models.Expense, error)
	GetByID(ctx context.Context, id string) (*models.Expense, error)
	Query(ctx context.Context, f Filter) ([]*models.Expense, error)
	Update(ctx context.Context, expense *models.Expense) error
	Delete(ctx context.Context, id string) error

	// AggregateByPeriod groups matching expenses into per-bucket totals and
	// counts. Period day/month/year buckets come back sorted ascending by
	// calendar key; any other period groups by category, ordered by total
	// descending.
	AggregateByPeriod(ctx context.Context, f StatsFilter, period string) ([]models.StatsBucket, error)

	// SumAmount returns the total amount over the matching expenses,
	// independent of any bucketing.
	SumAmount(ctx context.Context, f StatsFilter) (float64, error)
}
