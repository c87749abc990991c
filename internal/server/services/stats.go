// Package services contains server-side business logic. This file implements
// the statistics engine: time-bucketed grouping of a user's expenses with a
// grand total, including the recovery paths that keep the endpoint available
// when the aggregation backend fails.
package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"expensio/internal/logging"
	"expensio/internal/server/models"
	"expensio/internal/server/repositories/expenses"
	"expensio/internal/server/repositories/repomanager"
)

// StatsQuery selects the expenses to aggregate. Period is one of day, month,
// or year; any other value (including empty) groups by category. Zero Start
// and End together select the current calendar month; a single zero bound is
// unbounded on that side.
type StatsQuery struct {
	Period   string
	Start    time.Time
	End      time.Time
	Category string
}

// StatsResult is the statistics endpoint payload.
type StatsResult struct {
	Stats       []models.StatsBucket `json:"stats"`
	TotalAmount float64              `json:"totalAmount"`
	Period      string               `json:"period"`
	StartDate   time.Time            `json:"startDate,omitzero"`
	EndDate     time.Time            `json:"endDate,omitzero"`
}

type StatsService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	logger      logging.Logger

	// now is a clock seam so the default-window logic is testable.
	now func() time.Time
}

func NewStatsService(db *sql.DB, m repomanager.RepositoryManager, logger logging.Logger) *StatsService {
	return &StatsService{
		db:          db,
		repomanager: m,
		logger:      logger.With("module", "stats"),
		now:         time.Now,
	}
}

// Overview computes per-bucket totals/counts and a grand total for one
// user's expenses inside the resolved window.
//
// The two computations are deliberately independent: a failed bucket
// aggregation degrades to an empty bucket list, and a failed total
// aggregation falls back to summing the filtered expenses in process.
// Only a failure of that last resort surfaces to the caller.
func (s *StatsService) Overview(ctx context.Context, userID string, q StatsQuery) (*StatsResult, error) {
	start, end := resolveWindow(q.Start, q.End, s.now())

	repo := s.repomanager.Expenses(s.db)
	match := expenses.StatsFilter{UserID: userID, Category: q.Category, Start: start, End: end}

	buckets, err := repo.AggregateByPeriod(ctx, match, q.Period)
	if err != nil {
		s.logger.Error(ctx, "bucket aggregation failed, returning empty stats", "error", err, "period", q.Period)
		buckets = nil
	}
	if buckets == nil {
		buckets = []models.StatsBucket{}
	}

	total, err := repo.SumAmount(ctx, match)
	if err != nil {
		s.logger.Warn(ctx, "total aggregation failed, falling back to linear sum", "error", err)
		total, err = s.fallbackTotal(ctx, match)
		if err != nil {
			return nil, fmt.Errorf("error computing total amount: %w", err)
		}
	}

	return &StatsResult{
		Stats:       buckets,
		TotalAmount: total,
		Period:      q.Period,
		StartDate:   start,
		EndDate:     end,
	}, nil
}

// fallbackTotal recomputes the grand total by fetching the filtered expenses
// and summing them in process. It shares the match filter with the
// aggregation path but none of its SQL.
func (s *StatsService) fallbackTotal(ctx context.Context, match expenses.StatsFilter) (float64, error) {
	repo := s.repomanager.Expenses(s.db)

	items, err := repo.Query(ctx, expenses.Filter{
		UserID:   match.UserID,
		Category: match.Category,
		Start:    match.Start,
		End:      match.End,
	})
	if err != nil {
		return 0, err
	}

	var total float64
	for _, e := range items {
		total += e.Amount
	}
	return total, nil
}

// resolveWindow normalizes the requested date range to whole calendar days:
// the start bound to 00:00:00 and the end bound to the last nanosecond of
// its day, regardless of any time-of-day the caller passed. With both bounds
// absent the window is the current calendar month; with one bound absent
// that side stays unbounded (zero).
func resolveWindow(start, end, now time.Time) (time.Time, time.Time) {
	if start.IsZero() && end.IsZero() {
		first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		return first, first.AddDate(0, 1, 0).Add(-time.Nanosecond)
	}

	if !start.IsZero() {
		start = startOfDay(start)
	}
	if !end.IsZero() {
		end = endOfDay(end)
	}
	return start, end
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	return startOfDay(t).AddDate(0, 0, 1).Add(-time.Nanosecond)
}
