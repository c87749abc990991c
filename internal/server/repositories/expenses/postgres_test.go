package expenses

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"expensio/internal/common"
	"expensio/internal/server/models"

	"github.com/DATA-DOG/go-sqlmock"
)

func newMockRepo(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewPostgresRepository(db), mock
}

func TestGetByID_NotFound(t *testing.T) {
	t.Parallel()

	repo, mock := newMockRepo(t)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT `+expenseColumns+` FROM expenses WHERE id = $1`)).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), "missing")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestQuery_FilterAndDefaultSort(t *testing.T) {
	t.Parallel()

	repo, mock := newMockRepo(t)

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 31, 23, 59, 59, 0, time.UTC)

	rows := sqlmock.NewRows([]string{"id", "user_id", "title", "amount", "category", "description", "date", "receipt_key", "receipt_content_type", "created_at"}).
		AddRow("e2", "u1", "dinner", 25.0, "food", "", time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC), "", "", time.Now()).
		AddRow("e1", "u1", "lunch", 10.0, "food", "", time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC), "", "", time.Now())

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT `+expenseColumns+` FROM expenses WHERE user_id = $1 AND date >= $2 AND date <= $3 AND category = $4 ORDER BY date DESC`)).
		WithArgs("u1", start, end, "food").
		WillReturnRows(rows)

	result, err := repo.Query(context.Background(), Filter{UserID: "u1", Category: "food", Start: start, End: end})
	if err != nil {
		t.Fatalf("Query error: %v", err)
	}
	if len(result) != 2 || result[0].ID != "e2" {
		t.Fatalf("unexpected result: %#v", result)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sqlmock expectations: %v", err)
	}
}

func TestQuery_ExplicitSortAscending(t *testing.T) {
	t.Parallel()

	repo, mock := newMockRepo(t)

	rows := sqlmock.NewRows([]string{"id", "user_id", "title", "amount", "category", "description", "date", "receipt_key", "receipt_content_type", "created_at"})

	mock.ExpectQuery(regexp.QuoteMeta(`ORDER BY amount ASC`)).
		WithArgs("u1").
		WillReturnRows(rows)

	_, err := repo.Query(context.Background(), Filter{UserID: "u1", SortBy: "amount"})
	if err != nil {
		t.Fatalf("Query error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sqlmock expectations: %v", err)
	}
}

func TestAggregateByPeriod_Month(t *testing.T) {
	t.Parallel()

	repo, mock := newMockRepo(t)

	rows := sqlmock.NewRows([]string{"year", "month", "sum", "count"}).
		AddRow(2024, 1, 30.0, 2).
		AddRow(2024, 2, 30.0, 1)

	mock.ExpectQuery(`EXTRACT\(YEAR FROM date\)`).
		WithArgs("u1").
		WillReturnRows(rows)

	buckets, err := repo.AggregateByPeriod(context.Background(), StatsFilter{UserID: "u1"}, "month")
	if err != nil {
		t.Fatalf("AggregateByPeriod error: %v", err)
	}

	if len(buckets) != 2 {
		t.Fatalf("expected 2 buckets, got %d", len(buckets))
	}
	if buckets[0].Year != 2024 || buckets[0].Month != 1 || buckets[0].Total != 30 || buckets[0].Count != 2 {
		t.Fatalf("unexpected bucket: %#v", buckets[0])
	}
}

func TestAggregateByPeriod_CategoryFallback(t *testing.T) {
	t.Parallel()

	repo, mock := newMockRepo(t)

	rows := sqlmock.NewRows([]string{"category", "sum", "count"}).
		AddRow("travel", 100.0, 1).
		AddRow("food", 20.0, 2)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT category, SUM(amount), COUNT(*)`)).
		WithArgs("u1").
		WillReturnRows(rows)

	buckets, err := repo.AggregateByPeriod(context.Background(), StatsFilter{UserID: "u1"}, "weekly")
	if err != nil {
		t.Fatalf("AggregateByPeriod error: %v", err)
	}

	if len(buckets) != 2 || buckets[0].Category != "travel" || buckets[1].Category != "food" {
		t.Fatalf("unexpected buckets: %#v", buckets)
	}
}

func TestSumAmount_EmptyIsZero(t *testing.T) {
	t.Parallel()

	repo, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COALESCE(SUM(amount), 0) FROM expenses WHERE user_id = $1`)).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow(0.0))

	total, err := repo.SumAmount(context.Background(), StatsFilter{UserID: "u1"})
	if err != nil {
		t.Fatalf("SumAmount error: %v", err)
	}
	if total != 0 {
		t.Fatalf("expected 0, got %v", total)
	}
}

func TestUpdate_NotFound(t *testing.T) {
	t.Parallel()

	repo, mock := newMockRepo(t)

	mock.ExpectExec(`UPDATE expenses`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(context.Background(), &models.Expense{ID: "missing"})
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestMatchClause(t *testing.T) {
	t.Parallel()

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	where, args := matchClause(StatsFilter{UserID: "u1"})
	if where != "WHERE user_id = $1" || len(args) != 1 {
		t.Fatalf("unexpected clause: %q %v", where, args)
	}

	where, args = matchClause(StatsFilter{UserID: "u1", Start: start, Category: "food"})
	if where != "WHERE user_id = $1 AND date >= $2 AND category = $3" || len(args) != 3 {
		t.Fatalf("unexpected clause: %q %v", where, args)
	}
}

func TestSortClause(t *testing.T) {
	t.Parallel()

	tests := []struct {
		sortBy    string
		sortOrder string
		want      string
	}{
		{"", "", "date DESC"},
		{"nonsense", "desc", "date DESC"},
		{"amount", "", "amount ASC"},
		{"amount", "desc", "amount DESC"},
		{"title", "asc", "title ASC"},
	}

	for _, tt := range tests {
		if got := sortClause(tt.sortBy, tt.sortOrder); got != tt.want {
			t.Fatalf("sortClause(%q, %q) = %q, want %q", tt.sortBy, tt.sortOrder, got, tt.want)
		}
	}
}
