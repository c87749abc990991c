package categories

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"expensio/internal/common"

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

func TestGetByName_ScopedToUser(t *testing.T) {
	t.Parallel()

	repo, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE user_id = $1 AND name = $2`)).
		WithArgs("u1", "food").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "name", "color", "icon", "created_at"}).
			AddRow("c1", "u1", "food", "#ff0000", "fork", time.Now()))

	category, err := repo.GetByName(context.Background(), "u1", "food")
	if err != nil {
		t.Fatalf("GetByName error: %v", err)
	}
	if category.ID != "c1" || category.Name != "food" {
		t.Fatalf("unexpected category: %#v", category)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sqlmock expectations: %v", err)
	}
}

func TestGetByName_NotFound(t *testing.T) {
	t.Parallel()

	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`SELECT`).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByName(context.Background(), "u1", "missing")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestListByUser_OrderedByName(t *testing.T) {
	t.Parallel()

	repo, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta(`ORDER BY name ASC`)).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "name", "color", "icon", "created_at"}).
			AddRow("c2", "u1", "food", "", "", time.Now()).
			AddRow("c1", "u1", "travel", "", "", time.Now()))

	result, err := repo.ListByUser(context.Background(), "u1")
	if err != nil {
		t.Fatalf("ListByUser error: %v", err)
	}
	if len(result) != 2 || result[0].Name != "food" {
		t.Fatalf("unexpected result: %#v", result)
	}
}

func TestDelete_NotFound(t *testing.T) {
	t.Parallel()

	repo, mock := newMockRepo(t)

	mock.ExpectExec(`DELETE FROM categories`).
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), "missing")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
