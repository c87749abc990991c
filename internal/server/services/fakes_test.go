package services

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"testing"

	"expensio/internal/common"
	"expensio/internal/dbx"
	"expensio/internal/logging"
	"expensio/internal/server/models"
	"expensio/internal/server/repositories/categories"
	"expensio/internal/server/repositories/expenses"
	"expensio/internal/server/repositories/repomanager"
	"expensio/internal/server/repositories/users"

	"github.com/DATA-DOG/go-sqlmock"
)

// -------- test fakes --------

type fakeExpensesRepo struct {
	expenses.Repository

	byID   map[string]*models.Expense
	getErr error

	queryItems []*models.Expense
	queryErr   error
	lastFilter expenses.Filter

	aggBuckets []models.StatsBucket
	aggErr     error
	lastMatch  expenses.StatsFilter
	lastPeriod string

	sumTotal float64
	sumErr   error

	created *models.Expense
	updated *models.Expense
	deleted []string
}

func (f *fakeExpensesRepo) Create(ctx context.Context, e *models.Expense) (*models.Expense, error) {
	f.created = e
	return e, nil
}

func (f *fakeExpensesRepo) GetByID(ctx context.Context, id string) (*models.Expense, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	e, ok := f.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *e
	return &cp, nil
}

func (f *fakeExpensesRepo) Query(ctx context.Context, filter expenses.Filter) ([]*models.Expense, error) {
	f.lastFilter = filter
	return f.queryItems, f.queryErr
}

func (f *fakeExpensesRepo) Update(ctx context.Context, e *models.Expense) error {
	f.updated = e
	return nil
}

func (f *fakeExpensesRepo) Delete(ctx context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeExpensesRepo) AggregateByPeriod(ctx context.Context, match expenses.StatsFilter, period string) ([]models.StatsBucket, error) {
	f.lastMatch = match
	f.lastPeriod = period
	return f.aggBuckets, f.aggErr
}

func (f *fakeExpensesRepo) SumAmount(ctx context.Context, match expenses.StatsFilter) (float64, error) {
	return f.sumTotal, f.sumErr
}

type fakeCategoriesRepo struct {
	categories.Repository

	byID   map[string]*models.Category
	byName map[string]*models.Category

	listItems []*models.Category

	created *models.Category
	updated *models.Category
	deleted []string
}

func (f *fakeCategoriesRepo) Create(ctx context.Context, c *models.Category) (*models.Category, error) {
	f.created = c
	return c, nil
}

func (f *fakeCategoriesRepo) GetByID(ctx context.Context, id string) (*models.Category, error) {
	c, ok := f.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *c
	return &cp, nil
}

func (f *fakeCategoriesRepo) GetByName(ctx context.Context, userID, name string) (*models.Category, error) {
	c, ok := f.byName[userID+"/"+name]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return c, nil
}

func (f *fakeCategoriesRepo) ListByUser(ctx context.Context, userID string) ([]*models.Category, error) {
	return f.listItems, nil
}

func (f *fakeCategoriesRepo) Update(ctx context.Context, c *models.Category) error {
	f.updated = c
	return nil
}

func (f *fakeCategoriesRepo) Delete(ctx context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	return nil
}

type fakeUsersRepo struct {
	users.Repository

	byID    map[string]*models.User
	byEmail map[string]*models.User

	created *models.User
	updated *models.User
}

func (f *fakeUsersRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	f.created = u
	return u, nil
}

func (f *fakeUsersRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	u, ok := f.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsersRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	u, ok := f.byEmail[email]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsersRepo) Update(ctx context.Context, u *models.User) error {
	f.updated = u
	return nil
}

type fakeRepoManager struct {
	repomanager.RepositoryManager
	u *fakeUsersRepo
	c *fakeCategoriesRepo
	e *fakeExpensesRepo
}

func (m *fakeRepoManager) Users(dbx dbx.DBTX) users.Repository           { return m.u }
func (m *fakeRepoManager) Categories(dbx dbx.DBTX) categories.Repository { return m.c }
func (m *fakeRepoManager) Expenses(dbx dbx.DBTX) expenses.Repository     { return m.e }

// -------- helpers --------

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return db, mock
}

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}
