package expenses

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"expensio/internal/common"
	"expensio/internal/dbx"
	"expensio/internal/server/models"
)

const expenseColumns = "id, user_id, title, amount, category, description, date, receipt_key, receipt_content_type, created_at"

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, expense *models.Expense) (*models.Expense, error) {

	query :=
		`INSERT INTO expenses (id, user_id, title, amount, category, description, date, receipt_key, receipt_content_type)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING created_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		expense.ID, expense.UserID, expense.Title, expense.Amount, expense.Category,
		expense.Description, expense.Date, expense.ReceiptKey, expense.ReceiptContentType).Scan(&expense.CreatedAt)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return expense, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Expense, error) {
	query := `SELECT ` + expenseColumns + ` FROM expenses WHERE id = $1`

	e := &models.Expense{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&e.ID, &e.UserID, &e.Title, &e.Amount, &e.Category,
		&e.Description, &e.Date, &e.ReceiptKey, &e.ReceiptContentType, &e.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return e, nil
}

func (r *PostgresRepository) Query(ctx context.Context, f Filter) ([]*models.Expense, error) {
	where, args := matchClause(StatsFilter{UserID: f.UserID, Category: f.Category, Start: f.Start, End: f.End})

	query := `SELECT ` + expenseColumns + ` FROM expenses ` + where + ` ORDER BY ` + sortClause(f.SortBy, f.SortOrder)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Expense
	for rows.Next() {
		e := &models.Expense{}
		if err := rows.Scan(&e.ID, &e.UserID, &e.Title, &e.Amount, &e.Category,
			&e.Description, &e.Date, &e.ReceiptKey, &e.ReceiptContentType, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

func (r *PostgresRepository) Update(ctx context.Context, expense *models.Expense) error {
	query :=
		`UPDATE expenses SET title = $2, amount = $3, category = $4, description = $5, date = $6, receipt_key = $7, receipt_content_type = $8
		 WHERE id = $1
		 `

	res, err := r.db.ExecContext(ctx, query,
		expense.ID, expense.Title, expense.Amount, expense.Category,
		expense.Description, expense.Date, expense.ReceiptKey, expense.ReceiptContentType)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if affected == 0 {
		return common.ErrorNotFound
	}

	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM expenses WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if affected == 0 {
		return common.ErrorNotFound
	}

	return nil
}

func (r *PostgresRepository) AggregateByPeriod(ctx context.Context, f StatsFilter, period string) ([]models.StatsBucket, error) {
	where, args := matchClause(f)

	var query string
	switch period {
	case "day":
		query = `SELECT EXTRACT(YEAR FROM date)::int, EXTRACT(MONTH FROM date)::int, EXTRACT(DAY FROM date)::int, SUM(amount), COUNT(*)
			 FROM expenses ` + where + `
			 GROUP BY 1, 2, 3 ORDER BY 1, 2, 3`
	case "month":
		query = `SELECT EXTRACT(YEAR FROM date)::int, EXTRACT(MONTH FROM date)::int, SUM(amount), COUNT(*)
			 FROM expenses ` + where + `
			 GROUP BY 1, 2 ORDER BY 1, 2`
	case "year":
		query = `SELECT EXTRACT(YEAR FROM date)::int, SUM(amount), COUNT(*)
			 FROM expenses ` + where + `
			 GROUP BY 1 ORDER BY 1`
	default:
		query = `SELECT category, SUM(amount), COUNT(*)
			 FROM expenses ` + where + `
			 GROUP BY category ORDER BY 2 DESC`
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var buckets []models.StatsBucket
	for rows.Next() {
		var b models.StatsBucket
		switch period {
		case "day":
			err = rows.Scan(&b.Year, &b.Month, &b.Day, &b.Total, &b.Count)
		case "month":
			err = rows.Scan(&b.Year, &b.Month, &b.Total, &b.Count)
		case "year":
			err = rows.Scan(&b.Year, &b.Total, &b.Count)
		default:
			err = rows.Scan(&b.Category, &b.Total, &b.Count)
		}
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		buckets = append(buckets, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return buckets, nil
}

func (r *PostgresRepository) SumAmount(ctx context.Context, f StatsFilter) (float64, error) {
	where, args := matchClause(f)

	var total float64
	err := r.db.QueryRowContext(ctx, `SELECT COALESCE(SUM(amount), 0) FROM expenses `+where, args...).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}

	return total, nil
}

// matchClause builds the WHERE clause shared by listing, aggregation, and
// sum queries. Zero time bounds and an empty category add no condition.
func matchClause(f StatsFilter) (string, []any) {
	conds := []string{"user_id = $1"}
	args := []any{f.UserID}

	if !f.Start.IsZero() {
		args = append(args, f.Start)
		conds = append(conds, fmt.Sprintf("date >= $%d", len(args)))
	}
	if !f.End.IsZero() {
		args = append(args, f.End)
		conds = append(conds, fmt.Sprintf("date <= $%d", len(args)))
	}
	if f.Category != "" {
		args = append(args, f.Category)
		conds = append(conds, fmt.Sprintf("category = $%d", len(args)))
	}

	return "WHERE " + strings.Join(conds, " AND "), args
}

var sortColumns = map[string]string{
	"date":     "date",
	"amount":   "amount",
	"title":    "title",
	"category": "category",
}

// sortClause maps the requested sort onto a whitelisted column. Without an
// explicit sort field the listing comes back newest first; with one, the
// order is ascending unless "desc" is requested.
func sortClause(sortBy, sortOrder string) string {
	col, ok := sortColumns[sortBy]
	if !ok {
		return "date DESC"
	}

	dir := "ASC"
	if sortOrder == "desc" {
		dir = "DESC"
	}
	return col + " " + dir
}
