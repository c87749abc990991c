package categories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"expensio/internal/common"
	"expensio/internal/dbx"
	"expensio/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, category *models.Category) (*models.Category, error) {

	query :=
		`INSERT INTO categories (id, user_id, name, color, icon)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING created_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		category.ID, category.UserID, category.Name, category.Color, category.Icon).Scan(&category.CreatedAt)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return category, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Category, error) {
	query :=
		`SELECT id, user_id, name, color, icon, created_at FROM categories
		 WHERE id = $1
		 `
	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresRepository) GetByName(ctx context.Context, userID, name string) (*models.Category, error) {
	query :=
		`SELECT id, user_id, name, color, icon, created_at FROM categories
		 WHERE user_id = $1 AND name = $2
		 `
	return r.scanOne(r.db.QueryRowContext(ctx, query, userID, name))
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]*models.Category, error) {
	query :=
		`SELECT id, user_id, name, color, icon, created_at FROM categories
		 WHERE user_id = $1
		 ORDER BY name ASC
		 `

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := []*models.Category{}
	for rows.Next() {
		category := &models.Category{}
		err := rows.Scan(&category.ID, &category.UserID, &category.Name,
			&category.Color, &category.Icon, &category.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, category)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

func (r *PostgresRepository) Update(ctx context.Context, category *models.Category) error {
	query :=
		`UPDATE categories SET name = $2, color = $3, icon = $4
		 WHERE id = $1
		 `

	res, err := r.db.ExecContext(ctx, query,
		category.ID, category.Name, category.Color, category.Icon)
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
	res, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id)
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

func (r *PostgresRepository) scanOne(row *sql.Row) (*models.Category, error) {
	category := &models.Category{}
	err := row.Scan(&category.ID, &category.UserID, &category.Name,
		&category.Color, &category.Icon, &category.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return category, nil
}
