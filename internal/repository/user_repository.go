package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"regbot/internal/entities"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const userColumns = "id, name, mobile, batch, feedback, created_at, updated_at"

type UserRepository struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

func scanUser(row pgx.Row) (*entities.User, error) {
	var u entities.User
	err := row.Scan(&u.ID, &u.Name, &u.Mobile, &u.Batch, &u.Feedback, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id int64) (*entities.User, error) {
	u, err := scanUser(r.db.QueryRow(ctx, "SELECT "+userColumns+" FROM users WHERE id = $1", id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil // Not found
	}
	if err != nil {
		return nil, fmt.Errorf("find user %d: %w", id, err)
	}
	return u, nil
}

// Upsert inserts or replaces the registration fields. created_at is only set on insert.
func (r *UserRepository) Upsert(ctx context.Context, reg entities.Registration) (*entities.User, error) {
	u, err := scanUser(r.db.QueryRow(ctx, `
		INSERT INTO users (id, name, mobile, batch, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			mobile = EXCLUDED.mobile,
			batch = EXCLUDED.batch,
			updated_at = NOW()
		RETURNING `+userColumns,
		reg.ID, strings.TrimSpace(reg.Name), reg.Mobile, reg.Batch))
	if err != nil {
		return nil, fmt.Errorf("upsert user %d: %w", reg.ID, err)
	}
	return u, nil
}

// UpdateFeedback is a no-op for unknown ids.
func (r *UserRepository) UpdateFeedback(ctx context.Context, id int64, feedback string) error {
	_, err := r.db.Exec(ctx,
		"UPDATE users SET feedback = $1, updated_at = NOW() WHERE id = $2",
		feedback, id)
	if err != nil {
		return fmt.Errorf("update feedback %d: %w", id, err)
	}
	return nil
}

// List returns users newest first.
func (r *UserRepository) List(ctx context.Context, filter entities.UserFilter) ([]entities.User, error) {
	query := "SELECT " + userColumns + " FROM users"
	args := []any{}
	if filter.Batch != 0 {
		args = append(args, filter.Batch)
		query += fmt.Sprintf(" WHERE batch = $%d", len(args))
	}
	query += " ORDER BY created_at DESC, id DESC"
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := []entities.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}
