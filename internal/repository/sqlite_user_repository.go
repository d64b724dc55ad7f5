package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"regbot/internal/entities"

	"github.com/jmoiron/sqlx"
)

type sqliteUserRow struct {
	ID        int64  `db:"id"`
	Name      string `db:"name"`
	Mobile    string `db:"mobile"`
	Batch     int    `db:"batch"`
	Feedback  string `db:"feedback"`
	CreatedAt int64  `db:"created_at"`
	UpdatedAt int64  `db:"updated_at"`
}

func (r sqliteUserRow) toEntity() entities.User {
	return entities.User{
		ID:        r.ID,
		Name:      r.Name,
		Mobile:    r.Mobile,
		Batch:     r.Batch,
		Feedback:  r.Feedback,
		CreatedAt: time.Unix(0, r.CreatedAt).UTC(),
		UpdatedAt: time.Unix(0, r.UpdatedAt).UTC(),
	}
}

// SQLiteUserRepository is the embedded-database counterpart of UserRepository.
type SQLiteUserRepository struct {
	db  *sqlx.DB
	now func() time.Time
}

func NewSQLiteUserRepository(db *sqlx.DB) *SQLiteUserRepository {
	return &SQLiteUserRepository{db: db, now: time.Now}
}

func (r *SQLiteUserRepository) FindByID(ctx context.Context, id int64) (*entities.User, error) {
	var row sqliteUserRow
	err := r.db.GetContext(ctx, &row, "SELECT "+userColumns+" FROM users WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find user %d: %w", id, err)
	}
	u := row.toEntity()
	return &u, nil
}

func (r *SQLiteUserRepository) Upsert(ctx context.Context, reg entities.Registration) (*entities.User, error) {
	now := r.now().UnixNano()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (id, name, mobile, batch, feedback, created_at, updated_at)
		VALUES (?, ?, ?, ?, '', ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name,
			mobile = excluded.mobile,
			batch = excluded.batch,
			updated_at = excluded.updated_at
	`, reg.ID, strings.TrimSpace(reg.Name), reg.Mobile, reg.Batch, now, now)
	if err != nil {
		return nil, fmt.Errorf("upsert user %d: %w", reg.ID, err)
	}

	u, err := r.FindByID(ctx, reg.ID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, fmt.Errorf("upsert user %d: row vanished", reg.ID)
	}
	return u, nil
}

func (r *SQLiteUserRepository) UpdateFeedback(ctx context.Context, id int64, feedback string) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE users SET feedback = ?, updated_at = ? WHERE id = ?",
		feedback, r.now().UnixNano(), id)
	if err != nil {
		return fmt.Errorf("update feedback %d: %w", id, err)
	}
	return nil
}

func (r *SQLiteUserRepository) List(ctx context.Context, filter entities.UserFilter) ([]entities.User, error) {
	query := "SELECT " + userColumns + " FROM users"
	args := []any{}
	if filter.Batch != 0 {
		query += " WHERE batch = ?"
		args = append(args, filter.Batch)
	}
	query += " ORDER BY created_at DESC, id DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	var rows []sqliteUserRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	users := make([]entities.User, 0, len(rows))
	for _, row := range rows {
		users = append(users, row.toEntity())
	}
	return users, nil
}
