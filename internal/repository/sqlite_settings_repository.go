package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"regbot/internal/entities"

	"github.com/jmoiron/sqlx"
)

type sqliteSettingsRow struct {
	ID              string `db:"id"`
	FeedbackAllowed bool   `db:"feedback_allowed"`
	AdminIDs        string `db:"admin_ids"`
	UpdatedAt       int64  `db:"updated_at"`
}

// SQLiteSettingsRepository stores admin ids as a JSON array column.
type SQLiteSettingsRepository struct {
	db *sqlx.DB
}

func NewSQLiteSettingsRepository(db *sqlx.DB) *SQLiteSettingsRepository {
	return &SQLiteSettingsRepository{db: db}
}

func (r *SQLiteSettingsRepository) Load(ctx context.Context, id string) (*entities.Settings, error) {
	var row sqliteSettingsRow
	err := r.db.GetContext(ctx, &row,
		"SELECT id, feedback_allowed, admin_ids, updated_at FROM settings WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	admins := []int64{}
	if err := json.Unmarshal([]byte(row.AdminIDs), &admins); err != nil {
		return nil, fmt.Errorf("decode admin ids: %w", err)
	}
	return &entities.Settings{
		ID:              row.ID,
		FeedbackAllowed: row.FeedbackAllowed,
		AdminIDs:        admins,
		UpdatedAt:       time.Unix(0, row.UpdatedAt).UTC(),
	}, nil
}

func (r *SQLiteSettingsRepository) Save(ctx context.Context, s *entities.Settings) error {
	admins := s.AdminIDs
	if admins == nil {
		admins = []int64{}
	}
	raw, err := json.Marshal(admins)
	if err != nil {
		return fmt.Errorf("encode admin ids: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO settings (id, feedback_allowed, admin_ids, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			feedback_allowed = excluded.feedback_allowed,
			admin_ids = excluded.admin_ids,
			updated_at = excluded.updated_at
	`, s.ID, s.FeedbackAllowed, string(raw), time.Now().UnixNano())
	if err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}
