package repository

import (
	"context"
	"errors"
	"fmt"

	"regbot/internal/entities"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type SettingsRepository struct {
	db *pgxpool.Pool
}

func NewSettingsRepository(db *pgxpool.Pool) *SettingsRepository {
	return &SettingsRepository{db: db}
}

func (r *SettingsRepository) Load(ctx context.Context, id string) (*entities.Settings, error) {
	var s entities.Settings
	err := r.db.QueryRow(ctx,
		"SELECT id, feedback_allowed, admin_ids, updated_at FROM settings WHERE id = $1", id,
	).Scan(&s.ID, &s.FeedbackAllowed, &s.AdminIDs, &s.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	if s.AdminIDs == nil {
		s.AdminIDs = []int64{}
	}
	return &s, nil
}

func (r *SettingsRepository) Save(ctx context.Context, s *entities.Settings) error {
	admins := s.AdminIDs
	if admins == nil {
		admins = []int64{}
	}
	_, err := r.db.Exec(ctx, `
		INSERT INTO settings (id, feedback_allowed, admin_ids, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (id) DO UPDATE SET
			feedback_allowed = EXCLUDED.feedback_allowed,
			admin_ids = EXCLUDED.admin_ids,
			updated_at = NOW()
	`, s.ID, s.FeedbackAllowed, admins)
	if err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}
