package usecases

import (
	"context"
	"fmt"
	"sync"

	"regbot/internal/entities"
	"regbot/internal/interfaces"

	"github.com/rs/zerolog"
)

// SettingsService owns the in-process copy of the settings singleton.
// Mutations are persisted before they become visible.
type SettingsService struct {
	store   interfaces.SettingsStore
	mu      sync.RWMutex
	current *entities.Settings
	log     zerolog.Logger
}

// LoadSettings reads the settings record, creating it with seedAdmins when absent.
func LoadSettings(ctx context.Context, store interfaces.SettingsStore, seedAdmins []int64, log zerolog.Logger) (*SettingsService, error) {
	s, err := store.Load(ctx, entities.SettingsID)
	if err != nil {
		return nil, err
	}
	if s == nil {
		s = &entities.Settings{
			ID:              entities.SettingsID,
			FeedbackAllowed: false,
			AdminIDs:        append([]int64(nil), seedAdmins...),
		}
		if err := store.Save(ctx, s); err != nil {
			return nil, fmt.Errorf("create default settings: %w", err)
		}
	}

	svc := &SettingsService{
		store:   store,
		current: s,
		log:     log.With().Str("component", "settings").Logger(),
	}
	svc.log.Info().
		Bool("feedback_allowed", s.FeedbackAllowed).
		Ints64("admin_ids", s.AdminIDs).
		Msg("settings loaded")
	return svc, nil
}

func (s *SettingsService) FeedbackAllowed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.FeedbackAllowed
}

func (s *SettingsService) IsAdmin(id int64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.IsAdmin(id)
}

// Snapshot returns a copy of the current settings.
func (s *SettingsService) Snapshot() *entities.Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.Clone()
}

// SetFeedbackAllowed persists and applies the feedback flag.
func (s *SettingsService) SetFeedbackAllowed(ctx context.Context, allowed bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.current.Clone()
	next.FeedbackAllowed = allowed
	if err := s.store.Save(ctx, next); err != nil {
		return err
	}
	s.current = next
	return nil
}

// AddAdmin adds id to the admin set. added is false when id was already an admin.
func (s *SettingsService) AddAdmin(ctx context.Context, id int64) (added bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current.IsAdmin(id) {
		return false, nil
	}
	next := s.current.Clone()
	next.AdminIDs = append(next.AdminIDs, id)
	if err := s.store.Save(ctx, next); err != nil {
		return false, err
	}
	s.current = next
	return true, nil
}
