package usecases

import (
	"context"

	"regbot/internal/entities"
	"regbot/internal/interfaces"
)

// BatchCounts summarizes registrants per cohort for the dashboard header.
type BatchCounts struct {
	Total  int `json:"total"`
	Batch1 int `json:"batch1"`
	Batch2 int `json:"batch2"`
}

type DashboardUsecase struct {
	users    interfaces.UserStore
	settings *SettingsService
}

func NewDashboardUsecase(users interfaces.UserStore, settings *SettingsService) *DashboardUsecase {
	return &DashboardUsecase{
		users:    users,
		settings: settings,
	}
}

// ListUsers returns registrants newest first.
func (u *DashboardUsecase) ListUsers(ctx context.Context, filter entities.UserFilter) ([]entities.User, error) {
	return u.users.List(ctx, filter)
}

func (u *DashboardUsecase) Counts(ctx context.Context) (BatchCounts, error) {
	all, err := u.users.List(ctx, entities.UserFilter{})
	if err != nil {
		return BatchCounts{}, err
	}
	counts := BatchCounts{Total: len(all)}
	for _, user := range all {
		switch user.Batch {
		case entities.BatchOne:
			counts.Batch1++
		case entities.BatchTwo:
			counts.Batch2++
		}
	}
	return counts, nil
}

// FeedbackOpen reports whether /feedback is currently accepted.
func (u *DashboardUsecase) FeedbackOpen() bool {
	if u.settings == nil {
		return false
	}
	return u.settings.FeedbackAllowed()
}
