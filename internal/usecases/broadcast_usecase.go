package usecases

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"regbot/internal/entities"
	"regbot/internal/interfaces"

	"github.com/rs/zerolog"
)

// ErrMessageRequired is returned when a broadcast has no text.
var ErrMessageRequired = errors.New("message required")

// BroadcastUsecase sends one message to every registrant, or to one batch.
type BroadcastUsecase struct {
	users     interfaces.UserStore
	messenger interfaces.Messenger
	log       zerolog.Logger
}

func NewBroadcastUsecase(users interfaces.UserStore, messenger interfaces.Messenger, log zerolog.Logger) *BroadcastUsecase {
	return &BroadcastUsecase{
		users:     users,
		messenger: messenger,
		log:       log.With().Str("component", "broadcast").Logger(),
	}
}

// Broadcast sends sequentially, one in flight at a time. A failed recipient is
// recorded and the loop moves on. batch outside 1..2 means everyone.
func (b *BroadcastUsecase) Broadcast(ctx context.Context, batch int, message string) (*entities.BroadcastResult, error) {
	if strings.TrimSpace(message) == "" {
		return nil, ErrMessageRequired
	}

	filter := entities.UserFilter{}
	if entities.ValidBatch(batch) {
		filter.Batch = batch
	}
	recipients, err := b.users.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("select recipients: %w", err)
	}

	result := &entities.BroadcastResult{Failures: []entities.BroadcastFailure{}}
	for _, u := range recipients {
		if err := b.messenger.SendMessage(ctx, u.ID, message); err != nil {
			result.Failed++
			result.Failures = append(result.Failures, entities.BroadcastFailure{ID: u.ID, Error: err.Error()})
			b.log.Warn().Err(err).Int64("user_id", u.ID).Msg("broadcast send failed")
			continue
		}
		result.Sent++
	}

	b.log.Info().
		Int("batch", filter.Batch).
		Int("recipients", len(recipients)).
		Int("sent", result.Sent).
		Int("failed", result.Failed).
		Msg("broadcast finished")
	return result, nil
}
