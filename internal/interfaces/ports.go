package interfaces

import (
	"context"
	"regbot/internal/entities"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Messenger is the outbound side of the chat transport.
type Messenger interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
	SendMessageWithMenu(ctx context.Context, chatID int64, text string, keyboard tgbotapi.InlineKeyboardMarkup) error
	AnswerCallback(ctx context.Context, callbackID string) error
}

// UserStore persists registrants. FindByID returns (nil, nil) when absent.
type UserStore interface {
	FindByID(ctx context.Context, id int64) (*entities.User, error)
	Upsert(ctx context.Context, reg entities.Registration) (*entities.User, error)
	UpdateFeedback(ctx context.Context, id int64, feedback string) error
	List(ctx context.Context, filter entities.UserFilter) ([]entities.User, error)
}

// SettingsStore persists the settings singleton. Load returns (nil, nil) when absent.
type SettingsStore interface {
	Load(ctx context.Context, id string) (*entities.Settings, error)
	Save(ctx context.Context, s *entities.Settings) error
}

// SessionStore keeps dialogue state. Get returns (nil, nil) when there is none.
type SessionStore interface {
	Get(ctx context.Context, userID int64) (*entities.Session, error)
	Save(ctx context.Context, s *entities.Session) error
	Delete(ctx context.Context, userID int64) error
}
