package infrastructure

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"regbot/internal/entities"
)

// UpdateHandler processes one chat event.
type UpdateHandler func(ctx context.Context, msg entities.Message)

// TelegramPoller long-polls Telegram and feeds updates to a handler one at a time.
type TelegramPoller struct {
	bot     *tgbotapi.BotAPI
	timeout int
	handler UpdateHandler
	log     zerolog.Logger
}

func NewTelegramPoller(client *TelegramClient, timeoutSeconds int, handler UpdateHandler, log zerolog.Logger) *TelegramPoller {
	return &TelegramPoller{
		bot:     client.Bot,
		timeout: timeoutSeconds,
		handler: handler,
		log:     log.With().Str("component", "telegram.poller").Logger(),
	}
}

// Run blocks until ctx is cancelled. Updates are handled sequentially so a
// chat's dialogue steps never interleave.
func (p *TelegramPoller) Run(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = p.timeout
	updates := p.bot.GetUpdatesChan(u)

	p.log.Info().Str("bot", p.bot.Self.UserName).Msg("polling started")

	for {
		select {
		case <-ctx.Done():
			p.bot.StopReceivingUpdates()
			p.log.Info().Msg("polling stopped")
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			msg, ok := ConvertUpdate(update)
			if !ok {
				continue
			}
			p.dispatch(ctx, msg)
		}
	}
}

func (p *TelegramPoller) dispatch(ctx context.Context, msg entities.Message) {
	defer func() {
		if r := recover(); r != nil {
			p.log.Error().Interface("panic", r).Int64("user_id", msg.From).Msg("update handler panicked")
		}
	}()
	p.handler(ctx, msg)
}

// ConvertUpdate maps a Telegram update onto the transport-neutral Message.
// Updates that are neither messages nor button presses are skipped.
func ConvertUpdate(update tgbotapi.Update) (entities.Message, bool) {
	switch {
	case update.Message != nil:
		m := update.Message
		msg := entities.Message{
			ChatID: m.Chat.ID,
			Text:   m.Text,
		}
		if m.From != nil {
			msg.From = m.From.ID
			msg.FirstName = m.From.FirstName
		} else {
			msg.From = m.Chat.ID
		}
		msg.HasText = m.Text != ""
		if m.IsCommand() {
			msg.Command = strings.ToLower(m.Command())
			msg.Args = strings.TrimSpace(m.CommandArguments())
		}
		return msg, true

	case update.CallbackQuery != nil:
		cb := update.CallbackQuery
		msg := entities.Message{
			IsCallback: true,
			CallbackID: cb.ID,
			Data:       cb.Data,
		}
		if cb.From != nil {
			msg.From = cb.From.ID
			msg.FirstName = cb.From.FirstName
		}
		if cb.Message != nil && cb.Message.Chat != nil {
			msg.ChatID = cb.Message.Chat.ID
		} else {
			msg.ChatID = msg.From
		}
		return msg, true
	}
	return entities.Message{}, false
}
