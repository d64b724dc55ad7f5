package infrastructure

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// TelegramClient is the outbound chat transport.
type TelegramClient struct {
	Bot *tgbotapi.BotAPI
}

func NewTelegramClient(token string) (*TelegramClient, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram bot token issue: %w", err)
	}
	return &TelegramClient{Bot: bot}, nil
}

// Username is the bot's @handle without the @.
func (t *TelegramClient) Username() string {
	if t == nil || t.Bot == nil {
		return ""
	}
	return t.Bot.Self.UserName
}

// SendMessage sends plain text; registrant-supplied text must not be parsed as markup.
func (t *TelegramClient) SendMessage(_ context.Context, chatID int64, content string) error {
	msg := tgbotapi.NewMessage(chatID, content)
	_, err := t.Bot.Send(msg)
	return err
}

// SendMessageWithMenu sends a message with an inline keyboard.
func (t *TelegramClient) SendMessageWithMenu(_ context.Context, chatID int64, content string, keyboard tgbotapi.InlineKeyboardMarkup) error {
	msg := tgbotapi.NewMessage(chatID, content)
	msg.ReplyMarkup = keyboard
	_, err := t.Bot.Send(msg)
	return err
}

// AnswerCallback stops the loading spinner on a pressed button.
func (t *TelegramClient) AnswerCallback(_ context.Context, callbackID string) error {
	_, err := t.Bot.Request(tgbotapi.NewCallback(callbackID, ""))
	return err
}

// BotLink is the t.me deep link students scan to open the bot.
func BotLink(username string) string {
	if username == "" {
		return ""
	}
	return "https://t.me/" + strings.TrimPrefix(username, "@")
}
