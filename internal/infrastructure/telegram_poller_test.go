package infrastructure

import (
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func TestConvertUpdateCommand(t *testing.T) {
	update := tgbotapi.Update{
		Message: &tgbotapi.Message{
			Text:     "/Add_Admin 123456",
			Entities: []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: 10}},
			Chat:     &tgbotapi.Chat{ID: 555},
			From:     &tgbotapi.User{ID: 99, FirstName: "Ravi"},
		},
	}

	msg, ok := ConvertUpdate(update)
	if !ok {
		t.Fatal("expected message")
	}
	if msg.Command != "add_admin" || msg.Args != "123456" {
		t.Fatalf("command = %q args = %q", msg.Command, msg.Args)
	}
	if msg.ChatID != 555 || msg.From != 99 || msg.FirstName != "Ravi" || !msg.HasText {
		t.Fatalf("unexpected message: %+v", msg)
	}
}

func TestConvertUpdatePlainTextAndMedia(t *testing.T) {
	text, ok := ConvertUpdate(tgbotapi.Update{Message: &tgbotapi.Message{
		Text: "hello there",
		Chat: &tgbotapi.Chat{ID: 1},
		From: &tgbotapi.User{ID: 1},
	}})
	if !ok || text.Command != "" || !text.HasText || text.IsCallback {
		t.Fatalf("unexpected text message: %+v", text)
	}

	photo, ok := ConvertUpdate(tgbotapi.Update{Message: &tgbotapi.Message{
		Chat: &tgbotapi.Chat{ID: 1},
		From: &tgbotapi.User{ID: 1},
	}})
	if !ok || photo.HasText {
		t.Fatalf("non-text message should have HasText=false: %+v", photo)
	}
}

func TestConvertUpdateCallback(t *testing.T) {
	msg, ok := ConvertUpdate(tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
		ID:      "cb-1",
		Data:    "batch:2",
		From:    &tgbotapi.User{ID: 77, FirstName: "Meera"},
		Message: &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: 78}},
	}})
	if !ok || !msg.IsCallback {
		t.Fatalf("expected callback: %+v", msg)
	}
	if msg.CallbackID != "cb-1" || msg.Data != "batch:2" || msg.From != 77 || msg.ChatID != 78 {
		t.Fatalf("unexpected callback: %+v", msg)
	}
}

func TestConvertUpdateIgnoresOthers(t *testing.T) {
	if _, ok := ConvertUpdate(tgbotapi.Update{UpdateID: 3}); ok {
		t.Fatal("empty update should be skipped")
	}
}

func TestBotLink(t *testing.T) {
	if got := BotLink("@batch_bot"); got != "https://t.me/batch_bot" {
		t.Fatalf("link = %s", got)
	}
	if BotLink("") != "" {
		t.Fatal("empty username should give empty link")
	}
}
