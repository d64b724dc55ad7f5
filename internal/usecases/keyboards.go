package usecases

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Callback payloads carried by inline buttons.
const (
	CallbackStartRegister = "start_register"
	CallbackInfo          = "info"
	CallbackBatch1        = "batch:1"
	CallbackBatch2        = "batch:2"
	CallbackCancel        = "cancel"
)

// CreateWelcomeKeyboard is shown on /start.
func CreateWelcomeKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Register", CallbackStartRegister),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Info", CallbackInfo),
		),
	)
}

// CreateBatchKeyboard offers the two cohorts plus cancel.
func CreateBatchKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Batch 1", CallbackBatch1),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Batch 2", CallbackBatch2),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Cancel", CallbackCancel),
		),
	)
}
