package service

import tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

// Данные inline-кнопок навигации.
const (
	ActionPrevious = "previous"
	ActionNext     = "next"
	ActionBack     = "back"
)

// NavigationKeyboard строит один ряд Previous | Next | Back.
func NavigationKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Previous", ActionPrevious),
			tgbotapi.NewInlineKeyboardButtonData("Next", ActionNext),
			tgbotapi.NewInlineKeyboardButtonData("Back", ActionBack),
		),
	)
}
