package service

import (
	"context"

	"github.com/Yumi00000/MusicFinderTGBot/pkg/media"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Transport описывает методы Bot API, через которые сервисы общаются с Telegram.
// *tgbotapi.BotAPI реализует его напрямую.
type Transport interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

type MediaFetcher interface {
	Fetch(ctx context.Context, msg *tgbotapi.Message) (*media.Media, error)
}

type Transcoder interface {
	Convert(ctx context.Context, m *media.Media) (string, error)
}

type Recognizer interface {
	Recognize(ctx context.Context, audioPath string) (title string, ok bool, err error)
}

type MessageService interface {
	HandleStart(msg *tgbotapi.Message)
	HandleHelp(msg *tgbotapi.Message)
	HandleText(msg *tgbotapi.Message)
	SendUnknownCommand(chatID int64)
	SendMessage(chatID int64, text string)
}

type CallbackService interface {
	HandleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery)
}

type MediaService interface {
	HandleMedia(ctx context.Context, msg *tgbotapi.Message)
}
