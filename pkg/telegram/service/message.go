package service

import (
	"github.com/Yumi00000/MusicFinderTGBot/pkg/logging"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const (
	GreetingText = "Hi! I'm Hitori! Your personal music finder. " +
		"Give me a song name, and I'll find it for you."
	HelpText = "Send me a voice message, a video or a video note with the song playing. " +
		"I'll recognize it and show matching tracks from Spotify.\n\n" +
		"Use Previous and Next to browse the results and Back to close them."
	UnknownCommandText = "Unknown command. Use /help to see what I can do."
	MediaHintText      = "Send me a voice message or a video with the song you want to find."
)

type messageServiceImpl struct {
	bot    Transport
	logger *logging.Logger
}

func NewMessageService(bot Transport, logger *logging.Logger) MessageService {
	return &messageServiceImpl{bot: bot, logger: logger}
}

func (s *messageServiceImpl) SendMessage(chatID int64, text string) {
	if _, err := s.bot.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		s.logger.Errorf("Ошибка отправки сообщения в чат %d: %v", chatID, err)
	}
}

func (s *messageServiceImpl) HandleStart(msg *tgbotapi.Message) {
	s.SendMessage(msg.Chat.ID, GreetingText)
}

func (s *messageServiceImpl) HandleHelp(msg *tgbotapi.Message) {
	s.SendMessage(msg.Chat.ID, HelpText)
}

func (s *messageServiceImpl) HandleText(msg *tgbotapi.Message) {
	s.SendMessage(msg.Chat.ID, MediaHintText)
}

func (s *messageServiceImpl) SendUnknownCommand(chatID int64) {
	s.SendMessage(chatID, UnknownCommandText)
}
