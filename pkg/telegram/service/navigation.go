package service

import (
	"context"

	"github.com/Yumi00000/MusicFinderTGBot/pkg/logging"
	"github.com/Yumi00000/MusicFinderTGBot/pkg/session"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Уведомления навигации (всплывающий ответ на callback).
const (
	NoticeNoMore  = "No more tracks available."
	NoticeNoPrev  = "No previous tracks available."
	NoticeUnknown = "Unknown action"
	NoticeExpired = "These results are closed. Send a new voice message to search again."
)

// NavigationService листает кандидатов текущей сессии чата.
type NavigationService struct {
	bot      Transport
	sessions *session.Store
	logger   *logging.Logger
}

func NewNavigationService(bot Transport, sessions *session.Store, logger *logging.Logger) *NavigationService {
	return &NavigationService{bot: bot, sessions: sessions, logger: logger}
}

// HandleCallback обрабатывает нажатие Previous, Next или Back.
// Callback от сообщения, не совпадающего с текущим сообщением сессии, отклоняется.
func (s *NavigationService) HandleCallback(_ context.Context, cb *tgbotapi.CallbackQuery) {
	if cb == nil {
		return
	}
	if cb.Message == nil || cb.Message.Chat == nil {
		s.answer(cb.ID, NoticeExpired)
		return
	}
	switch cb.Data {
	case ActionPrevious, ActionNext, ActionBack:
	default:
		s.logger.Warnf("Неизвестное действие %q в чате %d", cb.Data, cb.Message.Chat.ID)
		s.answer(cb.ID, NoticeUnknown)
		return
	}

	chatID := cb.Message.Chat.ID
	messageID := cb.Message.MessageID
	s.sessions.Do(chatID, func(sess *session.Session) *session.Session {
		if !sess.Navigable() || sess.MessageID != messageID {
			s.answer(cb.ID, NoticeExpired)
			return nil
		}

		switch cb.Data {
		case ActionNext:
			if !sess.Next() {
				s.answer(cb.ID, NoticeNoMore)
				return nil
			}
		case ActionPrevious:
			if !sess.Previous() {
				s.answer(cb.ID, NoticeNoPrev)
				return nil
			}
		case ActionBack:
			s.answer(cb.ID, "")
			s.delete(chatID, messageID)
			if messageID > 1 {
				s.delete(chatID, messageID-1)
			}
			sess.Close()
			s.logger.Debugf("Сессия чата %d закрыта", chatID)
			return nil
		}

		track, _ := sess.Current()
		edit := tgbotapi.NewEditMessageTextAndMarkup(chatID, messageID, track.Render(), NavigationKeyboard())
		if _, err := s.bot.Send(edit); err != nil {
			s.logger.Errorf("Ошибка редактирования сообщения %d в чате %d: %v", messageID, chatID, err)
		}
		s.answer(cb.ID, "")
		return nil
	})
}

func (s *NavigationService) answer(callbackID, text string) {
	if _, err := s.bot.Request(tgbotapi.NewCallback(callbackID, text)); err != nil {
		s.logger.Warnf("Ошибка ответа на callback %s: %v", callbackID, err)
	}
}

func (s *NavigationService) delete(chatID int64, messageID int) {
	if _, err := s.bot.Request(tgbotapi.NewDeleteMessage(chatID, messageID)); err != nil {
		s.logger.Warnf("Не удалось удалить сообщение %d в чате %d: %v", messageID, chatID, err)
	}
}
