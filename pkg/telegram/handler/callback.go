package handler

import (
	"context"

	"github.com/Yumi00000/MusicFinderTGBot/pkg/logging"
	"github.com/Yumi00000/MusicFinderTGBot/pkg/telegram/service"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type CallbackHandler struct {
	callbacks service.CallbackService
	logger    *logging.Logger
}

func NewCallbackHandler(cs service.CallbackService, logger *logging.Logger) *CallbackHandler {
	return &CallbackHandler{callbacks: cs, logger: logger}
}

func (h *CallbackHandler) HandleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	if cb == nil {
		return
	}
	h.logger.Infof("Получен callback %q от пользователя %d", cb.Data, userID(cb))
	h.callbacks.HandleCallback(ctx, cb)
}

func userID(cb *tgbotapi.CallbackQuery) int64 {
	if cb.From == nil {
		return 0
	}
	return cb.From.ID
}
