package handler

import (
	"context"

	"github.com/Yumi00000/MusicFinderTGBot/pkg/media"
	"github.com/Yumi00000/MusicFinderTGBot/pkg/telegram/service"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type MessageHandler struct {
	messageService service.MessageService
	mediaService   service.MediaService
}

func NewMessageHandler(ms service.MessageService, mediaService service.MediaService) *MessageHandler {
	return &MessageHandler{messageService: ms, mediaService: mediaService}
}

func (h *MessageHandler) HandleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg == nil || msg.Chat == nil {
		return
	}
	if msg.IsCommand() {
		h.handleCommand(msg)
		return
	}
	if _, _, _, ok := media.Attachment(msg); ok {
		h.mediaService.HandleMedia(ctx, msg)
		return
	}
	if msg.Text != "" {
		h.messageService.HandleText(msg)
	}
}

func (h *MessageHandler) handleCommand(msg *tgbotapi.Message) {
	switch msg.Command() {
	case "start":
		h.messageService.HandleStart(msg)
	case "help":
		h.messageService.HandleHelp(msg)
	default:
		h.messageService.SendUnknownCommand(msg.Chat.ID)
	}
}
