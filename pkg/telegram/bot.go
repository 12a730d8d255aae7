// pkg/telegram/bot.go
package telegram

import (
	"context"
	"time"

	"github.com/Yumi00000/MusicFinderTGBot/pkg/logging"
	"github.com/Yumi00000/MusicFinderTGBot/pkg/telegram/handler"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// DefaultEventTimeout ограничивает обработку одного обновления, если не задано иное.
const DefaultEventTimeout = 5 * time.Minute

// UpdateSource отдаёт обновления long polling.
type UpdateSource interface {
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// Bot распределяет обновления Telegram по очередям чатов.
type Bot struct {
	api       UpdateSource
	messages  *handler.MessageHandler
	callbacks *handler.CallbackHandler
	queue     *ChatQueue
	logger    *logging.Logger
	baseCtx   context.Context
	timeout   time.Duration
}

// NewBot создает бота. api может быть nil в режиме вебхука.
func NewBot(api UpdateSource, messages *handler.MessageHandler, callbacks *handler.CallbackHandler, logger *logging.Logger) *Bot {
	return &Bot{
		api:       api,
		messages:  messages,
		callbacks: callbacks,
		queue:     NewChatQueue(logger),
		logger:    logger,
		baseCtx:   context.Background(),
		timeout:   DefaultEventTimeout,
	}
}

// SetEventTimeout задаёт предел обработки одного обновления. Вызывается до Start.
func (b *Bot) SetEventTimeout(d time.Duration) {
	if d > 0 {
		b.timeout = d
	}
}

// Start получает обновления long polling до отмены ctx.
func (b *Bot) Start(ctx context.Context) {
	b.baseCtx = context.WithoutCancel(ctx)
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := b.api.GetUpdatesChan(u)
	b.logger.Infof("Бот запущен в режиме long polling")
	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			b.Dispatch(update)
		}
	}
}

// Dispatch ставит обновление в очередь его чата.
func (b *Bot) Dispatch(update tgbotapi.Update) {
	chatID, ok := chatOf(update)
	if !ok {
		b.logger.Debugf("Обновление %d пропущено", update.UpdateID)
		return
	}
	accepted := b.queue.Submit(chatID, func() {
		ctx, cancel := context.WithTimeout(b.baseCtx, b.timeout)
		defer cancel()
		switch {
		case update.CallbackQuery != nil:
			b.callbacks.HandleCallback(ctx, update.CallbackQuery)
		case update.Message != nil:
			b.messages.HandleMessage(ctx, update.Message)
		}
	})
	if !accepted {
		b.logger.Warnf("Бот останавливается, обновление %d чата %d отброшено", update.UpdateID, chatID)
	}
}

// Wait дожидается обработки уже принятых обновлений.
func (b *Bot) Wait() {
	b.queue.Close()
}

func chatOf(update tgbotapi.Update) (int64, bool) {
	switch {
	case update.CallbackQuery != nil:
		if update.CallbackQuery.Message != nil && update.CallbackQuery.Message.Chat != nil {
			return update.CallbackQuery.Message.Chat.ID, true
		}
		if update.CallbackQuery.From != nil {
			return update.CallbackQuery.From.ID, true
		}
	case update.Message != nil && update.Message.Chat != nil:
		return update.Message.Chat.ID, true
	}
	return 0, false
}
