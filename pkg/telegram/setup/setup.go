// Package setup создаёт все компоненты бота один раз и связывает их между собой.
package setup

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/Yumi00000/MusicFinderTGBot/pkg/api"
	"github.com/Yumi00000/MusicFinderTGBot/pkg/api/client"
	"github.com/Yumi00000/MusicFinderTGBot/pkg/config"
	"github.com/Yumi00000/MusicFinderTGBot/pkg/health"
	"github.com/Yumi00000/MusicFinderTGBot/pkg/logging"
	"github.com/Yumi00000/MusicFinderTGBot/pkg/media"
	"github.com/Yumi00000/MusicFinderTGBot/pkg/pubsub"
	"github.com/Yumi00000/MusicFinderTGBot/pkg/session"
	"github.com/Yumi00000/MusicFinderTGBot/pkg/storage"
	"github.com/Yumi00000/MusicFinderTGBot/pkg/telegram"
	"github.com/Yumi00000/MusicFinderTGBot/pkg/telegram/handler"
	"github.com/Yumi00000/MusicFinderTGBot/pkg/telegram/service"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// App содержит собранное приложение.
type App struct {
	API     *tgbotapi.BotAPI
	Bot     *telegram.Bot
	Router  http.Handler
	History storage.History
	Events  pubsub.Publisher

	cfg    *config.Config
	logger *logging.Logger
}

// New подключается к Telegram, хранилищу истории и Pub/Sub и собирает сервисы.
func New(ctx context.Context, cfg *config.Config, logger *logging.Logger) (*App, error) {
	if err := tgbotapi.SetLogger(logger.Std()); err != nil {
		return nil, err
	}
	botAPI, err := tgbotapi.NewBotAPI(cfg.TelegramToken)
	if err != nil {
		return nil, fmt.Errorf("telegram: %w", err)
	}
	botAPI.Debug = false
	logger.Infof("Авторизован как @%s", botAPI.Self.UserName)

	history, err := OpenHistory(ctx, cfg.History)
	if err != nil {
		return nil, err
	}
	if entries, err := history.Load(ctx); err != nil {
		logger.Warnf("Не удалось прочитать историю: %v", err)
	} else {
		logger.Infof("История загружена (%s): %d чатов", cfg.History.Backend, len(entries))
	}

	events, err := OpenPublisher(ctx, cfg)
	if err != nil {
		history.Close()
		return nil, err
	}

	if err := os.MkdirAll(cfg.Media.Dir, 0o755); err != nil {
		history.Close()
		events.Close()
		return nil, fmt.Errorf("media dir: %w", err)
	}
	httpClient := client.New(client.DefaultConcurrencyLimit)
	sessions := session.NewStore()

	fetcher := media.NewFetcher(botAPI, cfg.TelegramToken, httpClient, media.WithMaxSize(cfg.Media.MaxFileSize))
	transcoder := media.NewTranscoder(cfg.Media.FFmpegPath, cfg.Media.Dir, cfg.Media.TranscodeTimeout)
	recognizer := api.NewRecognizer(api.NewAcoustID(cfg.AcoustIDKey, cfg.FpcalcPath, httpClient, api.WithTempDir(cfg.Media.Dir)))
	spotifyClient := api.NewSpotifyClient(ctx, cfg.SpotifyClientID, cfg.SpotifyClientSecret)
	catalog := api.NewSpotifyCatalog(spotifyClient, cfg.SearchLimit, cfg.MinMatchScore)

	pipeline := service.NewPipelineService(service.PipelineDeps{
		Bot:        botAPI,
		Fetcher:    fetcher,
		Transcoder: transcoder,
		Recognizer: recognizer,
		Catalog:    catalog,
		Sessions:   sessions,
		History:    history,
		Events:     events,
		Logger:     logger,
	})
	navigation := service.NewNavigationService(botAPI, sessions, logger)
	messages := service.NewMessageService(botAPI, logger)

	bot := telegram.NewBot(botAPI,
		handler.NewMessageHandler(messages, pipeline),
		handler.NewCallbackHandler(navigation, logger),
		logger,
	)
	bot.SetEventTimeout(cfg.EventTimeout)

	return &App{
		API:     botAPI,
		Bot:     bot,
		Router:  handler.NewRouter(bot, logger, health.Check{Name: "history", Ping: history.Ping}),
		History: history,
		Events:  events,
		cfg:     cfg,
		logger:  logger,
	}, nil
}

// OpenHistory открывает хранилище истории выбранного бэкенда.
func OpenHistory(ctx context.Context, h config.History) (storage.History, error) {
	switch h.Backend {
	case config.HistoryFile, "":
		return storage.NewFileHistory(h.Path)
	case config.HistoryRedis:
		return storage.NewRedisHistory(ctx, h.RedisAddr, h.RedisPassword, h.RedisDB)
	case config.HistorySQLite:
		return storage.NewSQLiteHistory(h.SQLitePath)
	}
	return nil, fmt.Errorf("unknown history backend %q", h.Backend)
}

// OpenPublisher включает публикацию событий, если задан проект и топик.
func OpenPublisher(ctx context.Context, cfg *config.Config) (pubsub.Publisher, error) {
	if cfg.GoogleCloudProject == "" || cfg.PubSubTopic == "" {
		return pubsub.NopPublisher{}, nil
	}
	p, err := pubsub.InitPubSubClient(ctx, cfg.GoogleCloudProject, cfg.PubSubTopic)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Run работает до отмены ctx: вебхук, если задан WEBHOOK_URL, иначе long polling.
// Перед возвратом дожидается обработки принятых обновлений.
func (a *App) Run(ctx context.Context) error {
	a.registerCommands()
	if a.cfg.UseWebhook() {
		return a.runWebhook(ctx)
	}

	if _, err := a.API.Request(tgbotapi.DeleteWebhookConfig{}); err != nil {
		a.logger.Warnf("Не удалось удалить вебхук: %v", err)
	}
	a.Bot.Start(ctx)
	a.logger.Infof("Ожидание обработки очередей чатов")
	a.Bot.Wait()
	return nil
}

func (a *App) runWebhook(ctx context.Context) error {
	wh, err := tgbotapi.NewWebhook(a.cfg.WebhookURL + handler.WebhookPath)
	if err != nil {
		return fmt.Errorf("webhook url: %w", err)
	}
	if _, err := a.API.Request(wh); err != nil {
		return fmt.Errorf("set webhook: %w", err)
	}

	srv := &http.Server{
		Addr:         ":" + a.cfg.Port,
		Handler:      a.Router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		a.logger.Infof("Сервер слушает порт %s", a.cfg.Port)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			a.Bot.Wait()
			return fmt.Errorf("http server: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.logger.Warnf("Ошибка остановки HTTP-сервера: %v", err)
	}
	a.Bot.Wait()
	return nil
}

func (a *App) registerCommands() {
	cmds := tgbotapi.NewSetMyCommands(
		tgbotapi.BotCommand{Command: "start", Description: "Start the bot"},
		tgbotapi.BotCommand{Command: "help", Description: "How to find a song"},
	)
	if _, err := a.API.Request(cmds); err != nil {
		a.logger.Warnf("Не удалось зарегистрировать команды: %v", err)
	}
}

// Close закрывает хранилище истории и Pub/Sub.
func (a *App) Close() error {
	return errors.Join(a.History.Close(), a.Events.Close())
}
