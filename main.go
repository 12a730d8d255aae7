// main.go
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Yumi00000/MusicFinderTGBot/pkg/config"
	"github.com/Yumi00000/MusicFinderTGBot/pkg/logging"
	"github.com/Yumi00000/MusicFinderTGBot/pkg/telegram/setup"
	"github.com/joho/godotenv"
)

func main() {
	// .env необязателен: в контейнере переменные задаются окружением.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Ошибка чтения .env: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Ошибка конфигурации: %v", err)
	}

	// Клиенты живут дольше сигнального контекста: очереди дорабатывают после SIGTERM.
	base := context.Background()

	// Cloud Logging, если задан GOOGLE_CLOUD_PROJECT, иначе JSON в stdout.
	logger, err := logging.New(base, cfg.GoogleCloudProject, cfg.LogLevel)
	if err != nil {
		log.Fatalf("Ошибка инициализации логгера: %v", err)
	}
	defer logger.Close()

	app, err := setup.New(base, cfg, logger)
	if err != nil {
		logger.Errorf("Ошибка запуска: %v", err)
		logger.Close()
		os.Exit(1)
	}
	defer app.Close()

	ctx, stop := signal.NotifyContext(base, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx); err != nil {
		logger.Errorf("Бот остановлен с ошибкой: %v", err)
		return
	}
	logger.Infof("Бот остановлен")
}
