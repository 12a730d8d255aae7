package handler

import (
	"encoding/json"
	"net/http"

	"github.com/Yumi00000/MusicFinderTGBot/pkg/health"
	"github.com/Yumi00000/MusicFinderTGBot/pkg/logging"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// WebhookPath – путь, который регистрируется в setWebhook.
const WebhookPath = "/webhook"

// Dispatcher ставит обновление в очередь чата.
type Dispatcher interface {
	Dispatch(update tgbotapi.Update)
}

// NewRouter собирает HTTP-маршруты режима вебхука.
func NewRouter(d Dispatcher, logger *logging.Logger, checks ...health.Check) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/ping"))

	r.Get("/health", health.Handler(checks...))
	r.Post(WebhookPath, WebhookHandler(d, logger))
	return r
}

// WebhookHandler принимает обновление и сразу отвечает 200; обработка идёт в очереди чата.
func WebhookHandler(d Dispatcher, logger *logging.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var update tgbotapi.Update
		if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
			logger.Warnf("Некорректное обновление от вебхука: %v", err)
			http.Error(w, "Bad Request", http.StatusBadRequest)
			return
		}
		d.Dispatch(update)
		w.WriteHeader(http.StatusOK)
	}
}
