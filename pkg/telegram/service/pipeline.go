package service

import (
	"context"
	"errors"
	"time"

	"github.com/Yumi00000/MusicFinderTGBot/pkg/api"
	"github.com/Yumi00000/MusicFinderTGBot/pkg/logging"
	"github.com/Yumi00000/MusicFinderTGBot/pkg/pubsub"
	"github.com/Yumi00000/MusicFinderTGBot/pkg/session"
	"github.com/Yumi00000/MusicFinderTGBot/pkg/storage"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const (
	RetrievalFailedText   = "Sorry, I couldn't download your message. Please try again."
	TranscodeFailedText   = "Sorry, I couldn't process the audio in your message."
	RecognitionFailedText = "The recognition service is unavailable right now. Please try again later."
	NotRecognizedText     = "Could not identify the song"
	NoTracksText          = "No tracks found"
	CatalogDownText       = "The music catalog is unavailable right now. Please try again later."
)

// PipelineDeps собирает компоненты конвейера распознавания.
type PipelineDeps struct {
	Bot        Transport
	Fetcher    MediaFetcher
	Transcoder Transcoder
	Recognizer Recognizer
	Catalog    api.Catalog
	Sessions   *session.Store
	History    storage.History
	Events     pubsub.Publisher
	Logger     *logging.Logger
}

// PipelineService скачивает вложение, распознаёт песню и показывает найденные треки.
type PipelineService struct {
	PipelineDeps
	now func() time.Time
}

func NewPipelineService(deps PipelineDeps) *PipelineService {
	if deps.Events == nil {
		deps.Events = pubsub.NopPublisher{}
	}
	return &PipelineService{PipelineDeps: deps, now: time.Now}
}

// HandleMedia обрабатывает голосовое сообщение, видео или кружок.
func (s *PipelineService) HandleMedia(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	if _, err := s.Bot.Request(tgbotapi.NewChatAction(chatID, tgbotapi.ChatTyping)); err != nil {
		s.Logger.Debugf("Не удалось отправить chat action в чат %d: %v", chatID, err)
	}

	m, err := s.Fetcher.Fetch(ctx, msg)
	if err != nil {
		s.Logger.Errorf("Ошибка получения файла в чате %d: %v", chatID, err)
		s.send(chatID, RetrievalFailedText)
		return
	}
	audioPath, err := s.Transcoder.Convert(ctx, m)
	if err != nil {
		s.Logger.Errorf("Ошибка перекодирования в чате %d: %v", chatID, err)
		s.send(chatID, TranscodeFailedText)
		return
	}
	title, ok, err := s.Recognizer.Recognize(ctx, audioPath)
	if err != nil {
		s.Logger.Errorf("Ошибка распознавания в чате %d: %v", chatID, err)
		s.send(chatID, RecognitionFailedText)
		return
	}

	var (
		query  *string
		tracks []api.Track
		status string
	)
	if !ok {
		status = pubsub.StatusNotRecognized
		s.Logger.Infof("Песня в чате %d не распознана", chatID)
		s.Sessions.Replace(chatID, session.New(nil, nil))
		s.send(chatID, NotRecognizedText)
	} else {
		query = &title
		status, tracks = s.present(ctx, chatID, title)
	}

	s.record(ctx, chatID, query, tracks, status)
}

// present ищет треки и показывает первый из них с кнопками навигации.
func (s *PipelineService) present(ctx context.Context, chatID int64, title string) (string, []api.Track) {
	query := title
	tracks, err := s.Catalog.Search(ctx, query)
	switch {
	case err != nil:
		if errors.Is(err, api.ErrCatalogUnavailable) {
			s.Logger.Warnf("Каталог недоступен для запроса %q: %v", query, err)
		} else {
			s.Logger.Errorf("Неожиданная ошибка каталога для запроса %q: %v", query, err)
		}
		s.Sessions.Replace(chatID, session.New(&query, nil))
		s.send(chatID, CatalogDownText)
		return pubsub.StatusCatalogUnavailable, nil
	case len(tracks) == 0:
		s.Logger.Infof("По запросу %q ничего не найдено", query)
		s.Sessions.Replace(chatID, session.New(&query, nil))
		s.send(chatID, NoTracksText)
		return pubsub.StatusNoTracks, nil
	}

	sess := session.New(&query, tracks)
	reply := tgbotapi.NewMessage(chatID, tracks[0].Render())
	reply.ReplyMarkup = NavigationKeyboard()
	sent, err := s.Bot.Send(reply)
	if err != nil {
		s.Logger.Errorf("Ошибка отправки результата в чат %d: %v", chatID, err)
	} else {
		sess.MessageID = sent.MessageID
	}
	s.Sessions.Replace(chatID, sess)
	s.Logger.Infof("Чат %d: %q, найдено треков: %d", chatID, query, len(tracks))
	return pubsub.StatusFound, tracks
}

// record сохраняет историю чата и публикует событие.
func (s *PipelineService) record(ctx context.Context, chatID int64, query *string, tracks []api.Track, status string) {
	entry := storage.Entry{Query: query, Tracks: api.RenderAll(tracks)}
	if err := s.History.Put(ctx, chatID, entry); err != nil {
		s.Logger.Errorf("Ошибка сохранения истории чата %d: %v", chatID, err)
	}
	ev := pubsub.Event{ChatID: chatID, Query: query, Tracks: len(tracks), Status: status, At: s.now().UTC()}
	if err := s.Events.Publish(ctx, ev); err != nil {
		s.Logger.Warnf("Ошибка публикации события для чата %d: %v", chatID, err)
	}
}

func (s *PipelineService) send(chatID int64, text string) {
	if _, err := s.Bot.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		s.Logger.Errorf("Ошибка отправки сообщения в чат %d: %v", chatID, err)
	}
}
