// Package media получает вложения из Telegram и приводит их к mp3.
package media

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/Yumi00000/MusicFinderTGBot/pkg/api/client"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// MaxDownloadSize – предел Bot API для getFile.
const MaxDownloadSize = 20 << 20

var ErrRetrieval = errors.New("media retrieval failed")

// Kind задаёт тип вложения.
type Kind string

const (
	KindVoice     Kind = "voice"
	KindVideo     Kind = "video"
	KindVideoNote Kind = "video_note"
)

// Ext возвращает расширение временного файла для ffmpeg.
func (k Kind) Ext() string {
	if k == KindVoice {
		return "ogg"
	}
	return "mp4"
}

// Media содержит скачанное вложение.
type Media struct {
	Kind   Kind
	FileID string
	Data   []byte
}

// FileGetter получает путь к файлу через Bot API.
type FileGetter interface {
	GetFile(config tgbotapi.FileConfig) (tgbotapi.File, error)
}

// Fetcher скачивает голосовые сообщения и видео через файловый эндпоинт Bot API.
type Fetcher struct {
	files    FileGetter
	token    string
	http     *client.Client
	maxSize  int64
	endpoint string
}

// FetcherOption настраивает Fetcher.
type FetcherOption func(*Fetcher)

// WithMaxSize меняет предел размера файла.
func WithMaxSize(n int64) FetcherOption {
	return func(f *Fetcher) {
		if n > 0 {
			f.maxSize = n
		}
	}
}

// WithFileEndpoint задаёт формат ссылки на файл (токен, путь).
func WithFileEndpoint(format string) FetcherOption {
	return func(f *Fetcher) { f.endpoint = format }
}

func NewFetcher(files FileGetter, token string, hc *client.Client, opts ...FetcherOption) *Fetcher {
	if hc == nil {
		hc = client.New(client.DefaultConcurrencyLimit)
	}
	f := &Fetcher{
		files:    files,
		token:    token,
		http:     hc,
		maxSize:  MaxDownloadSize,
		endpoint: tgbotapi.FileEndpoint,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Attachment возвращает тип и file_id поддерживаемого вложения.
func Attachment(msg *tgbotapi.Message) (kind Kind, fileID string, size int64, ok bool) {
	if msg == nil {
		return "", "", 0, false
	}
	switch {
	case msg.Voice != nil:
		return KindVoice, msg.Voice.FileID, int64(msg.Voice.FileSize), true
	case msg.Video != nil:
		return KindVideo, msg.Video.FileID, int64(msg.Video.FileSize), true
	case msg.VideoNote != nil:
		return KindVideoNote, msg.VideoNote.FileID, int64(msg.VideoNote.FileSize), true
	}
	return "", "", 0, false
}

// Fetch скачивает вложение сообщения. Любая ошибка оборачивает ErrRetrieval.
func (f *Fetcher) Fetch(ctx context.Context, msg *tgbotapi.Message) (*Media, error) {
	kind, fileID, size, ok := Attachment(msg)
	if !ok {
		return nil, fmt.Errorf("%w: message has no voice or video", ErrRetrieval)
	}
	if size > f.maxSize {
		return nil, fmt.Errorf("%w: file %s is %d bytes, limit %d", ErrRetrieval, fileID, size, f.maxSize)
	}

	file, err := f.files.GetFile(tgbotapi.FileConfig{FileID: fileID})
	if err != nil {
		return nil, fmt.Errorf("%w: getFile %s: %w", ErrRetrieval, fileID, err)
	}
	if file.FilePath == "" {
		return nil, fmt.Errorf("%w: getFile %s returned no path", ErrRetrieval, fileID)
	}
	if int64(file.FileSize) > f.maxSize {
		return nil, fmt.Errorf("%w: file %s is %d bytes, limit %d", ErrRetrieval, fileID, file.FileSize, f.maxSize)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf(f.endpoint, f.token, file.FilePath), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRetrieval, err)
	}
	_, body, err := f.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: download %s: %w", ErrRetrieval, file.FilePath, err)
	}
	if len(body) == 0 {
		return nil, fmt.Errorf("%w: download %s: empty body", ErrRetrieval, file.FilePath)
	}
	return &Media{Kind: kind, FileID: fileID, Data: body}, nil
}
