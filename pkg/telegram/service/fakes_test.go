package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/Yumi00000/MusicFinderTGBot/pkg/api"
	"github.com/Yumi00000/MusicFinderTGBot/pkg/media"
	"github.com/Yumi00000/MusicFinderTGBot/pkg/storage"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// fakeTransport запоминает всё, что сервисы отправили в Telegram.
type fakeTransport struct {
	mu       sync.Mutex
	nextID   int
	sent     []tgbotapi.Chattable
	requests []tgbotapi.Chattable
}

func (f *fakeTransport) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	f.sent = append(f.sent, c)
	return tgbotapi.Message{MessageID: f.nextID}, nil
}

func (f *fakeTransport) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeTransport) messages() []tgbotapi.MessageConfig {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []tgbotapi.MessageConfig
	for _, c := range f.sent {
		if m, ok := c.(tgbotapi.MessageConfig); ok {
			out = append(out, m)
		}
	}
	return out
}

func (f *fakeTransport) edits() []tgbotapi.EditMessageTextConfig {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []tgbotapi.EditMessageTextConfig
	for _, c := range f.sent {
		if m, ok := c.(tgbotapi.EditMessageTextConfig); ok {
			out = append(out, m)
		}
	}
	return out
}

func (f *fakeTransport) callbacks() []tgbotapi.CallbackConfig {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []tgbotapi.CallbackConfig
	for _, c := range f.requests {
		if m, ok := c.(tgbotapi.CallbackConfig); ok {
			out = append(out, m)
		}
	}
	return out
}

func (f *fakeTransport) deletes() []tgbotapi.DeleteMessageConfig {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []tgbotapi.DeleteMessageConfig
	for _, c := range f.requests {
		if m, ok := c.(tgbotapi.DeleteMessageConfig); ok {
			out = append(out, m)
		}
	}
	return out
}

func (f *fakeTransport) lastNotice() string {
	cbs := f.callbacks()
	if len(cbs) == 0 {
		return ""
	}
	return cbs[len(cbs)-1].Text
}

type fakeFetcher struct{ err error }

func (f fakeFetcher) Fetch(_ context.Context, msg *tgbotapi.Message) (*media.Media, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &media.Media{Kind: media.KindVoice, FileID: "voice-1", Data: []byte("ogg")}, nil
}

type fakeTranscoder struct{ err error }

func (f fakeTranscoder) Convert(context.Context, *media.Media) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "/tmp/voice-1.mp3", nil
}

type fakeRecognizer struct {
	title string
	ok    bool
	err   error
}

func (f fakeRecognizer) Recognize(context.Context, string) (string, bool, error) {
	return f.title, f.ok, f.err
}

type fakeCatalog struct {
	tracks  []api.Track
	err     error
	queries []string
}

func (f *fakeCatalog) Search(_ context.Context, query string) ([]api.Track, error) {
	f.queries = append(f.queries, query)
	return f.tracks, f.err
}

type fakeHistory struct {
	entries map[int64]storage.Entry
}

func (f *fakeHistory) Load(context.Context) (map[string]storage.Entry, error) { return nil, nil }

func (f *fakeHistory) Put(_ context.Context, chatID int64, e storage.Entry) error {
	if f.entries == nil {
		f.entries = make(map[int64]storage.Entry)
	}
	f.entries[chatID] = e
	return nil
}

func (f *fakeHistory) Ping(context.Context) error { return nil }

func (f *fakeHistory) Close() error { return nil }

func queenTracks() []api.Track {
	out := make([]api.Track, 3)
	for i := range out {
		out[i] = api.Track{
			Title:  fmt.Sprintf("Bohemian Rhapsody %d", i),
			Artist: "Queen",
			URL:    fmt.Sprintf("https://open.spotify.com/track/%d", i),
		}
	}
	return out
}
