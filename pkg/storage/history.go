// Package storage сохраняет историю распознаваний по чатам.
package storage

import (
	"context"
	"strconv"
)

// Entry хранит последний результат распознавания в чате.
// Query == nil, если песню распознать не удалось.
type Entry struct {
	Query  *string  `json:"query"`
	Tracks []string `json:"tracks"`
}

// History сохраняет историю по чатам. Запись выполняется синхронно.
type History interface {
	Load(ctx context.Context) (map[string]Entry, error)
	Put(ctx context.Context, chatID int64, e Entry) error
	Ping(ctx context.Context) error
	Close() error
}

func chatKey(chatID int64) string {
	return strconv.FormatInt(chatID, 10)
}

func normalize(e Entry) Entry {
	if e.Tracks == nil {
		e.Tracks = []string{}
	}
	return e
}
