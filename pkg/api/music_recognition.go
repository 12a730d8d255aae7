// pkg/api/music_recognition.go
package api

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
)

// Match – кандидат распознавания. Title пустой, если у совпадения нет записи.
type Match struct {
	Score   float64
	Title   string
	Artists []string
}

// Matches отдаёт ленивую последовательность кандидатов, лучший первым.
type Matches interface {
	Next() (Match, bool)
}

// RecognitionBackend ищет совпадения по аудиоотпечатку.
type RecognitionBackend interface {
	Lookup(ctx context.Context, audio []byte) (Matches, error)
}

// Recognizer определяет название трека по аудиофайлу.
type Recognizer struct {
	backend RecognitionBackend
}

func NewRecognizer(backend RecognitionBackend) *Recognizer {
	return &Recognizer{backend: backend}
}

// Recognize читает файл, удаляет его и возвращает название лучшего совпадения.
// ok == false означает "не распознано"; ошибка возвращается только при сбое сервиса.
func (r *Recognizer) Recognize(ctx context.Context, audioPath string) (title string, ok bool, err error) {
	defer os.Remove(audioPath)

	data, err := os.ReadFile(audioPath)
	if err != nil {
		return "", false, fmt.Errorf("%w: read audio: %w", ErrRecognition, err)
	}

	matches, err := r.backend.Lookup(ctx, data)
	if err != nil {
		if !errors.Is(err, ErrRecognition) {
			err = fmt.Errorf("%w: %w", ErrRecognition, err)
		}
		return "", false, err
	}
	if matches == nil {
		return "", false, nil
	}

	// Учитывается только первое совпадение.
	m, found := matches.Next()
	if !found {
		return "", false, nil
	}
	title = strings.TrimSpace(m.Title)
	if title == "" {
		return "", false, nil
	}
	return title, true, nil
}
