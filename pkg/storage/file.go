package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileHistory хранит всю историю одним JSON-объектом в файле.
type FileHistory struct {
	mu      sync.Mutex
	path    string
	entries map[string]Entry
}

// NewFileHistory читает существующий файл; отсутствующий файл означает пустую историю.
func NewFileHistory(path string) (*FileHistory, error) {
	h := &FileHistory{path: path, entries: make(map[string]Entry)}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return h, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read history %s: %w", path, err)
	}
	if len(data) == 0 {
		return h, nil
	}
	if err := json.Unmarshal(data, &h.entries); err != nil {
		return nil, fmt.Errorf("parse history %s: %w", path, err)
	}
	return h, nil
}

func (h *FileHistory) Load(context.Context) (map[string]Entry, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make(map[string]Entry, len(h.entries))
	for k, v := range h.entries {
		out[k] = v
	}
	return out, nil
}

// Put обновляет запись чата и перезаписывает файл целиком.
func (h *FileHistory) Put(_ context.Context, chatID int64, e Entry) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries[chatKey(chatID)] = normalize(e)
	return h.flush()
}

// Ping проверяет, что каталог файла истории доступен.
func (h *FileHistory) Ping(context.Context) error {
	_, err := os.Stat(filepath.Dir(h.path))
	return err
}

func (h *FileHistory) Close() error { return nil }

// flush пишет во временный файл и переименовывает его, чтобы файл не оставался обрезанным.
func (h *FileHistory) flush() error {
	data, err := json.MarshalIndent(h.entries, "", "    ")
	if err != nil {
		return fmt.Errorf("encode history: %w", err)
	}
	dir := filepath.Dir(h.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create history dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(h.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp history: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write history: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write history: %w", err)
	}
	if err := os.Rename(tmp.Name(), h.path); err != nil {
		return fmt.Errorf("replace history: %w", err)
	}
	return nil
}
