package storage

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
)

func strPtr(s string) *string { return &s }

// exerciseHistory проверяет общее поведение всех реализаций.
func exerciseHistory(t *testing.T, h History) {
	t.Helper()
	ctx := context.Background()
	if err := h.Ping(ctx); err != nil {
		t.Fatalf("Ping: %v", err)
	}
	if err := h.Put(ctx, 42, Entry{Query: strPtr("Bohemian Rhapsody"), Tracks: []string{"Track: A", "Track: B"}}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := h.Put(ctx, -100500, Entry{}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := h.Put(ctx, 42, Entry{Query: strPtr("Hey Jude"), Tracks: nil}); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, err := h.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Ожидалось 2 записи, получено %d: %v", len(got), got)
	}
	e := got["42"]
	if e.Query == nil || *e.Query != "Hey Jude" || e.Tracks == nil || len(e.Tracks) != 0 {
		t.Errorf("Запись должна быть перезаписана целиком: %+v", e)
	}
	if e := got["-100500"]; e.Query != nil || len(e.Tracks) != 0 {
		t.Errorf("Ожидалась запись без запроса: %+v", e)
	}
}

func TestFileHistory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")
	h, err := NewFileHistory(path)
	if err != nil {
		t.Fatal(err)
	}
	exerciseHistory(t, h)

	reopened, err := NewFileHistory(path)
	if err != nil {
		t.Fatalf("Повторное открытие: %v", err)
	}
	got, _ := reopened.Load(context.Background())
	if len(got) != 2 {
		t.Errorf("После перезапуска ожидалось 2 записи, получено %v", got)
	}
}

func TestFileHistoryLayout(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.json")
	h, _ := NewFileHistory(path)
	if err := h.Put(context.Background(), 7, Entry{}); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	want := "{\n    \"7\": {\n        \"query\": null,\n        \"tracks\": []\n    }\n}"
	if string(data) != want {
		t.Errorf("Неожиданный формат файла:\n%s", data)
	}
	names, _ := os.ReadDir(dir)
	for _, n := range names {
		if strings.HasSuffix(n.Name(), ".tmp") {
			t.Errorf("Временный файл не удалён: %s", n.Name())
		}
	}
}

func TestFileHistoryCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")
	os.WriteFile(path, []byte("{not json"), 0o644)
	if _, err := NewFileHistory(path); err == nil {
		t.Error("Ожидалась ошибка для повреждённого файла")
	}
}

func TestSQLiteHistory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db", "history.db")
	h, err := NewSQLiteHistory(path)
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()
	exerciseHistory(t, h)
}

func TestRedisHistory(t *testing.T) {
	addr := os.Getenv("REDIS_ADDRESS")
	if addr == "" {
		t.Skip("REDIS_ADDRESS не задан")
	}
	db := 15
	if v, err := strconv.Atoi(os.Getenv("REDIS_TEST_DB")); err == nil {
		db = v
	}
	h, err := NewRedisHistory(context.Background(), addr, os.Getenv("REDIS_PASSWORD"), db)
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()
	h.key = HistoryKey + ":test"
	defer h.client.Del(context.Background(), h.key)
	exerciseHistory(t, h)
}
