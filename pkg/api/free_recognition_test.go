// pkg/api/free_recognition_test.go
package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/Yumi00000/MusicFinderTGBot/pkg/api/client"
)

func fakeFpcalc(t *testing.T, script string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("нужен /bin/sh")
	}
	path := filepath.Join(t.TempDir(), "fpcalc")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+script+"\n"), 0o755); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestAcoustIDLookup(t *testing.T) {
	fpcalc := fakeFpcalc(t, `echo '{"duration": 354.4, "fingerprint": "AQADtEmUaEkS"}'`)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Fatal(err)
		}
		if r.Method != http.MethodPost || r.Form.Get("client") != "key" ||
			r.Form.Get("duration") != "354" || r.Form.Get("fingerprint") != "AQADtEmUaEkS" ||
			r.Form.Get("meta") != "recordings" {
			t.Errorf("Неожиданный запрос: %s %v", r.Method, r.Form)
		}
		w.Write([]byte(`{"status":"ok","results":[
			{"score":0.4,"recordings":[{"title":"Somebody to Love"}]},
			{"score":0.97,"recordings":[{"title":"Bohemian Rhapsody","artists":[{"name":"Queen"}]}]}
		]}`))
	}))
	defer srv.Close()

	a := NewAcoustID("key", fpcalc, client.New(1), WithEndpoint(srv.URL), WithTempDir(t.TempDir()))
	matches, err := a.Lookup(context.Background(), []byte("audio"))
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	m, ok := matches.Next()
	if !ok || m.Title != "Bohemian Rhapsody" || len(m.Artists) != 1 || m.Artists[0] != "Queen" {
		t.Errorf("Первым должно идти лучшее совпадение, получено %+v", m)
	}
	if m, ok = matches.Next(); !ok || m.Title != "Somebody to Love" {
		t.Errorf("Ожидалось второе совпадение, получено %+v", m)
	}
	if _, ok = matches.Next(); ok {
		t.Error("Последовательность должна закончиться")
	}
}

func TestAcoustIDUnfingerprintableAudio(t *testing.T) {
	fpcalc := fakeFpcalc(t, `echo "ERROR: Empty fingerprint" >&2; exit 3`)
	a := NewAcoustID("key", fpcalc, client.New(1), WithEndpoint("http://127.0.0.1:1"), WithTempDir(t.TempDir()))
	matches, err := a.Lookup(context.Background(), []byte("noise"))
	if err != nil {
		t.Fatalf("Ожидалась пустая последовательность, получена ошибка %v", err)
	}
	if _, ok := matches.Next(); ok {
		t.Error("Совпадений быть не должно")
	}
}

func TestAcoustIDMissingBinary(t *testing.T) {
	a := NewAcoustID("key", filepath.Join(t.TempDir(), "missing"), client.New(1), WithTempDir(t.TempDir()))
	if _, err := a.Lookup(context.Background(), []byte("audio")); !errors.Is(err, ErrRecognition) {
		t.Errorf("Ожидалась ErrRecognition, получено %v", err)
	}
}

func TestAcoustIDFpcalcTimeout(t *testing.T) {
	fpcalc := fakeFpcalc(t, `sleep 5`)
	a := NewAcoustID("key", fpcalc, client.New(1), WithEndpoint("http://127.0.0.1:1"), WithTempDir(t.TempDir()))

	audio := filepath.Join(t.TempDir(), "song.mp3")
	if err := os.WriteFile(audio, []byte("audio"), 0o600); err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	start := time.Now()
	title, ok, err := NewRecognizer(a).Recognize(ctx, audio)
	if !errors.Is(err, ErrRecognition) || !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Прерванный fpcalc должен давать ErrRecognition, получено title=%q ok=%v err=%v", title, ok, err)
	}
	if ok {
		t.Error("ok должен быть false")
	}
	if elapsed := time.Since(start); elapsed > 3*time.Second {
		t.Errorf("Распознавание не остановилось после отмены ctx: %v", elapsed)
	}
}

func TestAcoustIDErrorStatus(t *testing.T) {
	fpcalc := fakeFpcalc(t, `echo '{"duration": 12, "fingerprint": "AQAD"}'`)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"error","error":{"code":4,"message":"invalid API key"}}`))
	}))
	defer srv.Close()

	a := NewAcoustID("bad", fpcalc, client.New(1), WithEndpoint(srv.URL), WithTempDir(t.TempDir()))
	if _, err := a.Lookup(context.Background(), []byte("audio")); !errors.Is(err, ErrRecognition) {
		t.Errorf("Ожидалась ErrRecognition, получено %v", err)
	}
}
