// pkg/api/spotify_test.go
package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/zmb3/spotify/v2"
)

const searchPayload = `{"tracks":{"href":"","limit":10,"offset":0,"total":3,"items":[
 {"name":"Bohemian Rhapsody - Remastered 2011","artists":[{"name":"Queen"}],"external_urls":{"spotify":"https://open.spotify.com/track/1"}},
 {"name":"Bohemian Rhapsody","artists":[{"name":"Panic! At The Disco"},{"name":"Other"}],"external_urls":{"spotify":"https://open.spotify.com/track/2"}},
 {"name":"Don't Stop Me Now","artists":[{"name":"Queen"}],"external_urls":{"spotify":"https://open.spotify.com/track/3"}}
]}}`

func newTestCatalog(t *testing.T, h http.HandlerFunc, limit, minScore int) *SpotifyCatalog {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c := spotify.New(srv.Client(), spotify.WithBaseURL(srv.URL+"/"))
	return NewSpotifyCatalog(c, limit, minScore)
}

func TestSpotifySearch(t *testing.T) {
	catalog := newTestCatalog(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("q") != "Bohemian Rhapsody" || q.Get("type") != "track" || q.Get("limit") != "10" {
			t.Errorf("Неожиданные параметры запроса: %v", q)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(searchPayload))
	}, 0, 0)

	tracks, err := catalog.Search(context.Background(), "  Bohemian Rhapsody ")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(tracks) != 3 {
		t.Fatalf("Ожидалось 3 трека, получено %d", len(tracks))
	}
	want := Track{Title: "Bohemian Rhapsody", Artist: "Panic! At The Disco", URL: "https://open.spotify.com/track/2"}
	if tracks[1] != want {
		t.Errorf("Ожидался %+v, получен %+v", want, tracks[1])
	}
}

func TestSpotifySearchRespectsLimit(t *testing.T) {
	catalog := newTestCatalog(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(searchPayload))
	}, 2, 0)
	tracks, err := catalog.Search(context.Background(), "queen")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(tracks) != 2 {
		t.Errorf("Ожидалось не больше 2 треков, получено %d", len(tracks))
	}
}

func TestSpotifySearchMinScore(t *testing.T) {
	catalog := newTestCatalog(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(searchPayload))
	}, 10, 80)
	tracks, err := catalog.Search(context.Background(), "Bohemian Rhapsody")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(tracks) != 2 || tracks[0].Artist != "Queen" || tracks[1].Artist != "Panic! At The Disco" {
		t.Errorf("Фильтр должен убрать несовпадающее название и сохранить порядок: %+v", tracks)
	}
}

func TestSpotifySearchEmpty(t *testing.T) {
	catalog := newTestCatalog(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"tracks":{"items":[],"total":0}}`))
	}, 0, 0)
	tracks, err := catalog.Search(context.Background(), "zzzz")
	if err != nil || len(tracks) != 0 {
		t.Errorf("Ожидался пустой результат без ошибки, получено %v, %v", tracks, err)
	}
}

func TestSpotifySearchUnavailable(t *testing.T) {
	catalog := newTestCatalog(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":{"status":500,"message":"boom"}}`))
	}, 0, 0)
	_, err := catalog.Search(context.Background(), "Bohemian Rhapsody")
	if !errors.Is(err, ErrCatalogUnavailable) {
		t.Errorf("Ожидалась ErrCatalogUnavailable, получено %v", err)
	}
}

func TestTrackRender(t *testing.T) {
	tr := Track{Title: "Bohemian Rhapsody", Artist: "Queen", URL: "https://open.spotify.com/track/1"}
	want := "Track: Bohemian Rhapsody\nArtist: Queen\nLink: https://open.spotify.com/track/1"
	if got := tr.Render(); got != want {
		t.Errorf("Render() = %q, ожидалось %q", got, want)
	}
	if got := RenderAll(nil); got == nil || len(got) != 0 {
		t.Errorf("RenderAll(nil) должен вернуть пустой срез, получено %#v", got)
	}
}
