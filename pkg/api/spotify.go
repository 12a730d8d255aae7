// pkg/api/spotify.go
package api

import (
	"context"
	"fmt"
	"strings"

	"github.com/Yumi00000/MusicFinderTGBot/pkg/matching"
	"github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2/clientcredentials"
)

// DefaultSearchLimit – сколько кандидатов запрашивается у Spotify.
const DefaultSearchLimit = 10

// SpotifyCatalog ищет треки через Spotify Web API.
type SpotifyCatalog struct {
	client   *spotify.Client
	limit    int
	minScore int
}

// NewSpotifyClient создаёт клиента Spotify с авторизацией client credentials.
// Токен обновляется автоматически транспортом oauth2.
func NewSpotifyClient(ctx context.Context, clientID, clientSecret string) *spotify.Client {
	cfg := &clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     spotifyauth.TokenURL,
	}
	return spotify.New(cfg.Client(ctx))
}

// NewSpotifyCatalog оборачивает клиента. minScore > 0 включает нечёткий фильтр
// по названию (см. matching.TitleScore).
func NewSpotifyCatalog(client *spotify.Client, limit, minScore int) *SpotifyCatalog {
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	return &SpotifyCatalog{client: client, limit: limit, minScore: minScore}
}

// Search возвращает треки в порядке релевантности Spotify, не больше limit.
func (c *SpotifyCatalog) Search(ctx context.Context, query string) ([]Track, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}
	res, err := c.client.Search(ctx, query, spotify.SearchTypeTrack, spotify.Limit(c.limit))
	if err != nil {
		return nil, fmt.Errorf("%w: spotify search %q: %w", ErrCatalogUnavailable, query, err)
	}
	if res == nil || res.Tracks == nil {
		return nil, nil
	}

	items := res.Tracks.Tracks
	if len(items) > c.limit {
		items = items[:c.limit]
	}
	tracks := make([]Track, 0, len(items))
	for _, item := range items {
		tracks = append(tracks, trackFromSpotify(item))
	}
	if c.minScore <= 0 {
		return tracks, nil
	}

	titles := make([]string, len(tracks))
	for i, t := range tracks {
		titles[i] = t.Title
	}
	kept := matching.Filter(query, titles, c.minScore)
	filtered := make([]Track, 0, len(kept))
	for _, i := range kept {
		filtered = append(filtered, tracks[i])
	}
	return filtered, nil
}

func trackFromSpotify(item spotify.FullTrack) Track {
	t := Track{
		Title: item.Name,
		URL:   item.ExternalURLs["spotify"],
	}
	if len(item.Artists) > 0 {
		t.Artist = item.Artists[0].Name
	}
	return t
}
