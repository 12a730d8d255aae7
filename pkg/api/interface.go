package api

import (
	"context"
	"fmt"
)

// Catalog ищет треки в музыкальном каталоге по текстовому запросу.
type Catalog interface {
	Search(ctx context.Context, query string) ([]Track, error)
}

// Track – кандидат из каталога. После возврата из Search не изменяется.
type Track struct {
	Title  string
	Artist string
	URL    string // внешняя ссылка на трек (у Spotify это open.spotify.com)
}

// Render формирует текст сообщения с информацией о треке.
func (t Track) Render() string {
	return fmt.Sprintf("Track: %s\nArtist: %s\nLink: %s", t.Title, t.Artist, t.URL)
}

// RenderAll возвращает отрендеренный текст каждого трека. Для пустого списка возвращается пустой срез, не nil.
func RenderAll(tracks []Track) []string {
	out := make([]string, 0, len(tracks))
	for _, t := range tracks {
		out = append(out, t.Render())
	}
	return out
}
