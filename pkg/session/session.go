// Package session хранит состояние поиска для каждого чата.
package session

import "github.com/Yumi00000/MusicFinderTGBot/pkg/api"

// State описывает состояние сессии чата.
type State int

const (
	Empty State = iota
	Active
	Closed
)

func (s State) String() string {
	switch s {
	case Active:
		return "active"
	case Closed:
		return "closed"
	}
	return "empty"
}

// Session хранит кандидаты последнего распознавания и позиция курсора.
// 0 <= Cursor < len(Candidates), пока Candidates не пуст.
type Session struct {
	Candidates []api.Track
	Cursor     int
	LastQuery  *string
	State      State
	MessageID  int // сообщение с текущим треком и кнопками
}

// New создаёт активную сессию с курсором на первом кандидате.
func New(query *string, candidates []api.Track) *Session {
	return &Session{
		Candidates: candidates,
		LastQuery:  query,
		State:      Active,
	}
}

// Navigable сообщает, есть ли по чему листать.
func (s *Session) Navigable() bool {
	return s != nil && s.State == Active && len(s.Candidates) > 0
}

// Current возвращает трек под курсором.
func (s *Session) Current() (api.Track, bool) {
	if !s.Navigable() {
		return api.Track{}, false
	}
	return s.Candidates[s.Cursor], true
}

// Next сдвигает курсор вперёд. Возвращает false, если курсор уже на последнем треке.
func (s *Session) Next() bool {
	if !s.Navigable() || s.Cursor+1 >= len(s.Candidates) {
		return false
	}
	s.Cursor++
	return true
}

// Previous сдвигает курсор назад. Возвращает false, если курсор уже на первом треке.
func (s *Session) Previous() bool {
	if !s.Navigable() || s.Cursor == 0 {
		return false
	}
	s.Cursor--
	return true
}

// Close переводит сессию в Closed; кандидаты больше недоступны.
func (s *Session) Close() {
	s.State = Closed
	s.MessageID = 0
}
