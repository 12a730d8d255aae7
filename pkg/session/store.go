package session

import "sync"

// Store хранит сессии всех чатов процесса. Изменения одного чата сериализуются
// его собственной блокировкой; разные чаты не мешают друг другу.
type Store struct {
	mu    sync.Mutex
	chats map[int64]*entry
}

type entry struct {
	mu      sync.Mutex
	session *Session
}

func NewStore() *Store {
	return &Store{chats: make(map[int64]*entry)}
}

func (s *Store) entry(chatID int64) *entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.chats[chatID]
	if !ok {
		e = &entry{}
		s.chats[chatID] = e
	}
	return e
}

// Do выполняет fn под блокировкой чата. sess == nil, если сессии ещё нет.
// fn может заменить сессию, вернув новую; возврат nil оставляет текущую.
func (s *Store) Do(chatID int64, fn func(sess *Session) *Session) {
	e := s.entry(chatID)
	e.mu.Lock()
	defer e.mu.Unlock()
	if next := fn(e.session); next != nil {
		e.session = next
	}
}

// Replace заменяет сессию чата.
func (s *Store) Replace(chatID int64, sess *Session) {
	s.Do(chatID, func(*Session) *Session { return sess })
}

// Get возвращает копию сессии чата.
func (s *Store) Get(chatID int64) (Session, bool) {
	var (
		out Session
		ok  bool
	)
	s.Do(chatID, func(sess *Session) *Session {
		if sess != nil {
			out, ok = *sess, true
		}
		return nil
	})
	return out, ok
}

// State возвращает состояние сессии; Empty, если её нет.
func (s *Store) State(chatID int64) State {
	sess, ok := s.Get(chatID)
	if !ok {
		return Empty
	}
	return sess.State
}
