package telegram

import (
	"runtime/debug"
	"sync"

	"github.com/Yumi00000/MusicFinderTGBot/pkg/logging"
)

// ChatQueue выполняет задачи одного чата строго по очереди, а разных чатов параллельно.
// Для каждого чата с задачами работает одна горутина; без задач горутина завершается.
type ChatQueue struct {
	mu      sync.Mutex
	pending map[int64][]func()
	closed  bool
	wg      sync.WaitGroup
	logger  *logging.Logger
}

func NewChatQueue(logger *logging.Logger) *ChatQueue {
	return &ChatQueue{pending: make(map[int64][]func()), logger: logger}
}

// Submit ставит задачу в очередь чата. После Close возвращает false.
func (q *ChatQueue) Submit(chatID int64, job func()) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return false
	}
	jobs, busy := q.pending[chatID]
	q.pending[chatID] = append(jobs, job)
	if !busy {
		q.wg.Add(1)
		go q.drain(chatID)
	}
	return true
}

func (q *ChatQueue) drain(chatID int64) {
	defer q.wg.Done()
	for {
		q.mu.Lock()
		jobs := q.pending[chatID]
		if len(jobs) == 0 {
			delete(q.pending, chatID)
			q.mu.Unlock()
			return
		}
		job := jobs[0]
		q.pending[chatID] = jobs[1:]
		q.mu.Unlock()

		q.run(chatID, job)
	}
}

func (q *ChatQueue) run(chatID int64, job func()) {
	defer func() {
		if r := recover(); r != nil {
			q.logger.Errorf("Паника при обработке чата %d: %v\n%s", chatID, r, debug.Stack())
		}
	}()
	job()
}

// Close перестаёт принимать задачи и ждёт, пока очереди опустеют.
func (q *ChatQueue) Close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
	q.wg.Wait()
}
