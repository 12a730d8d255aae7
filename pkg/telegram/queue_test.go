package telegram

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Yumi00000/MusicFinderTGBot/pkg/logging"
)

func TestChatQueueOrderPerChat(t *testing.T) {
	q := NewChatQueue(logging.Discard())
	var mu sync.Mutex
	got := map[int64][]int{}
	for i := 0; i < 100; i++ {
		for _, chat := range []int64{1, 2, 3} {
			i, chat := i, chat
			q.Submit(chat, func() {
				mu.Lock()
				got[chat] = append(got[chat], i)
				mu.Unlock()
			})
		}
	}
	q.Close()

	for chat, seq := range got {
		if len(seq) != 100 {
			t.Fatalf("Чат %d: обработано %d задач", chat, len(seq))
		}
		for i, v := range seq {
			if v != i {
				t.Fatalf("Чат %d: нарушен порядок на позиции %d: %v", chat, i, seq)
			}
		}
	}
}

func TestChatQueueSerializesChat(t *testing.T) {
	q := NewChatQueue(logging.Discard())
	var running, maxRunning int32
	for i := 0; i < 20; i++ {
		q.Submit(7, func() {
			n := atomic.AddInt32(&running, 1)
			if n > atomic.LoadInt32(&maxRunning) {
				atomic.StoreInt32(&maxRunning, n)
			}
			time.Sleep(time.Millisecond)
			atomic.AddInt32(&running, -1)
		})
	}
	q.Close()
	if maxRunning != 1 {
		t.Errorf("Задачи одного чата выполнялись параллельно: %d", maxRunning)
	}
}

func TestChatQueueChatsRunInParallel(t *testing.T) {
	q := NewChatQueue(logging.Discard())
	release := make(chan struct{})
	done := make(chan struct{})
	q.Submit(1, func() { <-release })
	q.Submit(2, func() { close(done) })
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Занятый чат блокирует другие чаты")
	}
	close(release)
	q.Close()
}

func TestChatQueueRecoversPanic(t *testing.T) {
	q := NewChatQueue(logging.Discard())
	var ran int32
	q.Submit(1, func() { panic("boom") })
	q.Submit(1, func() { atomic.AddInt32(&ran, 1) })
	q.Close()
	if ran != 1 {
		t.Error("После паники очередь должна продолжить работу")
	}
	if q.Submit(1, func() {}) {
		t.Error("После Close задачи не принимаются")
	}
}
