package client

import (
	"sync"
	"time"
)

// Clock абстрагирует время, чтобы автоскрытие уведомлений
// можно было проверять без реального ожидания
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

// Timer представляет отменяемый таймер
type Timer interface {
	Stop() bool
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// NoticeKind задаёт вид уведомления
type NoticeKind string

const (
	NoticeInfo    NoticeKind = "info"
	NoticeSuccess NoticeKind = "success"
	NoticeError   NoticeKind = "error"
)

// Notice представляет одно уведомление в очереди.
// Retryable означает баннер с кнопкой повтора,
// AuthRequired означает баннер со ссылкой на вход без повтора.
type Notice struct {
	ID           uint64
	Kind         NoticeKind
	Text         string
	Retryable    bool
	AuthRequired bool
	CreatedAt    time.Time
}

// Время жизни уведомления по умолчанию
const defaultNoticeTTL = 5 * time.Second

// Notifier держит очередь уведомлений с автоскрытием
type Notifier struct {
	mu     sync.Mutex
	clock  Clock
	ttl    time.Duration
	nextID uint64
	active []Notice
	timers map[uint64]Timer
}

func NewNotifier() *Notifier {
	return NewNotifierWithClock(realClock{}, defaultNoticeTTL)
}

func NewNotifierWithClock(clock Clock, ttl time.Duration) *Notifier {
	return &Notifier{
		clock:  clock,
		ttl:    ttl,
		timers: make(map[uint64]Timer),
	}
}

// Push добавляет уведомление и возвращает его идентификатор
func (n *Notifier) Push(kind NoticeKind, text string) uint64 {
	return n.push(Notice{Kind: kind, Text: text})
}

// PushError добавляет уведомление по ошибке API.
// 401 получает ссылку на вход, повторяемые ошибки получают кнопку повтора.
func (n *Notifier) PushError(err *APIError) uint64 {
	text := err.Message
	if text == "" {
		text = "Что-то пошло не так"
	}
	return n.push(Notice{
		Kind:         NoticeError,
		Text:         text,
		Retryable:    err.Retryable(),
		AuthRequired: err.AuthRequired(),
	})
}

func (n *Notifier) push(notice Notice) uint64 {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.nextID++
	notice.ID = n.nextID
	notice.CreatedAt = n.clock.Now()
	n.active = append(n.active, notice)

	id := notice.ID
	n.timers[id] = n.clock.AfterFunc(n.ttl, func() {
		n.Dismiss(id)
	})
	return id
}

// Dismiss убирает уведомление и останавливает его таймер
func (n *Notifier) Dismiss(id uint64) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if t, ok := n.timers[id]; ok {
		t.Stop()
		delete(n.timers, id)
	}
	for i, notice := range n.active {
		if notice.ID == id {
			n.active = append(n.active[:i], n.active[i+1:]...)
			return
		}
	}
}

// Active возвращает копию текущих уведомлений
func (n *Notifier) Active() []Notice {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]Notice, len(n.active))
	copy(out, n.active)
	return out
}
