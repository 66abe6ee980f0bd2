package client

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// MaxMessageLength задаёт предельную длину сообщения в символах
const MaxMessageLength = 2000

// validateMessageText проверяет текст сообщения до отправки в сеть
func validateMessageText(text string) error {
	if strings.TrimSpace(text) == "" {
		return &APIError{
			Kind:    ErrValidation,
			Status:  http.StatusUnprocessableEntity,
			Message: "Сообщение не может быть пустым",
			Field:   "text",
		}
	}
	if utf8.RuneCountInString(text) > MaxMessageLength {
		return &APIError{
			Kind:    ErrValidation,
			Status:  http.StatusUnprocessableEntity,
			Message: "Сообщение слишком длинное",
			Field:   "text",
		}
	}
	return nil
}

// ChatView держит состояние экрана чатов: список, открытый чат, сообщения
// и черновики. Каждый ресурс несёт счётчик поколений, ответ устаревшего
// запроса отбрасывается и не затирает более свежие данные.
type ChatView struct {
	client *Client

	mu sync.Mutex

	chats        []Chat
	chatsErr     *APIError
	loadingChats bool
	chatsGen     uint64

	selected      *Chat
	detailErr     *APIError
	loadingDetail bool
	detailGen     uint64

	messages        []Message
	messagesErr     *APIError
	loadingMessages bool
	hasMore         bool
	messagesGen     uint64

	sending bool
	drafts  map[uuid.UUID]string

	// onNewMessages вызывается после успешной отправки,
	// интерфейс прокручивает ленту вниз
	onNewMessages func()
}

func NewChatView(client *Client, onNewMessages func()) *ChatView {
	return &ChatView{
		client:        client,
		drafts:        make(map[uuid.UUID]string),
		onNewMessages: onNewMessages,
	}
}

// LoadChats обновляет список чатов
func (v *ChatView) LoadChats(ctx context.Context) error {
	v.mu.Lock()
	v.loadingChats = true
	v.chatsGen++
	gen := v.chatsGen
	v.mu.Unlock()

	chats, err := v.client.ListChats(ctx)

	v.mu.Lock()
	defer v.mu.Unlock()
	if gen != v.chatsGen {
		// Пока ждали ответ, ушёл более свежий запрос
		return nil
	}
	v.loadingChats = false
	if err != nil {
		v.chatsErr = asAPIError(err)
		return err
	}
	v.chats = chats
	v.chatsErr = nil
	return nil
}

// Сервер отдаёт страницы сообщений от новых к старым, лента чата
// хранится в хронологическом порядке
func chronological(msgs []Message) []Message {
	out := make([]Message, len(msgs))
	for i, m := range msgs {
		out[len(msgs)-1-i] = m
	}
	return out
}

// Select открывает чат: детали и сообщения грузятся параллельно,
// ошибка одного ресурса не блокирует другой
func (v *ChatView) Select(ctx context.Context, chatID uuid.UUID) {
	v.mu.Lock()
	v.loadingDetail = true
	v.loadingMessages = true
	v.detailGen++
	v.messagesGen++
	detailGen := v.detailGen
	messagesGen := v.messagesGen
	v.mu.Unlock()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		chat, err := v.client.GetChat(ctx, chatID)
		v.mu.Lock()
		defer v.mu.Unlock()
		if detailGen != v.detailGen {
			return nil
		}
		v.loadingDetail = false
		if err != nil {
			v.detailErr = asAPIError(err)
			return nil
		}
		v.selected = chat
		v.detailErr = nil
		return nil
	})

	g.Go(func() error {
		page, err := v.client.GetChatMessages(ctx, chatID, uuid.Nil, 0)
		v.mu.Lock()
		defer v.mu.Unlock()
		if messagesGen != v.messagesGen {
			return nil
		}
		v.loadingMessages = false
		if err != nil {
			v.messagesErr = asAPIError(err)
			return nil
		}
		v.messages = chronological(page.Messages)
		v.hasMore = page.HasMore
		v.messagesErr = nil
		return nil
	})

	// Ошибки разложены по ресурсам, Wait здесь всегда nil
	_ = g.Wait()
}

// LoadOlder подгружает более старые сообщения открытого чата
func (v *ChatView) LoadOlder(ctx context.Context) error {
	v.mu.Lock()
	if v.selected == nil || len(v.messages) == 0 || !v.hasMore {
		v.mu.Unlock()
		return nil
	}
	chatID := v.selected.ID
	// Лента хронологическая, самое старое загруженное сообщение первое
	oldest := v.messages[0].ID
	gen := v.messagesGen
	v.mu.Unlock()

	page, err := v.client.GetChatMessages(ctx, chatID, oldest, 0)
	if err != nil {
		return err
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if gen != v.messagesGen {
		return nil
	}
	v.messages = append(chronological(page.Messages), v.messages...)
	v.hasMore = page.HasMore
	return nil
}

// SetDraft сохраняет черновик сообщения для чата
func (v *ChatView) SetDraft(chatID uuid.UUID, text string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if text == "" {
		delete(v.drafts, chatID)
		return
	}
	v.drafts[chatID] = text
}

// Draft возвращает черновик для чата
func (v *ChatView) Draft(chatID uuid.UUID) string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.drafts[chatID]
}

// Send отправляет черновик в чат. Черновик очищается только после
// успешной отправки, при ошибке текст остаётся в поле ввода.
func (v *ChatView) Send(ctx context.Context, chatID uuid.UUID) error {
	v.mu.Lock()
	if v.sending {
		v.mu.Unlock()
		return nil
	}
	text := v.drafts[chatID]
	v.sending = true
	v.mu.Unlock()

	msg, err := v.client.SendMessage(ctx, chatID, text)

	v.mu.Lock()
	v.sending = false
	if err != nil {
		v.mu.Unlock()
		return err
	}
	delete(v.drafts, chatID)
	refetch := v.selected != nil && v.selected.ID == chatID
	if refetch {
		v.messages = append(v.messages, *msg)
		v.messagesGen++
	}
	gen := v.messagesGen
	callback := v.onNewMessages
	v.mu.Unlock()

	// Протокол работает опросом: после отправки перечитываем ленту,
	// чтобы подтянуть сообщения собеседника, пришедшие за это время
	if refetch {
		if page, err := v.client.GetChatMessages(ctx, chatID, uuid.Nil, 0); err == nil {
			v.mu.Lock()
			if gen == v.messagesGen {
				v.messages = chronological(page.Messages)
				v.hasMore = page.HasMore
			}
			v.mu.Unlock()
		}
	}

	if callback != nil {
		callback()
	}
	return nil
}

// Chats возвращает текущий список чатов
func (v *ChatView) Chats() []Chat {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.chats
}

// Selected возвращает открытый чат
func (v *ChatView) Selected() *Chat {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.selected
}

// VisibleMessages возвращает сообщения для отображения.
// Сообщения из одних пробельных символов скрываются независимо
// от отправителя.
func (v *ChatView) VisibleMessages() []Message {
	v.mu.Lock()
	defer v.mu.Unlock()
	visible := make([]Message, 0, len(v.messages))
	for _, m := range v.messages {
		if strings.TrimSpace(m.Text) == "" {
			continue
		}
		visible = append(visible, m)
	}
	return visible
}

// RealizationState возвращает состояние подтверждения для открытого чата
func (v *ChatView) RealizationState() *RealizationState {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.selected == nil {
		return nil
	}
	return BuildRealizationState(v.selected.MyStatus, v.selected.OtherStatus)
}

// Sending сообщает, идёт ли отправка сообщения
func (v *ChatView) Sending() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.sending
}

// Errors возвращает ошибки последних загрузок по ресурсам
func (v *ChatView) Errors() (chats, detail, messages *APIError) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.chatsErr, v.detailErr, v.messagesErr
}
