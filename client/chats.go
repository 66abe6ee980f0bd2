package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/google/uuid"
)

// MessagePage представляет страницу истории сообщений в порядке
// сервера, от новых к старым. HasMore выставлен, если старше есть
// ещё сообщения.
type MessagePage struct {
	Messages []Message `json:"messages"`
	HasMore  bool      `json:"has_more"`
}

// ListChats возвращает чаты текущего пользователя
func (c *Client) ListChats(ctx context.Context) ([]Chat, error) {
	var resp struct {
		Chats []Chat `json:"chats"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/chats", nil, nil, &resp, true); err != nil {
		return nil, err
	}
	return resp.Chats, nil
}

// GetChat возвращает чат со статусами обеих сторон
func (c *Client) GetChat(ctx context.Context, chatID uuid.UUID) (*Chat, error) {
	var resp struct {
		Chat *Chat `json:"chat"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/chats/"+chatID.String(), nil, nil, &resp, true); err != nil {
		return nil, err
	}
	return resp.Chat, nil
}

// GetChatMessages возвращает страницу сообщений.
// before задаёт идентификатор сообщения, старше которого нужна история.
func (c *Client) GetChatMessages(ctx context.Context, chatID uuid.UUID, before uuid.UUID, limit int) (*MessagePage, error) {
	query := url.Values{}
	if before != uuid.Nil {
		query.Set("before", before.String())
	}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}
	var resp MessagePage
	if err := c.do(ctx, http.MethodGet, "/api/chats/"+chatID.String()+"/messages", query, nil, &resp, true); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SendMessage отправляет сообщение в чат.
// Текст валидируется локально до ухода в сеть.
func (c *Client) SendMessage(ctx context.Context, chatID uuid.UUID, text string) (*Message, error) {
	if err := validateMessageText(text); err != nil {
		return nil, err
	}
	body := map[string]string{"text": text}
	var resp struct {
		Message *Message `json:"message"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/chats/"+chatID.String()+"/messages", nil, body, &resp, true); err != nil {
		return nil, err
	}
	return resp.Message, nil
}
