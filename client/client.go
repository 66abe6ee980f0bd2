package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Жёсткий потолок на любой запрос к API. Дольше ждать нет смысла,
// пользователю лучше показать ошибку с кнопкой повтора.
const requestTimeout = 10 * time.Second

// Client представляет HTTP-клиент BarterHub API.
// Все методы возвращают *APIError для ошибок уровня API.
type Client struct {
	baseURL string
	http    *http.Client
	session *Session
	timeout time.Duration
}

func New(baseURL string, session *Session) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
		session: session,
		timeout: requestTimeout,
	}
}

func (c *Client) Session() *Session {
	return c.session
}

// errorEnvelope описывает конверт ошибки, который отдаёт сервер
type errorEnvelope struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Details struct {
			Field string `json:"field"`
		} `json:"details"`
	} `json:"error"`
}

// do выполняет запрос и раскладывает ответ в out.
// Для защищённых маршрутов без токена запрос в сеть не уходит.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any, out any, requireAuth bool) error {
	token := ""
	if c.session != nil {
		token = c.session.AccessToken()
	}
	if requireAuth && token == "" {
		return &APIError{
			Kind:    ErrUnauthorized,
			Status:  http.StatusUnauthorized,
			Message: "Требуется вход в систему",
		}
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return &APIError{Kind: ErrInternal, Message: err.Error()}
		}
		reader = bytes.NewReader(data)
	}

	fullURL := c.baseURL + path
	if len(query) > 0 {
		fullURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, reader)
	if err != nil {
		return &APIError{Kind: ErrNetwork, Message: err.Error()}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return &APIError{
				Kind:    ErrTimeout,
				Status:  http.StatusRequestTimeout,
				Message: "Сервер не ответил вовремя",
			}
		}
		return &APIError{
			Kind:    ErrNetwork,
			Message: "Не удалось связаться с сервером",
		}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &APIError{Kind: ErrNetwork, Message: "Не удалось прочитать ответ сервера"}
	}

	if resp.StatusCode >= 400 {
		apiErr := parseErrorResponse(resp.StatusCode, data)
		// 401 на защищённом запросе означает мёртвый токен, держать
		// его дальше бессмысленно. Единственная ошибка с автоматическим
		// побочным действием, остальные ждут явной реакции пользователя.
		if requireAuth && apiErr.Kind == ErrUnauthorized && c.session != nil {
			c.session.Reset()
		}
		return apiErr
	}

	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return &APIError{Kind: ErrNetwork, Message: "Сервер вернул некорректный ответ"}
		}
	}
	return nil
}

// parseErrorResponse разбирает конверт ошибки сервера.
// Нечитаемое тело деградирует до вида по HTTP-статусу.
func parseErrorResponse(status int, data []byte) *APIError {
	var env errorEnvelope
	if err := json.Unmarshal(data, &env); err == nil && env.Error.Code != "" {
		return &APIError{
			Kind:    kindFromCode(env.Error.Code, status),
			Status:  status,
			Message: env.Error.Message,
			Field:   env.Error.Details.Field,
		}
	}
	return &APIError{
		Kind:   kindFromStatus(status),
		Status: status,
	}
}

// asAPIError приводит любую ошибку транспорта к *APIError
func asAPIError(err error) *APIError {
	if err == nil {
		return nil
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return &APIError{Kind: ErrNetwork, Message: err.Error()}
}
