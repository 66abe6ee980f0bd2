package client

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

// ExpressResult содержит итог выражения интереса. При взаимном совпадении
// Matched выставлен и ChatID указывает на созданный чат.
type ExpressResult struct {
	InterestID uuid.UUID `json:"interest_id"`
	ChatID     uuid.UUID `json:"chat_id"`
	Message    string    `json:"message"`
}

// Matched сообщает, что интерес оказался взаимным
func (r *ExpressResult) Matched() bool {
	return r.ChatID != uuid.Nil
}

// TransitionResult содержит итог подтверждения или отзыва подтверждения
type TransitionResult struct {
	Status  string    `json:"status"`
	ChatID  uuid.UUID `json:"chat_id"`
	Message string    `json:"message"`
}

// Completed сообщает, что обмен завершён обеими сторонами
func (r *TransitionResult) Completed() bool {
	return r.Status == InterestRealized
}

// ExpressInterest выражает интерес к объявлению
func (c *Client) ExpressInterest(ctx context.Context, offerID uuid.UUID) (*ExpressResult, error) {
	body := map[string]string{"offer_id": offerID.String()}
	var resp ExpressResult
	if err := c.do(ctx, http.MethodPost, "/api/interests", nil, body, &resp, true); err != nil {
		return nil, err
	}
	return &resp, nil
}

// MyInterests возвращает интересы текущего пользователя
func (c *Client) MyInterests(ctx context.Context) ([]Interest, error) {
	var resp struct {
		Interests []Interest `json:"interests"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/interests/my", nil, nil, &resp, true); err != nil {
		return nil, err
	}
	return resp.Interests, nil
}

// CancelInterest отменяет ещё не рассмотренный интерес
func (c *Client) CancelInterest(ctx context.Context, interestID uuid.UUID) error {
	return c.do(ctx, http.MethodDelete, "/api/interests/"+interestID.String(), nil, nil, nil, true)
}

// Realize подтверждает реализацию обмена. Когда известно текущее
// состояние, недопустимый переход отсекается без запроса к серверу.
func (c *Client) Realize(ctx context.Context, interestID uuid.UUID, state *RealizationState) (*TransitionResult, error) {
	if state != nil && !state.CanRealize {
		return nil, &APIError{
			Kind:    ErrConflict,
			Status:  http.StatusConflict,
			Message: "Подтверждение сейчас недоступно",
		}
	}
	var resp TransitionResult
	if err := c.do(ctx, http.MethodPatch, "/api/interests/"+interestID.String(), nil, nil, &resp, true); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Unrealize отзывает своё подтверждение, пока второй участник
// ещё не подтвердил
func (c *Client) Unrealize(ctx context.Context, interestID uuid.UUID, state *RealizationState) (*TransitionResult, error) {
	if state != nil && !state.CanUnrealize {
		return nil, &APIError{
			Kind:    ErrConflict,
			Status:  http.StatusConflict,
			Message: "Отзыв подтверждения сейчас недоступен",
		}
	}
	var resp TransitionResult
	if err := c.do(ctx, http.MethodPatch, "/api/interests/"+interestID.String()+"/unrealize", nil, nil, &resp, true); err != nil {
		return nil, err
	}
	return &resp, nil
}
