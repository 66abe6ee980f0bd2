package client

import (
	"context"
	"net/http"
)

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	User         *User  `json:"user"`
}

type signupResponse struct {
	Success           bool   `json:"success"`
	Message           string `json:"message"`
	VerificationToken string `json:"verification_token"`
}

// SignupResult содержит итог регистрации. VerificationToken заполнен только
// вне production, когда сервер отдаёт его для сквозных сценариев.
type SignupResult struct {
	Message           string
	VerificationToken string
}

// Signup регистрирует пользователя. Сессия не создаётся,
// сначала нужно подтвердить email.
func (c *Client) Signup(ctx context.Context, email, password, name, city string) (*SignupResult, error) {
	body := map[string]string{
		"email":    email,
		"password": password,
		"name":     name,
		"city":     city,
	}
	var resp signupResponse
	if err := c.do(ctx, http.MethodPost, "/api/auth/signup", nil, body, &resp, false); err != nil {
		return nil, err
	}
	return &SignupResult{
		Message:           resp.Message,
		VerificationToken: resp.VerificationToken,
	}, nil
}

// VerifyEmail подтверждает email по токену из письма
func (c *Client) VerifyEmail(ctx context.Context, token string) error {
	body := map[string]string{"token": token}
	return c.do(ctx, http.MethodPost, "/api/auth/verify", nil, body, nil, false)
}

// Login выполняет вход и устанавливает сессию
func (c *Client) Login(ctx context.Context, email, password string) (*User, error) {
	body := map[string]string{"email": email, "password": password}
	var resp tokenResponse
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", nil, body, &resp, false); err != nil {
		return nil, err
	}
	c.session.Establish(resp.AccessToken, resp.RefreshToken, resp.User)
	return resp.User, nil
}

// Refresh обменивает refresh токен на новую пару.
// При отозванной сессии сбрасывает локальную сессию.
func (c *Client) Refresh(ctx context.Context) error {
	refreshToken := c.session.RefreshToken()
	if refreshToken == "" {
		return &APIError{
			Kind:    ErrUnauthorized,
			Status:  http.StatusUnauthorized,
			Message: "Требуется вход в систему",
		}
	}
	body := map[string]string{"refresh_token": refreshToken}
	var resp tokenResponse
	if err := c.do(ctx, http.MethodPost, "/api/auth/refresh", nil, body, &resp, false); err != nil {
		apiErr := asAPIError(err)
		if apiErr.Kind == ErrUnauthorized {
			c.session.Reset()
		}
		return err
	}
	c.session.UpdateTokens(resp.AccessToken, resp.RefreshToken)
	return nil
}

// Logout отзывает refresh-сессию на сервере и сбрасывает локальную.
// Локальная сессия сбрасывается даже при сетевой ошибке, иначе
// пользователь останется «залогинен» без возможности выйти.
func (c *Client) Logout(ctx context.Context) error {
	body := map[string]string{"refresh_token": c.session.RefreshToken()}
	err := c.do(ctx, http.MethodPost, "/api/auth/logout", nil, body, nil, true)
	c.session.Reset()
	if err != nil {
		apiErr := asAPIError(err)
		// Истёкший токен при выходе проблемой не считаем
		if apiErr.Kind == ErrUnauthorized {
			return nil
		}
		return err
	}
	return nil
}

// Restore поднимает сохранённую сессию и проверяет её запросом профиля.
// На 401 сессия сбрасывается, прочие ошибки оставляют кэшированного
// пользователя, чтобы сбой сети не разлогинивал.
func (c *Client) Restore(ctx context.Context) error {
	if !c.session.restoreFromStorage() {
		return nil
	}
	defer c.session.finishLoading()

	user, err := c.Me(ctx)
	if err != nil {
		apiErr := asAPIError(err)
		if apiErr.Kind == ErrUnauthorized {
			c.session.Reset()
			return nil
		}
		return err
	}
	c.session.UpdateUser(user)
	return nil
}
