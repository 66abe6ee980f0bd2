package app

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/rajivgeraev/barterhub-api/internal/cache"
	"github.com/rajivgeraev/barterhub-api/internal/config"
	"github.com/rajivgeraev/barterhub-api/internal/db"
)

// Сквозные сценарии гоняются против настоящих Postgres и Redis.
// Без PGHOST в окружении тесты пропускаются.

var (
	setupOnce sync.Once
	testApp   *fiber.App
)

func setupApp(t *testing.T) *fiber.App {
	t.Helper()
	if os.Getenv("PGHOST") == "" {
		t.Skip("PGHOST не задан, пропускаем сквозной сценарий")
	}

	setupOnce.Do(func() {
		if os.Getenv("JWT_SECRET") == "" {
			os.Setenv("JWT_SECRET", "e2e-test-secret")
		}
		os.Setenv("APP_ENV", "test")

		cfg := config.LoadConfig()
		if err := db.InitDB(cfg); err != nil {
			panic(fmt.Sprintf("не удалось подключиться к базе: %v", err))
		}
		if err := cache.InitRedis(cfg); err != nil {
			panic(fmt.Sprintf("не удалось подключиться к Redis: %v", err))
		}
		testApp = New(cfg)
	})
	return testApp
}

func request(t *testing.T, app *fiber.App, method, path, token string, body any) (int, map[string]any) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, fiber.TestConfig{Timeout: 10 * time.Second})
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	var decoded map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		decoded = nil
	}
	return resp.StatusCode, decoded
}

// registerUser проводит пользователя через регистрацию, подтверждение
// email и вход. Возвращает access токен и идентификатор пользователя.
func registerUser(t *testing.T, app *fiber.App, name string) (token, userID string) {
	t.Helper()
	email := fmt.Sprintf("%s-%d@test.local", name, time.Now().UnixNano())

	status, body := request(t, app, http.MethodPost, "/api/auth/signup", "", map[string]string{
		"email":    email,
		"password": "password123",
		"name":     name,
		"city":     "Москва",
	})
	if status != http.StatusCreated {
		t.Fatalf("signup: статус %d, тело %v", status, body)
	}
	verificationToken, _ := body["verification_token"].(string)
	if verificationToken == "" {
		t.Fatal("вне production сервер должен отдавать verification_token")
	}

	status, body = request(t, app, http.MethodPost, "/api/auth/verify", "", map[string]string{
		"token": verificationToken,
	})
	if status != http.StatusOK {
		t.Fatalf("verify: статус %d, тело %v", status, body)
	}

	status, body = request(t, app, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    email,
		"password": "password123",
	})
	if status != http.StatusOK {
		t.Fatalf("login: статус %d, тело %v", status, body)
	}
	token, _ = body["access_token"].(string)
	user, _ := body["user"].(map[string]any)
	userID, _ = user["id"].(string)
	if token == "" || userID == "" {
		t.Fatalf("login не вернул токен или пользователя: %v", body)
	}
	return token, userID
}

func createOffer(t *testing.T, app *fiber.App, token, title string) string {
	t.Helper()
	status, body := request(t, app, http.MethodPost, "/api/offers", token, map[string]any{
		"title":       title,
		"description": "Тестовое объявление",
		"city":        "Москва",
	})
	if status != http.StatusCreated {
		t.Fatalf("создание объявления: статус %d, тело %v", status, body)
	}
	offerID, _ := body["offer_id"].(string)
	if offerID == "" {
		t.Fatalf("ответ без offer_id: %v", body)
	}
	return offerID
}

func expressInterest(t *testing.T, app *fiber.App, token, offerID string) (interestID, chatID string) {
	t.Helper()
	status, body := request(t, app, http.MethodPost, "/api/interests", token, map[string]string{
		"offer_id": offerID,
	})
	if status != http.StatusCreated {
		t.Fatalf("выражение интереса: статус %d, тело %v", status, body)
	}
	interestID, _ = body["interest_id"].(string)
	chatID, _ = body["chat_id"].(string)
	return interestID, chatID
}

func TestMutualInterestToRealization(t *testing.T) {
	app := setupApp(t)

	tokenA, _ := registerUser(t, app, "anna")
	tokenB, _ := registerUser(t, app, "boris")

	offerA := createOffer(t, app, tokenA, "Велосипед")
	offerB := createOffer(t, app, tokenB, "Гитара")

	// Б выражает интерес первым, взаимности ещё нет
	interestB, chatID := expressInterest(t, app, tokenB, offerA)
	if chatID != "" {
		t.Fatal("до взаимного интереса чат создаваться не должен")
	}

	// Интерес Б виден в его списке со статусом proposed
	status, body := request(t, app, http.MethodGet, "/api/interests/my", tokenB, nil)
	if status != http.StatusOK {
		t.Fatalf("список интересов: статус %d", status)
	}
	interests, _ := body["interests"].([]any)
	if len(interests) == 0 {
		t.Fatal("интерес Б должен быть в его списке")
	}
	first, _ := interests[0].(map[string]any)
	if got, _ := first["status"].(string); got != "proposed" {
		t.Fatalf("статус интереса Б = %q, ожидалось proposed", got)
	}

	// А отвечает взаимностью, создаётся чат
	interestA, chatID := expressInterest(t, app, tokenA, offerB)
	if chatID == "" {
		t.Fatal("взаимный интерес должен создать чат")
	}

	// Чат виден обеим сторонам
	for _, token := range []string{tokenA, tokenB} {
		status, body = request(t, app, http.MethodGet, "/api/chats", token, nil)
		if status != http.StatusOK {
			t.Fatalf("список чатов: статус %d", status)
		}
		chats, _ := body["chats"].([]any)
		found := false
		for _, c := range chats {
			chat, _ := c.(map[string]any)
			if id, _ := chat["id"].(string); id == chatID {
				found = true
			}
		}
		if !found {
			t.Fatalf("чат %s не найден в списке", chatID)
		}
	}

	// Переписка
	status, body = request(t, app, http.MethodPost, "/api/chats/"+chatID+"/messages", tokenA, map[string]string{
		"text": "Привет",
	})
	if status != http.StatusCreated {
		t.Fatalf("сообщение А: статус %d, тело %v", status, body)
	}

	status, body = request(t, app, http.MethodGet, "/api/chats/"+chatID+"/messages", tokenB, nil)
	if status != http.StatusOK {
		t.Fatalf("чтение сообщений Б: статус %d", status)
	}
	messages, _ := body["messages"].([]any)
	if len(messages) != 1 {
		t.Fatalf("Б должен видеть одно сообщение, увидел %d", len(messages))
	}

	status, _ = request(t, app, http.MethodPost, "/api/chats/"+chatID+"/messages", tokenB, map[string]string{
		"text": "Здравствуйте, ещё актуально?",
	})
	if status != http.StatusCreated {
		t.Fatalf("ответ Б: статус %d", status)
	}

	// А подтверждает: accepted -> waiting
	status, body = request(t, app, http.MethodPatch, "/api/interests/"+interestA, tokenA, nil)
	if status != http.StatusOK {
		t.Fatalf("подтверждение А: статус %d, тело %v", status, body)
	}
	if got, _ := body["status"].(string); got != "waiting" {
		t.Fatalf("статус после подтверждения А = %q, ожидалось waiting", got)
	}

	// Б подтверждает: обе стороны realized
	status, body = request(t, app, http.MethodPatch, "/api/interests/"+interestB, tokenB, nil)
	if status != http.StatusOK {
		t.Fatalf("подтверждение Б: статус %d, тело %v", status, body)
	}
	if got, _ := body["status"].(string); got != "realized" {
		t.Fatalf("статус после подтверждения Б = %q, ожидалось realized", got)
	}

	// Обе стороны видят завершённый обмен в деталях чата
	for _, token := range []string{tokenA, tokenB} {
		status, body = request(t, app, http.MethodGet, "/api/chats/"+chatID, token, nil)
		if status != http.StatusOK {
			t.Fatalf("детали чата: статус %d", status)
		}
		chat, _ := body["chat"].(map[string]any)
		if got, _ := chat["my_status"].(string); got != "realized" {
			t.Fatalf("my_status = %q, ожидалось realized", got)
		}
		if got, _ := chat["other_status"].(string); got != "realized" {
			t.Fatalf("other_status = %q, ожидалось realized", got)
		}
	}
}

func TestRepeatedInterestConflicts(t *testing.T) {
	app := setupApp(t)

	tokenA, _ := registerUser(t, app, "daria")
	tokenB, _ := registerUser(t, app, "egor")

	offerA := createOffer(t, app, tokenA, "Самокат")
	expressInterest(t, app, tokenB, offerA)

	// Повторный интерес к тому же объявлению упирается в 409
	status, body := request(t, app, http.MethodPost, "/api/interests", tokenB, map[string]string{
		"offer_id": offerA,
	})
	if status != http.StatusConflict {
		t.Fatalf("повторный интерес: статус %d, ожидалось 409", status)
	}
	errBody, _ := body["error"].(map[string]any)
	if code, _ := errBody["code"].(string); code != "CONFLICT" {
		t.Fatalf("код ошибки = %q, ожидалось CONFLICT", code)
	}
}

func TestOfferDeletionLocksChat(t *testing.T) {
	app := setupApp(t)

	tokenA, _ := registerUser(t, app, "vera")
	tokenB, _ := registerUser(t, app, "gleb")

	offerA := createOffer(t, app, tokenA, "Книги")
	offerB := createOffer(t, app, tokenB, "Настольная игра")

	expressInterest(t, app, tokenB, offerA)
	_, chatID := expressInterest(t, app, tokenA, offerB)
	if chatID == "" {
		t.Fatal("взаимный интерес должен создать чат")
	}

	// До удаления переписка работает
	status, _ := request(t, app, http.MethodPost, "/api/chats/"+chatID+"/messages", tokenB, map[string]string{
		"text": "Обсудим?",
	})
	if status != http.StatusCreated {
		t.Fatalf("сообщение до удаления: статус %d", status)
	}

	// А снимает своё объявление
	status, _ = request(t, app, http.MethodDelete, "/api/offers/"+offerA, tokenA, nil)
	if status != http.StatusNoContent {
		t.Fatalf("удаление объявления: статус %d", status)
	}

	// Чат заблокирован
	status, body := request(t, app, http.MethodGet, "/api/chats/"+chatID, tokenB, nil)
	if status != http.StatusOK {
		t.Fatalf("детали чата: статус %d", status)
	}
	chat, _ := body["chat"].(map[string]any)
	if locked, _ := chat["is_locked"].(bool); !locked {
		t.Fatal("после удаления объявления чат должен быть заблокирован")
	}

	// Отправка в заблокированный чат возвращает 409 CHAT_LOCKED
	status, body = request(t, app, http.MethodPost, "/api/chats/"+chatID+"/messages", tokenB, map[string]string{
		"text": "Ау?",
	})
	if status != http.StatusConflict {
		t.Fatalf("сообщение в заблокированный чат: статус %d, ожидалось 409", status)
	}
	errBody, _ := body["error"].(map[string]any)
	if code, _ := errBody["code"].(string); code != "CHAT_LOCKED" {
		t.Fatalf("код ошибки = %q, ожидалось CHAT_LOCKED", code)
	}
}
