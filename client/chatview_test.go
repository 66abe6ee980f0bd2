package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVisibleMessages_FiltersWhitespace(t *testing.T) {
	me := uuid.New()
	other := uuid.New()
	chatID := uuid.New()

	v := NewChatView(nil, nil)
	v.messages = []Message{
		{ID: uuid.New(), ChatID: chatID, SenderID: me, Text: "Привет"},
		{ID: uuid.New(), ChatID: chatID, SenderID: me, Text: "   "},
		{ID: uuid.New(), ChatID: chatID, SenderID: other, Text: "\n\t "},
		{ID: uuid.New(), ChatID: chatID, SenderID: other, Text: "Здравствуйте"},
		{ID: uuid.New(), ChatID: chatID, SenderID: me, Text: ""},
	}

	visible := v.VisibleMessages()
	require.Len(t, visible, 2)
	assert.Equal(t, "Привет", visible[0].Text)
	assert.Equal(t, "Здравствуйте", visible[1].Text)
}

func TestValidateMessageText(t *testing.T) {
	assert.NoError(t, validateMessageText("привет"))

	err := validateMessageText("   \n\t")
	require.Error(t, err)
	apiErr := asAPIError(err)
	assert.Equal(t, ErrValidation, apiErr.Kind)
	assert.Equal(t, "text", apiErr.Field)

	long := strings.Repeat("б", MaxMessageLength+1)
	err = validateMessageText(long)
	require.Error(t, err)
	assert.Equal(t, ErrValidation, asAPIError(err).Kind)

	// Ровно на границе длина допустима
	assert.NoError(t, validateMessageText(strings.Repeat("б", MaxMessageLength)))
}

func TestSend_KeepsDraftOnFailure(t *testing.T) {
	chatID := uuid.New()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte(`{"error":{"code":"CHAT_LOCKED","message":"Чат заблокирован"}}`))
	}))
	defer server.Close()

	v := NewChatView(newTestClient(server.URL), nil)
	v.SetDraft(chatID, "Сообщение в заблокированный чат")

	err := v.Send(context.Background(), chatID)
	require.Error(t, err)
	assert.Equal(t, ErrChatLocked, asAPIError(err).Kind)
	assert.Equal(t, "Сообщение в заблокированный чат", v.Draft(chatID),
		"черновик должен пережить неудачную отправку")
}

func TestSend_ClearsDraftAndNotifies(t *testing.T) {
	chatID := uuid.New()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload struct {
			Text string `json:"text"`
		}
		json.NewDecoder(r.Body).Decode(&payload)
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"message": Message{ID: uuid.New(), ChatID: chatID, Text: payload.Text},
		})
	}))
	defer server.Close()

	scrolled := false
	v := NewChatView(newTestClient(server.URL), func() { scrolled = true })
	v.SetDraft(chatID, "Привет!")

	require.NoError(t, v.Send(context.Background(), chatID))
	assert.Empty(t, v.Draft(chatID))
	assert.True(t, scrolled)
}

func TestSend_EmptyDraftRejectedLocally(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer server.Close()

	chatID := uuid.New()
	v := NewChatView(newTestClient(server.URL), nil)
	v.SetDraft(chatID, "   ")

	err := v.Send(context.Background(), chatID)
	require.Error(t, err)
	assert.Equal(t, ErrValidation, asAPIError(err).Kind)
	assert.Equal(t, int32(0), hits.Load())
}

func TestLoadChats_StaleResponseDiscarded(t *testing.T) {
	firstEntered := make(chan struct{})
	releaseFirst := make(chan struct{})
	var calls atomic.Int32

	freshID := uuid.New()
	staleID := uuid.New()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := calls.Add(1)
		id := freshID
		if n == 1 {
			close(firstEntered)
			<-releaseFirst
			id = staleID
		}
		fmt.Fprintf(w, `{"chats":[{"id":"%s","status":"active"}],"count":1}`, id)
	}))
	defer server.Close()

	v := NewChatView(newTestClient(server.URL), nil)

	done := make(chan struct{})
	go func() {
		defer close(done)
		v.LoadChats(context.Background())
	}()

	<-firstEntered
	require.NoError(t, v.LoadChats(context.Background()))
	close(releaseFirst)
	<-done

	chats := v.Chats()
	require.Len(t, chats, 1)
	assert.Equal(t, freshID, chats[0].ID, "ответ устаревшего запроса не должен затирать свежие данные")
}

func TestSelect_LoadsDetailAndMessages(t *testing.T) {
	chatID := uuid.New()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/messages"):
			json.NewEncoder(w).Encode(map[string]any{
				"messages": []Message{{ID: uuid.New(), ChatID: chatID, Text: "Привет"}},
				"has_more": false,
			})
		default:
			json.NewEncoder(w).Encode(map[string]any{
				"chat": Chat{ID: chatID, Status: "active", MyStatus: InterestAccepted, OtherStatus: InterestAccepted},
			})
		}
	}))
	defer server.Close()

	v := NewChatView(newTestClient(server.URL), nil)
	v.Select(context.Background(), chatID)

	require.NotNil(t, v.Selected())
	assert.Equal(t, chatID, v.Selected().ID)
	assert.Len(t, v.VisibleMessages(), 1)

	state := v.RealizationState()
	require.NotNil(t, state)
	assert.True(t, state.CanRealize)
}

// chatHistoryServer отдаёт историю чата страницами от новых к старым,
// как настоящий сервер, с пагинацией по параметру before
func chatHistoryServer(t *testing.T, chatID uuid.UUID, history []Message, pageSize int, requests *atomic.Int32) *httptest.Server {
	t.Helper()
	byID := make(map[uuid.UUID]int, len(history))
	for i, m := range history {
		byID[m.ID] = i
	}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/messages") {
			json.NewEncoder(w).Encode(map[string]any{
				"chat": Chat{ID: chatID, Status: "active"},
			})
			return
		}
		requests.Add(1)

		end := len(history)
		if before := r.URL.Query().Get("before"); before != "" {
			idx, ok := byID[uuid.MustParse(before)]
			if !ok {
				t.Errorf("запрошен before с неизвестным id %s", before)
			}
			end = idx
		}

		var page []Message
		for i := end - 1; i >= 0 && len(page) < pageSize; i-- {
			page = append(page, history[i])
		}
		json.NewEncoder(w).Encode(map[string]any{
			"messages": page,
			"has_more": end-len(page) > 0,
		})
	}))
}

func TestLoadOlder_WalksHistoryWithoutDuplicates(t *testing.T) {
	chatID := uuid.New()
	history := make([]Message, 6)
	for i := range history {
		history[i] = Message{
			ID:     uuid.New(),
			ChatID: chatID,
			Text:   fmt.Sprintf("сообщение %d", i),
		}
	}

	var requests atomic.Int32
	server := chatHistoryServer(t, chatID, history, 3, &requests)
	defer server.Close()

	v := NewChatView(newTestClient(server.URL), nil)
	v.Select(context.Background(), chatID)

	// Первая страница: три последних сообщения в хронологическом порядке
	got := v.VisibleMessages()
	require.Len(t, got, 3)
	assert.Equal(t, "сообщение 3", got[0].Text)
	assert.Equal(t, "сообщение 5", got[2].Text)

	require.NoError(t, v.LoadOlder(context.Background()))

	got = v.VisibleMessages()
	require.Len(t, got, 6, "после подгрузки лента содержит всю историю")
	seen := make(map[uuid.UUID]int)
	for i, m := range got {
		seen[m.ID]++
		assert.Equal(t, fmt.Sprintf("сообщение %d", i), m.Text,
			"лента должна идти от старых к новым")
	}
	for _, m := range history {
		assert.Equal(t, 1, seen[m.ID], "сообщение %q продублировано или потеряно", m.Text)
	}

	// История исчерпана, повторный вызов не ходит в сеть
	before := requests.Load()
	require.NoError(t, v.LoadOlder(context.Background()))
	assert.Equal(t, before, requests.Load())
}

func TestSelect_DetailErrorDoesNotBlockMessages(t *testing.T) {
	chatID := uuid.New()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/messages") {
			json.NewEncoder(w).Encode(map[string]any{
				"messages": []Message{{ID: uuid.New(), ChatID: chatID, Text: "Сообщение"}},
				"has_more": false,
			})
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":{"code":"INTERNAL_ERROR","message":"Ошибка базы данных"}}`))
	}))
	defer server.Close()

	v := NewChatView(newTestClient(server.URL), nil)
	v.Select(context.Background(), chatID)

	_, detailErr, messagesErr := v.Errors()
	require.NotNil(t, detailErr)
	assert.Equal(t, ErrInternal, detailErr.Kind)
	assert.Nil(t, messagesErr)
	assert.Len(t, v.VisibleMessages(), 1)
}
