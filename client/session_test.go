package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSession_StatusTransitions(t *testing.T) {
	s := NewSession(NewMemoryStorage())
	assert.Equal(t, SessionLoading, s.Status(), "до восстановления статус loading")

	s.restoreFromStorage()
	assert.Equal(t, SessionUnauthenticated, s.Status())

	s.Establish("access", "refresh", &User{Name: "Анна"})
	assert.Equal(t, SessionAuthenticated, s.Status())

	s.Reset()
	assert.Equal(t, SessionUnauthenticated, s.Status())
	assert.Empty(t, s.AccessToken())
}

func TestSession_JustLoggedInWindow(t *testing.T) {
	s := NewSession(NewMemoryStorage())
	now := time.Now()
	s.now = func() time.Time { return now }

	assert.False(t, s.JustLoggedIn())

	s.Establish("access", "refresh", &User{Name: "Анна"})
	assert.True(t, s.JustLoggedIn())

	now = now.Add(justLoggedInWindow + time.Second)
	assert.False(t, s.JustLoggedIn(), "окно «только что вошёл» истекло")
}

func TestFileStorage_Roundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	storage := NewFileStorage(path)

	loaded, err := storage.Load()
	require.NoError(t, err)
	assert.Nil(t, loaded, "отсутствие файла не ошибка")

	ps := &PersistedSession{
		AccessToken:  "access",
		RefreshToken: "refresh",
		User:         &User{Name: "Анна", City: "Москва"},
	}
	require.NoError(t, storage.Save(ps))

	loaded, err = storage.Load()
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, "access", loaded.AccessToken)
	assert.Equal(t, "Анна", loaded.User.Name)

	require.NoError(t, storage.Clear())
	loaded, err = storage.Load()
	require.NoError(t, err)
	assert.Nil(t, loaded)

	require.NoError(t, storage.Clear(), "повторная очистка не ошибка")
}

func TestRestore_ValidSession(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"user":{"name":"Анна","city":"Москва","is_verified":true}}`))
	}))
	defer server.Close()

	storage := NewMemoryStorage()
	require.NoError(t, storage.Save(&PersistedSession{
		AccessToken:  "stored-access",
		RefreshToken: "stored-refresh",
		User:         &User{Name: "Анна"},
	}))

	session := NewSession(storage)
	c := New(server.URL, session)

	require.NoError(t, c.Restore(context.Background()))
	assert.Equal(t, SessionAuthenticated, session.Status())
	require.NotNil(t, session.User())
	assert.Equal(t, "Москва", session.User().City)
}

func TestRestore_ExpiredTokenResetsSession(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"code":"UNAUTHORIZED","message":"Токен истёк"}}`))
	}))
	defer server.Close()

	storage := NewMemoryStorage()
	require.NoError(t, storage.Save(&PersistedSession{AccessToken: "expired"}))

	session := NewSession(storage)
	c := New(server.URL, session)

	require.NoError(t, c.Restore(context.Background()))
	assert.Equal(t, SessionUnauthenticated, session.Status())

	stored, err := storage.Load()
	require.NoError(t, err)
	assert.Nil(t, stored, "сброшенная сессия должна исчезнуть из хранилища")
}

func TestRestore_NetworkErrorKeepsCachedUser(t *testing.T) {
	storage := NewMemoryStorage()
	require.NoError(t, storage.Save(&PersistedSession{
		AccessToken: "stored-access",
		User:        &User{Name: "Анна"},
	}))

	session := NewSession(storage)
	c := New("http://127.0.0.1:1", session)

	err := c.Restore(context.Background())
	require.Error(t, err)
	assert.Equal(t, SessionAuthenticated, session.Status(),
		"сбой сети не должен разлогинивать")
	require.NotNil(t, session.User())
}

func TestRestore_NoStoredSession(t *testing.T) {
	session := NewSession(NewMemoryStorage())
	c := New("http://127.0.0.1:1", session)

	require.NoError(t, c.Restore(context.Background()))
	assert.Equal(t, SessionUnauthenticated, session.Status())
}

func TestLogout_ClearsSessionEvenOnExpiredToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"code":"UNAUTHORIZED","message":"Токен истёк"}}`))
	}))
	defer server.Close()

	session := NewSession(NewMemoryStorage())
	session.Establish("expired", "refresh", &User{Name: "Анна"})
	c := New(server.URL, session)

	require.NoError(t, c.Logout(context.Background()))
	assert.Equal(t, SessionUnauthenticated, session.Status())
}
