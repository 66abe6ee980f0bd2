package client

import (
	"encoding/json"
	"errors"
	"os"
	"sync"
	"time"
)

// SessionStatus описывает состояние сессии с точки зрения интерфейса
type SessionStatus string

const (
	SessionLoading         SessionStatus = "loading"
	SessionAuthenticated   SessionStatus = "authenticated"
	SessionUnauthenticated SessionStatus = "unauthenticated"
)

// Окно, в течение которого сессия считается «только что созданной».
// Нужно, чтобы после входа не показывать приветственный баннер повторно.
const justLoggedInWindow = 5 * time.Second

// PersistedSession содержит то, что переживает перезапуск приложения
type PersistedSession struct {
	AccessToken    string    `json:"access_token"`
	RefreshToken   string    `json:"refresh_token"`
	User           *User     `json:"user,omitempty"`
	JustLoggedInAt time.Time `json:"just_logged_in_at,omitempty"`
}

// Storage описывает хранилище сессии между запусками
type Storage interface {
	Load() (*PersistedSession, error)
	Save(*PersistedSession) error
	Clear() error
}

// FileStorage хранит сессию в JSON-файле.
// Облачных хранилищ у нас нет, файла с правами 0600 достаточно.
type FileStorage struct {
	Path string
}

func NewFileStorage(path string) *FileStorage {
	return &FileStorage{Path: path}
}

func (s *FileStorage) Load() (*PersistedSession, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var ps PersistedSession
	if err := json.Unmarshal(data, &ps); err != nil {
		// Битый файл сессии равносилен её отсутствию
		return nil, nil
	}
	return &ps, nil
}

func (s *FileStorage) Save(ps *PersistedSession) error {
	data, err := json.Marshal(ps)
	if err != nil {
		return err
	}
	return os.WriteFile(s.Path, data, 0600)
}

func (s *FileStorage) Clear() error {
	err := os.Remove(s.Path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// MemoryStorage хранит сессию в памяти, в основном для тестов
type MemoryStorage struct {
	mu sync.Mutex
	ps *PersistedSession
}

func NewMemoryStorage() *MemoryStorage { return &MemoryStorage{} }

func (s *MemoryStorage) Load() (*PersistedSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ps == nil {
		return nil, nil
	}
	cp := *s.ps
	return &cp, nil
}

func (s *MemoryStorage) Save(ps *PersistedSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *ps
	s.ps = &cp
	return nil
}

func (s *MemoryStorage) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ps = nil
	return nil
}

// Session держит текущие токены и пользователя.
// Все методы потокобезопасны.
type Session struct {
	mu             sync.RWMutex
	storage        Storage
	accessToken    string
	refreshToken   string
	user           *User
	loading        bool
	justLoggedInAt time.Time
	now            func() time.Time
}

func NewSession(storage Storage) *Session {
	return &Session{
		storage: storage,
		loading: true,
		now:     time.Now,
	}
}

// Status возвращает loading до завершения восстановления сессии,
// чтобы интерфейс не мигал экраном входа при старте
func (s *Session) Status() SessionStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.loading {
		return SessionLoading
	}
	if s.accessToken != "" && s.user != nil {
		return SessionAuthenticated
	}
	return SessionUnauthenticated
}

func (s *Session) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessToken
}

func (s *Session) RefreshToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refreshToken
}

func (s *Session) User() *User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

// JustLoggedIn сообщает, что вход произошёл только что
func (s *Session) JustLoggedIn() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.justLoggedInAt.IsZero() {
		return false
	}
	return s.now().Sub(s.justLoggedInAt) < justLoggedInWindow
}

// Establish фиксирует новую сессию после входа или регистрации
func (s *Session) Establish(accessToken, refreshToken string, user *User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accessToken = accessToken
	s.refreshToken = refreshToken
	s.user = user
	s.loading = false
	s.justLoggedInAt = s.now()
	s.persistLocked()
}

// UpdateTokens заменяет пару токенов после ротации refresh-токена
func (s *Session) UpdateTokens(accessToken, refreshToken string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accessToken = accessToken
	s.refreshToken = refreshToken
	s.persistLocked()
}

// UpdateUser обновляет кэшированного пользователя
func (s *Session) UpdateUser(user *User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = user
	s.loading = false
	s.persistLocked()
}

// Reset сбрасывает сессию и чистит хранилище
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accessToken = ""
	s.refreshToken = ""
	s.user = nil
	s.loading = false
	s.justLoggedInAt = time.Time{}
	if s.storage != nil {
		if err := s.storage.Clear(); err != nil {
			// Потеря файла сессии не критична, токены уже сброшены в памяти
			_ = err
		}
	}
}

// restoreFromStorage поднимает сохранённую сессию в память.
// Возвращает false, если сохранённой сессии нет.
func (s *Session) restoreFromStorage() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.storage == nil {
		s.loading = false
		return false
	}
	ps, err := s.storage.Load()
	if err != nil || ps == nil || ps.AccessToken == "" {
		s.loading = false
		return false
	}
	s.accessToken = ps.AccessToken
	s.refreshToken = ps.RefreshToken
	s.user = ps.User
	return true
}

func (s *Session) finishLoading() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
}

func (s *Session) persistLocked() {
	if s.storage == nil {
		return
	}
	ps := &PersistedSession{
		AccessToken:    s.accessToken,
		RefreshToken:   s.refreshToken,
		User:           s.user,
		JustLoggedInAt: s.justLoggedInAt,
	}
	if err := s.storage.Save(ps); err != nil {
		// Сессия останется в памяти до перезапуска
		_ = err
	}
}
