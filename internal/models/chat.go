package models

import (
	"time"

	"github.com/google/uuid"
)

// Статусы чата
const (
	ChatStatusActive   = "active"
	ChatStatusArchived = "archived"
)

// Ограничения на текст сообщения
const MaxMessageLength = 2000

// Chat представляет чат между двумя участниками обмена.
// Инвариант: чат всегда ссылается ровно на одну пару встречных интересов,
// описывающую один обмен между двумя участниками.
type Chat struct {
	ID              uuid.UUID  `json:"id"`
	InterestAID     uuid.UUID  `json:"interest_a_id"`
	InterestBID     uuid.UUID  `json:"interest_b_id"`
	UserAID         uuid.UUID  `json:"user_a_id"`
	UserBID         uuid.UUID  `json:"user_b_id"`
	Status          string     `json:"status"`
	IsLocked        bool       `json:"is_locked"` // true, если одно из объявлений удалено
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
	LastMessageText string     `json:"last_message_text,omitempty"`
	LastMessageTime *time.Time `json:"last_message_time,omitempty"`

	// Дополнительные поля для API
	OtherUser   *User  `json:"other_user,omitempty"`
	MyStatus    string `json:"my_status,omitempty"`    // статус моего интереса
	OtherStatus string `json:"other_status,omitempty"` // статус встречного интереса
	UnreadCount int    `json:"unread_count,omitempty"`
}

// Message представляет сообщение в чате
type Message struct {
	ID        uuid.UUID `json:"id"`
	ChatID    uuid.UUID `json:"chat_id"`
	SenderID  uuid.UUID `json:"sender_id"`
	Text      string    `json:"text"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`

	// Дополнительные поля для API
	Sender *User `json:"sender,omitempty"`
}
