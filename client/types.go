package client

import (
	"time"

	"github.com/google/uuid"
)

// Статусы интереса, как их отдаёт сервер
const (
	InterestProposed  = "proposed"
	InterestAccepted  = "accepted"
	InterestWaiting   = "waiting"
	InterestRealized  = "realized"
	InterestCancelled = "cancelled"
)

type User struct {
	ID         uuid.UUID `json:"id"`
	Email      string    `json:"email,omitempty"`
	Name       string    `json:"name"`
	City       string    `json:"city,omitempty"`
	AvatarURL  string    `json:"avatar_url,omitempty"`
	IsVerified bool      `json:"is_verified,omitempty"`
	CreatedAt  time.Time `json:"created_at,omitempty"`
}

type OfferImage struct {
	ID       uuid.UUID `json:"id"`
	URL      string    `json:"url"`
	PublicID string    `json:"public_id,omitempty"`
	Position int       `json:"position"`
}

type Offer struct {
	ID          uuid.UUID    `json:"id"`
	UserID      uuid.UUID    `json:"user_id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	City        string       `json:"city"`
	Status      string       `json:"status"`
	Images      []OfferImage `json:"images,omitempty"`
	User        *User        `json:"user,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

type Interest struct {
	ID          uuid.UUID  `json:"id"`
	OfferID     uuid.UUID  `json:"offer_id"`
	ProposerID  uuid.UUID  `json:"proposer_id"`
	Status      string     `json:"status"`
	Offer       *Offer     `json:"offer,omitempty"`
	ChatID      *uuid.UUID `json:"chat_id,omitempty"`
	OtherStatus string     `json:"other_status,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

type Chat struct {
	ID              uuid.UUID  `json:"id"`
	Status          string     `json:"status"`
	IsLocked        bool       `json:"is_locked"`
	LastMessageText string     `json:"last_message_text,omitempty"`
	LastMessageTime *time.Time `json:"last_message_time,omitempty"`
	OtherUser       *User      `json:"other_user,omitempty"`
	MyStatus        string     `json:"my_status,omitempty"`
	OtherStatus     string     `json:"other_status,omitempty"`
	UnreadCount     int        `json:"unread_count"`
	CreatedAt       time.Time  `json:"created_at"`
}

type Message struct {
	ID        uuid.UUID `json:"id"`
	ChatID    uuid.UUID `json:"chat_id"`
	SenderID  uuid.UUID `json:"sender_id"`
	Text      string    `json:"text"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}

type Favorite struct {
	ID        uuid.UUID `json:"id"`
	OfferID   uuid.UUID `json:"offer_id"`
	Offer     *Offer    `json:"offer,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
