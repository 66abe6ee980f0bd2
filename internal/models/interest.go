package models

import (
	"time"

	"github.com/google/uuid"
)

// Статусы интереса. Жизненный цикл: proposed → accepted (взаимный интерес,
// создаётся чат) → waiting (участник подтвердил обмен) → realized (подтвердили
// оба). Отмена меняет статус на cancelled, записи не удаляются.
const (
	InterestStatusProposed  = "proposed"
	InterestStatusAccepted  = "accepted"
	InterestStatusWaiting   = "waiting"
	InterestStatusRealized  = "realized"
	InterestStatusCancelled = "cancelled"
)

// Interest представляет интерес пользователя к чужому объявлению
type Interest struct {
	ID         uuid.UUID `json:"id"`
	OfferID    uuid.UUID `json:"offer_id"`
	ProposerID uuid.UUID `json:"proposer_id"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	// Дополнительные поля для API. ChatID nil, пока интерес не взаимный
	Offer       *Offer     `json:"offer,omitempty"`
	ChatID      *uuid.UUID `json:"chat_id,omitempty"`
	OtherStatus string     `json:"other_status,omitempty"` // статус встречного интереса
}

// CanCancel сообщает, допустима ли отмена интереса в текущем статусе
func CanCancel(status string) bool {
	return status == InterestStatusProposed
}

// CanRealize сообщает, допустим ли переход accepted → waiting
func CanRealize(status string) bool {
	return status == InterestStatusAccepted
}

// CanUnrealize сообщает, допустим ли переход waiting → accepted
func CanUnrealize(status string) bool {
	return status == InterestStatusWaiting
}
