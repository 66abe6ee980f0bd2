package models

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestInterestJSON_ChatIDOmittedUntilMatch(t *testing.T) {
	interest := Interest{
		ID:         uuid.New(),
		OfferID:    uuid.New(),
		ProposerID: uuid.New(),
		Status:     InterestStatusProposed,
	}

	data, err := json.Marshal(interest)
	if err != nil {
		t.Fatalf("ошибка сериализации: %v", err)
	}
	if strings.Contains(string(data), "chat_id") {
		t.Errorf("до взаимного интереса chat_id не должен попадать в ответ: %s", data)
	}

	chatID := uuid.New()
	interest.ChatID = &chatID
	data, err = json.Marshal(interest)
	if err != nil {
		t.Fatalf("ошибка сериализации: %v", err)
	}
	if !strings.Contains(string(data), chatID.String()) {
		t.Errorf("после создания чата chat_id должен попадать в ответ: %s", data)
	}
}

func TestCanCancel(t *testing.T) {
	tests := []struct {
		status string
		want   bool
	}{
		{InterestStatusProposed, true},
		{InterestStatusAccepted, false},
		{InterestStatusWaiting, false},
		{InterestStatusRealized, false},
		{InterestStatusCancelled, false},
		{"", false},
	}
	for _, tt := range tests {
		if got := CanCancel(tt.status); got != tt.want {
			t.Errorf("CanCancel(%q) = %v, ожидалось %v", tt.status, got, tt.want)
		}
	}
}

func TestCanRealize(t *testing.T) {
	tests := []struct {
		status string
		want   bool
	}{
		{InterestStatusProposed, false},
		{InterestStatusAccepted, true},
		{InterestStatusWaiting, false},
		{InterestStatusRealized, false},
		{InterestStatusCancelled, false},
	}
	for _, tt := range tests {
		if got := CanRealize(tt.status); got != tt.want {
			t.Errorf("CanRealize(%q) = %v, ожидалось %v", tt.status, got, tt.want)
		}
	}
}

func TestCanUnrealize(t *testing.T) {
	tests := []struct {
		status string
		want   bool
	}{
		{InterestStatusProposed, false},
		{InterestStatusAccepted, false},
		{InterestStatusWaiting, true},
		{InterestStatusRealized, false},
		{InterestStatusCancelled, false},
	}
	for _, tt := range tests {
		if got := CanUnrealize(tt.status); got != tt.want {
			t.Errorf("CanUnrealize(%q) = %v, ожидалось %v", tt.status, got, tt.want)
		}
	}
}
