package utils

import (
	"testing"

	"github.com/google/uuid"
)

func TestGenerateAndExtract(t *testing.T) {
	svc := NewJWTService("test-secret")
	userID := uuid.New()

	pair, jti, err := svc.GenerateTokenPair(userID)
	if err != nil {
		t.Fatalf("ошибка генерации пары токенов: %v", err)
	}
	if jti == "" {
		t.Fatal("jti refresh-токена не должен быть пустым")
	}

	gotID, err := svc.ExtractUserID(pair.AccessToken)
	if err != nil {
		t.Fatalf("ошибка извлечения userID: %v", err)
	}
	if gotID != userID.String() {
		t.Errorf("userID = %q, ожидалось %q", gotID, userID)
	}

	refreshUserID, refreshJTI, err := svc.ExtractRefreshClaims(pair.RefreshToken)
	if err != nil {
		t.Fatalf("ошибка разбора refresh токена: %v", err)
	}
	if refreshUserID != userID.String() {
		t.Errorf("refresh userID = %q, ожидалось %q", refreshUserID, userID)
	}
	if refreshJTI != jti {
		t.Errorf("jti из токена = %q, ожидалось %q", refreshJTI, jti)
	}
}

func TestTokenTypeMismatch(t *testing.T) {
	svc := NewJWTService("test-secret")
	pair, _, err := svc.GenerateTokenPair(uuid.New())
	if err != nil {
		t.Fatal(err)
	}

	// Refresh токен не годится как access и наоборот
	if _, err := svc.ExtractUserID(pair.RefreshToken); err == nil {
		t.Error("refresh токен не должен приниматься как access")
	}
	if _, _, err := svc.ExtractRefreshClaims(pair.AccessToken); err == nil {
		t.Error("access токен не должен приниматься как refresh")
	}
}

func TestWrongSecretRejected(t *testing.T) {
	pair, _, err := NewJWTService("secret-a").GenerateTokenPair(uuid.New())
	if err != nil {
		t.Fatal(err)
	}

	if _, err := NewJWTService("secret-b").ExtractUserID(pair.AccessToken); err == nil {
		t.Error("токен с чужой подписью должен отклоняться")
	}
}

func TestGarbageTokenRejected(t *testing.T) {
	svc := NewJWTService("test-secret")
	if _, err := svc.ExtractUserID("not-a-jwt"); err == nil {
		t.Error("мусорная строка должна отклоняться")
	}
}
