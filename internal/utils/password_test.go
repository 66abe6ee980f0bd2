package utils

import "testing"

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("correct-horse-battery")
	if err != nil {
		t.Fatalf("ошибка хеширования: %v", err)
	}
	if hash == "correct-horse-battery" {
		t.Fatal("хеш не должен совпадать с паролем")
	}

	if !CheckPassword("correct-horse-battery", hash) {
		t.Error("правильный пароль должен проходить проверку")
	}
	if CheckPassword("wrong-password", hash) {
		t.Error("неправильный пароль не должен проходить проверку")
	}
}

func TestHashPassword_DifferentSalts(t *testing.T) {
	h1, err := HashPassword("пароль123")
	if err != nil {
		t.Fatal(err)
	}
	h2, err := HashPassword("пароль123")
	if err != nil {
		t.Fatal(err)
	}
	if h1 == h2 {
		t.Error("два хеша одного пароля должны различаться из-за соли")
	}
}
