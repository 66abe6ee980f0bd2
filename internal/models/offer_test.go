package models

import "testing"

func TestIsValidCity(t *testing.T) {
	for _, city := range Cities {
		if !IsValidCity(city) {
			t.Errorf("город %q из справочника должен быть валидным", city)
		}
	}

	invalid := []string{"", "Лондон", "москва", "Moscow", " Москва"}
	for _, city := range invalid {
		if IsValidCity(city) {
			t.Errorf("город %q не должен проходить проверку", city)
		}
	}
}

func TestCitiesCount(t *testing.T) {
	if len(Cities) != 16 {
		t.Errorf("справочник городов содержит %d записей, ожидалось 16", len(Cities))
	}
}
