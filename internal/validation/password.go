package validation

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const maxStrength = 5

var strengthLabels = [...]string{
	"Muito Fraca",
	"Fraca",
	"Média",
	"Forte",
	"Muito Forte",
	"Excelente",
}

type Strength struct {
	Level   int      `json:"level"`
	Label   string   `json:"label"`
	Missing []string `json:"missing,omitempty"`
}

// Summary renders the meter text shown under a password field.
func (s Strength) Summary() string {
	switch {
	case s.Level == 0:
		return "Digite uma senha"
	case s.Level < 3:
		return fmt.Sprintf("%s. Falta: %s", s.Label, strings.Join(s.Missing, ", "))
	default:
		return s.Label
	}
}

// PasswordStrength scores a password from 0 to 5.
func PasswordStrength(password string) Strength {
	if password == "" {
		return Strength{Level: 0, Label: strengthLabels[0]}
	}

	length := utf8.RuneCountInString(password)
	var lower, upper, digit, symbol bool
	for _, r := range password {
		switch {
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= '0' && r <= '9':
			digit = true
		default:
			symbol = true
		}
	}

	checks := []struct {
		ok      bool
		missing string
	}{
		{length >= 8, "Mínimo 8 caracteres"},
		{lower, "Letras minúsculas"},
		{upper, "Letras maiúsculas"},
		{digit, "Números"},
		{symbol, "Símbolos especiais"},
	}

	level := 0
	var missing []string
	for _, check := range checks {
		if check.ok {
			level++
			continue
		}
		missing = append(missing, check.missing)
	}
	if length >= 12 {
		level++
	}
	if length >= 16 {
		level++
	}
	level = min(level, maxStrength)

	strength := Strength{Level: level, Label: strengthLabels[level]}
	if level < 3 {
		strength.Missing = missing
	}
	return strength
}
