package validation

import (
	"errors"
	"fmt"
	"net/mail"
	"regexp"
	"strings"
)

var nonDigits = regexp.MustCompile(`\D`)

var (
	ErrFormat   = errors.New("format error")
	ErrChecksum = errors.New("checksum error")
)

type failureKind uint8

const (
	failureNone failureKind = iota
	failureFormat
	failureChecksum
)

// Result is the outcome of a single validation call. It is built fresh per
// call and never mutated afterwards.
type Result struct {
	IsValid bool   `json:"is_valid"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`

	failure failureKind
}

func valid(message string, data any) Result {
	return Result{IsValid: true, Message: message, Data: data}
}

func formatFailure(message string) Result {
	return Result{Message: message, failure: failureFormat}
}

func checksumFailure(message string) Result {
	return Result{Message: message, failure: failureChecksum}
}

// Err returns nil for a valid result, otherwise an error wrapping ErrFormat
// or ErrChecksum.
func (r Result) Err() error {
	switch {
	case r.IsValid:
		return nil
	case r.failure == failureChecksum:
		return fmt.Errorf("%w: %s", ErrChecksum, r.Message)
	default:
		return fmt.Errorf("%w: %s", ErrFormat, r.Message)
	}
}

// NormalizeDigits strips every non-digit character. It is idempotent.
func NormalizeDigits(raw string) string {
	return nonDigits.ReplaceAllString(raw, "")
}

func NormalizeCPF(raw string) string {
	return NormalizeDigits(raw)
}

func NormalizeCNPJ(raw string) string {
	return NormalizeDigits(strings.TrimSpace(raw))
}

func ValidateEmail(email string) bool {
	email = strings.TrimSpace(email)
	if email == "" {
		return false
	}
	_, err := mail.ParseAddress(email)
	return err == nil
}

func EmailResult(email string) Result {
	if !ValidateEmail(email) {
		return formatFailure("Por favor, insira um e-mail válido")
	}
	return valid("E-mail válido", nil)
}

func allSameDigit(digits string) bool {
	for i := 1; i < len(digits); i++ {
		if digits[i] != digits[0] {
			return false
		}
	}
	return true
}
