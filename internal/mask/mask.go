// Package mask reformats partial user input on every keystroke. Each mask
// strips non-digits first, so applying a mask to its own output is a no-op.
package mask

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"horizonte-forms/internal/validation"
)

var ErrUnknownMask = errors.New("unknown mask")

// Currency digits beyond this count are dropped; float64 stays exact below it.
const maxCurrencyDigits = 15

type Func func(raw string) string

var masks = map[string]Func{
	"currency":   Currency,
	"date":       Date,
	"percentage": Percentage,
	"phone":      Phone,
	"taxid":      TaxID,
	"cep":        CEP,
}

// Apply runs the mask registered under kind.
func Apply(kind string, raw string) (string, error) {
	fn, ok := masks[strings.ToLower(strings.TrimSpace(kind))]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownMask, kind)
	}
	return fn(raw), nil
}

func Kinds() []string {
	kinds := make([]string, 0, len(masks))
	for kind := range masks {
		kinds = append(kinds, kind)
	}
	slices.Sort(kinds)
	return kinds
}

// Currency reads the digits as cents: "1000" -> "R$ 10,00". Zero is "".
func Currency(raw string) string {
	digits := strings.TrimLeft(validation.NormalizeDigits(raw), "0")
	if len(digits) > maxCurrencyDigits {
		digits = digits[:maxCurrencyDigits]
	}
	if digits == "" {
		return ""
	}
	cents, err := strconv.ParseInt(digits, 10, 64)
	if err != nil || cents == 0 {
		return ""
	}
	return BRL(cents)
}

// Date renders DD/MM/YYYY progressively.
func Date(raw string) string {
	return group(validation.NormalizeDigits(raw), []int{2, 2, 4}, []string{"/", "/"})
}

// Percentage keeps at most three digits.
func Percentage(raw string) string {
	digits := truncate(validation.NormalizeDigits(raw), 3)
	if digits == "" {
		return ""
	}
	return digits + "%"
}

// Phone renders (DD) NNNN-NNNN for landlines and (DD) NNNNN-NNNN for
// cellphones.
func Phone(raw string) string {
	digits := truncate(validation.NormalizeDigits(raw), 11)
	if len(digits) <= 2 {
		return digits
	}

	local := digits[2:]
	split := 4
	if len(digits) == 11 {
		split = 5
	}
	if len(local) > split {
		local = local[:split] + "-" + local[split:]
	}
	return "(" + digits[:2] + ") " + local
}

// TaxID renders a CPF up to 11 digits and a CNPJ from 12 to 14.
func TaxID(raw string) string {
	digits := truncate(validation.NormalizeDigits(raw), 14)
	if len(digits) <= 11 {
		return group(digits, []int{3, 3, 3, 2}, []string{".", ".", "-"})
	}
	return group(digits, []int{2, 3, 3, 4, 2}, []string{".", ".", "/", "-"})
}

func CEP(raw string) string {
	return group(validation.NormalizeDigits(raw), []int{5, 3}, []string{"-"})
}

// group splits digits into consecutive chunks of the given sizes, joining
// them with seps. Digits past the last chunk are dropped and a separator only
// appears once the following chunk has started.
func group(digits string, sizes []int, seps []string) string {
	var b strings.Builder
	rest := digits
	for i, size := range sizes {
		if rest == "" {
			break
		}
		if i > 0 {
			b.WriteString(seps[i-1])
		}
		chunk := truncate(rest, size)
		b.WriteString(chunk)
		rest = rest[len(chunk):]
	}
	return b.String()
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
