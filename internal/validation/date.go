package validation

import (
	"regexp"
	"strconv"
	"time"
)

var datePattern = regexp.MustCompile(`^(\d{2})/(\d{2})/(\d{4})$`)

const cepLength = 8

// ValidateDate checks a DD/MM/YYYY calendar date that is not after now.
func ValidateDate(raw string, now time.Time) Result {
	match := datePattern.FindStringSubmatch(raw)
	if match == nil {
		return formatFailure("Formato de data inválido (DD/MM/AAAA)")
	}

	day, _ := strconv.Atoi(match[1])
	month, _ := strconv.Atoi(match[2])
	year, _ := strconv.Atoi(match[3])

	date := time.Date(year, time.Month(month), day, 0, 0, 0, 0, now.Location())
	// time.Date normalizes overflow (31/02 -> 03/03), so a round trip detects it.
	if date.Day() != day || int(date.Month()) != month || date.Year() != year {
		return formatFailure("Data inválida")
	}
	if date.After(now) {
		return formatFailure("Data não pode ser futura")
	}
	return valid("Data válida", nil)
}

func ValidateCEP(raw string) Result {
	if len(NormalizeDigits(raw)) != cepLength {
		return formatFailure("CEP deve ter 8 dígitos")
	}
	return valid("CEP válido", nil)
}
