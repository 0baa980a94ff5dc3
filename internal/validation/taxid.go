package validation

import "github.com/inovacc/brdoc"

const (
	cpfLength  = 11
	cnpjLength = 14

	msgCPFInvalid   = "CPF inválido"
	msgCNPJInvalid  = "CNPJ inválido"
	msgTaxIDInvalid = "CPF/CNPJ inválido"
)

// ValidateCPF checks an individual taxpayer id. Punctuation is ignored.
// Length and repeated digits are format failures; a wrong check digit is a
// checksum failure.
func ValidateCPF(raw string) Result {
	cpf := NormalizeCPF(raw)
	if len(cpf) != cpfLength || allSameDigit(cpf) {
		return formatFailure(msgCPFInvalid)
	}
	if !brdoc.NewCPF().Validate(cpf) {
		return checksumFailure(msgCPFInvalid)
	}
	return valid("CPF válido", nil)
}

// ValidateCNPJ checks a numeric company taxpayer id. Punctuation is ignored.
func ValidateCNPJ(raw string) Result {
	cnpj := NormalizeCNPJ(raw)
	if len(cnpj) != cnpjLength || allSameDigit(cnpj) {
		return formatFailure(msgCNPJInvalid)
	}
	if !brdoc.NewCNPJ().Validate(cnpj) {
		return checksumFailure(msgCNPJInvalid)
	}
	return valid("CNPJ válido", nil)
}

// ValidateTaxID accepts either a CPF or a CNPJ, chosen by digit count.
func ValidateTaxID(raw string) Result {
	var result Result
	switch digits := NormalizeDigits(raw); len(digits) {
	case cpfLength:
		result = ValidateCPF(digits)
	case cnpjLength:
		result = ValidateCNPJ(digits)
	default:
		return formatFailure(msgTaxIDInvalid)
	}
	if !result.IsValid {
		result.Message = msgTaxIDInvalid
	}
	return result
}
