package validation

type PhoneType string

const (
	PhoneCellphone PhoneType = "cellphone"
	PhoneLandline  PhoneType = "landline"
)

type PhoneData struct {
	DDD    string    `json:"ddd"`
	Number string    `json:"number"`
	Type   PhoneType `json:"type"`
}

// ValidatePhone accepts a Brazilian number with area code: 10 digits for a
// landline, 11 for a cellphone. Neither DDD digit may be zero.
func ValidatePhone(raw string) Result {
	phone := NormalizeDigits(raw)
	if len(phone) != 10 && len(phone) != 11 {
		return formatFailure("Digite um telefone válido com DDD")
	}
	if phone[0] == '0' || phone[1] == '0' {
		return formatFailure("Digite um telefone válido com DDD")
	}

	phoneType, message := PhoneLandline, "telefone fixo válido"
	if len(phone) == 11 {
		phoneType, message = PhoneCellphone, "celular válido"
	}
	return valid(message, PhoneData{
		DDD:    phone[:2],
		Number: phone[2:],
		Type:   phoneType,
	})
}
