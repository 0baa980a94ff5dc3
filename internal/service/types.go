package service

import "horizonte-forms/internal/validation"

type ValueInput struct {
	Value string `json:"value"`
}

type FieldInput struct {
	Name       string `json:"name" binding:"required"`
	Validation string `json:"validation"`
	Value      string `json:"value"`
	Required   bool   `json:"required"`
}

type ValidateFieldsInput struct {
	Fields []FieldInput `json:"fields" binding:"required,min=1,dive"`
}

// CEPLookupInput identifies the form field a lookup is made for. FieldID is
// optional; when set, ClientID must name the visitor session owning it.
type CEPLookupInput struct {
	ClientID string
	FieldID  string
	CEP      string
}

type PasswordInput struct {
	Password string `json:"password"`
}

type FileValidationInput struct {
	Name         string  `json:"name" binding:"required"`
	Size         int64   `json:"size" binding:"min=0"`
	Type         string  `json:"type"`
	MaxSizeMB    float64 `json:"max_size_mb" binding:"required,gt=0"`
	AllowedTypes string  `json:"allowed_types"`
}

type ContactInput struct {
	Name    string  `json:"name" binding:"required"`
	Email   string  `json:"email" binding:"required,email"`
	Phone   *string `json:"phone" binding:"omitempty,br_phone"`
	Subject string  `json:"subject"`
	Message string  `json:"message" binding:"required"`
}

type DonorInput struct {
	Name        string  `json:"name" binding:"required"`
	Email       string  `json:"email" binding:"required,email"`
	TaxIDNumber string  `json:"tax_id_number" binding:"required,taxid"`
	Phone       *string `json:"phone" binding:"omitempty,br_phone"`
	CEP         *string `json:"cep" binding:"omitempty,cep"`
	AmountCents int64   `json:"amount_cents" binding:"required,gt=0"`
}

type FormValidationOutput struct {
	AllValid bool                         `json:"all_valid"`
	Results  map[string]validation.Result `json:"results"`
}

type PasswordStrengthOutput struct {
	Level   int      `json:"level"`
	Label   string   `json:"label"`
	Missing []string `json:"missing,omitempty"`
	Message string   `json:"message"`
}

type MaskOutput struct {
	Kind  string `json:"kind"`
	Value string `json:"value"`
}

type CEPOutput struct {
	Found   bool           `json:"found"`
	Message string         `json:"message"`
	Address *AddressOutput `json:"address,omitempty"`
}

type AddressOutput struct {
	CEP          string `json:"cep"`
	Street       string `json:"street"`
	Complement   string `json:"complement,omitempty"`
	Neighborhood string `json:"neighborhood"`
	City         string `json:"city"`
	State        string `json:"state"`
}

type SubmissionOutput struct {
	Protocol string `json:"protocol"`
	Message  string `json:"message"`
}

type DonorOutput struct {
	SubmissionOutput
	TaxIDNumber string `json:"tax_id_number"`
	Amount      string `json:"amount"`
}
