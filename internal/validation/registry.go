package validation

import (
	"slices"
	"strings"
	"time"
)

// Func validates one raw field value.
type Func func(value string) Result

// Registry maps the validator names used by form fields to their Func.
// A Registry is not safe for concurrent Register calls; build it once and
// share it read-only.
type Registry struct {
	validators map[string]Func
}

// NewRegistry returns a registry preloaded with the built-in validators.
// now feeds the "not in the future" rule of the date validator.
func NewRegistry(now func() time.Time) *Registry {
	if now == nil {
		now = time.Now
	}

	r := &Registry{validators: make(map[string]Func)}
	r.Register("cpf", ValidateCPF)
	r.Register("cnpj", ValidateCNPJ)
	// Donor forms take either document in one field.
	r.Register("taxid", ValidateTaxID)
	r.Register("phone", ValidatePhone)
	r.Register("email", EmailResult)
	r.Register("cep", ValidateCEP)
	r.Register("date", func(value string) Result {
		return ValidateDate(value, now())
	})
	return r
}

func (r *Registry) Register(name string, fn Func) {
	r.validators[strings.ToLower(strings.TrimSpace(name))] = fn
}

func (r *Registry) Lookup(name string) (Func, bool) {
	fn, ok := r.validators[strings.ToLower(strings.TrimSpace(name))]
	return fn, ok
}

func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.validators))
	for name := range r.validators {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
