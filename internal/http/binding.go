package http

import (
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"horizonte-forms/internal/validation"
)

var registerBindingOnce sync.Once

// registerBindingValidators exposes the document checks as struct tags
// (`binding:"cpf"`, `binding:"taxid"`, ...) on gin's validator engine.
func registerBindingValidators() {
	registerBindingOnce.Do(func() {
		engine, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		_ = engine.RegisterValidation("cpf", resultTag(validation.ValidateCPF))
		_ = engine.RegisterValidation("cnpj", resultTag(validation.ValidateCNPJ))
		_ = engine.RegisterValidation("taxid", resultTag(validation.ValidateTaxID))
		_ = engine.RegisterValidation("br_phone", resultTag(validation.ValidatePhone))
		_ = engine.RegisterValidation("cep", resultTag(validation.ValidateCEP))
	})
}

func resultTag(validate validation.Func) validator.Func {
	return func(fl validator.FieldLevel) bool {
		value, ok := fl.Field().Interface().(string)
		if !ok {
			return false
		}
		return validate(value).IsValid
	}
}
