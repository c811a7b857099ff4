package repository

import (
	"github.com/go-playground/validator/v10"

	"crm-service/internal/models"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// crm_phone: "+" followed by up to 15 digits, or 999-999-9999.
	_ = v.RegisterValidation("crm_phone", func(fl validator.FieldLevel) bool {
		return models.PhoneRE.MatchString(fl.Field().String())
	})
	return v
}
