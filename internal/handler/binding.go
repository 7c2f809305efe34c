package handler

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	idvalidator "github.com/maayanhealth/clinic-api/pkg/validator"
)

// RegisterValidations installs custom binding rules on gin's validator
// engine. Must run before the first request is bound.
func RegisterValidations() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("israeli_id", func(fl validator.FieldLevel) bool {
			return idvalidator.ValidIsraeliID(fl.Field().String())
		})
	}
}
