package middleware

import (
	"regexp"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Senegalese mobile numbers: operator prefix 70/75/76/77/78, seven more
// digits, optional +221 country code.
var snPhonePattern = regexp.MustCompile(`^(\+221)?7[05678]\d{7}$`)

// RegisterCustomValidators installs the dashboard's binding rules on gin's
// validator engine. Called once at startup.
func RegisterCustomValidators() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	v.RegisterValidation("sn_phone", func(fl validator.FieldLevel) bool {
		phone := strings.ReplaceAll(fl.Field().String(), " ", "")
		return snPhonePattern.MatchString(phone)
	})
}
