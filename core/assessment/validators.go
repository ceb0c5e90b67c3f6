package assessment

import (
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/alama/core"
)

var (
	typeTag  = "assessmenttype"
	typeText = "type must be Formative or Summative"
)

func init() {
	_ = core.Validate.RegisterValidation(typeTag, typeValidation)
	core.RegisterCustomTranslation(typeTag, typeText)
}

func typeValidation(fl validator.FieldLevel) bool {
	t := fl.Field().String()
	for _, v := range AllTypes {
		if v == t {
			return true
		}
	}
	return false
}
