package announcement

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/masomo-dashboard/core"
)

var (
	dateTag  = "datetime"
	dateText = "{0} must be a date formatted as YYYY-MM-DD"
)

// InitValidators registers the announcement translations.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	core.RegisterCustomTranslation(validate, translator, dateTag, dateText, true)
}
