package course

import (
	"strconv"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/masomo-dashboard/core"
)

// MaxCreditUnits is the most credit units a course can carry.
const MaxCreditUnits = 30

var (
	levelTag  = "courselevel"
	levelText = "{0} must be one of the configured levels"

	creditUnitsTag  = "creditunits"
	creditUnitsText = "{0} must be between 0 and 30"
)

// InitValidators registers the course validators. levels are the selectable course levels.
func InitValidators(validate *validator.Validate, translator ut.Translator, levels []string) {
	_ = validate.RegisterValidation(levelTag, levelValidation(levels))
	core.RegisterCustomTranslation(validate, translator, levelTag, levelText)

	_ = validate.RegisterValidation(creditUnitsTag, creditUnitsValidation)
	core.RegisterCustomTranslation(validate, translator, creditUnitsTag, creditUnitsText)
}

func creditUnitsValidation(fl validator.FieldLevel) bool {
	if units, ok := fl.Field().Interface().(string); ok {
		_, err := parseCreditUnits(units)
		return err == nil
	}
	return false
}

func parseCreditUnits(s string) (int, error) {
	units, err := strconv.Atoi(s)
	if err != nil {
		return 0, errors.Wrapf(err, "parsing credit units %q", s)
	}
	if units < 0 || units > MaxCreditUnits {
		return 0, errors.Errorf("credit units %d out of range [0, %d]", units, MaxCreditUnits)
	}
	return units, nil
}

// levelValidation checks that the level is one of levels. Any level passes when none are configured.
func levelValidation(levels []string) validator.Func {
	return func(fl validator.FieldLevel) bool {
		if len(levels) == 0 {
			return true
		}
		if level, ok := fl.Field().Interface().(string); ok {
			return core.Contains(levels, level)
		}
		return false
	}
}
