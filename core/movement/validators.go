package movement

import (
	"regexp"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/campusmove/movplan/core"
)

var (
	weekdayTag  = "weekday"
	weekdayText = "day must be one of Monday, Tuesday, Wednesday, Thursday or Friday"

	phoneTag   = "phone"
	phoneText  = "only digits, spaces, '+' and '-' are allowed"
	phoneRegex = regexp.MustCompile(`^[0-9+\s-]+$`)
)

// InitValidators registers the movement validators.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(weekdayTag, weekdayValidation)
	core.RegisterCustomTranslation(validate, translator, weekdayTag, weekdayText)

	_ = validate.RegisterValidation(phoneTag, phoneValidation)
	core.RegisterCustomTranslation(validate, translator, phoneTag, phoneText)
}

// Custom Validators

func weekdayValidation(fl validator.FieldLevel) bool {
	return IsDay(fl.Field().String())
}

func phoneValidation(fl validator.FieldLevel) bool {
	return phoneRegex.MatchString(fl.Field().String())
}
