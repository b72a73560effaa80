package room

import (
	"github.com/go-playground/validator/v10"

	"github.com/campusmove/movplan/core"
)

type Room struct {
	ID     string `json:"id"`
	Number string `json:"number"`
}

type Form struct {
	Number string `json:"number" validate:"required,notblank"`
}

func (f *Form) Validate(validate *validator.Validate) error {
	f.Number = core.CleanString(f.Number)
	return validate.Struct(f)
}
