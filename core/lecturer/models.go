package lecturer

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/campusmove/movplan/core"
)

type Lecturer struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	CheckInDate time.Time `json:"checkInDate"` // UTC; set on create
}

// Form contains the information needed to check a Lecturer in or rename them.
type Form struct {
	Name string `json:"name" validate:"required,notblank"`
}

func (f *Form) Validate(validate *validator.Validate) error {
	f.Name = core.CleanString(f.Name)
	return validate.Struct(f)
}
