package bus

import (
	"github.com/go-playground/validator/v10"

	"github.com/campusmove/movplan/core"
)

// Bus is a vehicle available for movements. Type is free text (e.g. "Coach") and is not unique.
type Bus struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	Capacity int    `json:"capacity"`
}

// Form contains the information needed to create or replace a Bus.
type Form struct {
	Type     string `json:"type" validate:"required,notblank"`
	Capacity int    `json:"capacity" validate:"required,gt=0"`
}

func (f *Form) Validate(validate *validator.Validate) error {
	f.Type = core.CleanString(f.Type)
	return validate.Struct(f)
}

func (f Form) bus(id string) Bus {
	return Bus{ID: id, Type: f.Type, Capacity: f.Capacity}
}

// FindByType returns the first bus of type typ.
func FindByType(buses []Bus, typ string) (Bus, bool) {
	for _, b := range buses {
		if b.Type == typ {
			return b, true
		}
	}
	return Bus{}, false
}
