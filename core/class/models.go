package class

import (
	"github.com/go-playground/validator/v10"

	"github.com/campusmove/movplan/core"
)

// Class is a group of students moving together; Size is the enrolled student count.
type Class struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Size int    `json:"size"`
}

// Form contains the information needed to create or replace a Class.
type Form struct {
	Name string `json:"name" validate:"required,notblank"`
	Size int    `json:"size" validate:"required,gt=0"`
}

func (f *Form) Validate(validate *validator.Validate) error {
	f.Name = core.CleanString(f.Name)
	return validate.Struct(f)
}

func (f Form) class(id string) Class {
	return Class{ID: id, Name: f.Name, Size: f.Size}
}

// FindByName returns the first class called name.
func FindByName(classes []Class, name string) (Class, bool) {
	for _, c := range classes {
		if c.Name == name {
			return c, true
		}
	}
	return Class{}, false
}
