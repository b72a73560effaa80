package movement

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/campusmove/movplan/core"
)

// Days a movement may be scheduled on, in week order.
const (
	Monday    = "Monday"
	Tuesday   = "Tuesday"
	Wednesday = "Wednesday"
	Thursday  = "Thursday"
	Friday    = "Friday"
)

var Days = []string{Monday, Tuesday, Wednesday, Thursday, Friday}

func IsDay(day string) bool {
	for _, d := range Days {
		if d == day {
			return true
		}
	}
	return false
}

// Movement assigns a class to a bus on a given day.
// ClassSize and Capacity are snapshots taken when the record is saved:
// later edits of the class or bus do not change them.
type Movement struct {
	ID            string    `json:"id"`
	Day           string    `json:"day"`
	ClassName     string    `json:"className"`
	ClassSize     int       `json:"classSize"`
	BusType       string    `json:"busType"`
	Capacity      int       `json:"capacity"`
	InCharge      string    `json:"inCharge"`
	InChargePhone string    `json:"inChargePhone"`
	CreatedAt     time.Time `json:"createdAt"` // UTC
}

// Form contains the information submitted by the movement form.
type Form struct {
	Day           string `json:"day" validate:"required,weekday"`
	ClassName     string `json:"className" validate:"required,notblank"`
	ClassSize     int    `json:"classSize" validate:"required,gt=0"`
	BusType       string `json:"busType" validate:"required,notblank"`
	Capacity      int    `json:"capacity" validate:"required,gt=0"`
	InCharge      string `json:"inCharge" validate:"required,notblank"`
	InChargePhone string `json:"inChargePhone" validate:"required,phone"`
}

// Clean trims every text field.
func (f *Form) Clean() {
	f.Day = core.CleanString(f.Day)
	f.ClassName = core.CleanString(f.ClassName)
	f.BusType = core.CleanString(f.BusType)
	f.InCharge = core.CleanString(f.InCharge)
	f.InChargePhone = core.CleanString(f.InChargePhone)
}

func (f *Form) Validate(validate *validator.Validate) error {
	f.Clean()
	return validate.Struct(f)
}

// FormOf returns the form pre-populated from m, as used when editing m.
func FormOf(m Movement) Form {
	return Form{
		Day:           m.Day,
		ClassName:     m.ClassName,
		ClassSize:     m.ClassSize,
		BusType:       m.BusType,
		Capacity:      m.Capacity,
		InCharge:      m.InCharge,
		InChargePhone: m.InChargePhone,
	}
}

func (f Form) movement(id string, createdAt time.Time) Movement {
	return Movement{
		ID:            id,
		Day:           f.Day,
		ClassName:     f.ClassName,
		ClassSize:     f.ClassSize,
		BusType:       f.BusType,
		Capacity:      f.Capacity,
		InCharge:      f.InCharge,
		InChargePhone: f.InChargePhone,
		CreatedAt:     createdAt,
	}
}

// OnDay keeps the movements scheduled on day.
func OnDay(movements []Movement, day string) []Movement {
	filtered := make([]Movement, 0, len(movements))
	for _, m := range movements {
		if m.Day == day {
			filtered = append(filtered, m)
		}
	}
	return filtered
}
