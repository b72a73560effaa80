package movement

import (
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusmove/movplan/core"
)

func newValidator() (*validator.Validate, func(error) map[string]string) {
	validate, translator := core.NewValidator()
	InitValidators(validate, translator)
	return validate, func(err error) map[string]string {
		fields := make(map[string]string)
		if vErrs, ok := err.(validator.ValidationErrors); ok {
			for _, e := range vErrs {
				fields[e.Field()] = e.Translate(translator)
			}
		}
		return fields
	}
}

func validForm() Form {
	return Form{
		Day:           " Monday ",
		ClassName:     "CS101",
		ClassSize:     30,
		BusType:       "Coach",
		Capacity:      50,
		InCharge:      "Dr. X",
		InChargePhone: "+250 700-000-000",
	}
}

func TestForm_Validate(t *testing.T) {
	validate, fieldErrors := newValidator()

	tests := []struct {
		name   string
		modify func(f *Form)
		want   map[string]string
	}{
		{name: "valid", modify: func(f *Form) {}},
		{
			name:   "weekend",
			modify: func(f *Form) { f.Day = "Saturday" },
			want:   map[string]string{"day": weekdayText},
		},
		{
			name:   "lowercase day",
			modify: func(f *Form) { f.Day = "monday" },
			want:   map[string]string{"day": weekdayText},
		},
		{
			name:   "letters in phone",
			modify: func(f *Form) { f.InChargePhone = "call me" },
			want:   map[string]string{"inChargePhone": phoneText},
		},
		{
			name:   "blank name",
			modify: func(f *Form) { f.ClassName = "   " },
			want:   map[string]string{"className": "this field is required"},
		},
		{
			name:   "missing sizes",
			modify: func(f *Form) { f.ClassSize, f.Capacity = 0, 0 },
			want:   map[string]string{"classSize": "this field is required", "capacity": "this field is required"},
		},
		{
			name:   "negative size",
			modify: func(f *Form) { f.ClassSize = -3 },
			want:   map[string]string{"classSize": "classSize must be greater than 0"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := validForm()
			tt.modify(&f)
			err := f.Validate(validate)
			if tt.want == nil {
				require.NoError(t, err)
				assert.Equal(t, Monday, f.Day)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.want, fieldErrors(err))
		})
	}
}

func TestFormOf(t *testing.T) {
	m := validForm().movement("m1", time.Now())
	f := FormOf(m)
	assert.Equal(t, m.ClassName, f.ClassName)
	assert.Equal(t, m.InChargePhone, f.InChargePhone)
	assert.Equal(t, "m1", m.ID)
}

func TestOnDay(t *testing.T) {
	movements := []Movement{{ID: "1", Day: Monday}, {ID: "2", Day: Friday}, {ID: "3", Day: Monday}}
	got := OnDay(movements, Monday)
	require.Len(t, got, 2)
	assert.Equal(t, "1", got[0].ID)
	assert.Equal(t, "3", got[1].ID)
	assert.Empty(t, OnDay(movements, Tuesday))
	assert.True(t, IsDay(Friday))
	assert.False(t, IsDay("Sunday"))
}
