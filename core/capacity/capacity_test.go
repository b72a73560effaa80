package capacity

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/campusmove/movplan/core/bus"
	"github.com/campusmove/movplan/core/movement"
)

func mv(id, day string, size int) movement.Movement {
	return movement.Movement{ID: id, Day: day, ClassSize: size}
}

func buses(capacities ...int) []bus.Bus {
	bs := make([]bus.Bus, 0, len(capacities))
	for _, c := range capacities {
		bs = append(bs, bus.Bus{Type: "Coach", Capacity: c})
	}
	return bs
}

func TestCalculate(t *testing.T) {
	tests := []struct {
		name      string
		movements []movement.Movement
		buses     []bus.Bus
		want      Result
	}{
		{name: "empty", want: Result{}},
		{name: "no buses", movements: []movement.Movement{mv("1", movement.Monday, 12)}, want: Result{12, 0, -12, true}},
		{name: "no movements", buses: buses(50, 30), want: Result{0, 80, 80, false}},
		{
			name:      "available",
			movements: []movement.Movement{mv("1", movement.Monday, 30)},
			buses:     buses(50),
			want:      Result{30, 50, 20, false},
		},
		{
			name:      "overbooked",
			movements: []movement.Movement{mv("1", movement.Monday, 30), mv("2", movement.Monday, 25)},
			buses:     buses(50),
			want:      Result{55, 50, -5, true},
		},
		{
			name:      "equal totals are not overbooked",
			movements: []movement.Movement{mv("1", movement.Monday, 20), mv("2", movement.Monday, 30)},
			buses:     buses(25, 25),
			want:      Result{50, 50, 0, false},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Calculate(tt.movements, tt.buses)
			if got != tt.want {
				t.Errorf("Calculate() = %+v, want %+v", got, tt.want)
			}
			// pure: same inputs, same output
			assert.Equal(t, got, Calculate(tt.movements, tt.buses))
		})
	}
}

func TestCalculate_properties(t *testing.T) {
	for n := 0; n < 20; n++ {
		var movements []movement.Movement
		var sizes, seats int
		for i := 0; i < n; i++ {
			size := (i*7)%40 + 1
			sizes += size
			movements = append(movements, mv("", movement.Days[i%len(movement.Days)], size))
		}
		var fleet []bus.Bus
		for i := 0; i < n%5; i++ {
			fleet = append(fleet, bus.Bus{Capacity: 30 + i*10})
			seats += 30 + i*10
		}

		got := Calculate(movements, fleet)
		assert.Equal(t, sizes, got.TotalStudents)
		assert.Equal(t, seats, got.TotalBusCapacity)
		assert.Equal(t, got.TotalBusCapacity-got.TotalStudents, got.RemainingCapacity)
		assert.Equal(t, got.TotalStudents > got.TotalBusCapacity, got.IsOverbooked)
	}
}

func TestCheck(t *testing.T) {
	existing := []movement.Movement{
		mv("a", movement.Monday, 30),
		mv("b", movement.Monday, 10),
		mv("c", movement.Tuesday, 45),
	}
	fleet := buses(50)

	tests := []struct {
		name        string
		day         string
		classSize   int
		excludeID   string
		wantTotal   int
		wantOK      bool
		wantWarning string
	}{
		{name: "fits", day: movement.Monday, classSize: 10, wantTotal: 50, wantOK: true},
		{
			name: "overbooked", day: movement.Monday, classSize: 15, wantTotal: 55,
			wantWarning: "Warning: This will exceed the total bus capacity for Monday by 5 students",
		},
		{name: "other days ignored", day: movement.Wednesday, classSize: 50, wantTotal: 50, wantOK: true},
		// editing "b" (10 students) to 15 students: (40 - 10) + 15
		{name: "edit excludes record", day: movement.Monday, classSize: 15, excludeID: "b", wantTotal: 45, wantOK: true},
		{name: "exclude on other day", day: movement.Tuesday, classSize: 6, excludeID: "a", wantTotal: 51},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Check(existing, fleet, tt.day, tt.classSize, tt.excludeID)
			assert.Equal(t, tt.wantTotal, got.TotalStudents)
			assert.Equal(t, 50, got.TotalBusCapacity)
			assert.Equal(t, tt.wantOK, got.OK())
			assert.Equal(t, tt.day, got.Day)
			if tt.wantWarning != "" {
				assert.Equal(t, tt.wantWarning, got.Warning)
			}
			if tt.wantOK {
				assert.Empty(t, got.Warning)
			}
		})
	}
}

func TestWeek(t *testing.T) {
	movements := []movement.Movement{
		mv("1", movement.Monday, 30),
		mv("2", movement.Monday, 25),
		mv("3", movement.Wednesday, 20),
	}
	week := Week(movements, buses(50))

	if assert.Len(t, week, 5) {
		for i, day := range movement.Days {
			assert.Equal(t, day, week[i].Day)
		}
	}

	mon := week[0]
	assert.Equal(t, 2, mon.Movements)
	assert.Equal(t, Result{55, 50, -5, true}, mon.Result)
	assert.Equal(t, StatusOverbooked, mon.Status)
	assert.Equal(t, "Exceeds capacity by 5 students", mon.Message)

	tue := week[1]
	assert.Equal(t, Result{0, 50, 50, false}, tue.Result)
	assert.Equal(t, StatusAvailable, tue.Status)
	assert.Empty(t, tue.Message)

	wed := week[2]
	assert.Equal(t, Result{20, 50, 30, false}, wed.Result)
}
