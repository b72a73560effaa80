// Package capacity compares the students scheduled on a day with the seats the bus fleet offers.
// Every function is pure: results depend on the arguments only.
package capacity

import (
	"fmt"

	"github.com/campusmove/movplan/core/bus"
	"github.com/campusmove/movplan/core/movement"
)

const (
	StatusAvailable  = "Available"
	StatusOverbooked = "Overbooked"
)

type Result struct {
	TotalStudents     int  `json:"totalStudents"`
	TotalBusCapacity  int  `json:"totalBusCapacity"`
	RemainingCapacity int  `json:"remainingCapacity"` // negative when overbooked
	IsOverbooked      bool `json:"isOverbooked"`
}

// Calculate sums the class sizes of movements against the capacities of buses.
// Equal totals are not overbooked.
func Calculate(movements []movement.Movement, buses []bus.Bus) Result {
	var students, seats int
	for _, m := range movements {
		students += m.ClassSize
	}
	for _, b := range buses {
		seats += b.Capacity
	}
	return result(students, seats)
}

func result(students, seats int) Result {
	return Result{
		TotalStudents:     students,
		TotalBusCapacity:  seats,
		RemainingCapacity: seats - students,
		IsOverbooked:      students > seats,
	}
}

// Excess is the number of students over capacity, 0 when not overbooked.
func (r Result) Excess() int {
	if !r.IsOverbooked {
		return 0
	}
	return -r.RemainingCapacity
}

func (r Result) Status() string {
	if r.IsOverbooked {
		return StatusOverbooked
	}
	return StatusAvailable
}

// CheckResult is the outcome of a pre-commit check. It is advisory:
// an overbooked check never prevents the movement from being saved.
type CheckResult struct {
	Result
	Day     string `json:"day"`
	Warning string `json:"warning,omitempty"`
}

func (c CheckResult) OK() bool { return !c.IsOverbooked }

// Check validates a candidate movement of classSize students on day against the movements already
// scheduled that day. The movement identified by excludeID is left out of the existing total,
// so that an edited record is not counted twice. excludeID is empty for new movements.
func Check(existing []movement.Movement, buses []bus.Bus, day string, classSize int, excludeID string) CheckResult {
	scheduled := make([]movement.Movement, 0, len(existing)+1)
	for _, m := range existing {
		if m.Day != day || (excludeID != "" && m.ID == excludeID) {
			continue
		}
		scheduled = append(scheduled, m)
	}
	scheduled = append(scheduled, movement.Movement{Day: day, ClassSize: classSize})

	c := CheckResult{Result: Calculate(scheduled, buses), Day: day}
	if c.IsOverbooked {
		c.Warning = fmt.Sprintf("Warning: This will exceed the total bus capacity for %s by %d students", day, c.Excess())
	}
	return c
}

type DaySummary struct {
	Day       string `json:"day"`
	Movements int    `json:"movements"`
	Result
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// Week groups movements by day, Monday to Friday, and summarises each day against the whole fleet.
// Days without movements are included with zero students.
func Week(movements []movement.Movement, buses []bus.Bus) []DaySummary {
	week := make([]DaySummary, 0, len(movement.Days))
	for _, day := range movement.Days {
		dayMovements := movement.OnDay(movements, day)
		res := Calculate(dayMovements, buses)
		ds := DaySummary{
			Day:       day,
			Movements: len(dayMovements),
			Result:    res,
			Status:    res.Status(),
		}
		if res.IsOverbooked {
			ds.Message = fmt.Sprintf("Exceeds capacity by %d students", res.Excess())
		}
		week = append(week, ds)
	}
	return week
}
