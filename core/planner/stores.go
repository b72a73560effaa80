package planner

import (
	"context"

	"github.com/pkg/errors"

	"github.com/campusmove/movplan/core"
	"github.com/campusmove/movplan/core/bus"
	"github.com/campusmove/movplan/core/class"
	"github.com/campusmove/movplan/core/lecturer"
	"github.com/campusmove/movplan/core/movement"
	"github.com/campusmove/movplan/core/room"
	"github.com/campusmove/movplan/core/state"
)

type (
	MovementStore = state.Store[movement.Movement, movement.Form]
	ClassStore    = state.Store[class.Class, class.Form]
	BusStore      = state.Store[bus.Bus, bus.Form]
	LecturerStore = state.Store[lecturer.Lecturer, lecturer.Form]
	RoomStore     = state.Store[room.Room, room.Form]

	// Stores holds the cached collections the planner works on.
	Stores struct {
		Movements *MovementStore
		Classes   *ClassStore
		Buses     *BusStore
		Lecturers *LecturerStore
		Rooms     *RoomStore
	}

	Services struct {
		Movements *movement.Service
		Classes   *class.Service
		Buses     *bus.Service
		Lecturers *lecturer.Service
		Rooms     *room.Service
	}

	StoreStatus struct {
		Loading bool   `json:"loading"`
		Error   string `json:"error,omitempty"`
	}
)

// NewStores puts a cache in front of every service.
// Movements and lecturers are listed newest first, so new ones are prepended.
func NewStores(svcs Services, logger core.Logger) Stores {
	return Stores{
		Movements: state.New[movement.Movement, movement.Form](svcs.Movements,
			func(m movement.Movement) string { return m.ID },
			state.Options{Name: "movement", Plural: "movements", Prepend: true}, logger),
		Classes: state.New[class.Class, class.Form](svcs.Classes,
			func(c class.Class) string { return c.ID },
			state.Options{Name: "class", Plural: "classes"}, logger),
		Buses: state.New[bus.Bus, bus.Form](svcs.Buses,
			func(b bus.Bus) string { return b.ID },
			state.Options{Name: "bus", Plural: "buses"}, logger),
		Lecturers: state.New[lecturer.Lecturer, lecturer.Form](svcs.Lecturers,
			func(l lecturer.Lecturer) string { return l.ID },
			state.Options{Name: "lecturer", Plural: "lecturers", Prepend: true, Conflicts: []error{lecturer.ErrExists}}, logger),
		Rooms: state.New[room.Room, room.Form](svcs.Rooms,
			func(r room.Room) string { return r.ID },
			state.Options{Name: "room", Plural: "rooms", Conflicts: []error{room.ErrExists}}, logger),
	}
}

type observable interface {
	Name() string
	Refresh(ctx context.Context) error
	Loading() bool
	LastError() string
	Subscribe(fn func(state.Event)) func()
}

func (s Stores) all() []observable {
	return []observable{s.Movements, s.Classes, s.Buses, s.Lecturers, s.Rooms}
}

// Refresh reloads every store. All stores are tried, the first failure is returned.
func (s Stores) Refresh(ctx context.Context) error {
	var first error
	for _, st := range s.all() {
		if err := st.Refresh(ctx); err != nil && first == nil {
			first = errors.Wrap(err, "refreshing "+st.Name())
		}
	}
	return first
}

// Subscribe registers fn on every store.
func (s Stores) Subscribe(fn func(state.Event)) func() {
	unsubs := make([]func(), 0, 5)
	for _, st := range s.all() {
		unsubs = append(unsubs, st.Subscribe(fn))
	}
	return func() {
		for _, unsub := range unsubs {
			unsub()
		}
	}
}

func (s Stores) Status() map[string]StoreStatus {
	status := make(map[string]StoreStatus, 5)
	for _, st := range s.all() {
		status[st.Name()] = StoreStatus{Loading: st.Loading(), Error: st.LastError()}
	}
	return status
}
