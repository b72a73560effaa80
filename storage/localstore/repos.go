package localstore

import (
	"context"

	"github.com/google/uuid"

	"github.com/campusmove/movplan/core/bus"
	"github.com/campusmove/movplan/core/class"
)

type busRepository struct {
	store *Store
}

var _ bus.Repository = (*busRepository)(nil) // interface compliance check

func NewBusRepository(store *Store) bus.Repository {
	return &busRepository{store: store}
}

func (repo *busRepository) QueryAllBuses(_ context.Context) ([]bus.Bus, error) {
	return read[bus.Bus](repo.store, BusesKey)
}

func (repo *busRepository) GetBusByID(_ context.Context, id string) (bus.Bus, error) {
	buses, err := read[bus.Bus](repo.store, BusesKey)
	if err != nil {
		return bus.Bus{}, err
	}
	for _, b := range buses {
		if b.ID == id {
			return b, nil
		}
	}
	return bus.Bus{}, bus.ErrNotFound
}

func (repo *busRepository) CreateBus(_ context.Context, b bus.Bus) (bus.Bus, error) {
	b.ID = uuid.NewString()
	err := update(repo.store, BusesKey, func(buses []bus.Bus) ([]bus.Bus, error) {
		return append(buses, b), nil
	})
	if err != nil {
		return bus.Bus{}, err
	}
	return b, nil
}

func (repo *busRepository) UpdateBus(_ context.Context, b bus.Bus) (bus.Bus, error) {
	err := update(repo.store, BusesKey, func(buses []bus.Bus) ([]bus.Bus, error) {
		for i := range buses {
			if buses[i].ID == b.ID {
				buses[i] = b
				return buses, nil
			}
		}
		return nil, bus.ErrNotFound
	})
	if err != nil {
		return bus.Bus{}, err
	}
	return b, nil
}

func (repo *busRepository) DeleteBus(_ context.Context, id string) error {
	return update(repo.store, BusesKey, func(buses []bus.Bus) ([]bus.Bus, error) {
		kept := buses[:0]
		for _, b := range buses {
			if b.ID != id {
				kept = append(kept, b)
			}
		}
		return kept, nil
	})
}

type classRepository struct {
	store *Store
}

var _ class.Repository = (*classRepository)(nil) // interface compliance check

func NewClassRepository(store *Store) class.Repository {
	return &classRepository{store: store}
}

func (repo *classRepository) QueryAllClasses(_ context.Context) ([]class.Class, error) {
	return read[class.Class](repo.store, ClassesKey)
}

func (repo *classRepository) GetClassByID(_ context.Context, id string) (class.Class, error) {
	classes, err := read[class.Class](repo.store, ClassesKey)
	if err != nil {
		return class.Class{}, err
	}
	for _, c := range classes {
		if c.ID == id {
			return c, nil
		}
	}
	return class.Class{}, class.ErrNotFound
}

func (repo *classRepository) CreateClass(_ context.Context, cls class.Class) (class.Class, error) {
	cls.ID = uuid.NewString()
	err := update(repo.store, ClassesKey, func(classes []class.Class) ([]class.Class, error) {
		return append(classes, cls), nil
	})
	if err != nil {
		return class.Class{}, err
	}
	return cls, nil
}

func (repo *classRepository) UpdateClass(_ context.Context, cls class.Class) (class.Class, error) {
	err := update(repo.store, ClassesKey, func(classes []class.Class) ([]class.Class, error) {
		for i := range classes {
			if classes[i].ID == cls.ID {
				classes[i] = cls
				return classes, nil
			}
		}
		return nil, class.ErrNotFound
	})
	if err != nil {
		return class.Class{}, err
	}
	return cls, nil
}

func (repo *classRepository) DeleteClass(_ context.Context, id string) error {
	return update(repo.store, ClassesKey, func(classes []class.Class) ([]class.Class, error) {
		kept := classes[:0]
		for _, c := range classes {
			if c.ID != id {
				kept = append(kept, c)
			}
		}
		return kept, nil
	})
}
