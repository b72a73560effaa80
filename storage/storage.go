// Package storage opens the backends selected by the configuration.
package storage

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/campusmove/movplan/core"
	"github.com/campusmove/movplan/core/bus"
	"github.com/campusmove/movplan/core/class"
	"github.com/campusmove/movplan/core/lecturer"
	"github.com/campusmove/movplan/core/movement"
	"github.com/campusmove/movplan/core/planner"
	"github.com/campusmove/movplan/core/room"
	"github.com/campusmove/movplan/storage/docrepos"
	"github.com/campusmove/movplan/storage/docstore"
	"github.com/campusmove/movplan/storage/docstore/memdoc"
	"github.com/campusmove/movplan/storage/docstore/pgdoc"
	"github.com/campusmove/movplan/storage/docstore/redisdoc"
	"github.com/campusmove/movplan/storage/localstore"
)

// Repositories groups one repository per entity.
type Repositories struct {
	Documents docstore.Store
	Local     *localstore.Store

	Classes   class.Repository
	Buses     bus.Repository
	Lecturers lecturer.Repository
	Rooms     room.Repository
	Movements movement.Repository
}

// OpenDocuments opens the document store named by conf.Storage.Documents.
// The postgres database is created and migrated when needed.
func OpenDocuments(ctx context.Context, conf *core.Config) (docstore.Store, error) {
	switch conf.Storage.Documents {
	case core.DocumentsMemory, "":
		return memdoc.Open(), nil
	case core.DocumentsPostgres:
		if err := pgdoc.CreateIfNotExist(conf); err != nil {
			return nil, errors.Wrap(err, "creating database")
		}
		db, err := pgdoc.Open(conf)
		if err != nil {
			return nil, err
		}
		if err = pgdoc.Migrate(db.DB); err != nil {
			_ = db.Close()
			return nil, err
		}
		return pgdoc.NewStore(db), nil
	case core.DocumentsRedis:
		return redisdoc.Open(ctx, conf)
	default:
		return nil, errors.Errorf("unknown document store %q", conf.Storage.Documents)
	}
}

// NewRepositories wires the entity repositories. Buses always live in the local store,
// classes follow conf.Storage.Classes.
func NewRepositories(conf *core.Config, docs docstore.Store, local *localstore.Store) (*Repositories, error) {
	repos := &Repositories{
		Documents: docs,
		Local:     local,
		Buses:     localstore.NewBusRepository(local),
		Lecturers: docrepos.NewLecturerRepository(docs),
		Rooms:     docrepos.NewRoomRepository(docs),
		Movements: docrepos.NewMovementRepository(docs),
	}
	switch conf.Storage.Classes {
	case core.ClassesDocument, "":
		repos.Classes = docrepos.NewClassRepository(docs)
	case core.ClassesLocal:
		repos.Classes = localstore.NewClassRepository(local)
	default:
		return nil, errors.Errorf("unknown classes storage %q", conf.Storage.Classes)
	}
	return repos, nil
}

// Open opens every backend and wires the repositories.
func Open(ctx context.Context, conf *core.Config) (*Repositories, error) {
	local, err := localstore.Open(conf.Storage.LocalPath)
	if err != nil {
		return nil, err
	}
	docs, err := OpenDocuments(ctx, conf)
	if err != nil {
		return nil, errors.Wrap(err, "opening document store")
	}
	repos, err := NewRepositories(conf, docs, local)
	if err != nil {
		_ = docs.Close()
		return nil, err
	}
	return repos, nil
}

func (r *Repositories) Close() error {
	return r.Documents.Close()
}

// Services builds one entity service per repository.
func (r *Repositories) Services(validate *validator.Validate) planner.Services {
	return planner.Services{
		Movements: movement.NewService(r.Movements, validate),
		Classes:   class.NewService(r.Classes, validate),
		Buses:     bus.NewService(r.Buses, validate),
		Lecturers: lecturer.NewService(r.Lecturers, validate),
		Rooms:     room.NewService(r.Rooms, validate),
	}
}
