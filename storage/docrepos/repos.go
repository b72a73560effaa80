// Package docrepos implements the entity repositories on top of a docstore.
// Each entity lives in its own collection; document ids are entity ids.
package docrepos

import (
	"github.com/pkg/errors"

	"github.com/campusmove/movplan/core"
	"github.com/campusmove/movplan/storage/docstore"
)

// Collection names
const (
	Classes   = "classes"
	Lecturers = "lecturers"
	Rooms     = "rooms"
	Movements = "movements"
)

// notFound turns a missing document into the entity's not found error.
func notFound(err error, entityErr *core.NotFoundError, msg string) error {
	if errors.Cause(err) == docstore.ErrNotFound {
		return entityErr
	}
	return errors.Wrap(err, msg)
}
