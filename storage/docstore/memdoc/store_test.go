package memdoc

import (
	"testing"

	"github.com/campusmove/movplan/storage/docstore/docstoretest"
)

func TestStore(t *testing.T) {
	docstoretest.Run(t, Open())
}
