package docrepos

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusmove/movplan/core"
	"github.com/campusmove/movplan/core/class"
	"github.com/campusmove/movplan/core/lecturer"
	"github.com/campusmove/movplan/core/movement"
	"github.com/campusmove/movplan/core/room"
	"github.com/campusmove/movplan/storage/docstore"
	"github.com/campusmove/movplan/storage/docstore/memdoc"
)

func setup(t *testing.T) (docstore.Store, *validator.Validate) {
	t.Helper()
	validate, translator := core.NewValidator()
	movement.InitValidators(validate, translator)
	return memdoc.Open(), validate
}

func TestClassService(t *testing.T) {
	ctx := context.Background()
	store, validate := setup(t)
	svc := class.NewService(NewClassRepository(store), validate)

	cs101, err := svc.Create(ctx, class.Form{Name: " CS101 ", Size: 30})
	require.NoError(t, err)
	assert.NotEmpty(t, cs101.ID)
	assert.Equal(t, "CS101", cs101.Name)

	// names are not unique
	_, err = svc.Create(ctx, class.Form{Name: "CS101", Size: 12})
	require.NoError(t, err)

	_, err = svc.Create(ctx, class.Form{Name: "CS102", Size: 0})
	assert.IsType(t, validator.ValidationErrors{}, err)

	updated, err := svc.Update(ctx, cs101.ID, class.Form{Name: "CS101", Size: 35})
	require.NoError(t, err)
	assert.Equal(t, cs101.ID, updated.ID)

	got, err := svc.GetByID(ctx, cs101.ID)
	require.NoError(t, err)
	assert.Equal(t, 35, got.Size)

	_, err = svc.Update(ctx, "missing", class.Form{Name: "X", Size: 1})
	assert.True(t, core.IsNotFound(err))
	_, err = svc.GetByID(ctx, "missing")
	assert.Equal(t, class.ErrNotFound, err)

	classes, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, classes, 2)
	assert.Equal(t, cs101.ID, classes[0].ID)

	require.NoError(t, svc.Delete(ctx, cs101.ID))
	assert.NoError(t, svc.Delete(ctx, cs101.ID))
	classes, err = svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, classes, 1)
}

func TestLecturerService(t *testing.T) {
	ctx := context.Background()
	store, validate := setup(t)
	svc := lecturer.NewService(NewLecturerRepository(store), validate)

	first, err := svc.Create(ctx, lecturer.Form{Name: "Dr. X"})
	require.NoError(t, err)
	assert.False(t, first.CheckInDate.IsZero())
	assert.Equal(t, time.UTC, first.CheckInDate.Location())

	_, err = svc.Create(ctx, lecturer.Form{Name: " Dr. X"})
	require.Error(t, err)
	vErr, ok := err.(*core.ValidationError)
	require.True(t, ok)
	assert.Equal(t, lecturer.ErrExists, vErr.Err)
	assert.Equal(t, "name", vErr.Fields[0].Field)

	second, err := svc.Create(ctx, lecturer.Form{Name: "Dr. Y"})
	require.NoError(t, err)

	lecturers, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, lecturers, 2)
	assert.Equal(t, second.ID, lecturers[0].ID, "most recent check-in first")

	found, err := svc.FindByName(ctx, "Dr. Y ")
	require.NoError(t, err)
	assert.Equal(t, second.ID, found.ID)
	_, err = svc.FindByName(ctx, "Dr. Z")
	assert.True(t, core.IsNotFound(err))

	renamed, err := svc.Update(ctx, first.ID, lecturer.Form{Name: "Prof. X"})
	require.NoError(t, err)
	assert.Equal(t, "Prof. X", renamed.Name)
	assert.True(t, renamed.CheckInDate.Equal(first.CheckInDate))
}

func TestRoomService(t *testing.T) {
	ctx := context.Background()
	store, validate := setup(t)
	svc := room.NewService(NewRoomRepository(store), validate)

	a1, err := svc.Create(ctx, room.Form{Number: "A1"})
	require.NoError(t, err)

	_, err = svc.Create(ctx, room.Form{Number: "A1"})
	require.Error(t, err)
	vErr, ok := err.(*core.ValidationError)
	require.True(t, ok)
	assert.Equal(t, "Room already exists", vErr.Fields[0].Error)
	assert.Equal(t, "number", vErr.Fields[0].Field)

	got, err := svc.FindByNumber(ctx, "A1")
	require.NoError(t, err)
	assert.Equal(t, a1.ID, got.ID)

	require.NoError(t, svc.Delete(ctx, a1.ID))
	rooms, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, rooms)
}

func TestMovementService(t *testing.T) {
	ctx := context.Background()
	store, validate := setup(t)
	svc := movement.NewService(NewMovementRepository(store), validate)

	form := movement.Form{
		Day: movement.Monday, ClassName: "CS101", ClassSize: 30, BusType: "Coach", Capacity: 50,
		InCharge: "Dr. X", InChargePhone: "+250700000000",
	}
	mon, err := svc.Create(ctx, form)
	require.NoError(t, err)
	assert.False(t, mon.CreatedAt.IsZero())

	form.Day = movement.Tuesday
	tue, err := svc.Create(ctx, form)
	require.NoError(t, err)

	all, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, tue.ID, all[0].ID, "newest first")

	mondays, err := svc.ListByDay(ctx, movement.Monday)
	require.NoError(t, err)
	require.Len(t, mondays, 1)
	assert.Equal(t, mon.ID, mondays[0].ID)

	form.Day = movement.Friday
	form.ClassSize = 25
	moved, err := svc.Update(ctx, mon.ID, form)
	require.NoError(t, err)
	assert.Equal(t, mon.ID, moved.ID)
	assert.True(t, moved.CreatedAt.Equal(mon.CreatedAt))

	got, err := svc.GetByID(ctx, mon.ID)
	require.NoError(t, err)
	assert.Equal(t, movement.Friday, got.Day)
	assert.Equal(t, 25, got.ClassSize)

	form.Day = "Sunday"
	_, err = svc.Create(ctx, form)
	assert.IsType(t, validator.ValidationErrors{}, err)

	_, err = svc.Update(ctx, "missing", movement.Form{
		Day: movement.Monday, ClassName: "X", ClassSize: 1, BusType: "Y", Capacity: 1, InCharge: "Z", InChargePhone: "1",
	})
	assert.True(t, core.IsNotFound(err))
}
