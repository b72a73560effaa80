package room

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	pkgerrors "github.com/pkg/errors"

	"github.com/campusmove/movplan/core"
)

var (
	ErrNotFound = core.NewNotFoundError("room")
	ErrExists   = errors.New("Room already exists")
)

type (
	Repository interface {
		QueryAllRooms(ctx context.Context) ([]Room, error)
		GetRoomByID(ctx context.Context, id string) (Room, error)
		// GetRoomByNumber returns ErrNotFound when no room has this number.
		GetRoomByNumber(ctx context.Context, number string) (Room, error)
		CreateRoom(ctx context.Context, r Room) (Room, error)
		UpdateRoom(ctx context.Context, r Room) (Room, error)
		DeleteRoom(ctx context.Context, id string) error
	}

	Service struct {
		repo     Repository
		validate *validator.Validate
	}
)

func NewService(repo Repository, validate *validator.Validate) *Service {
	return &Service{repo: repo, validate: validate}
}

func (svc *Service) List(ctx context.Context) ([]Room, error) {
	return svc.repo.QueryAllRooms(ctx)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Room, error) {
	return svc.repo.GetRoomByID(ctx, id)
}

func (svc *Service) FindByNumber(ctx context.Context, number string) (Room, error) {
	return svc.repo.GetRoomByNumber(ctx, core.CleanString(number))
}

func (svc *Service) checkUniqueness(ctx context.Context, number string) error {
	_, err := svc.repo.GetRoomByNumber(ctx, number)
	switch {
	case err == nil:
		return core.NewValidationError(ErrExists, core.FieldError{Field: "number", Error: ErrExists.Error()})
	case core.IsNotFound(err):
		return nil
	default:
		return pkgerrors.Wrap(err, "finding room by number")
	}
}

func (svc *Service) Create(ctx context.Context, f Form) (Room, error) {
	if err := f.Validate(svc.validate); err != nil {
		return Room{}, err
	}
	if err := svc.checkUniqueness(ctx, f.Number); err != nil {
		return Room{}, err
	}
	r, err := svc.repo.CreateRoom(ctx, Room{Number: f.Number})
	if err != nil {
		return Room{}, pkgerrors.Wrap(err, "creating room")
	}
	return r, nil
}

func (svc *Service) Update(ctx context.Context, id string, f Form) (Room, error) {
	if err := f.Validate(svc.validate); err != nil {
		return Room{}, err
	}
	r, err := svc.repo.UpdateRoom(ctx, Room{ID: id, Number: f.Number})
	if err != nil {
		return Room{}, pkgerrors.Wrap(err, "updating room")
	}
	return r, nil
}

func (svc *Service) Delete(ctx context.Context, id string) error {
	return pkgerrors.Wrap(svc.repo.DeleteRoom(ctx, id), "deleting room")
}
