package movement

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/campusmove/movplan/core"
)

var (
	nowFunc = time.Now // mockable

	ErrNotFound = core.NewNotFoundError("movement")
)

type (
	Repository interface {
		// QueryAllMovements returns movements by creation date, most recent first.
		QueryAllMovements(ctx context.Context) ([]Movement, error)
		// QueryMovementsByDay returns the movements of day, most recent first.
		QueryMovementsByDay(ctx context.Context, day string) ([]Movement, error)
		GetMovementByID(ctx context.Context, id string) (Movement, error)
		CreateMovement(ctx context.Context, m Movement) (Movement, error)
		UpdateMovement(ctx context.Context, m Movement) (Movement, error)
		DeleteMovement(ctx context.Context, id string) error
	}

	Service struct {
		repo     Repository
		validate *validator.Validate
	}
)

func NewService(repo Repository, validate *validator.Validate) *Service {
	return &Service{repo: repo, validate: validate}
}

func (svc *Service) List(ctx context.Context) ([]Movement, error) {
	return svc.repo.QueryAllMovements(ctx)
}

func (svc *Service) ListByDay(ctx context.Context, day string) ([]Movement, error) {
	return svc.repo.QueryMovementsByDay(ctx, core.CleanString(day))
}

func (svc *Service) GetByID(ctx context.Context, id string) (Movement, error) {
	return svc.repo.GetMovementByID(ctx, id)
}

func (svc *Service) Create(ctx context.Context, f Form) (Movement, error) {
	if err := f.Validate(svc.validate); err != nil {
		return Movement{}, err
	}
	m, err := svc.repo.CreateMovement(ctx, f.movement("", nowFunc().UTC()))
	if err != nil {
		return Movement{}, errors.Wrap(err, "creating movement")
	}
	return m, nil
}

// Update replaces every field of the movement but its creation date.
func (svc *Service) Update(ctx context.Context, id string, f Form) (Movement, error) {
	if err := f.Validate(svc.validate); err != nil {
		return Movement{}, err
	}
	orig, err := svc.repo.GetMovementByID(ctx, id)
	if err != nil {
		return Movement{}, err
	}
	m, err := svc.repo.UpdateMovement(ctx, f.movement(id, orig.CreatedAt))
	if err != nil {
		return Movement{}, errors.Wrap(err, "updating movement")
	}
	return m, nil
}

func (svc *Service) Delete(ctx context.Context, id string) error {
	return errors.Wrap(svc.repo.DeleteMovement(ctx, id), "deleting movement")
}
