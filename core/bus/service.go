package bus

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/campusmove/movplan/core"
)

var ErrNotFound = core.NewNotFoundError("bus")

type (
	Repository interface {
		QueryAllBuses(ctx context.Context) ([]Bus, error)
		GetBusByID(ctx context.Context, id string) (Bus, error)
		CreateBus(ctx context.Context, b Bus) (Bus, error)
		UpdateBus(ctx context.Context, b Bus) (Bus, error)
		DeleteBus(ctx context.Context, id string) error
	}

	Service struct {
		repo     Repository
		validate *validator.Validate
	}
)

func NewService(repo Repository, validate *validator.Validate) *Service {
	return &Service{repo: repo, validate: validate}
}

func (svc *Service) List(ctx context.Context) ([]Bus, error) {
	return svc.repo.QueryAllBuses(ctx)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Bus, error) {
	return svc.repo.GetBusByID(ctx, id)
}

func (svc *Service) Create(ctx context.Context, f Form) (Bus, error) {
	if err := f.Validate(svc.validate); err != nil {
		return Bus{}, err
	}
	b, err := svc.repo.CreateBus(ctx, f.bus(""))
	if err != nil {
		return Bus{}, errors.Wrap(err, "creating bus")
	}
	return b, nil
}

func (svc *Service) Update(ctx context.Context, id string, f Form) (Bus, error) {
	if err := f.Validate(svc.validate); err != nil {
		return Bus{}, err
	}
	b, err := svc.repo.UpdateBus(ctx, f.bus(id))
	if err != nil {
		return Bus{}, errors.Wrap(err, "updating bus")
	}
	return b, nil
}

func (svc *Service) Delete(ctx context.Context, id string) error {
	return errors.Wrap(svc.repo.DeleteBus(ctx, id), "deleting bus")
}
