package class

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/campusmove/movplan/core"
)

var ErrNotFound = core.NewNotFoundError("class")

type (
	Repository interface {
		QueryAllClasses(ctx context.Context) ([]Class, error)
		GetClassByID(ctx context.Context, id string) (Class, error)
		CreateClass(ctx context.Context, cls Class) (Class, error)
		UpdateClass(ctx context.Context, cls Class) (Class, error)
		DeleteClass(ctx context.Context, id string) error
	}

	Service struct {
		repo     Repository
		validate *validator.Validate
	}
)

func NewService(repo Repository, validate *validator.Validate) *Service {
	return &Service{repo: repo, validate: validate}
}

func (svc *Service) List(ctx context.Context) ([]Class, error) {
	return svc.repo.QueryAllClasses(ctx)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Class, error) {
	return svc.repo.GetClassByID(ctx, id)
}

func (svc *Service) Create(ctx context.Context, f Form) (Class, error) {
	if err := f.Validate(svc.validate); err != nil {
		return Class{}, err
	}
	cls, err := svc.repo.CreateClass(ctx, f.class(""))
	if err != nil {
		return Class{}, errors.Wrap(err, "creating class")
	}
	return cls, nil
}

func (svc *Service) Update(ctx context.Context, id string, f Form) (Class, error) {
	if err := f.Validate(svc.validate); err != nil {
		return Class{}, err
	}
	cls, err := svc.repo.UpdateClass(ctx, f.class(id))
	if err != nil {
		return Class{}, errors.Wrap(err, "updating class")
	}
	return cls, nil
}

// Delete never cascades to movements referencing the class by name.
func (svc *Service) Delete(ctx context.Context, id string) error {
	return errors.Wrap(svc.repo.DeleteClass(ctx, id), "deleting class")
}
