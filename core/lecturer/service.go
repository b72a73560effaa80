package lecturer

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	pkgerrors "github.com/pkg/errors"

	"github.com/campusmove/movplan/core"
)

var (
	nowFunc = time.Now // mockable

	// errors
	ErrNotFound = core.NewNotFoundError("lecturer")
	ErrExists   = errors.New("Lecturer is already checked in")
)

type (
	Repository interface {
		// QueryAllLecturers returns lecturers by check-in date, most recent first.
		QueryAllLecturers(ctx context.Context) ([]Lecturer, error)
		GetLecturerByID(ctx context.Context, id string) (Lecturer, error)
		// GetLecturerByName returns ErrNotFound when no lecturer is called name.
		GetLecturerByName(ctx context.Context, name string) (Lecturer, error)
		CreateLecturer(ctx context.Context, lec Lecturer) (Lecturer, error)
		UpdateLecturer(ctx context.Context, lec Lecturer) (Lecturer, error)
		DeleteLecturer(ctx context.Context, id string) error
	}

	Service struct {
		repo     Repository
		validate *validator.Validate
	}
)

func NewService(repo Repository, validate *validator.Validate) *Service {
	return &Service{repo: repo, validate: validate}
}

func (svc *Service) List(ctx context.Context) ([]Lecturer, error) {
	return svc.repo.QueryAllLecturers(ctx)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Lecturer, error) {
	return svc.repo.GetLecturerByID(ctx, id)
}

// FindByName returns ErrNotFound when nobody called name is checked in.
func (svc *Service) FindByName(ctx context.Context, name string) (Lecturer, error) {
	return svc.repo.GetLecturerByName(ctx, core.CleanString(name))
}

// checkUniqueness is not transactional: two concurrent check-ins may both pass.
func (svc *Service) checkUniqueness(ctx context.Context, name string) error {
	_, err := svc.repo.GetLecturerByName(ctx, name)
	switch {
	case err == nil:
		return core.NewValidationError(ErrExists, core.FieldError{Field: "name", Error: ErrExists.Error()})
	case core.IsNotFound(err):
		return nil
	default:
		return pkgerrors.Wrap(err, "finding lecturer by name")
	}
}

// Create checks a lecturer in, stamping the check-in date.
func (svc *Service) Create(ctx context.Context, f Form) (Lecturer, error) {
	if err := f.Validate(svc.validate); err != nil {
		return Lecturer{}, err
	}
	if err := svc.checkUniqueness(ctx, f.Name); err != nil {
		return Lecturer{}, err
	}
	lec, err := svc.repo.CreateLecturer(ctx, Lecturer{Name: f.Name, CheckInDate: nowFunc().UTC()})
	if err != nil {
		return Lecturer{}, pkgerrors.Wrap(err, "creating lecturer")
	}
	return lec, nil
}

// Update renames a lecturer; the check-in date is kept.
func (svc *Service) Update(ctx context.Context, id string, f Form) (Lecturer, error) {
	if err := f.Validate(svc.validate); err != nil {
		return Lecturer{}, err
	}
	lec, err := svc.repo.GetLecturerByID(ctx, id)
	if err != nil {
		return Lecturer{}, err
	}
	lec.Name = f.Name
	if lec, err = svc.repo.UpdateLecturer(ctx, lec); err != nil {
		return Lecturer{}, pkgerrors.Wrap(err, "updating lecturer")
	}
	return lec, nil
}

func (svc *Service) Delete(ctx context.Context, id string) error {
	return pkgerrors.Wrap(svc.repo.DeleteLecturer(ctx, id), "deleting lecturer")
}
