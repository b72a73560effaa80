package docrepos

import (
	"context"
	"time"

	"github.com/campusmove/movplan/core/lecturer"
	"github.com/campusmove/movplan/storage/docstore"
)

type (
	lecturerRepository struct {
		col docstore.Collection
	}

	lecturerDoc struct {
		Name        string    `json:"name"`
		CheckInDate time.Time `json:"checkInDate"`
	}
)

var _ lecturer.Repository = (*lecturerRepository)(nil) // interface compliance check

func NewLecturerRepository(store docstore.Store) lecturer.Repository {
	return &lecturerRepository{col: store.Collection(Lecturers)}
}

func toLecturerDoc(lec lecturer.Lecturer) lecturerDoc {
	return lecturerDoc{Name: lec.Name, CheckInDate: lec.CheckInDate}
}

func fromLecturerDoc(doc docstore.Document) (lecturer.Lecturer, error) {
	var d lecturerDoc
	if err := doc.Decode(&d); err != nil {
		return lecturer.Lecturer{}, err
	}
	return lecturer.Lecturer{ID: doc.ID, Name: d.Name, CheckInDate: d.CheckInDate.UTC()}, nil
}

func (repo *lecturerRepository) find(ctx context.Context, q docstore.Query) ([]lecturer.Lecturer, error) {
	docs, err := repo.col.Find(ctx, q)
	if err != nil {
		return nil, notFound(err, lecturer.ErrNotFound, "querying lecturers")
	}
	lecturers := make([]lecturer.Lecturer, 0, len(docs))
	for _, doc := range docs {
		lec, err := fromLecturerDoc(doc)
		if err != nil {
			return nil, err
		}
		lecturers = append(lecturers, lec)
	}
	return lecturers, nil
}

// QueryAllLecturers lists by document creation, which is the check-in time.
func (repo *lecturerRepository) QueryAllLecturers(ctx context.Context) ([]lecturer.Lecturer, error) {
	return repo.find(ctx, docstore.Query{Desc: true})
}

func (repo *lecturerRepository) GetLecturerByID(ctx context.Context, id string) (lecturer.Lecturer, error) {
	doc, err := repo.col.Get(ctx, id)
	if err != nil {
		return lecturer.Lecturer{}, notFound(err, lecturer.ErrNotFound, "getting lecturer")
	}
	return fromLecturerDoc(doc)
}

func (repo *lecturerRepository) GetLecturerByName(ctx context.Context, name string) (lecturer.Lecturer, error) {
	lecturers, err := repo.find(ctx, docstore.Query{Where: []docstore.Filter{{Field: "name", Value: name}}})
	if err != nil {
		return lecturer.Lecturer{}, err
	}
	if len(lecturers) == 0 {
		return lecturer.Lecturer{}, lecturer.ErrNotFound
	}
	return lecturers[0], nil
}

func (repo *lecturerRepository) CreateLecturer(ctx context.Context, lec lecturer.Lecturer) (lecturer.Lecturer, error) {
	doc, err := repo.col.Add(ctx, toLecturerDoc(lec))
	if err != nil {
		return lecturer.Lecturer{}, notFound(err, lecturer.ErrNotFound, "adding lecturer")
	}
	lec.ID = doc.ID
	return lec, nil
}

func (repo *lecturerRepository) UpdateLecturer(ctx context.Context, lec lecturer.Lecturer) (lecturer.Lecturer, error) {
	if _, err := repo.col.Set(ctx, lec.ID, toLecturerDoc(lec)); err != nil {
		return lecturer.Lecturer{}, notFound(err, lecturer.ErrNotFound, "setting lecturer")
	}
	return lec, nil
}

func (repo *lecturerRepository) DeleteLecturer(ctx context.Context, id string) error {
	return notFound(repo.col.Delete(ctx, id), lecturer.ErrNotFound, "deleting lecturer")
}
