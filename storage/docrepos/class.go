package docrepos

import (
	"context"

	"github.com/campusmove/movplan/core/class"
	"github.com/campusmove/movplan/storage/docstore"
)

type (
	classRepository struct {
		col docstore.Collection
	}

	classDoc struct {
		Name string `json:"name"`
		Size int    `json:"size"`
	}
)

var _ class.Repository = (*classRepository)(nil) // interface compliance check

func NewClassRepository(store docstore.Store) class.Repository {
	return &classRepository{col: store.Collection(Classes)}
}

func toClassDoc(cls class.Class) classDoc {
	return classDoc{Name: cls.Name, Size: cls.Size}
}

func fromClassDoc(doc docstore.Document) (class.Class, error) {
	var d classDoc
	if err := doc.Decode(&d); err != nil {
		return class.Class{}, err
	}
	return class.Class{ID: doc.ID, Name: d.Name, Size: d.Size}, nil
}

func (repo *classRepository) QueryAllClasses(ctx context.Context) ([]class.Class, error) {
	docs, err := repo.col.Find(ctx, docstore.Query{})
	if err != nil {
		return nil, notFound(err, class.ErrNotFound, "querying classes")
	}
	classes := make([]class.Class, 0, len(docs))
	for _, doc := range docs {
		cls, err := fromClassDoc(doc)
		if err != nil {
			return nil, err
		}
		classes = append(classes, cls)
	}
	return classes, nil
}

func (repo *classRepository) GetClassByID(ctx context.Context, id string) (class.Class, error) {
	doc, err := repo.col.Get(ctx, id)
	if err != nil {
		return class.Class{}, notFound(err, class.ErrNotFound, "getting class")
	}
	return fromClassDoc(doc)
}

func (repo *classRepository) CreateClass(ctx context.Context, cls class.Class) (class.Class, error) {
	doc, err := repo.col.Add(ctx, toClassDoc(cls))
	if err != nil {
		return class.Class{}, notFound(err, class.ErrNotFound, "adding class")
	}
	cls.ID = doc.ID
	return cls, nil
}

func (repo *classRepository) UpdateClass(ctx context.Context, cls class.Class) (class.Class, error) {
	if _, err := repo.col.Set(ctx, cls.ID, toClassDoc(cls)); err != nil {
		return class.Class{}, notFound(err, class.ErrNotFound, "setting class")
	}
	return cls, nil
}

func (repo *classRepository) DeleteClass(ctx context.Context, id string) error {
	return notFound(repo.col.Delete(ctx, id), class.ErrNotFound, "deleting class")
}
