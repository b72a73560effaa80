package docrepos

import (
	"context"
	"time"

	"github.com/campusmove/movplan/core/movement"
	"github.com/campusmove/movplan/storage/docstore"
)

type (
	movementRepository struct {
		col docstore.Collection
	}

	movementDoc struct {
		Day           string    `json:"day"`
		ClassName     string    `json:"className"`
		ClassSize     int       `json:"classSize"`
		BusType       string    `json:"busType"`
		Capacity      int       `json:"capacity"`
		InCharge      string    `json:"inCharge"`
		InChargePhone string    `json:"inChargePhone"`
		CreatedAt     time.Time `json:"createdAt"`
	}
)

var _ movement.Repository = (*movementRepository)(nil) // interface compliance check

func NewMovementRepository(store docstore.Store) movement.Repository {
	return &movementRepository{col: store.Collection(Movements)}
}

func toMovementDoc(m movement.Movement) movementDoc {
	return movementDoc{
		Day:           m.Day,
		ClassName:     m.ClassName,
		ClassSize:     m.ClassSize,
		BusType:       m.BusType,
		Capacity:      m.Capacity,
		InCharge:      m.InCharge,
		InChargePhone: m.InChargePhone,
		CreatedAt:     m.CreatedAt,
	}
}

func fromMovementDoc(doc docstore.Document) (movement.Movement, error) {
	var d movementDoc
	if err := doc.Decode(&d); err != nil {
		return movement.Movement{}, err
	}
	createdAt := d.CreatedAt
	if createdAt.IsZero() {
		createdAt = doc.CreatedAt
	}
	return movement.Movement{
		ID:            doc.ID,
		Day:           d.Day,
		ClassName:     d.ClassName,
		ClassSize:     d.ClassSize,
		BusType:       d.BusType,
		Capacity:      d.Capacity,
		InCharge:      d.InCharge,
		InChargePhone: d.InChargePhone,
		CreatedAt:     createdAt.UTC(),
	}, nil
}

func (repo *movementRepository) find(ctx context.Context, q docstore.Query) ([]movement.Movement, error) {
	docs, err := repo.col.Find(ctx, q)
	if err != nil {
		return nil, notFound(err, movement.ErrNotFound, "querying movements")
	}
	movements := make([]movement.Movement, 0, len(docs))
	for _, doc := range docs {
		m, err := fromMovementDoc(doc)
		if err != nil {
			return nil, err
		}
		movements = append(movements, m)
	}
	return movements, nil
}

func (repo *movementRepository) QueryAllMovements(ctx context.Context) ([]movement.Movement, error) {
	return repo.find(ctx, docstore.Query{Desc: true})
}

func (repo *movementRepository) QueryMovementsByDay(ctx context.Context, day string) ([]movement.Movement, error) {
	return repo.find(ctx, docstore.Query{Where: []docstore.Filter{{Field: "day", Value: day}}, Desc: true})
}

func (repo *movementRepository) GetMovementByID(ctx context.Context, id string) (movement.Movement, error) {
	doc, err := repo.col.Get(ctx, id)
	if err != nil {
		return movement.Movement{}, notFound(err, movement.ErrNotFound, "getting movement")
	}
	return fromMovementDoc(doc)
}

func (repo *movementRepository) CreateMovement(ctx context.Context, m movement.Movement) (movement.Movement, error) {
	doc, err := repo.col.Add(ctx, toMovementDoc(m))
	if err != nil {
		return movement.Movement{}, notFound(err, movement.ErrNotFound, "adding movement")
	}
	m.ID = doc.ID
	return m, nil
}

func (repo *movementRepository) UpdateMovement(ctx context.Context, m movement.Movement) (movement.Movement, error) {
	if _, err := repo.col.Set(ctx, m.ID, toMovementDoc(m)); err != nil {
		return movement.Movement{}, notFound(err, movement.ErrNotFound, "setting movement")
	}
	return m, nil
}

func (repo *movementRepository) DeleteMovement(ctx context.Context, id string) error {
	return notFound(repo.col.Delete(ctx, id), movement.ErrNotFound, "deleting movement")
}
