package docrepos

import (
	"context"

	"github.com/campusmove/movplan/core/room"
	"github.com/campusmove/movplan/storage/docstore"
)

type (
	roomRepository struct {
		col docstore.Collection
	}

	roomDoc struct {
		Number string `json:"number"`
	}
)

var _ room.Repository = (*roomRepository)(nil) // interface compliance check

func NewRoomRepository(store docstore.Store) room.Repository {
	return &roomRepository{col: store.Collection(Rooms)}
}

func fromRoomDoc(doc docstore.Document) (room.Room, error) {
	var d roomDoc
	if err := doc.Decode(&d); err != nil {
		return room.Room{}, err
	}
	return room.Room{ID: doc.ID, Number: d.Number}, nil
}

func (repo *roomRepository) find(ctx context.Context, q docstore.Query) ([]room.Room, error) {
	docs, err := repo.col.Find(ctx, q)
	if err != nil {
		return nil, notFound(err, room.ErrNotFound, "querying rooms")
	}
	rooms := make([]room.Room, 0, len(docs))
	for _, doc := range docs {
		r, err := fromRoomDoc(doc)
		if err != nil {
			return nil, err
		}
		rooms = append(rooms, r)
	}
	return rooms, nil
}

func (repo *roomRepository) QueryAllRooms(ctx context.Context) ([]room.Room, error) {
	return repo.find(ctx, docstore.Query{})
}

func (repo *roomRepository) GetRoomByID(ctx context.Context, id string) (room.Room, error) {
	doc, err := repo.col.Get(ctx, id)
	if err != nil {
		return room.Room{}, notFound(err, room.ErrNotFound, "getting room")
	}
	return fromRoomDoc(doc)
}

func (repo *roomRepository) GetRoomByNumber(ctx context.Context, number string) (room.Room, error) {
	rooms, err := repo.find(ctx, docstore.Query{Where: []docstore.Filter{{Field: "number", Value: number}}})
	if err != nil {
		return room.Room{}, err
	}
	if len(rooms) == 0 {
		return room.Room{}, room.ErrNotFound
	}
	return rooms[0], nil
}

func (repo *roomRepository) CreateRoom(ctx context.Context, r room.Room) (room.Room, error) {
	doc, err := repo.col.Add(ctx, roomDoc{Number: r.Number})
	if err != nil {
		return room.Room{}, notFound(err, room.ErrNotFound, "adding room")
	}
	r.ID = doc.ID
	return r, nil
}

func (repo *roomRepository) UpdateRoom(ctx context.Context, r room.Room) (room.Room, error) {
	if _, err := repo.col.Set(ctx, r.ID, roomDoc{Number: r.Number}); err != nil {
		return room.Room{}, notFound(err, room.ErrNotFound, "setting room")
	}
	return r, nil
}

func (repo *roomRepository) DeleteRoom(ctx context.Context, id string) error {
	return notFound(repo.col.Delete(ctx, id), room.ErrNotFound, "deleting room")
}
