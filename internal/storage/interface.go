package storage

import (
	"context"

	"github.com/mcoot/qrkiosk/internal/model"
)

// Storage defines the interface for data persistence
type Storage interface {
	// Room operations
	SaveRoom(ctx context.Context, room *model.Room) error
	GetRoom(ctx context.Context, id model.ChallengeID) (*model.Room, error)
	// ListRooms returns every room ordered by creation time, oldest first
	ListRooms(ctx context.Context) ([]*model.Room, error)
	DeleteRoom(ctx context.Context, id model.ChallengeID) error

	// Group operations. Saving a room records its group name; the record
	// outlives the room so returning groups keep their id.
	FindGroupByName(ctx context.Context, name string) (model.GroupID, error)
}
