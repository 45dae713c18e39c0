package memory

import (
	"context"
	"sync"

	"github.com/mcoot/qrkiosk/internal/model"
	"github.com/mcoot/qrkiosk/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu sync.RWMutex

	rooms      map[model.ChallengeID]*model.Room
	groupIndex map[string]model.GroupID // normalized name -> group
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		rooms:      make(map[model.ChallengeID]*model.Room),
		groupIndex: make(map[string]model.GroupID),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Room operations

func (s *Storage) SaveRoom(ctx context.Context, room *model.Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := *room
	s.rooms[room.ChallengeID] = &stored
	s.groupIndex[model.NormalizeGroupName(room.GroupName)] = room.GroupID
	return nil
}

func (s *Storage) GetRoom(ctx context.Context, id model.ChallengeID) (*model.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	room, ok := s.rooms[id]
	if !ok {
		return nil, model.ErrRoomNotFound
	}
	out := *room
	return &out, nil
}

func (s *Storage) ListRooms(ctx context.Context) ([]*model.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rooms := make([]*model.Room, 0, len(s.rooms))
	for _, room := range s.rooms {
		out := *room
		rooms = append(rooms, &out)
	}
	storage.SortRooms(rooms)
	return rooms, nil
}

func (s *Storage) DeleteRoom(ctx context.Context, id model.ChallengeID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rooms[id]; !ok {
		return model.ErrRoomNotFound
	}
	delete(s.rooms, id)
	return nil
}

// Group operations

func (s *Storage) FindGroupByName(ctx context.Context, name string) (model.GroupID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.groupIndex[model.NormalizeGroupName(name)]
	if !ok {
		return "", model.ErrGroupNotFound
	}
	return id, nil
}
