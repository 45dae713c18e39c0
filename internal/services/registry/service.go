// Package registry registers kiosk groups into rooms and lets staff maintain them.
package registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/mcoot/qrkiosk/internal/dependencies/clock"
	"github.com/mcoot/qrkiosk/internal/dependencies/random"
	"github.com/mcoot/qrkiosk/internal/model"
	"github.com/mcoot/qrkiosk/internal/storage"
)

const (
	// RoomCodeLength is the number of digits after the room code prefix
	RoomCodeLength = 3
	// RoomCodePrefix starts every room code
	RoomCodePrefix = "R"
	// RoomCodeAlphabet is the characters used in room codes
	RoomCodeAlphabet = "0123456789"
	// QueueNumberLength is the exact length of a queue number
	QueueNumberLength = 3

	maxRoomCodeAttempts = 32
)

// ErrRoomCodesExhausted is returned when no unused room code could be drawn
var ErrRoomCodesExhausted = errors.New("no unused room code available")

// Service manages room registrations
type Service struct {
	storage storage.Storage
	clock   clock.Clock
	random  random.Random
	logger  *slog.Logger

	// mu serializes Register so the name check, room code draw and save act as one step
	mu sync.Mutex
}

// New creates a new registry Service
func New(
	storage storage.Storage,
	clock clock.Clock,
	random random.Random,
	logger *slog.Logger,
) *Service {
	return &Service{
		storage: storage,
		clock:   clock,
		random:  random,
		logger:  logger.With(slog.String("component", "registry")),
	}
}

// Register validates reg and books a room for the group.
// A group name seen before is refused with ErrDuplicateGroupName unless reg.DupCheck
// is set, in which case the existing group id is reused.
func (s *Service) Register(ctx context.Context, reg model.Registration) (*model.Room, error) {
	if err := validateRegistration(reg); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(reg.GroupName)

	s.mu.Lock()
	defer s.mu.Unlock()

	groupID, err := s.storage.FindGroupByName(ctx, name)
	switch {
	case err == nil:
		if !reg.DupCheck {
			s.logger.Info("duplicate group name refused", slog.String("group", name))
			return nil, model.ErrDuplicateGroupName
		}
	case errors.Is(err, model.ErrGroupNotFound):
		groupID = model.GroupID(s.random.UUID())
	default:
		return nil, err
	}

	roomID, err := s.allocateRoomID(ctx)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	room := &model.Room{
		ChallengeID: model.ChallengeID(s.random.UUID()),
		RoomID:      roomID,
		GroupID:     groupID,
		GroupName:   name,
		Difficulty:  reg.Difficulty,
		MemberCount: reg.PlayerCount,
		QueueNumber: reg.QueueNumber,
		Status:      model.RoomStatusWaiting,
		StartTime:   now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.storage.SaveRoom(ctx, room); err != nil {
		return nil, err
	}

	s.logger.Info("group registered",
		slog.String("challenge_id", string(room.ChallengeID)),
		slog.String("room_id", string(room.RoomID)),
		slog.String("group_id", string(room.GroupID)),
		slog.Bool("returning", reg.DupCheck))
	return room, nil
}

// ListRooms returns every room, oldest first
func (s *Service) ListRooms(ctx context.Context) ([]*model.Room, error) {
	return s.storage.ListRooms(ctx)
}

// GetRoom retrieves a room by challenge id
func (s *Service) GetRoom(ctx context.Context, id model.ChallengeID) (*model.Room, error) {
	return s.storage.GetRoom(ctx, id)
}

// UpdateRoom applies staff edits to a room
func (s *Service) UpdateRoom(ctx context.Context, id model.ChallengeID, update model.RoomUpdate) (*model.Room, error) {
	room, err := s.storage.GetRoom(ctx, id)
	if err != nil {
		return nil, err
	}

	if update.GroupName != nil {
		name := strings.TrimSpace(*update.GroupName)
		if name == "" {
			return nil, fmt.Errorf("%w: group name is required", model.ErrInvalidRoomUpdate)
		}
		room.GroupName = name
	}
	if update.Difficulty != nil {
		if !validDifficulty(*update.Difficulty) {
			return nil, fmt.Errorf("%w: difficulty must be %d-%d", model.ErrInvalidRoomUpdate, model.MinDifficulty, model.MaxDifficulty)
		}
		room.Difficulty = *update.Difficulty
	}
	if update.MemberCount != nil {
		if *update.MemberCount < 1 {
			return nil, fmt.Errorf("%w: member count must be at least 1", model.ErrInvalidRoomUpdate)
		}
		room.MemberCount = *update.MemberCount
	}
	if update.Status != nil {
		room.Status = *update.Status
	}
	if update.StartTime != nil {
		room.StartTime = *update.StartTime
	}
	room.UpdatedAt = s.clock.Now()

	if err := s.storage.SaveRoom(ctx, room); err != nil {
		return nil, err
	}
	s.logger.Info("room updated", slog.String("challenge_id", string(id)))
	return room, nil
}

// DeleteRoom removes a room. The group name stays known.
func (s *Service) DeleteRoom(ctx context.Context, id model.ChallengeID) error {
	if err := s.storage.DeleteRoom(ctx, id); err != nil {
		return err
	}
	s.logger.Info("room deleted", slog.String("challenge_id", string(id)))
	return nil
}

func (s *Service) allocateRoomID(ctx context.Context) (model.RoomID, error) {
	rooms, err := s.storage.ListRooms(ctx)
	if err != nil {
		return "", err
	}
	inUse := make(map[model.RoomID]bool, len(rooms))
	for _, r := range rooms {
		inUse[r.RoomID] = true
	}

	for range maxRoomCodeAttempts {
		id := model.RoomID(RoomCodePrefix + s.random.String(RoomCodeLength, RoomCodeAlphabet))
		if !inUse[id] {
			return id, nil
		}
	}
	return "", ErrRoomCodesExhausted
}

func validateRegistration(reg model.Registration) error {
	if strings.TrimSpace(reg.GroupName) == "" {
		return fmt.Errorf("%w: group name is required", model.ErrInvalidRegistration)
	}
	if reg.PlayerCount < 1 {
		return fmt.Errorf("%w: player count must be at least 1", model.ErrInvalidRegistration)
	}
	if !validDifficulty(reg.Difficulty) {
		return fmt.Errorf("%w: difficulty must be %d-%d", model.ErrInvalidRegistration, model.MinDifficulty, model.MaxDifficulty)
	}
	if !validQueueNumber(reg.QueueNumber) {
		return fmt.Errorf("%w: queue number must be %d digits", model.ErrInvalidRegistration, QueueNumberLength)
	}
	return nil
}

func validDifficulty(d int) bool {
	return d >= model.MinDifficulty && d <= model.MaxDifficulty
}

func validQueueNumber(q string) bool {
	if len(q) != QueueNumberLength {
		return false
	}
	for _, r := range q {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
