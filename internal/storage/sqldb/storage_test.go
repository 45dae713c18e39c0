package sqldb

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/qrkiosk/internal/model"
)

type StorageSuite struct {
	suite.Suite
	cfg     Config
	storage *Storage
	ctx     context.Context
	now     time.Time
}

func TestSQLiteStorageSuite(t *testing.T) {
	suite.Run(t, &StorageSuite{cfg: Config{Driver: DriverSQLite, DSN: ":memory:", MaxOpenConns: 1}})
}

func TestPostgresStorageSuite(t *testing.T) {
	dsn := os.Getenv("QRKIOSK_TEST_POSTGRES_URL")
	if dsn == "" {
		t.Skip("QRKIOSK_TEST_POSTGRES_URL not set")
	}
	suite.Run(t, &StorageSuite{cfg: Config{Driver: DriverPostgres, DSN: dsn, MaxOpenConns: 4}})
}

func (s *StorageSuite) SetupTest() {
	s.ctx = context.Background()
	s.now = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	store, err := New(s.ctx, s.cfg)
	s.Require().NoError(err)
	s.storage = store

	// Postgres keeps tables between tests
	_, err = store.db.ExecContext(s.ctx, `DELETE FROM room`)
	s.Require().NoError(err)
	_, err = store.db.ExecContext(s.ctx, `DELETE FROM group_name`)
	s.Require().NoError(err)
}

func (s *StorageSuite) TearDownTest() {
	_ = s.storage.Close()
}

func (s *StorageSuite) room(id, name string, offset time.Duration) *model.Room {
	return &model.Room{
		ChallengeID: model.ChallengeID(id),
		RoomID:      model.RoomID("R" + id),
		GroupID:     model.GroupID("group-" + id),
		GroupName:   name,
		Difficulty:  2,
		MemberCount: 4,
		QueueNumber: "007",
		Status:      model.RoomStatusWaiting,
		StartTime:   s.now.Add(offset),
		CreatedAt:   s.now.Add(offset),
		UpdatedAt:   s.now.Add(offset),
	}
}

// Room tests

func (s *StorageSuite) TestSaveAndGetRoom() {
	room := s.room("c1", "Alpha", 0)
	s.Require().NoError(s.storage.SaveRoom(s.ctx, room))

	retrieved, err := s.storage.GetRoom(s.ctx, "c1")
	s.Require().NoError(err)
	s.Equal(*room, *retrieved)
}

func (s *StorageSuite) TestSaveRoomOverwrites() {
	room := s.room("c1", "Alpha", 0)
	s.Require().NoError(s.storage.SaveRoom(s.ctx, room))

	room.Difficulty = 4
	room.UpdatedAt = s.now.Add(time.Hour)
	s.Require().NoError(s.storage.SaveRoom(s.ctx, room))

	retrieved, err := s.storage.GetRoom(s.ctx, "c1")
	s.Require().NoError(err)
	s.Equal(4, retrieved.Difficulty)
	s.True(retrieved.UpdatedAt.Equal(s.now.Add(time.Hour)))

	rooms, err := s.storage.ListRooms(s.ctx)
	s.Require().NoError(err)
	s.Len(rooms, 1)
}

func (s *StorageSuite) TestGetRoomNotFound() {
	_, err := s.storage.GetRoom(s.ctx, "nonexistent")
	s.ErrorIs(err, model.ErrRoomNotFound)
}

func (s *StorageSuite) TestListRoomsOrderedByCreation() {
	_ = s.storage.SaveRoom(s.ctx, s.room("c2", "Beta", time.Minute))
	_ = s.storage.SaveRoom(s.ctx, s.room("c1", "Alpha", 0))
	_ = s.storage.SaveRoom(s.ctx, s.room("c3", "Gamma", 2*time.Minute))

	rooms, err := s.storage.ListRooms(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(rooms, 3)
	s.Equal(model.ChallengeID("c1"), rooms[0].ChallengeID)
	s.Equal(model.ChallengeID("c2"), rooms[1].ChallengeID)
	s.Equal(model.ChallengeID("c3"), rooms[2].ChallengeID)
}

func (s *StorageSuite) TestListRoomsEmpty() {
	rooms, err := s.storage.ListRooms(s.ctx)
	s.Require().NoError(err)
	s.NotNil(rooms)
	s.Empty(rooms)
}

func (s *StorageSuite) TestDeleteRoom() {
	_ = s.storage.SaveRoom(s.ctx, s.room("c1", "Alpha", 0))

	s.Require().NoError(s.storage.DeleteRoom(s.ctx, "c1"))

	_, err := s.storage.GetRoom(s.ctx, "c1")
	s.ErrorIs(err, model.ErrRoomNotFound)
	s.ErrorIs(s.storage.DeleteRoom(s.ctx, "c1"), model.ErrRoomNotFound)
}

// Group tests

func (s *StorageSuite) TestFindGroupByNameNormalizes() {
	_ = s.storage.SaveRoom(s.ctx, s.room("c1", "Team  Alpha", 0))

	id, err := s.storage.FindGroupByName(s.ctx, " team alpha ")
	s.Require().NoError(err)
	s.Equal(model.GroupID("group-c1"), id)
}

func (s *StorageSuite) TestFindGroupByNameNotFound() {
	_, err := s.storage.FindGroupByName(s.ctx, "Nobody")
	s.ErrorIs(err, model.ErrGroupNotFound)
}

func (s *StorageSuite) TestGroupOutlivesRoom() {
	_ = s.storage.SaveRoom(s.ctx, s.room("c1", "Alpha", 0))
	_ = s.storage.DeleteRoom(s.ctx, "c1")

	id, err := s.storage.FindGroupByName(s.ctx, "Alpha")
	s.Require().NoError(err)
	s.Equal(model.GroupID("group-c1"), id)
}

func TestRebind(t *testing.T) {
	query := `SELECT a FROM t WHERE b = ? AND c = ?`
	assert.Equal(t, query, rebind(DriverSQLite, query))
	assert.Equal(t, `SELECT a FROM t WHERE b = $1 AND c = $2`, rebind(DriverPostgres, query))
}

func TestNewRejectsBadConfig(t *testing.T) {
	_, err := New(context.Background(), Config{Driver: "mysql", DSN: "x"})
	assert.Error(t, err)

	_, err = New(context.Background(), Config{Driver: DriverSQLite})
	assert.Error(t, err)
}
