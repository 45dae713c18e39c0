// Package sqldb implements storage on SQLite or Postgres through database/sql.
package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"time"

	// Database drivers
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/mcoot/qrkiosk/internal/model"
	"github.com/mcoot/qrkiosk/internal/storage"
)

const roomColumns = `challenge_id, room_id, group_id, group_name, difficulty, member_count,
    queue_number, status, start_time, created_at, updated_at`

// Storage is a SQL-backed implementation of the storage interface
type Storage struct {
	db     *sql.DB
	driver string
}

// New opens the database, verifies the connection and creates the schema
func New(ctx context.Context, cfg Config) (*Storage, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	db, err := sql.Open(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, err
	}
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}

	// Verify connection
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, err
	}

	if err := createSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Storage{db: db, driver: cfg.Driver}, nil
}

// Close closes the database
func (s *Storage) Close() error {
	return s.db.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

func (s *Storage) q(query string) string {
	return rebind(s.driver, query)
}

// Room operations

func (s *Storage) SaveRoom(ctx context.Context, room *model.Room) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, s.q(`INSERT INTO room (`+roomColumns+`)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (challenge_id) DO UPDATE SET
    room_id = excluded.room_id,
    group_id = excluded.group_id,
    group_name = excluded.group_name,
    difficulty = excluded.difficulty,
    member_count = excluded.member_count,
    queue_number = excluded.queue_number,
    status = excluded.status,
    start_time = excluded.start_time,
    created_at = excluded.created_at,
    updated_at = excluded.updated_at`),
		string(room.ChallengeID), string(room.RoomID), string(room.GroupID), room.GroupName,
		room.Difficulty, room.MemberCount, room.QueueNumber, string(room.Status),
		room.StartTime.UnixNano(), room.CreatedAt.UnixNano(), room.UpdatedAt.UnixNano())
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, s.q(`INSERT INTO group_name (normalized_name, group_id)
VALUES (?, ?)
ON CONFLICT (normalized_name) DO UPDATE SET group_id = excluded.group_id`),
		model.NormalizeGroupName(room.GroupName), string(room.GroupID))
	if err != nil {
		return err
	}

	return tx.Commit()
}

func (s *Storage) GetRoom(ctx context.Context, id model.ChallengeID) (*model.Room, error) {
	row := s.db.QueryRowContext(ctx, s.q(`SELECT `+roomColumns+` FROM room WHERE challenge_id = ?`), string(id))
	room, err := scanRoom(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrRoomNotFound
		}
		return nil, err
	}
	return room, nil
}

func (s *Storage) ListRooms(ctx context.Context) ([]*model.Room, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+roomColumns+` FROM room ORDER BY created_at, challenge_id`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	rooms := []*model.Room{}
	for rows.Next() {
		room, err := scanRoom(rows)
		if err != nil {
			return nil, err
		}
		rooms = append(rooms, room)
	}
	return rooms, rows.Err()
}

func (s *Storage) DeleteRoom(ctx context.Context, id model.ChallengeID) error {
	res, err := s.db.ExecContext(ctx, s.q(`DELETE FROM room WHERE challenge_id = ?`), string(id))
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return model.ErrRoomNotFound
	}
	return nil
}

// Group operations

func (s *Storage) FindGroupByName(ctx context.Context, name string) (model.GroupID, error) {
	var id string
	err := s.db.QueryRowContext(ctx, s.q(`SELECT group_id FROM group_name WHERE normalized_name = ?`),
		model.NormalizeGroupName(name)).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", model.ErrGroupNotFound
		}
		return "", err
	}
	return model.GroupID(id), nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRoom(row rowScanner) (*model.Room, error) {
	var (
		room                        model.Room
		challengeID, roomID, group  string
		status                      string
		startTime, created, updated int64
	)
	err := row.Scan(&challengeID, &roomID, &group, &room.GroupName,
		&room.Difficulty, &room.MemberCount, &room.QueueNumber, &status,
		&startTime, &created, &updated)
	if err != nil {
		return nil, err
	}
	room.ChallengeID = model.ChallengeID(challengeID)
	room.RoomID = model.RoomID(roomID)
	room.GroupID = model.GroupID(group)
	room.Status = model.RoomStatus(status)
	room.StartTime = time.Unix(0, startTime).UTC()
	room.CreatedAt = time.Unix(0, created).UTC()
	room.UpdatedAt = time.Unix(0, updated).UTC()
	return &room, nil
}
