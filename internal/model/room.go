package model

import (
	"strings"
	"time"
)

// ChallengeID uniquely identifies one registration (a room booking)
type ChallengeID string

// GroupID identifies a group across registrations
type GroupID string

// RoomID is the short code shown to the group on success
type RoomID string

// RoomStatus is free-form progress text maintained by staff
type RoomStatus string

const (
	RoomStatusWaiting RoomStatus = "waiting" // Registered, not yet started
)

const (
	MinDifficulty = 1
	MaxDifficulty = 4
)

// Room is a registered group's challenge
type Room struct {
	ChallengeID ChallengeID
	RoomID      RoomID
	GroupID     GroupID
	GroupName   string
	Difficulty  int
	MemberCount int
	QueueNumber string
	Status      RoomStatus
	StartTime   time.Time // Registration time unless staff reschedule
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Registration is a kiosk request to register a group
type Registration struct {
	GroupName   string
	PlayerCount int
	Difficulty  int
	QueueNumber string
	// DupCheck acknowledges that the group name already exists
	DupCheck bool
}

// RoomUpdate holds staff edits to a room. Nil fields are left unchanged.
type RoomUpdate struct {
	GroupName   *string
	Difficulty  *int
	MemberCount *int
	Status      *RoomStatus
	StartTime   *time.Time
}

// NormalizeGroupName folds a group name for duplicate detection
func NormalizeGroupName(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}
