package response

import (
	"time"

	"github.com/mcoot/qrkiosk/internal/model"
)

// Room represents a room in API responses
type Room struct {
	RoomID      string    `json:"RoomID"`
	GroupName   string    `json:"GroupName"`
	GroupID     string    `json:"GroupId"`
	Difficulty  int       `json:"Difficulty"`
	MemberCount int       `json:"MemberCount"`
	Status      string    `json:"Status"`
	StartTime   time.Time `json:"StartTime"`
	ChallengeID string    `json:"ChallengeId"`
	QueueNumber string    `json:"QueueNumber"`
}

// RoomFromModel converts a model.Room to a response Room
func RoomFromModel(r *model.Room) Room {
	return Room{
		RoomID:      string(r.RoomID),
		GroupName:   r.GroupName,
		GroupID:     string(r.GroupID),
		Difficulty:  r.Difficulty,
		MemberCount: r.MemberCount,
		Status:      string(r.Status),
		StartTime:   r.StartTime,
		ChallengeID: string(r.ChallengeID),
		QueueNumber: r.QueueNumber,
	}
}

// RoomsFromModel converts a list of rooms, never returning nil
func RoomsFromModel(rooms []*model.Room) []Room {
	out := make([]Room, 0, len(rooms))
	for _, r := range rooms {
		out = append(out, RoomFromModel(r))
	}
	return out
}

// RegisterResponse is the success response for a kiosk registration
type RegisterResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	RoomID  string `json:"roomId"`
}

// RoomListResponse wraps the rooms list
type RoomListResponse struct {
	Success bool   `json:"success"`
	Data    []Room `json:"data"`
}

// RoomResponse wraps a single room
type RoomResponse struct {
	Success bool `json:"success"`
	Data    Room `json:"data"`
}

// MessageResponse is a success response carrying only a message
type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// HealthResponse is the health check response
type HealthResponse struct {
	Status string `json:"status"`
}
