package storage

import (
	"sort"

	"github.com/mcoot/qrkiosk/internal/model"
)

// SortRooms orders rooms by creation time, breaking ties by challenge id
func SortRooms(rooms []*model.Room) {
	sort.Slice(rooms, func(i, j int) bool {
		if !rooms[i].CreatedAt.Equal(rooms[j].CreatedAt) {
			return rooms[i].CreatedAt.Before(rooms[j].CreatedAt)
		}
		return rooms[i].ChallengeID < rooms[j].ChallengeID
	})
}
