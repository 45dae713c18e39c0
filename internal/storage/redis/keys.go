package redis

import (
	"fmt"

	"github.com/mcoot/qrkiosk/internal/model"
)

// Key prefix for all kiosk data
const keyPrefix = "qrkiosk"

// roomKey returns the Redis key for a Room
func roomKey(id model.ChallengeID) string {
	return fmt.Sprintf("%s:room:%s", keyPrefix, id)
}

// roomsIndexKey returns the Redis key for the SET of room keys
func roomsIndexKey() string {
	return fmt.Sprintf("%s:idx:rooms", keyPrefix)
}

// groupNameIndexKey returns the Redis key for the normalized name -> group_id index
func groupNameIndexKey(name string) string {
	return fmt.Sprintf("%s:idx:group_name:%s", keyPrefix, model.NormalizeGroupName(name))
}
