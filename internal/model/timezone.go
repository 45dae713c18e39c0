package model

import (
	"fmt"
	"time"
)

// DisplayZone is the venue's local time (Asia/Tokyo, no daylight saving)
var DisplayZone = time.FixedZone("JST", 9*60*60)

// LocalTimeLayout is the minute-precision form staff enter times in
const LocalTimeLayout = "2006-01-02T15:04"

// ParseStartTime accepts RFC 3339 or LocalTimeLayout. The latter is read in DisplayZone.
func ParseStartTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation(LocalTimeLayout, s, DisplayZone)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: start time %q is not RFC 3339 or %s", ErrInvalidRoomUpdate, s, LocalTimeLayout)
	}
	return t, nil
}
