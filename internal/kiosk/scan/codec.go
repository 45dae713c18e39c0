// Package scan decodes raw scanner text into registration data.
package scan

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
)

const (
	// PayloadTerminator closes a QR payload; decoding is attempted once the buffer ends with it
	PayloadTerminator = "}"
	// QueueNumberLength is the number of characters in a queue ticket
	QueueNumberLength = 3

	// DefaultMemberCount applies when the payload has no member count
	DefaultMemberCount = 1
	// DefaultDifficulty applies when the payload has no difficulty
	DefaultDifficulty = 1
	// MinDifficulty and MaxDifficulty bound the difficulty level
	MinDifficulty = 1
	MaxDifficulty = 4
)

// ErrInvalidPayload is returned for any QR text that does not decode into a complete Draft
var ErrInvalidPayload = errors.New("invalid QR payload")

// Draft is the registration data carried by a QR payload
type Draft struct {
	GroupName   string
	MemberCount int
	Difficulty  int
}

// qrPayload mirrors the QR JSON. Pointers distinguish absent fields from zero values.
type qrPayload struct {
	GroupName  *string  `json:"groupName"`
	Members    *float64 `json:"members"`
	Difficulty *float64 `json:"difficulty"`
}

// DecodeQR parses a QR payload. Either the whole payload is valid or an error wrapping
// ErrInvalidPayload is returned and the Draft is zero.
func DecodeQR(raw string) (Draft, error) {
	trimmed := bytes.TrimSpace([]byte(raw))
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return Draft{}, fmt.Errorf("%w: not a JSON object", ErrInvalidPayload)
	}

	var p qrPayload
	if err := json.Unmarshal(trimmed, &p); err != nil {
		return Draft{}, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	if p.GroupName == nil || strings.TrimSpace(*p.GroupName) == "" {
		return Draft{}, fmt.Errorf("%w: missing groupName", ErrInvalidPayload)
	}

	members, err := optionalInt(p.Members, DefaultMemberCount)
	if err != nil {
		return Draft{}, fmt.Errorf("%w: members: %v", ErrInvalidPayload, err)
	}
	if members < 1 {
		return Draft{}, fmt.Errorf("%w: members must be at least 1", ErrInvalidPayload)
	}

	difficulty, err := optionalInt(p.Difficulty, DefaultDifficulty)
	if err != nil {
		return Draft{}, fmt.Errorf("%w: difficulty: %v", ErrInvalidPayload, err)
	}
	if difficulty < MinDifficulty || difficulty > MaxDifficulty {
		return Draft{}, fmt.Errorf("%w: difficulty must be %d-%d", ErrInvalidPayload, MinDifficulty, MaxDifficulty)
	}

	return Draft{
		GroupName:   *p.GroupName,
		MemberCount: members,
		Difficulty:  difficulty,
	}, nil
}

// optionalInt converts an optional JSON number to an int.
// Absent and zero both take the default, as the kiosk has always treated them.
func optionalInt(v *float64, def int) (int, error) {
	if v == nil || *v == 0 {
		return def, nil
	}
	if *v != math.Trunc(*v) || math.Abs(*v) > math.MaxInt32 {
		return 0, errors.New("not an integer")
	}
	return int(*v), nil
}

// IsPayloadTerminated reports whether buffer ends with the payload terminator
func IsPayloadTerminated(buffer string) bool {
	return strings.HasSuffix(buffer, PayloadTerminator)
}

// IsQueueNumberComplete reports whether buffer holds a full queue number.
// Only length is checked; the capture channel restricts characters to digits.
func IsQueueNumberComplete(buffer string) bool {
	return len(buffer) == QueueNumberLength
}
