package request

// RegisterRequest is the kiosk registration body
type RegisterRequest struct {
	GroupName   string `json:"GroupName"`
	PlayerCount int    `json:"playerCount"`
	Difficulty  int    `json:"difficulty"`
	QueueNumber string `json:"queueNumber"`
	DupCheck    bool   `json:"dupCheck"`
}

// UpdateRoomRequest is the staff edit body. GroupId is accepted but read-only, and
// ChallengeId must match the path when present.
type UpdateRoomRequest struct {
	GroupName   *string `json:"GroupName,omitempty"`
	GroupID     string  `json:"GroupId,omitempty"`
	Difficulty  *int    `json:"difficulty,omitempty"`
	MemberCount *int    `json:"memberCount,omitempty"`
	Status      *string `json:"status,omitempty"`
	StartTime   *string `json:"startTime,omitempty"` // RFC 3339, or yyyy-MM-ddTHH:mm in Tokyo time
	ChallengeID string  `json:"ChallengeId,omitempty"`
}
