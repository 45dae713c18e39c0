package cli

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/qrkiosk/internal/api/response"
	"github.com/mcoot/qrkiosk/internal/rooms"
)

func sampleRoom() response.Room {
	return response.Room{
		RoomID:      "R042",
		GroupName:   "Alpha",
		GroupID:     "g-1",
		Difficulty:  2,
		MemberCount: 4,
		Status:      "waiting",
		StartTime:   time.Date(2024, 5, 1, 1, 30, 0, 0, time.UTC),
		ChallengeID: "c-1",
		QueueNumber: "007",
	}
}

func TestFormatStartTimeUsesTokyo(t *testing.T) {
	assert.Equal(t, "2024-05-01 10:30", formatStartTime(sampleRoom().StartTime))
	assert.Equal(t, "-", formatStartTime(time.Time{}))
}

func TestPrintRoomsTable(t *testing.T) {
	var buf bytes.Buffer
	newOutputTo("text", &buf, &buf).Print([]response.Room{sampleRoom()})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "ROOM"))
	assert.Contains(t, lines[1], "R042")
	assert.Contains(t, lines[1], "Alpha")
	assert.Contains(t, lines[1], "2024-05-01 10:30")
}

func TestPrintEmptyRooms(t *testing.T) {
	var buf bytes.Buffer
	newOutputTo("text", &buf, &buf).Print([]response.Room{})
	assert.Equal(t, "No rooms.\n", buf.String())
}

func TestPrintStaleSnapshot(t *testing.T) {
	var buf bytes.Buffer
	newOutputTo("text", &buf, &buf).Print(rooms.Snapshot{
		Rooms:     []response.Room{sampleRoom()},
		FetchedAt: time.Date(2024, 5, 1, 1, 0, 0, 0, time.UTC),
		Err:       errors.New("connection refused"),
	})

	out := buf.String()
	assert.Contains(t, out, "Warning: refresh failed (connection refused), showing list from 2024-05-01 10:00")
	assert.Contains(t, out, "R042")
}

func TestPrintJSON(t *testing.T) {
	var buf bytes.Buffer
	newOutputTo("json", &buf, &buf).Print(sampleRoom())
	assert.Contains(t, buf.String(), `"RoomID": "R042"`)
	assert.Contains(t, buf.String(), `"ChallengeId": "c-1"`)
}

func TestPrintErrorJSON(t *testing.T) {
	var out, errOut bytes.Buffer
	newOutputTo("json", &out, &errOut).PrintError(errors.New("boom"))
	assert.Empty(t, out.String())
	assert.JSONEq(t, `{"success":false,"message":"boom"}`, errOut.String())
}

func TestConfirm(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{"n\n", false},
		{"\n", false},
		{"", false},
	}
	for _, tt := range tests {
		var out bytes.Buffer
		got, err := confirm(strings.NewReader(tt.input), &out, "Delete?")
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "input %q", tt.input)
		assert.Equal(t, "Delete? [y/N] ", out.String())
	}
}
