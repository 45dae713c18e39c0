package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/mcoot/qrkiosk/internal/api/response"
	"github.com/mcoot/qrkiosk/internal/model"
	"github.com/mcoot/qrkiosk/internal/rooms"
)

// displayTimeLayout is how the rooms table shows start times
const displayTimeLayout = "2006-01-02 15:04"

// Output handles formatting output based on the configured format
type Output struct {
	format string
	w      io.Writer
	errW   io.Writer
}

// NewOutput creates a new Output formatter on stdout and stderr
func NewOutput(format string) *Output {
	return newOutputTo(format, os.Stdout, os.Stderr)
}

func newOutputTo(format string, w, errW io.Writer) *Output {
	return &Output{format: format, w: w, errW: errW}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		errData := map[string]any{
			"success": false,
			"message": err.Error(),
		}
		data, _ := json.Marshal(errData)
		_, _ = fmt.Fprintln(o.errW, string(data))
	} else {
		_, _ = fmt.Fprintf(o.errW, "Error: %s\n", err)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		_, _ = fmt.Fprintln(o.w, string(data))
	} else {
		_, _ = fmt.Fprintln(o.w, msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case []response.Room:
		o.printRooms(v)
	case response.Room:
		o.printRoom(v)
	case rooms.Snapshot:
		o.printSnapshot(v)
	case RegistrationResult:
		o.printRegistration(v)
	case response.HealthResponse:
		o.printHealthResult(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// RegistrationResult is the outcome of a one-shot submission
type RegistrationResult struct {
	Outcome string `json:"outcome"`
	RoomID  string `json:"roomId,omitempty"`
	Message string `json:"message"`
}

// formatStartTime renders t in the venue's time zone
func formatStartTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.In(model.DisplayZone).Format(displayTimeLayout)
}

func (o *Output) printRooms(list []response.Room) {
	if len(list) == 0 {
		_, _ = fmt.Fprintln(o.w, "No rooms.")
		return
	}

	tw := tabwriter.NewWriter(o.w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "ROOM\tGROUP\tMEMBERS\tDIFFICULTY\tQUEUE\tSTATUS\tSTART (JST)\tCHALLENGE")
	for _, r := range list {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%s\t%s\t%s\t%s\n",
			r.RoomID, r.GroupName, r.MemberCount, r.Difficulty, r.QueueNumber,
			r.Status, formatStartTime(r.StartTime), r.ChallengeID)
	}
	_ = tw.Flush()
}

func (o *Output) printRoom(r response.Room) {
	_, _ = fmt.Fprintf(o.w, "Room: %s\n", r.RoomID)
	_, _ = fmt.Fprintf(o.w, "Group: %s (%s)\n", r.GroupName, r.GroupID)
	_, _ = fmt.Fprintf(o.w, "Members: %d\n", r.MemberCount)
	_, _ = fmt.Fprintf(o.w, "Difficulty: %d\n", r.Difficulty)
	_, _ = fmt.Fprintf(o.w, "Queue Number: %s\n", r.QueueNumber)
	_, _ = fmt.Fprintf(o.w, "Status: %s\n", r.Status)
	_, _ = fmt.Fprintf(o.w, "Start: %s JST\n", formatStartTime(r.StartTime))
	_, _ = fmt.Fprintf(o.w, "Challenge: %s\n", r.ChallengeID)
}

func (o *Output) printSnapshot(s rooms.Snapshot) {
	if s.Stale() {
		last := "never"
		if !s.FetchedAt.IsZero() {
			last = formatStartTime(s.FetchedAt)
		}
		_, _ = fmt.Fprintf(o.w, "Warning: refresh failed (%s), showing list from %s\n", s.Err, last)
	} else {
		_, _ = fmt.Fprintf(o.w, "Updated %s JST\n", s.FetchedAt.In(model.DisplayZone).Format("15:04:05"))
	}
	o.printRooms(s.Rooms)
}

func (o *Output) printRegistration(r RegistrationResult) {
	_, _ = fmt.Fprintf(o.w, "Outcome: %s\n", r.Outcome)
	if r.RoomID != "" {
		_, _ = fmt.Fprintf(o.w, "Room: %s\n", r.RoomID)
	}
	if r.Message != "" {
		_, _ = fmt.Fprintf(o.w, "Message: %s\n", r.Message)
	}
}

func (o *Output) printHealthResult(h response.HealthResponse) {
	_, _ = fmt.Fprintf(o.w, "Status: %s\n", h.Status)
}
