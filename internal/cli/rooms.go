package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mcoot/qrkiosk/internal/api/request"
	"github.com/mcoot/qrkiosk/internal/dependencies/clock"
	"github.com/mcoot/qrkiosk/internal/rooms"
)

func newRoomsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rooms",
		Short: "Rooms list commands for staff",
	}

	cmd.AddCommand(newRoomsListCmd())
	cmd.AddCommand(newRoomsUpdateCmd())
	cmd.AddCommand(newRoomsDeleteCmd())
	cmd.AddCommand(newRoomsWatchCmd())

	return cmd
}

func newRoomsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered rooms",
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := client.ListRooms(cmd.Context())
			if err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newRoomsUpdateCmd() *cobra.Command {
	var (
		name       string
		difficulty int
		members    int
		status     string
		start      string
	)

	cmd := &cobra.Command{
		Use:   "update <challengeId>",
		Short: "Edit a room",
		Long: `Edit a room. Only the flags given are changed.

--start accepts RFC 3339 or "2006-01-02T15:04" in Tokyo time.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := request.UpdateRoomRequest{ChallengeID: args[0]}
			flags := cmd.Flags()
			if flags.Changed("name") {
				req.GroupName = &name
			}
			if flags.Changed("difficulty") {
				req.Difficulty = &difficulty
			}
			if flags.Changed("members") {
				req.MemberCount = &members
			}
			if flags.Changed("status") {
				req.Status = &status
			}
			if flags.Changed("start") {
				req.StartTime = &start
			}
			if req == (request.UpdateRoomRequest{ChallengeID: args[0]}) {
				return fmt.Errorf("nothing to update: pass at least one of --name, --difficulty, --members, --status, --start")
			}

			result, err := client.UpdateRoom(cmd.Context(), args[0], req)
			if err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Group name")
	cmd.Flags().IntVar(&difficulty, "difficulty", 0, "Difficulty (1-4)")
	cmd.Flags().IntVar(&members, "members", 0, "Member count")
	cmd.Flags().StringVar(&status, "status", "", "Room status")
	cmd.Flags().StringVar(&start, "start", "", "Start time")

	return cmd
}

func newRoomsDeleteCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <challengeId>",
		Short: "Delete a room",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			challengeID := args[0]

			if !yes {
				ok, err := confirm(cmd.InOrStdin(), cmd.OutOrStdout(), fmt.Sprintf("Delete room %s?", challengeID))
				if err != nil {
					return err
				}
				if !ok {
					return fmt.Errorf("aborted")
				}
			}

			msg, err := client.DeleteRoom(cmd.Context(), challengeID)
			if err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.PrintMessage(msg)
			return nil
		},
	}

	cmd.Flags().BoolVar(&yes, "yes", false, "Skip the confirmation prompt")

	return cmd
}

func newRoomsWatchCmd() *cobra.Command {
	var interval time.Duration

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Refresh the rooms list periodically",
		Long: `Refresh the rooms list every interval until interrupted.
If a refresh fails the last list received is shown again with a warning.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			poller := rooms.NewPoller(client, clock.New(), newLogger())
			out := NewOutput(cfg.Output)

			return poller.Run(cmd.Context(), interval, func(snap rooms.Snapshot) {
				if cfg.Output != "json" {
					// Clear the screen before each refresh
					_, _ = fmt.Fprint(cmd.OutOrStdout(), "\x1b[H\x1b[2J")
				}
				out.Print(snap)
			})
		},
	}

	cmd.Flags().DurationVar(&interval, "interval", rooms.DefaultInterval, "Refresh interval")

	return cmd
}

// confirm asks a yes/no question, defaulting to no
func confirm(in io.Reader, out io.Writer, question string) (bool, error) {
	_, _ = fmt.Fprintf(out, "%s [y/N] ", question)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return false, err
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes", nil
}
