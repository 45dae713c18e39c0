package cli

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mcoot/qrkiosk/internal/kiosk/gateway"
	"github.com/mcoot/qrkiosk/internal/kiosk/scan"
)

// ErrDuplicateNeedsOverride is returned when a name collision is refused without --dup-ok
var ErrDuplicateNeedsOverride = errors.New("group name already registered, rerun with --dup-ok if this group has played before")

func newSubmitCmd() *cobra.Command {
	var (
		qr      string
		queue   string
		dupOK   bool
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Register one group without the kiosk terminal",
		Long: `Register one group from a QR payload and a queue number.

The payload is decoded and submitted exactly as the kiosk would.`,
		Example: `  qrkiosk submit --qr '{"groupName":"Alpha","members":4,"difficulty":2}' --queue 007`,
		RunE: func(cmd *cobra.Command, args []string) error {
			draft, err := scan.DecodeQR(qr)
			if err != nil {
				return err
			}
			if !scan.IsQueueNumberComplete(queue) || strings.IndexFunc(queue, notDigit) >= 0 {
				return fmt.Errorf("queue number must be %d digits, got %q", scan.QueueNumberLength, queue)
			}

			gw := gateway.New(gateway.Config{BaseURL: cfg.ServerURL, Timeout: timeout}, nil, newLogger())
			outcome := gw.Submit(cmd.Context(), gateway.Request{
				GroupName:   draft.GroupName,
				PlayerCount: draft.MemberCount,
				Difficulty:  draft.Difficulty,
				QueueNumber: queue,
				DupCheck:    dupOK,
			})

			out := NewOutput(cfg.Output)
			out.Print(RegistrationResult{
				Outcome: string(outcome.Kind),
				RoomID:  outcome.RoomID,
				Message: outcome.Message,
			})

			switch outcome.Kind {
			case gateway.OutcomeSuccess:
				return nil
			case gateway.OutcomeDuplicateName:
				if !dupOK {
					return ErrDuplicateNeedsOverride
				}
			}
			return errors.New(outcome.Message)
		},
	}

	cmd.Flags().StringVar(&qr, "qr", "", "QR payload JSON")
	cmd.Flags().StringVar(&queue, "queue", "", "3-digit queue number")
	cmd.Flags().BoolVar(&dupOK, "dup-ok", false, "Accept an already registered group name")
	cmd.Flags().DurationVar(&timeout, "timeout", gateway.DefaultConfig().Timeout, "Request timeout")
	_ = cmd.MarkFlagRequired("qr")
	_ = cmd.MarkFlagRequired("queue")

	return cmd
}

func notDigit(r rune) bool {
	return r < '0' || r > '9'
}
