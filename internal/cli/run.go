package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/mcoot/qrkiosk/internal/kiosk"
)

func newRunCmd() *cobra.Command {
	kcfg := kiosk.DefaultConfig()

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the registration terminal",
		Long: `Run the registration terminal on stdin and stdout.

Scan the group QR code, then the queue ticket barcode. When prompted about a
duplicate group name press y to keep it or n to start over. Press Enter after
showing the room number, or wait for the screen to reset. Esc abandons the
current group, Ctrl-C quits.

Logs are written as JSON to stderr.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			kcfg.ServerURL = cfg.ServerURL
			kcfg.Format = cfg.Output

			if kcfg.Raw {
				restore, err := kiosk.MakeRaw(os.Stdin)
				if err != nil {
					return err
				}
				defer restore()
			}

			k := kiosk.New(kcfg, kiosk.Deps{
				Out:    cmd.OutOrStdout(),
				Logger: newLogger(),
			})
			return k.Run(cmd.Context(), cmd.InOrStdin())
		},
	}

	cmd.Flags().DurationVar(&kcfg.CompletionDelay, "complete-after", kcfg.CompletionDelay, "Return to scanning this long after a registration completes")
	cmd.Flags().DurationVar(&kcfg.RefocusDelay, "refocus-after", kcfg.RefocusDelay, "Give focus back to the active scanner channel after this delay")
	cmd.Flags().DurationVar(&kcfg.RequestTimeout, "timeout", kcfg.RequestTimeout, "Registration request timeout")
	cmd.Flags().BoolVar(&kcfg.Raw, "raw", false, "Put the terminal in raw mode so keys arrive without Enter")

	return cmd
}
