package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mcoot/qrkiosk/internal/api/middleware"
)

func newAdminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Server administration helpers",
	}

	cmd.AddCommand(newAdminHashKeyCmd())

	return cmd
}

func newAdminHashKeyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-key <key>",
		Short: "Print the bcrypt hash to set as ADMIN_KEY_HASH",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if args[0] == "" {
				return fmt.Errorf("key must not be empty")
			}
			hash, err := middleware.HashAdminKey(args[0])
			if err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.PrintMessage(hash)
			return nil
		},
	}
}
