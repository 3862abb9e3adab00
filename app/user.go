package app

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/GoPowerDNS-Admin/plugin-settings/internal/daemon"
)

func newUserCmd(d func() *daemon.Daemon) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage the users user settings belong to",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "add <username>",
			Short: "Register a user and print its id",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				u, err := d().Store().RegisterUser(cmd.Context(), args[0])
				if err != nil {
					return err
				}

				_, err = fmt.Fprintln(cmd.OutOrStdout(), u.ID)

				return err
			},
		},
		&cobra.Command{
			Use:   "delete <id>",
			Short: "Delete a user together with its settings",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := strconv.ParseUint(args[0], 10, 64)
				if err != nil {
					return fmt.Errorf("invalid user id %q: %w", args[0], err)
				}

				return d().Store().DeleteUser(cmd.Context(), id)
			},
		},
	)

	return cmd
}
