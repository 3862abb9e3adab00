// Package app implements the main application commands.
package app

import (
	"github.com/spf13/cobra"

	"github.com/GoPowerDNS-Admin/plugin-settings/internal/config"
	"github.com/GoPowerDNS-Admin/plugin-settings/internal/daemon"
	"github.com/GoPowerDNS-Admin/plugin-settings/internal/logger"
)

// Execute runs the root command.
func Execute() error {
	return newCLI().Execute()
}

// cli is the command tree together with the daemon its commands share.
type cli struct {
	root *cobra.Command
	d    *daemon.Daemon
}

// Execute runs the command line and closes the daemon, whether or not the
// command failed.
func (c *cli) Execute() error {
	defer c.close()

	return c.root.Execute()
}

func (c *cli) close() {
	if c.d != nil {
		c.d.Close()
	}
}

// newCLI builds the command tree. The daemon is created before a subcommand
// runs.
func newCLI() *cli {
	var configPath string

	c := &cli{}

	rootCmd := &cobra.Command{
		Use:   "plugin-settings",
		Short: "plugin-settings reads and writes the settings of installed plugins",
		Long: `plugin-settings manages the global and per user settings declared by the
plugins of the manifest in main.toml.`,
		Args:          cobra.OnlyValidArgs,
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.ReadConfig(configPath)
			if err != nil {
				return err
			}

			if err = logger.Init(cfg.Log); err != nil {
				return err
			}

			c.d, err = daemon.New(cmd.Context(), &cfg)

			return err
		},
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "directory containing main.toml (default ./etc/)")

	daemonFn := func() *daemon.Daemon { return c.d }

	rootCmd.AddCommand(
		newGetCmd(daemonFn),
		newSetCmd(daemonFn),
		newCheckCmd(daemonFn),
		newDumpCmd(daemonFn),
		newCatalogCmd(daemonFn),
		newUserCmd(daemonFn),
	)

	c.root = rootCmd

	return c
}
