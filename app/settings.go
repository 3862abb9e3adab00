package app

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/GoPowerDNS-Admin/plugin-settings/internal/daemon"
	"github.com/GoPowerDNS-Admin/plugin-settings/internal/settings"
	"github.com/GoPowerDNS-Admin/plugin-settings/internal/settings/definition"
)

func newGetCmd(d func() *daemon.Daemon) *cobra.Command {
	var (
		userID   uint64
		useCache bool
		backup   string
	)

	cmd := &cobra.Command{
		Use:   "get <plugin> <key>",
		Short: "Print the effective value of a setting",
		Args:  cobra.ExactArgs(2), //nolint:mnd
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := d().Facet(args[0])
			if err != nil {
				return err
			}

			opts := []settings.ReadOption{settings.Backup(backup)}
			if useCache {
				opts = append(opts, settings.UseCache())
			}

			var value string

			if userID != 0 {
				value, err = f.GetUserSetting(cmd.Context(), args[1], settings.UserID(userID), opts...)
			} else {
				value, err = f.GetSetting(cmd.Context(), args[1], opts...)
			}

			if err != nil {
				return err
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), value)

			return err
		},
	}

	cmd.Flags().Uint64Var(&userID, "user", 0, "read the setting of this user id")
	cmd.Flags().BoolVar(&useCache, "cache", false, "serve the value from the cache")
	cmd.Flags().StringVar(&backup, "backup", "", "value printed when neither record nor default exists")

	return cmd
}

func newSetCmd(d func() *daemon.Daemon) *cobra.Command {
	var userID uint64

	cmd := &cobra.Command{
		Use:   "set <plugin> <key> <value>",
		Short: "Validate and persist a setting",
		Args:  cobra.ExactArgs(3), //nolint:mnd
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := d().Facet(args[0])
			if err != nil {
				return err
			}

			if userID != 0 {
				return f.SetUserSetting(cmd.Context(), args[1], args[2], settings.UserID(userID))
			}

			return f.SetSetting(cmd.Context(), args[1], args[2])
		},
	}

	cmd.Flags().Uint64Var(&userID, "user", 0, "write the setting of this user id")

	return cmd
}

func newCheckCmd(d func() *daemon.Daemon) *cobra.Command {
	return &cobra.Command{
		Use:   "check <plugin>",
		Short: "Report required settings without a value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := d().Facet(args[0])
			if err != nil {
				return err
			}

			ok, missing, err := f.CheckSettings(cmd.Context())
			if err != nil {
				return err
			}

			if ok {
				_, err = fmt.Fprintln(cmd.OutOrStdout(), "ok")
				return err
			}

			return fmt.Errorf("missing required settings: %s", strings.Join(missing, ", ")) //nolint:err113
		},
	}
}

func newDumpCmd(d func() *daemon.Daemon) *cobra.Command {
	return &cobra.Command{
		Use:   "dump <plugin>",
		Short: "Print the effective value of every global setting",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := d().Facet(args[0])
			if err != nil {
				return err
			}

			values, err := f.GetSettingsDict(cmd.Context())
			if err != nil {
				return err
			}

			defs := f.GlobalDefinitions()
			for _, key := range defs.Keys() {
				if _, err = fmt.Fprintf(cmd.OutOrStdout(), "%s=%s\n", key, values[key]); err != nil {
					return err
				}
			}

			return nil
		},
	}
}

func newCatalogCmd(d func() *daemon.Daemon) *cobra.Command {
	var showHidden bool

	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "List the settings declared by the active plugins",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg := d().Registry()
			out := cmd.OutOrStdout()

			for _, plugin := range reg.Plugins() {
				for _, scope := range []definition.Scope{definition.ScopeGlobal, definition.ScopeUser} {
					var defs definition.Map
					if scope == definition.ScopeGlobal {
						defs, _ = reg.GlobalDefinitions(plugin)
					} else {
						defs, _ = reg.UserDefinitions(plugin)
					}

					for _, key := range defs.Keys() {
						def := defs[key]
						if def.Hidden && !showHidden {
							continue
						}

						if _, err := fmt.Fprintf(out, "%s\t%s\t%s\trequired=%t\tdefault=%q\n",
							plugin, scope, key, def.Required, def.Default); err != nil {
							return err
						}
					}
				}
			}

			return nil
		},
	}

	cmd.Flags().BoolVar(&showHidden, "hidden", false, "include hidden settings")

	return cmd
}
